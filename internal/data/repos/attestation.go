package repos

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/veritaschain/pociv-backend/internal/domain"
	"github.com/veritaschain/pociv-backend/internal/platform/logger"
)

type AttestationRepo interface {
	// Record writes the terminal attestation row for a validation. Upsert on
	// uid so a re-run of the same terminal write stays idempotent.
	Record(ctx context.Context, att *domain.Attestation) error
	GetByValidationID(ctx context.Context, tx *gorm.DB, validationID uuid.UUID) (*domain.Attestation, error)
}

type attestationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAttestationRepo(db *gorm.DB, baseLog *logger.Logger) AttestationRepo {
	return &attestationRepo{db: db, log: baseLog.With("repo", "AttestationRepo")}
}

func (ar *attestationRepo) Record(ctx context.Context, att *domain.Attestation) error {
	if att == nil {
		return fmt.Errorf("record attestation: nil attestation")
	}
	err := ar.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "uid"}},
			UpdateAll: true,
		}).Create(att).Error
	})
	if err != nil {
		return fmt.Errorf("record attestation %s: %w", att.UID, err)
	}
	return nil
}

func (ar *attestationRepo) GetByValidationID(ctx context.Context, tx *gorm.DB, validationID uuid.UUID) (*domain.Attestation, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}

	var att domain.Attestation
	err := transaction.WithContext(ctx).First(&att, "validation_id = ?", validationID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("attestation for validation %s: %w", validationID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get attestation for validation %s: %w", validationID, err)
	}
	return &att, nil
}
