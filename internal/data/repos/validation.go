package repos

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veritaschain/pociv-backend/internal/domain"
	"github.com/veritaschain/pociv-backend/internal/platform/logger"
)

type CreateValidationInput struct {
	ValidatorID     int64
	TargetMessageID int64
	TargetUserID    int64
	ChannelID       int64
	Metrics         []int
	Score           float64
}

type ValidationRepo interface {
	// Create ensures both user rows exist, then inserts the validation, all
	// in one transaction. Returns the generated validation id.
	Create(ctx context.Context, input CreateValidationInput) (uuid.UUID, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Validation, error)
}

type validationRepo struct {
	db    *gorm.DB
	log   *logger.Logger
	users UserRepo
}

func NewValidationRepo(db *gorm.DB, baseLog *logger.Logger, users UserRepo) ValidationRepo {
	return &validationRepo{db: db, log: baseLog.With("repo", "ValidationRepo"), users: users}
}

func (vr *validationRepo) Create(ctx context.Context, input CreateValidationInput) (uuid.UUID, error) {
	metrics, err := domain.EncodeMetrics(input.Metrics)
	if err != nil {
		return uuid.Nil, fmt.Errorf("encode metrics: %w", err)
	}

	validation := &domain.Validation{
		ValidatorID:     input.ValidatorID,
		TargetMessageID: input.TargetMessageID,
		TargetUserID:    input.TargetUserID,
		ChannelID:       input.ChannelID,
		Metrics:         metrics,
		CalculatedScore: input.Score,
	}

	err = vr.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := vr.users.Ensure(ctx, tx, input.ValidatorID); err != nil {
			return err
		}
		if _, err := vr.users.Ensure(ctx, tx, input.TargetUserID); err != nil {
			return err
		}
		return tx.Create(validation).Error
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("create validation: %w", err)
	}

	return validation.ID, nil
}

func (vr *validationRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*domain.Validation, error) {
	transaction := tx
	if transaction == nil {
		transaction = vr.db
	}

	var validation domain.Validation
	err := transaction.WithContext(ctx).First(&validation, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("validation %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get validation %s: %w", id, err)
	}
	return &validation, nil
}
