package repos

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/veritaschain/pociv-backend/internal/domain"
	"github.com/veritaschain/pociv-backend/internal/platform/logger"
)

type UserRepo interface {
	// Ensure returns the user row for discordID, inserting one with a null
	// wallet if none exists. Safe under concurrent first-time references:
	// the insert is ON CONFLICT DO NOTHING, not check-then-insert.
	Ensure(ctx context.Context, tx *gorm.DB, discordID int64) (*domain.User, error)
	GetByID(ctx context.Context, tx *gorm.DB, discordID int64) (*domain.User, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (ur *userRepo) Ensure(ctx context.Context, tx *gorm.DB, discordID int64) (*domain.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	user := &domain.User{DiscordID: discordID}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(user).Error; err != nil {
		return nil, fmt.Errorf("ensure user %d: %w", discordID, err)
	}

	// Re-read so a conflicting concurrent insert still yields the stored row.
	var stored domain.User
	if err := transaction.WithContext(ctx).
		First(&stored, "discord_id = ?", discordID).Error; err != nil {
		return nil, fmt.Errorf("ensure user %d: %w", discordID, err)
	}
	return &stored, nil
}

func (ur *userRepo) GetByID(ctx context.Context, tx *gorm.DB, discordID int64) (*domain.User, error) {
	transaction := tx
	if transaction == nil {
		transaction = ur.db
	}

	var user domain.User
	err := transaction.WithContext(ctx).First(&user, "discord_id = ?", discordID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %d: %w", discordID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", discordID, err)
	}
	return &user, nil
}
