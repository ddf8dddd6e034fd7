package db

import (
	"gorm.io/gorm"

	"github.com/veritaschain/pociv-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.User{},
		&domain.Validation{},
		&domain.Attestation{},
	)
}

func (s *PostgresService) AutoMigrateAll() error {
	return AutoMigrateAll(s.db)
}
