package internal

import (
	"fmt"

	"AE-VISA/internal/config"
	"AE-VISA/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// OpenDB connects to postgres and synchronizes the schema from the entity
// declarations. There are no migration files; the schema follows the models.
func OpenDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.Database.DSN()), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// Migrate auto-migrates every entity. Order matters only for readability;
// FK constraints are disabled during migration.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Role{},
		&models.User{},
		&models.OTP{},
		&models.Service{},
		&models.Category{},
		&models.CategoryAttribute{},
		&models.Visa{},
		&models.Form{},
		&models.FormAttribute{},
		&models.FormSubmission{},
		&models.Document{},
		&models.Payment{},
		&models.Chat{},
		&models.Message{},
		&models.Notification{},
		&models.Application{},
	)
}

// CloseDB closes the underlying sql.DB.
func CloseDB(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
