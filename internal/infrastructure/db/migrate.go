package db

import (
	"fmt"

	"github.com/pressly/goose/v3"
	"gorm.io/gorm"

	"video-hub/internal/domain/entities"
	"video-hub/migrations"
)

// AutoMigrate lets gorm derive the schema; used for mysql and sqlite.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entities.Video{},
	)
}

// RunMigrations applies the versioned SQL migrations on postgres and falls
// back to AutoMigrate for the other dialects.
func RunMigrations(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return AutoMigrate(db)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.Up(sqlDB, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}
