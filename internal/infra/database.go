package infra

import (
	"fmt"

	"bomtree/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection backed by pgx and runs
// AutoMigrate for the full schema. gen_random_uuid() defaults require
// PostgreSQL 13+ (or the pgcrypto extension).
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return db, nil
}

// RunMigrations applies the schema. Shared with the integration test suite.
// Reference tables migrate before composition_nodes so the FK targets exist.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Owner{},
		&model.ProductType{},
		&model.Material{},
		&model.CompositionNode{},
		&model.MaterialLine{},
		&model.NodeProperty{},
	)
}
