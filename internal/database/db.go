package database

import (
	"fmt"

	"supplychain/internal/config"
	"supplychain/internal/models"

	"github.com/jinzhu/gorm"
	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// Open connects to the configured database and applies the pool settings
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.LogMode(cfg.LogMode)

	if cfg.MaxIdleConns > 0 {
		db.DB().SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		db.DB().SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.DB().SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return db, nil
}

// Migrate creates or updates the tables for every stored record
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Item{},
		&models.Order{},
		&models.Customer{},
		&models.Supplier{},
	).Error
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
