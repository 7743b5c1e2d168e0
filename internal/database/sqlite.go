package database

import (
	"fmt"
	"net/url"

	"github.com/phuslu/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/abhik-roy/mtg-card-collection-app/internal/models"
)

var DB *gorm.DB

// Initialize opens the database at dbPath, migrates it and stores the handle
// for GetDB.
func Initialize(dbPath string, level logger.LogLevel) error {
	db, err := Open(dbPath, level)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// Open connects to SQLite and brings the schema up to date
func Open(dbPath string, level logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbPath, err)
	}

	// SQLite takes one writer at a time; a single connection queues writers
	// instead of failing them with "database is locked".
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbPath, err)
	}
	sqlDB.SetMaxOpenConns(1)

	log.Info().Str("path", dbPath).Msg("database connected")

	// Duplicates would make the unique indexes below fail to build
	if err := cleanupDuplicateSnapshots(db); err != nil {
		return nil, fmt.Errorf("cleanup duplicate snapshots: %w", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Card{},
		&models.CollectionEntry{},
		&models.CardPriceSnapshot{},
		&models.CardLiquiditySnapshot{},
		&models.PortfolioValueSnapshot{},
		&models.PriceWatch{},
	)
	if err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("data migrations: %w", err)
	}

	log.Info().Msg("database migration completed")
	return db, nil
}

func GetDB() *gorm.DB {
	return DB
}

// MemoryDSN names a private in-memory database. Connections in the pool
// share it, unlike a bare file::memory: which gives each its own.
func MemoryDSN(name string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", url.PathEscape(name))
}
