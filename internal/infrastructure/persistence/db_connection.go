package persistence

import (
	"fmt"

	"github.com/MGTheTrain/crypto-facade/internal/infrastructure/persistence/models"
	"github.com/MGTheTrain/crypto-facade/internal/pkg/config"
	"github.com/MGTheTrain/crypto-facade/internal/pkg/logger"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDBConnection opens the key catalog database selected by settings and
// migrates its schema.
func NewDBConnection(settings config.DatabaseSettings, log logger.Logger) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	switch settings.Type {
	case config.DatabaseTypePostgres:
		db, err = connectPostgres(settings)
	case config.DatabaseTypeSqlite:
		db, err = connectSQLite(settings)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", settings.Type)
	}
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Info("Connected to ", settings.Type, " key catalog ", settings.DBName)
	return db, nil
}

// Migrate creates or updates the key catalog tables
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.CryptoKeyModel{}); err != nil {
		return fmt.Errorf("failed to migrate key catalog schema: %w", err)
	}
	return nil
}

func gormConfig() *gorm.Config {
	return &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Silent)}
}

// connectPostgres creates settings.DBName when missing and connects to it
func connectPostgres(settings config.DatabaseSettings) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(settings.DSN), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get raw DB connection: %w", err)
	}

	var exists bool
	if err := db.Raw("SELECT EXISTS (SELECT 1 FROM pg_database WHERE datname = ?)", settings.DBName).Scan(&exists).Error; err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to look up database '%s': %w", settings.DBName, err)
	}
	if !exists {
		if err := db.Exec(fmt.Sprintf("CREATE DATABASE %s", settings.DBName)).Error; err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("failed to create database '%s': %w", settings.DBName, err)
		}
	}

	if err := sqlDB.Close(); err != nil {
		return nil, fmt.Errorf("failed to close initial DB connection: %w", err)
	}

	dsn := fmt.Sprintf("%s dbname=%s", settings.DSN, settings.DBName)
	db, err = gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database '%s': %w", settings.DBName, err)
	}
	return db, nil
}

// connectSQLite opens the SQLite file named by settings.DSN, or ":memory:"
func connectSQLite(settings config.DatabaseSettings) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(settings.DSN), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite: %w", err)
	}
	if settings.DSN == ":memory:" {
		// every pooled connection would otherwise see its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get raw DB connection: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// CloseDB closes the database connection
func CloseDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}

// DropDatabase drops a PostgreSQL database
func DropDatabase(adminDSN, dbName string) error {
	db, err := gorm.Open(postgres.Open(adminDSN), gormConfig())
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer func() { _ = CloseDB(db) }()

	if err := db.Exec(fmt.Sprintf("DROP DATABASE IF EXISTS %s", dbName)).Error; err != nil {
		return fmt.Errorf("failed to drop database '%s': %w", dbName, err)
	}
	return nil
}
