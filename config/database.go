package config

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const sqlitePrefix = "sqlite://"

var DB *gorm.DB

// ConnectDatabase opens the database named by databaseURL. Postgres DSNs are
// the default; a sqlite:// prefix opens a local SQLite file instead.
func ConnectDatabase(databaseURL string) error {
	if databaseURL == "" {
		return fmt.Errorf("database URL is empty")
	}

	var err error
	DB, err = gorm.Open(dialectorFor(databaseURL), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	return nil
}

func dialectorFor(databaseURL string) gorm.Dialector {
	if strings.HasPrefix(databaseURL, sqlitePrefix) {
		return sqlite.Open(strings.TrimPrefix(databaseURL, sqlitePrefix))
	}
	return postgres.Open(databaseURL)
}

// DialectName returns the goose dialect matching the connected database
func DialectName(db *gorm.DB) string {
	if db.Dialector.Name() == "sqlite" {
		return "sqlite3"
	}
	return "postgres"
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}

// SetDB sets the database instance (primarily for testing)
func SetDB(db *gorm.DB) {
	DB = db
}
