package testutil

import (
	"testing"

	"github.com/Pedroffda/alinhavo-api/migrations"
	"github.com/Pedroffda/alinhavo-api/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewTestDB opens a migrated in-memory SQLite database. The pool is pinned to
// one connection so every goroutine in a test sees the same database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get test database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	if err := migrations.Run(sqlDB, "sqlite3"); err != nil {
		t.Fatalf("Failed to apply SQL migrations: %v", err)
	}

	return db
}
