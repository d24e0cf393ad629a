package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/Pedroffda/alinhavo-api/logger"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

// The SQL files add partial indexes GORM's AutoMigrate cannot express. They
// run after AutoMigrate has created the tables.
//
//go:embed *.sql
var embedMigrations embed.FS

// Run applies all pending migrations. dialect is a goose dialect name,
// "postgres" or "sqlite3".
func Run(db *sql.DB, dialect string) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(zap.NewStdLog(logger.Log))

	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Version returns the current migration version
func Version(db *sql.DB, dialect string) (int64, error) {
	if err := goose.SetDialect(dialect); err != nil {
		return 0, fmt.Errorf("failed to set goose dialect: %w", err)
	}

	version, err := goose.GetDBVersion(db)
	if err != nil {
		return 0, fmt.Errorf("failed to get migration version: %w", err)
	}

	return version, nil
}
