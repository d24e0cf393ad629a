package migrations

import (
	"strings"
	"testing"

	"github.com/Pedroffda/alinhavo-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupMigrationTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

func TestMigrationsEmbedded(t *testing.T) {
	entries, err := embedMigrations.ReadDir(".")
	require.NoError(t, err)

	var sqlFiles []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			sqlFiles = append(sqlFiles, entry.Name())
		}
	}
	assert.NotEmpty(t, sqlFiles, "No .sql migration files found")
}

func TestRun_SQLite(t *testing.T) {
	db := setupMigrationTestDB(t)
	sqlDB, _ := db.DB()

	require.NoError(t, Run(sqlDB, "sqlite3"))

	version, err := Version(sqlDB, "sqlite3")
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	// Running again is a no-op
	assert.NoError(t, Run(sqlDB, "sqlite3"))
}

func TestRun_EnforcesSingleAcceptedProposal(t *testing.T) {
	db := setupMigrationTestDB(t)
	sqlDB, _ := db.DB()
	require.NoError(t, Run(sqlDB, "sqlite3"))

	insert := `INSERT INTO proposals (order_id, tailor_id, price, turnaround_hours, status, progress, created_at, updated_at)
		VALUES (?, ?, 100, 10, ?, 0, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`

	require.NoError(t, db.Exec(insert, 1, "auth0|t1", "accepted").Error)
	assert.Error(t, db.Exec(insert, 1, "auth0|t2", "accepted").Error, "Second accepted proposal on the same order must be refused")
	assert.NoError(t, db.Exec(insert, 2, "auth0|t2", "accepted").Error, "Other orders are unaffected")
}

func TestRun_EnforcesOnePendingProposalPerTailor(t *testing.T) {
	db := setupMigrationTestDB(t)
	sqlDB, _ := db.DB()
	require.NoError(t, Run(sqlDB, "sqlite3"))

	insert := `INSERT INTO proposals (order_id, tailor_id, price, turnaround_hours, status, progress, created_at, updated_at)
		VALUES (?, ?, 100, 10, ?, 0, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`

	require.NoError(t, db.Exec(insert, 1, "auth0|t1", "pending").Error)
	assert.Error(t, db.Exec(insert, 1, "auth0|t1", "pending").Error)
	assert.NoError(t, db.Exec(insert, 1, "auth0|t1", "cancelled").Error, "Withdrawn bids do not count")
	assert.NoError(t, db.Exec(insert, 1, "auth0|t2", "pending").Error)
}

func TestRun_UnknownDialect(t *testing.T) {
	db := setupMigrationTestDB(t)
	sqlDB, _ := db.DB()

	assert.Error(t, Run(sqlDB, "oracle"))
}
