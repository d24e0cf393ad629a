package testutil

import (
	"os"
	"testing"

	"github.com/Pedroffda/alinhavo-api/config"
)

// RequireTestEnvironment fails the test unless GO_ENV=test, so suites that
// honour DATABASE_URL never touch a development or production database.
func RequireTestEnvironment(t *testing.T) {
	t.Helper()

	if env := os.Getenv("GO_ENV"); env != "test" {
		t.Fatalf("SAFETY CHECK FAILED: tests must run with GO_ENV=test. Current GO_ENV=%q.", env)
	}
}

// MustSetTestEnvironment sets GO_ENV=test for the duration of the test
func MustSetTestEnvironment(t *testing.T) {
	t.Helper()

	t.Setenv("GO_ENV", "test")
	RequireTestEnvironment(t)
}

// UseConfig installs cfg as the process configuration until the test ends
func UseConfig(t *testing.T, cfg *config.Config) *config.Config {
	t.Helper()

	previous := config.GetConfig()
	if cfg.GoEnv == "" {
		cfg.GoEnv = "test"
	}
	config.SetConfig(cfg)
	t.Cleanup(func() { config.SetConfig(previous) })
	return cfg
}
