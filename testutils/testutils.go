package testutils

import (
	"os"
	"testing"

	"github.com/joho/godotenv"
)

// TestDatabaseConfig returns the Postgres URL and schema for integration tests,
// skipping the test when no database is configured
func TestDatabaseConfig(t *testing.T) (string, string) {
	t.Helper()

	// Try to load environment variables from various possible locations
	_ = godotenv.Load("../.env.test") // From package directories
	_ = godotenv.Load(".env.test")    // From root directory

	databaseURL := os.Getenv("DB_URL")
	if databaseURL == "" {
		t.Skip("DB_URL is not set, skipping database integration test")
	}

	schema := os.Getenv("DB_SCHEMA")
	if schema == "" {
		schema = "public"
	}

	return databaseURL, schema
}
