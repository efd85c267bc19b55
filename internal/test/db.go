// Package test provides shared helpers for integration tests.
package test

import (
	"context"
	"database/sql"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/peterldowns/pgtestdb"
	"github.com/peterldowns/pgtestdb/migrators/golangmigrator"
)

// EnvDatabaseURL names the variable that enables Postgres integration tests.
const EnvDatabaseURL = "INTEGRATION_DATABASE_URL"

// TestDB holds database connection for tests
type TestDB struct {
	DB *sql.DB
}

// findMigrations walks up from the working directory to the embedded
// migrations folder.
func findMigrations(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	for current := wd; ; {
		candidate := filepath.Join(current, "internal", "database", "migrations")
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
		parent := filepath.Dir(current)
		if parent == current {
			t.Fatalf("could not find migrations directory")
		}
		current = parent
	}
}

// NewTestDB creates a fresh database with migrations applied. The test is
// skipped unless INTEGRATION_DATABASE_URL is set.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	databaseURL := os.Getenv(EnvDatabaseURL)
	if databaseURL == "" {
		t.Skipf("%s not set", EnvDatabaseURL)
	}

	parsedURL, err := url.Parse(databaseURL)
	if err != nil {
		t.Fatalf("failed to parse %s: %v", EnvDatabaseURL, err)
	}

	port := parsedURL.Port()
	if port == "" {
		port = "5432"
	}
	password, _ := parsedURL.User.Password()
	database := strings.TrimPrefix(parsedURL.Path, "/")
	if database == "" {
		database = "postgres"
	}

	// Each test gets a clone of a migrated template database.
	db := pgtestdb.New(t, pgtestdb.Config{
		DriverName: "pgx",
		Host:       parsedURL.Hostname(),
		Port:       port,
		User:       parsedURL.User.Username(),
		Password:   password,
		Database:   database,
		Options:    parsedURL.RawQuery,
	}, golangmigrator.New(findMigrations(t)))

	return &TestDB{DB: db}
}

// Exec executes a raw SQL statement for test setup.
func (tdb *TestDB) Exec(ctx context.Context, query string, args ...any) error {
	_, err := tdb.DB.ExecContext(ctx, query, args...)
	return err
}
