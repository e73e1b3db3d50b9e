package store

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/iot-temp-pipeline/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// openMemory returns an in-memory SQLite store with the default schema applied.
func openMemory(t *testing.T) (*sql.DB, Dialect) {
	t.Helper()
	ctx := context.Background()
	db, d, err := Open(ctx, config.Store{Driver: config.DriverSQLite, SQLitePath: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ddl, err := DefaultSchema(d)
	require.NoError(t, err)
	require.NoError(t, ApplySchema(ctx, db, ddl))
	return db, d
}

func countRows(t *testing.T, db *sql.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+Table).Scan(&n))
	return n
}

func TestDialectFor(t *testing.T) {
	tests := []struct {
		driver    string
		sqlDriver string
		ph        string
	}{
		{config.DriverPostgres, "postgres", "$1, $2, $3"},
		{config.DriverMySQL, "mysql", "?, ?, ?"},
		{config.DriverSQLite, "sqlite", "?, ?, ?"},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			d, err := DialectFor(tt.driver)
			require.NoError(t, err)
			assert.Equal(t, tt.sqlDriver, d.SQLDriver)
			assert.Equal(t, tt.ph, d.Placeholders(3))
		})
	}

	_, err := DialectFor("oracle")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "oracle")
}

func TestBuildDSN_Postgres(t *testing.T) {
	dsn, err := buildDSN(config.Store{
		Driver:   config.DriverPostgres,
		User:     "iot_user",
		Password: "p@ss word",
		Host:     "db",
		Port:     5433,
		Name:     "iot_db",
		SSLMode:  "require",
	})
	require.NoError(t, err)
	assert.Equal(t, "postgres://iot_user:p%40ss%20word@db:5433/iot_db?sslmode=require", dsn)
}

func TestBuildDSN_MySQL(t *testing.T) {
	dsn, err := buildDSN(config.Store{
		Driver:   config.DriverMySQL,
		User:     "iot_user",
		Password: "secret",
		Host:     "db",
		Port:     3306,
		Name:     "iot_db",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dsn, "iot_user:secret@tcp(db:3306)/iot_db?"), dsn)
	assert.Contains(t, dsn, "parseTime=true")
	assert.Contains(t, dsn, "multiStatements=true")
}

func TestBuildDSN_SQLiteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "iot.db")

	dsn, err := buildDSN(config.Store{Driver: config.DriverSQLite, SQLitePath: path})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(dsn, path+"?"))

	info, err := os.Stat(filepath.Dir(path))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, _, err := Open(context.Background(), config.Store{Driver: "oracle"})
	require.Error(t, err)
}

func TestDefaultSchema_AllDialects(t *testing.T) {
	for _, driver := range []string{config.DriverPostgres, config.DriverMySQL, config.DriverSQLite} {
		d, err := DialectFor(driver)
		require.NoError(t, err)

		ddl, err := DefaultSchema(d)
		require.NoError(t, err, driver)
		assert.Contains(t, ddl, "temperature_readings", driver)
		assert.Contains(t, ddl, "v_daily_stats", driver)
		assert.Contains(t, ddl, "v_latest_per_room", driver)
	}
}

func TestLoadSchema(t *testing.T) {
	d, err := DialectFor(config.DriverSQLite)
	require.NoError(t, err)

	t.Run("empty path uses embedded", func(t *testing.T) {
		ddl, err := LoadSchema(d, "")
		require.NoError(t, err)
		embedded, err := DefaultSchema(d)
		require.NoError(t, err)
		assert.Equal(t, embedded, ddl)
	})

	t.Run("external file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "schema.sql")
		require.NoError(t, os.WriteFile(path, []byte("CREATE TABLE t (x INTEGER);"), 0o600))

		ddl, err := LoadSchema(d, path)
		require.NoError(t, err)
		assert.Equal(t, "CREATE TABLE t (x INTEGER);", ddl)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSchema(d, filepath.Join(t.TempDir(), "nope.sql"))
		require.Error(t, err)
	})
}

func TestApplySchema_Idempotent(t *testing.T) {
	db, d := openMemory(t)

	ddl, err := DefaultSchema(d)
	require.NoError(t, err)
	require.NoError(t, ApplySchema(context.Background(), db, ddl))

	assert.Equal(t, 0, countRows(t, db))
}

func TestApplySchema_FailureRollsBack(t *testing.T) {
	db, _ := openMemory(t)

	err := ApplySchema(context.Background(), db, "CREATE TABLE partial (x INTEGER); CREATE TABLE broken (")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apply schema")

	var n int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'partial'").Scan(&n))
	assert.Equal(t, 0, n)
}
