// Package store persists readings to a relational database and reads back the
// aggregate views. Postgres is the primary target; MySQL and SQLite share the
// same table shape through per-driver DDL.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/iot-temp-pipeline/internal/config"
	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"  // registers "postgres"
	_ "modernc.org/sqlite" // registers "sqlite"
)

// Table is the base table populated by the Loader.
const Table = "temperature_readings"

// Dialect captures what differs between the supported drivers.
type Dialect struct {
	// Name is the config.Store driver name and the embedded schema file stem.
	Name string
	// SQLDriver is the database/sql driver name.
	SQLDriver string
	// numbered is true for $1-style placeholders, false for ?.
	numbered bool
}

// DialectFor returns the dialect for a config driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case config.DriverPostgres:
		return Dialect{Name: driver, SQLDriver: "postgres", numbered: true}, nil
	case config.DriverMySQL:
		return Dialect{Name: driver, SQLDriver: "mysql"}, nil
	case config.DriverSQLite:
		return Dialect{Name: driver, SQLDriver: "sqlite"}, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported driver %q", driver)
	}
}

// Placeholders returns n comma-separated bind parameters.
func (d Dialect) Placeholders(n int) string {
	p := make([]string, n)
	for i := range p {
		if d.numbered {
			p[i] = "$" + strconv.Itoa(i+1)
		} else {
			p[i] = "?"
		}
	}
	return strings.Join(p, ", ")
}

// Open connects to the configured store and verifies the connection.
func Open(ctx context.Context, cfg config.Store) (*sql.DB, Dialect, error) {
	d, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, Dialect{}, err
	}

	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, Dialect{}, err
	}

	db, err := sql.Open(d.SQLDriver, dsn)
	if err != nil {
		return nil, Dialect{}, fmt.Errorf("db open: %w", err)
	}

	// A single connection keeps in-memory SQLite databases alive and avoids
	// "database is locked" between the schema and load transactions.
	if cfg.Driver == config.DriverSQLite {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, Dialect{}, fmt.Errorf("db ping: %w", err)
	}
	return db, d, nil
}

func buildDSN(cfg config.Store) (string, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		u := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(cfg.User, cfg.Password),
			Host:     cfg.Host + ":" + strconv.Itoa(cfg.Port),
			Path:     "/" + cfg.Name,
			RawQuery: url.Values{"sslmode": {cfg.SSLMode}}.Encode(),
		}
		return u.String(), nil

	case config.DriverMySQL:
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = cfg.Host + ":" + strconv.Itoa(cfg.Port)
		mc.DBName = cfg.Name
		mc.ParseTime = true
		mc.MultiStatements = true
		return mc.FormatDSN(), nil

	case config.DriverSQLite:
		path := cfg.SQLitePath
		if path != ":memory:" {
			if dir := filepath.Dir(path); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return "", fmt.Errorf("mkdir %s: %w", dir, err)
				}
			}
		}
		// _time_format=sqlite writes timestamps that SQLite's date functions understand.
		return path + "?_pragma=busy_timeout(5000)&_time_format=sqlite", nil

	default:
		return "", fmt.Errorf("unsupported driver %q", cfg.Driver)
	}
}
