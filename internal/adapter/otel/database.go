package otel

import (
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// OpenDB opens a database with OpenTelemetry instrumentation. driverName is
// "sqlite" or "postgres". The returned *sql.DB has automatic tracing for all
// SQL operations and metrics for the connection pool.
func OpenDB(driverName, dataSourceName string) (*sql.DB, error) {
	var system attribute.KeyValue
	switch driverName {
	case "sqlite":
		system = semconv.DBSystemSqlite
	case "postgres":
		system = semconv.DBSystemPostgreSQL
	default:
		return nil, fmt.Errorf("unsupported database driver: %q", driverName)
	}

	db, err := otelsql.Open(driverName, dataSourceName, otelsql.WithAttributes(system))
	if err != nil {
		return nil, fmt.Errorf("opening instrumented database: %w", err)
	}
	if err := configure(db, driverName, system); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func configure(db *sql.DB, driverName string, system attribute.KeyValue) error {
	if driverName == "sqlite" {
		// One connection shared with the embedded job queue avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)

		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			return fmt.Errorf("setting WAL mode: %w", err)
		}
		if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
			return fmt.Errorf("enabling foreign keys: %w", err)
		}
	}

	if _, err := otelsql.RegisterDBStatsMetrics(db, otelsql.WithAttributes(system)); err != nil {
		return fmt.Errorf("registering db stats metrics: %w", err)
	}
	return nil
}
