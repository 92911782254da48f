package river

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver"
	"github.com/riverqueue/river/riverdriver/riverdatabasesql"
	"github.com/riverqueue/river/riverdriver/riversqlite"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/sirupsen/logrus"
)

// QueueChanges carries change notifications.
const QueueChanges = "changes"

// Driver is a River driver whose transactions are *sql.Tx.
type Driver = riverdriver.Driver[*sql.Tx]

// SQLiteDriver returns a driver for a SQLite database.
func SQLiteDriver(db *sql.DB) Driver {
	return riversqlite.New(db)
}

// PostgresDriver returns a driver for a PostgreSQL database opened through database/sql.
func PostgresDriver(db *sql.DB) Driver {
	return riverdatabasesql.New(db)
}

// Options tunes the job client.
type Options struct {
	MaxWorkers int
	JobTimeout time.Duration // zero keeps River's default
}

// Migrate brings River's own tables up to date. They live next to, but
// separate from, the goose-managed application tables.
func Migrate(ctx context.Context, driver Driver) error {
	migrator, err := rivermigrate.New(driver, nil)
	if err != nil {
		return fmt.Errorf("creating river migrator: %w", err)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		return fmt.Errorf("running river migrations: %w", err)
	}
	return nil
}

// Setup migrates River and returns a client with the change worker
// registered on QueueChanges. Call Start to process jobs and Stop to drain.
func Setup(ctx context.Context, driver Driver, opts Options, log logrus.FieldLogger) (*Client, error) {
	if err := Migrate(ctx, driver); err != nil {
		return nil, err
	}

	workers := river.NewWorkers()
	if err := river.AddWorkerSafely(workers, NewChangeWorker(log)); err != nil {
		return nil, fmt.Errorf("registering change worker: %w", err)
	}

	client, err := river.NewClient(driver, &river.Config{
		Queues: map[string]river.QueueConfig{
			QueueChanges: {MaxWorkers: max(opts.MaxWorkers, 1)},
		},
		Workers:    workers,
		JobTimeout: opts.JobTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("creating river client: %w", err)
	}

	return client, nil
}
