package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"
	"github.com/sirupsen/logrus"

	"github.com/neomorfeo/gatherly/internal/adapter/directory"
	"github.com/neomorfeo/gatherly/internal/adapter/fsm"
	handler "github.com/neomorfeo/gatherly/internal/adapter/http"
	"github.com/neomorfeo/gatherly/internal/adapter/otel"
	"github.com/neomorfeo/gatherly/internal/adapter/postgres"
	"github.com/neomorfeo/gatherly/internal/adapter/river"
	"github.com/neomorfeo/gatherly/internal/adapter/sqlite"
	"github.com/neomorfeo/gatherly/internal/app"
	"github.com/neomorfeo/gatherly/internal/config"
	"github.com/neomorfeo/gatherly/internal/domain"
	"github.com/neomorfeo/gatherly/internal/seed"
)

const serviceName = "gatherly"

func main() {
	if err := run(); err != nil {
		logrus.WithError(err).Fatal("gatherly stopped")
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	log, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	useMigrationLogger(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Telemetry ---
	if cfg.OTelEnabled {
		otelCfg, err := otel.ConfigFromEnv()
		if err != nil {
			return err
		}
		providers, err := otel.Setup(ctx, otelCfg)
		if err != nil {
			return fmt.Errorf("otel: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := providers.Shutdown(shutdownCtx); err != nil {
				log.WithError(err).Warn("otel shutdown")
			}
		}()
	}

	// --- Adapters (out) ---
	st, err := openStores(cfg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer st.close()

	users, events, err := directories(ctx, cfg, st, log)
	if err != nil {
		return err
	}

	var publisher domain.ChangePublisher = river.Discard{}
	if cfg.Jobs.Enabled {
		client, err := river.Setup(ctx, st.driver, river.Options{
			MaxWorkers: cfg.Jobs.MaxWorkers,
			JobTimeout: cfg.Jobs.Timeout,
		}, log)
		if err != nil {
			return fmt.Errorf("river: %w", err)
		}
		if err := client.Start(ctx); err != nil {
			return fmt.Errorf("starting river: %w", err)
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Stop(stopCtx); err != nil {
				log.WithError(err).Warn("river stop")
			}
		}()
		publisher = river.NewPublisher(client)
	}

	requestRepo, commentRepo := st.requests, st.comments
	if cfg.OTelEnabled {
		requestRepo = otel.NewTracingRequestRepository(requestRepo)
		commentRepo = otel.NewTracingCommentRepository(commentRepo)
		users = otel.NewTracingUsers(users)
		events = otel.NewTracingEvents(events)
		if publisher, err = otel.NewTracingPublisher(publisher); err != nil {
			return fmt.Errorf("otel publisher: %w", err)
		}
	}

	// --- Application ---
	requests := app.NewRequestService(requestRepo, users, events, fsm.NewRequestValidator(), publisher, log)
	comments := app.NewCommentService(commentRepo, users, events, fsm.NewCommentValidator(), publisher, log)

	// --- Adapters (in) ---
	router := chi.NewMux()
	router.Use(middleware.RequestID)
	if cfg.OTelEnabled {
		router.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(router)))
	}
	router.Use(handler.RequestLogger(log))
	router.Use(middleware.Recoverer)

	api := humachi.New(router, huma.DefaultConfig(serviceName, "0.1.0"))
	handler.Register(api, requests, comments, log)

	// --- Server ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("port", cfg.Port).Info("gatherly listening")
		log.Infof("API docs: http://localhost:%s/docs", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("stopped")
	return nil
}

func newLogger(cfg config.Log) (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	log := logrus.New()
	log.SetLevel(level)
	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log, nil
}

// useMigrationLogger sends goose's progress lines through log. Goose keeps a
// single package-level logger shared by the SQLite and Postgres adapters.
func useMigrationLogger(log logrus.FieldLogger) {
	goose.SetLogger(log.WithField("component", "migrations"))
}

// stores groups the persistence adapters of the selected driver.
type stores struct {
	requests domain.RequestRepository
	comments domain.CommentRepository
	driver   river.Driver
	local    *sqlite.Directory // nil with postgres
	close    func() error
}

func openStores(cfg config.Config) (*stores, error) {
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		var (
			db  *postgres.DB
			err error
		)
		if cfg.OTelEnabled {
			db, err = openInstrumented(config.DriverPostgres, cfg.Database.URL, postgres.NewFromDB)
		} else {
			db, err = postgres.New(cfg.Database.URL)
		}
		if err != nil {
			return nil, err
		}
		return &stores{
			requests: postgres.NewRequestRepository(db),
			comments: postgres.NewCommentRepository(db),
			driver:   river.PostgresDriver(db.DB()),
			close:    db.Close,
		}, nil

	default:
		var (
			db  *sqlite.DB
			err error
		)
		if cfg.OTelEnabled {
			db, err = openInstrumented(config.DriverSQLite, cfg.Database.Path, sqlite.NewFromDB)
		} else {
			db, err = sqlite.New(cfg.Database.Path)
		}
		if err != nil {
			return nil, err
		}
		return &stores{
			requests: sqlite.NewRequestRepository(db),
			comments: sqlite.NewCommentRepository(db),
			driver:   river.SQLiteDriver(db.DB()),
			local:    sqlite.NewDirectory(db),
			close:    db.Close,
		}, nil
	}
}

func openInstrumented[T any](driver, dsn string, wrap func(*sql.DB) (T, error)) (T, error) {
	raw, err := otel.OpenDB(driver, dsn)
	if err != nil {
		var zero T
		return zero, err
	}
	db, err := wrap(raw)
	if err != nil {
		raw.Close()
	}
	return db, err
}

// directories picks the remote clients when service URLs are configured and
// the local SQLite tables otherwise.
func directories(
	ctx context.Context,
	cfg config.Config,
	st *stores,
	log logrus.FieldLogger,
) (domain.UserDirectory, domain.EventDirectory, error) {
	if !cfg.Services.Remote() {
		if cfg.SeedFile != "" {
			users, events, err := seed.LoadFile(ctx, st.local, cfg.SeedFile)
			if err != nil {
				return nil, nil, err
			}
			log.WithFields(logrus.Fields{"users": users, "events": events}).Info("directory seeded")
		}
		return st.local, st.local, nil
	}

	if cfg.SeedFile != "" {
		log.Warn("SEED_FILE ignored: directories are remote")
	}

	httpClient := &http.Client{}
	users := directory.NewUserClient(remoteConfig(cfg.Services, cfg.Services.UserURL), httpClient, log)
	events := directory.NewEventClient(remoteConfig(cfg.Services, cfg.Services.EventURL), httpClient, log)

	if cfg.Cache.RedisURL == "" {
		return users, events, nil
	}

	opts, err := redis.ParseURL(cfg.Cache.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	return directory.NewCachedUsers(users, rdb, cfg.Cache.TTL, log),
		directory.NewCachedEvents(events, rdb, cfg.Cache.TTL, log),
		nil
}

// remoteConfig overlays the configured retry policy on the client defaults.
// Zero durations keep the default.
func remoteConfig(s config.Services, baseURL string) directory.Config {
	cfg := directory.DefaultConfig(baseURL)
	if s.Timeout > 0 {
		cfg.Timeout = s.Timeout
	}
	if s.MaxAttempts > 0 {
		cfg.MaxAttempts = s.MaxAttempts
	}
	if s.InitialBackoff > 0 {
		cfg.InitialBackoff = s.InitialBackoff
	}
	if s.MaxBackoff > 0 {
		cfg.MaxBackoff = s.MaxBackoff
	}
	return cfg
}
