package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	ballotengine "ballot/contexts/governance/ballot-engine"
	postgresadapter "ballot/contexts/governance/ballot-engine/adapters/postgres"
	workerapp "ballot/contexts/governance/ballot-engine/application/workers"
	"ballot/contexts/governance/ballot-engine/ports"
	"ballot/internal/platform/config"
	"ballot/internal/platform/db"
	"ballot/internal/platform/httpserver"
	"ballot/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	// embedded runs the outbox relay in-process when the ballot store is in memory.
	embedded *eventLoop
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres *db.Postgres
	events   *eventLoop
	logger   *slog.Logger
}

type eventLoop struct {
	outboxRelay  workerapp.OutboxRelay
	voterEvents  workerapp.VoterRegisteredListener
	pollInterval time.Duration
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")

	switch cfg.BallotStore {
	case config.StorePostgres:
		pg, repo, err := connectRepository(cfg, logger)
		if err != nil {
			return nil, err
		}
		module := ballotengine.NewModule(ballotengine.Dependencies{
			Ballots: repo,
			Clock:   postgresadapter.SystemClock{},
			IDGen:   postgresadapter.UUIDGenerator{},
			Logger:  logger,
		})
		return &APIApp{
			server:   httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort)),
			postgres: pg,
			logger:   logger,
		}, nil
	default:
		module := ballotengine.NewInMemoryModule(nil, logger)
		bus, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
		if err != nil {
			return nil, err
		}
		return &APIApp{
			server:   httpserver.New(module, logger, normalizeAddr(cfg.HTTPPort)),
			embedded: newEventLoop(cfg, module.Store, module.Store, module.Store, bus, logger),
			logger:   logger,
		}, nil
	}
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if cfg.BallotStore != config.StorePostgres {
		return nil, errors.New("worker requires POSTGRES_DSN; the in-memory store relays inside the api process")
	}

	pg, repo, err := connectRepository(cfg, logger)
	if err != nil {
		return nil, err
	}
	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	return &WorkerApp{
		postgres: pg,
		events:   newEventLoop(cfg, repo, repo, postgresadapter.SystemClock{}, kafka, logger),
		logger:   logger,
	}, nil
}

func connectRepository(cfg config.Config, logger *slog.Logger) (*db.Postgres, *postgresadapter.Repository, error) {
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, nil, errors.New("POSTGRES_DSN is required")
	}
	pg, err := db.Connect(cfg.PostgresDSN, db.Options{
		MaxOpenConns:    cfg.PostgresMaxOpenConns,
		MaxIdleConns:    cfg.PostgresMaxIdleConns,
		ConnMaxLifetime: cfg.PostgresConnMaxLifetime,
		Logger:          logger,
	})
	if err != nil {
		return nil, nil, err
	}
	repo := postgresadapter.NewRepository(pg.DB, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := repo.Migrate(ctx); err != nil {
		_ = pg.Close()
		return nil, nil, err
	}
	return pg, repo, nil
}

func newEventLoop(
	cfg config.Config,
	outbox ports.OutboxRepository,
	dedup ports.EventDedupStore,
	clock ports.Clock,
	bus *messaging.Kafka,
	logger *slog.Logger,
) *eventLoop {
	return &eventLoop{
		outboxRelay: workerapp.OutboxRelay{
			Outbox:    outbox,
			Publisher: bus,
			Clock:     clock,
			BatchSize: cfg.OutboxBatchSize,
			Logger:    logger,
		},
		voterEvents: workerapp.VoterRegisteredListener{
			Subscriber:    bus,
			Dedup:         dedup,
			Clock:         clock,
			ConsumerGroup: "ballot-engine-voter-registered-cg",
			DedupTTL:      7 * 24 * time.Hour,
			Disabled:      !cfg.EnableVoterRegisteredListener,
			Logger:        logger,
		},
		pollInterval: cfg.OutboxPollInterval,
	}
}

// run subscribes the listeners and then polls the outbox until ctx ends.
func (l *eventLoop) run(ctx context.Context) error {
	if err := l.voterEvents.Start(ctx); err != nil {
		return err
	}
	err := l.outboxRelay.Run(ctx, l.pollInterval)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Run serves HTTP until ctx is cancelled, then shuts the server down.
func (a *APIApp) Run(ctx context.Context) error {
	a.logger.Info("api app started",
		"event", "bootstrap_api_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"embedded_relay", a.embedded != nil,
	)

	if a.embedded != nil {
		go func() {
			if err := a.embedded.run(ctx); err != nil {
				a.logger.Error("embedded event loop stopped",
					"event", "bootstrap_embedded_events_failed",
					"module", "internal/app/bootstrap",
					"layer", "platform",
					"error", err.Error(),
				)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- a.server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	}
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.events.pollInterval.String(),
	)
	return w.events.run(ctx)
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
