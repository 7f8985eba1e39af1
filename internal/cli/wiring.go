package cli

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"time"

	"seminar-results-service/internal/app"
	"seminar-results-service/internal/config"
	"seminar-results-service/internal/infra/memory"
	pgstore "seminar-results-service/internal/infra/postgres"
	redisstore "seminar-results-service/internal/infra/redis"
	"seminar-results-service/internal/metrics"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
)

type backend struct {
	service  *app.ResultsService
	registry *prometheus.Registry
	closers  []func()
}

func (b *backend) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

// buildBackend picks storage from config: Postgres when a URL is set, Redis
// for caching and snapshots when an address is set, memory otherwise.
func buildBackend(ctx context.Context, cfg config.Config, logger *slog.Logger) (*backend, error) {
	b := &backend{registry: prometheus.NewRegistry()}
	b.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		b.closers = append(b.closers, func() { _ = redisClient.Close() })
	}
	directoryTTL := config.TTLDuration(cfg.Directory.TTL, config.TTLDuration(cfg.Redis.TTL, 10*time.Minute))

	var (
		loader       memory.DirectoryLoader
		participants app.ParticipantDirectory
		solutions    app.SolutionStore
		snapshots    app.SnapshotStore
	)
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		pg := pgstore.NewLoader(pool)
		loader, participants, solutions = pg, pg, pg

		db := bun.NewDB(sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.Postgres.URL))), pgdialect.New())
		b.closers = append(b.closers, func() { _ = db.Close() })
		snapshots = pgstore.NewSnapshotStore(db)
	} else {
		logger.Warn("postgres url not configured, serving an empty in-memory catalog")
		catalog := memory.NewCatalog()
		loader, participants, solutions = catalog, catalog, catalog
	}

	var directory app.Directory
	if redisClient != nil {
		directory = redisstore.NewDirectory(redisClient, loader, directoryTTL)
		snapshots = redisstore.NewSnapshotStore(redisClient, snapshots)
	} else {
		directory = memory.NewDirectory(loader, directoryTTL)
		if snapshots == nil {
			snapshots = memory.NewSnapshotStore()
		}
	}

	b.service = app.NewResultsService(directory, participants, solutions, snapshots,
		app.WithStrategies(cfg.Registry()),
		app.WithLogger(logger),
		app.WithRecorder(metrics.NewRecorder(b.registry)),
	)
	return b, nil
}

func loadConfig(path string) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, nil, err
	}
	logger := cfg.Logger(os.Stderr)
	slog.SetDefault(logger)
	return cfg, logger, nil
}
