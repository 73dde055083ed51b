// Package container provides dependency injection for the budget-analytics
// application. It centralizes the creation and wiring of all dependencies,
// making them explicit and testable.
package container

import (
	"context"
	"errors"
	"fmt"

	"fjacquet/budget-analytics/internal/analytic"
	"fjacquet/budget-analytics/internal/cache"
	"fjacquet/budget-analytics/internal/config"
	"fjacquet/budget-analytics/internal/history"
	"fjacquet/budget-analytics/internal/jobs"
	"fjacquet/budget-analytics/internal/logging"
	"fjacquet/budget-analytics/internal/pgstore"
	"fjacquet/budget-analytics/internal/report"
	"fjacquet/budget-analytics/internal/store"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies and provides methods to access them.
//
// Container is immutable after creation - all fields are private and can only
// be accessed through getter methods.
type Container struct {
	logger     logging.Logger
	config     *config.Config
	repository store.RuleRepository
	source     store.RuleSource
	resolver   *analytic.Resolver

	// Optional backends, nil when not configured
	pool      *pgxpool.Pool
	lines     *pgstore.LineRepository
	redis     *redis.Client
	ruleCache *cache.CachedSource
	history   *history.Store
}

// NewContainer creates and wires all application dependencies.
func NewContainer(cfg *config.Config) (*Container, error) {
	return NewContainerWithContext(context.Background(), cfg)
}

// NewContainerWithContext is NewContainer with a context bounding the
// connection checks of the network backends.
func NewContainerWithContext(ctx context.Context, cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	// Create logger first as it's needed by other components
	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)
	c := &Container{logger: logger, config: cfg}

	if err := c.initRules(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}

	if cfg.Redis.Enabled {
		client, err := cache.NewRedisClient(ctx, cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			_ = c.Close()
			return nil, err
		}
		c.redis = client
		c.ruleCache = cache.NewCachedSource(client, c.repository, cfg.Redis.Key, cfg.RedisTTL(), logger)
		c.source = c.ruleCache
	}

	if cfg.History.Enabled {
		historyStore, err := history.Open(cfg.History.Path)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("failed to open history: %w", err)
		}
		c.history = historyStore
	}

	c.resolver = analytic.NewResolver(logger)

	logger.Info("Container initialized successfully",
		logging.Field{Key: logging.FieldBackend, Value: cfg.Rules.Backend},
		logging.Field{Key: "redis_enabled", Value: cfg.Redis.Enabled},
		logging.Field{Key: "history_enabled", Value: cfg.History.Enabled})

	return c, nil
}

func (c *Container) initRules(ctx context.Context) error {
	cfg := c.config

	// The line repository needs Postgres even when rules live in YAML.
	if cfg.Postgres.DSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.Postgres.DSN, cfg.Postgres.MaxConns)
		if err != nil {
			return err
		}
		c.pool = pool
		if err := pgstore.Migrate(ctx, pool); err != nil {
			return err
		}
		c.lines = pgstore.NewLineRepository(pool)
	}

	switch cfg.Rules.Backend {
	case config.BackendPostgres:
		if c.pool == nil {
			return fmt.Errorf("postgres rules backend requires postgres.dsn")
		}
		c.repository = pgstore.NewRuleRepository(c.pool)
	case config.BackendYAML, "":
		c.repository = store.NewRuleStore(cfg.Rules.File, c.logger)
	default:
		return fmt.Errorf("unknown rules backend: %s", cfg.Rules.Backend)
	}
	c.source = c.repository
	return nil
}

// GetLogger returns the container's logger instance.
func (c *Container) GetLogger() logging.Logger {
	return c.logger
}

// GetConfig returns the container's configuration instance.
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetRuleRepository returns the writable rule backend. Writes through it
// bypass the Redis snapshot; call InvalidateRules afterwards.
func (c *Container) GetRuleRepository() store.RuleRepository {
	return c.repository
}

// GetRuleSource returns the source resolution should read from, cached
// when Redis is enabled.
func (c *Container) GetRuleSource() store.RuleSource {
	return c.source
}

// GetResolver returns the shared resolver.
func (c *Container) GetResolver() *analytic.Resolver {
	return c.resolver
}

// GetHistory returns the run history, or nil when disabled.
func (c *Container) GetHistory() *history.Store {
	return c.history
}

// GetLineRepository returns the Postgres line repository, or nil when no
// DSN is configured.
func (c *Container) GetLineRepository() *pgstore.LineRepository {
	return c.lines
}

// GetReportGenerator returns a report generator using the configured CSV delimiter.
func (c *Container) GetReportGenerator() *report.ReportGenerator {
	generator := report.NewReportGenerator(c.logger)
	if c.config.CSV.Delimiter != "" {
		generator.WithDelimiter(rune(c.config.CSV.Delimiter[0]))
	}
	return generator
}

// NewReclassificationScheduler wires the reclassification job on the
// configured schedule. It requires Postgres.
func (c *Container) NewReclassificationScheduler() (*jobs.Scheduler, error) {
	if c.lines == nil {
		return nil, fmt.Errorf("the reclassification scheduler requires postgres.dsn")
	}
	processor := jobs.NewProcessor(c.source, c.lines, c.config.Scheduler.BatchSize, c.logger)
	return jobs.NewScheduler(jobs.SchedulerConfig{
		Schedule: c.config.Scheduler.Schedule,
		TimeZone: c.config.Scheduler.TimeZone,
	}, processor, c.logger)
}

// InvalidateRules drops the cached rule snapshot, if any.
func (c *Container) InvalidateRules(ctx context.Context) error {
	if c.ruleCache == nil {
		return nil
	}
	return c.ruleCache.Invalidate(ctx)
}

// Close releases the database pools and clients.
func (c *Container) Close() error {
	var errs []error
	if c.history != nil {
		errs = append(errs, c.history.Close())
	}
	if c.redis != nil {
		errs = append(errs, c.redis.Close())
	}
	if c.pool != nil {
		c.pool.Close()
	}
	c.logger.Debug("Container closed")
	return errors.Join(errs...)
}
