package commands

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"
	"github.com/vsinha/blendmrp/pkg/application/services/planning"
	"github.com/vsinha/blendmrp/pkg/application/services/substitution"
	"github.com/vsinha/blendmrp/pkg/config"
	"github.com/vsinha/blendmrp/pkg/infrastructure/events"
	"github.com/vsinha/blendmrp/pkg/infrastructure/metrics"
	"github.com/vsinha/blendmrp/pkg/infrastructure/repositories/sqlstore"
	"github.com/vsinha/blendmrp/pkg/logger"
)

// Runtime is everything a command needs once the database is open
type Runtime struct {
	Config       *config.Config
	DB           *sqlstore.DB
	Store        *sqlstore.Store
	Events       *events.InMemoryEventStore
	Metrics      *metrics.Collector
	Planning     *planning.PlanningService
	Substitution *substitution.Service
}

// NewRuntime opens the configured database and wires the services over it
func NewRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	db, err := sqlstore.Open(ctx, cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Database.Driver, err)
	}

	store := sqlstore.NewStore(db)
	eventStore := events.NewInMemoryEventStore(cfg.Events.Retention)
	collector := metrics.NewCollector()

	if err := logEvents(eventStore); err != nil {
		db.Close()
		return nil, err
	}

	return &Runtime{
		Config:  cfg,
		DB:      db,
		Store:   store,
		Events:  eventStore,
		Metrics: collector,
		Planning: planning.NewPlanningService(store, planning.Config{
			DefaultBatchSize: cfg.Planning.DefaultBatchSize,
			MaxBOMDepth:      cfg.Planning.MaxBOMDepth,
		}, planning.WithEvents(eventStore), planning.WithMetrics(collector)),
		Substitution: substitution.NewService(store, substitution.Config{
			PlaceholderUOM: cfg.Planning.PlaceholderUOM,
		}, substitution.WithEvents(eventStore), substitution.WithMetrics(collector)),
	}, nil
}

// logEvents writes every domain event to the debug log
func logEvents(store events.EventStore) error {
	err := store.Subscribe([]string{
		events.PlanningCompletedEvent,
		events.ItemReplacedEvent,
		events.ReplacementUndoneEvent,
		events.BulkReplaceFinishedEvent,
	}, events.HandlerFunc(func(event events.Event) error {
		logger.Log.Debug().
			Str("event_type", event.Type()).
			Str("event_id", event.ID()).
			Interface("data", event.Data()).
			Msg("domain event")
		return nil
	}))
	if err != nil {
		return fmt.Errorf("failed to subscribe event logger: %w", err)
	}
	return nil
}

// Close releases the database
func (r *Runtime) Close() error {
	return r.DB.Close()
}

// settings applies the global flags on top of the loaded configuration
func settings(c *cli.Context) *config.Config {
	cfg := *config.Load()
	if c.IsSet("db-driver") {
		cfg.Database.Driver = c.String("db-driver")
	}
	if c.IsSet("db-dsn") {
		cfg.Database.DSN = c.String("db-dsn")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	return &cfg
}
