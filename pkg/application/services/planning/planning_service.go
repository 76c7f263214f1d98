package planning

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/vsinha/blendmrp/pkg/application/dto"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
	"github.com/vsinha/blendmrp/pkg/domain/repositories"
	"github.com/vsinha/blendmrp/pkg/domain/services"
	"github.com/vsinha/blendmrp/pkg/infrastructure/events"
	"github.com/vsinha/blendmrp/pkg/logger"
)

// Config holds planning run parameters
type Config struct {
	// DefaultBatchSize applies to items without a positive batch size
	DefaultBatchSize decimal.Decimal
	// MaxBOMDepth bounds explosion depth (0 = per-path cycle check only)
	MaxBOMDepth int
}

// Recorder receives planning run measurements
type Recorder interface {
	ObservePlanning(duration time.Duration, lines, urgent int, err error)
}

// Option customizes a PlanningService
type Option func(*PlanningService)

// WithLogger replaces the global logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *PlanningService) { s.logger = l }
}

// WithClock sets the source of "today" for urgency and days-until-order
func WithClock(now func() time.Time) Option {
	return func(s *PlanningService) { s.now = now }
}

// WithEvents publishes planning.completed after each successful run
func WithEvents(store events.EventStore) Option {
	return func(s *PlanningService) { s.events = store }
}

// WithMetrics records every run
func WithMetrics(r Recorder) Option {
	return func(s *PlanningService) { s.metrics = r }
}

// PlanningService runs explosion and netting as one planning pass
type PlanningService struct {
	repo      repositories.PlanningRepository
	quantizer *services.BatchQuantizer
	config    Config
	logger    zerolog.Logger
	now       func() time.Time
	events    events.EventStore
	metrics   Recorder
}

// NewPlanningService creates a planning service over the given repository
func NewPlanningService(repo repositories.PlanningRepository, config Config, opts ...Option) *PlanningService {
	config.DefaultBatchSize = entities.EffectiveBatchSize(config.DefaultBatchSize, entities.DefaultBatchSize)

	s := &PlanningService{
		repo:      repo,
		quantizer: services.NewBatchQuantizer(config.DefaultBatchSize),
		config:    config,
		logger:    logger.Log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunPlanning explodes open production demand through the BOM and dilution
// graphs and nets the result against inventory and open purchase orders.
// Missing item data never fails a run: lead time defaults to 0 and batch size
// to the configured default.
func (s *PlanningService) RunPlanning(ctx context.Context) (*dto.PlanningResult, error) {
	started := time.Now()
	today := s.now()
	runID := uuid.NewString()
	log := s.logger.With().Str("run_id", runID).Logger()
	log.Debug().Msg("planning run started")

	var result *dto.PlanningResult
	err := s.read(ctx, func(repo repositories.PlanningRepository) error {
		var err error
		result, err = s.plan(ctx, repo, runID, today)
		return err
	})
	elapsed := time.Since(started)

	if err != nil {
		log.Error().Err(err).Msg("planning run failed")
		s.observe(elapsed, nil, err)
		return nil, err
	}

	urgent := len(result.UrgentLines())
	log.Info().
		Int("demand_lines", len(result.Demand)).
		Int("items", len(result.Plan)).
		Int("urgent", urgent).
		Dur("duration", elapsed).
		Msg("planning run completed")
	s.observe(elapsed, result, nil)
	s.publish(log, result, elapsed)

	return result, nil
}

func (s *PlanningService) read(ctx context.Context, fn func(repositories.PlanningRepository) error) error {
	if snapshots, ok := s.repo.(repositories.SnapshotReader); ok {
		return snapshots.WithSnapshot(ctx, fn)
	}
	return fn(s.repo)
}

func (s *PlanningService) plan(ctx context.Context, repo repositories.PlanningRepository, runID string, now time.Time) (*dto.PlanningResult, error) {
	orders, err := repo.ListOpenProductionOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list open production orders: %w", err)
	}
	edges, err := repo.ListBOMEdges(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list bom edges: %w", err)
	}
	bomMap, dilutionMap := LoadGraph(edges)

	attributes := newAttributeCache(repo, s.config.DefaultBatchSize)

	demand := make([]entities.DemandLine, 0, len(orders))
	for _, order := range orders {
		attrs, err := attributes.get(ctx, order.Code)
		if err != nil {
			return nil, err
		}
		q := s.quantizer.Quantize(order.Quantity, attrs.BatchSize)
		demand = append(demand, entities.DemandLine{
			OrderID:      order.ID,
			Code:         order.Code,
			RequestedQty: order.Quantity,
			DueDate:      order.DueDate,
			BatchSize:    q.BatchSize,
			Batches:      q.Batches,
			EffectiveQty: q.EffectiveQty,
		})
	}

	explosion, err := NewExplosionEngine(bomMap, dilutionMap, s.config.MaxBOMDepth).Explode(ctx, demand)
	if err != nil {
		return nil, err
	}

	for _, code := range explosion.Order {
		if _, err := attributes.get(ctx, code); err != nil {
			return nil, err
		}
	}
	onHand, err := repo.SumInventoryByItem(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum inventory: %w", err)
	}
	onPO, err := repo.SumOpenPOByItem(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum open purchase orders: %w", err)
	}

	plan := NewNettingCalculator(now).Net(explosion, NettingInput{
		OnHand:     onHand,
		OnOpenPO:   onPO,
		Attributes: attributes.values,
	})

	return &dto.PlanningResult{
		RunID:        runID,
		GeneratedAt:  now,
		Today:        entities.Date(now),
		Demand:       demand,
		Requirements: explosion.Requirements,
		Plan:         plan,
		BOMMap:       bomMap,
		DilutionMap:  dilutionMap,
	}, nil
}

func (s *PlanningService) observe(elapsed time.Duration, result *dto.PlanningResult, err error) {
	if s.metrics == nil {
		return
	}
	if err != nil {
		s.metrics.ObservePlanning(elapsed, 0, 0, err)
		return
	}
	s.metrics.ObservePlanning(elapsed, len(result.Plan), len(result.UrgentLines()), nil)
}

func (s *PlanningService) publish(log zerolog.Logger, result *dto.PlanningResult, elapsed time.Duration) {
	if s.events == nil {
		return
	}
	event := events.NewEvent(events.PlanningCompletedEvent, events.PlanningStream, events.PlanningCompleted{
		RunID:         result.RunID,
		DemandLines:   len(result.Demand),
		PlanLines:     len(result.Plan),
		UrgentLines:   len(result.UrgentLines()),
		ShortageLines: len(result.ShortageLines()),
		Duration:      elapsed,
	})
	if err := s.events.AppendEvent(events.PlanningStream, event); err != nil {
		log.Warn().Err(err).Msg("failed to publish planning event")
	}
}

// attributeCache resolves planning attributes once per code per run
type attributeCache struct {
	repo             repositories.PlanningRepository
	defaultBatchSize decimal.Decimal
	values           map[entities.ItemCode]entities.PlanningAttributes
}

func newAttributeCache(repo repositories.PlanningRepository, defaultBatchSize decimal.Decimal) *attributeCache {
	return &attributeCache{
		repo:             repo,
		defaultBatchSize: defaultBatchSize,
		values:           make(map[entities.ItemCode]entities.PlanningAttributes),
	}
}

func (c *attributeCache) get(ctx context.Context, code entities.ItemCode) (entities.PlanningAttributes, error) {
	if attrs, ok := c.values[code]; ok {
		return attrs, nil
	}

	attrs := entities.PlanningAttributes{BatchSize: c.defaultBatchSize}
	found, err := c.repo.GetPlanningAttributes(ctx, code)
	switch {
	case errors.Is(err, entities.ErrNotFound):
	case err != nil:
		return attrs, fmt.Errorf("failed to get planning attributes for %s: %w", code, err)
	default:
		attrs.LeadTimeDays = max(found.LeadTimeDays, 0)
		attrs.BatchSize = entities.EffectiveBatchSize(found.BatchSize, c.defaultBatchSize)
	}

	c.values[code] = attrs
	return attrs, nil
}
