package substitution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vsinha/blendmrp/pkg/application/dto"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
	"github.com/vsinha/blendmrp/pkg/domain/repositories"
	"github.com/vsinha/blendmrp/pkg/infrastructure/events"
	"github.com/vsinha/blendmrp/pkg/logger"
)

// Replacement modes reported to the metrics recorder
const (
	ModeSingle = "single"
	ModeBulk   = "bulk"
)

// Config holds substitution parameters
type Config struct {
	// PlaceholderUOM is the unit of measure given to items created on demand
	PlaceholderUOM string
}

// Recorder receives substitution measurements
type Recorder interface {
	ObserveReplacement(mode string, err error)
	ObserveRowsRewritten(table string, n int64)
	ObserveUndo(err error)
}

// Option customizes a Service
type Option func(*Service)

// WithLogger replaces the global logger
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock sets the source of ledger timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithEvents publishes item.replaced and replacement.undone
func WithEvents(store events.EventStore) Option {
	return func(s *Service) { s.events = store }
}

// WithMetrics records replacements and undos
func WithMetrics(r Recorder) Option {
	return func(s *Service) { s.metrics = r }
}

// Service replaces one item code with another across every table that
// references it, keeping a ledger entry per replacement for exact undo
type Service struct {
	store   repositories.SubstitutionStore
	config  Config
	logger  zerolog.Logger
	now     func() time.Time
	events  events.EventStore
	metrics Recorder
}

// NewService creates a substitution service over the given store
func NewService(store repositories.SubstitutionStore, config Config, opts ...Option) *Service {
	if config.PlaceholderUOM == "" {
		config.PlaceholderUOM = entities.DefaultUnitOfMeasure
	}

	s := &Service{
		store:  store,
		config: config,
		logger: logger.Log,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// History returns ledger summaries newest first
func (s *Service) History(ctx context.Context) ([]entities.LedgerSummary, error) {
	entries, err := s.store.ListLedgerEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list replacement history: %w", err)
	}
	return entries, nil
}

// HistoryEntry returns one ledger entry with its snapshot
func (s *Service) HistoryEntry(ctx context.Context, id int64) (*entities.LedgerEntry, error) {
	return s.store.GetLedgerEntry(ctx, id)
}

func (s *Service) publish(eventType string, data interface{}) {
	if s.events == nil {
		return
	}
	event := events.NewEvent(eventType, events.SubstitutionStream, data)
	if err := s.events.AppendEvent(events.SubstitutionStream, event); err != nil {
		s.logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to publish substitution event")
	}
}

func (s *Service) observeReplacement(mode string, result *dto.ReplaceResult, err error) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveReplacement(mode, err)
	if err != nil {
		return
	}
	s.metrics.ObserveRowsRewritten("inventory", result.RowsUpdated.Inventory)
	s.metrics.ObserveRowsRewritten("boms", result.RowsUpdated.BOMEdges)
	s.metrics.ObserveRowsRewritten("purchase_orders", result.RowsUpdated.PurchaseOrders)
	s.metrics.ObserveRowsRewritten("production_orders", result.RowsUpdated.ProductionOrders)
}

// rolledBack logs a failed transaction at error level unless it failed on a missing subject
func (s *Service) rolledBack(log zerolog.Logger, err error, msg string) {
	if errors.Is(err, entities.ErrNotFound) {
		log.Warn().Err(err).Msg(msg)
		return
	}
	log.Error().Err(err).Msg(msg)
}
