package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/vsinha/blendmrp/pkg/domain/entities"
	"github.com/vsinha/blendmrp/pkg/domain/repositories"
)

// Store is a transactional in-memory implementation of every repository
// interface. Transactions run against a clone of the tables which replaces the
// live tables only when the transaction function succeeds.
type Store struct {
	mu     sync.RWMutex
	state  *state
	faults map[string]error
}

// NewStore creates an empty in-memory store
func NewStore() *Store {
	return &Store{
		state:  newState(),
		faults: make(map[string]error),
	}
}

// Verify interface compliance
var _ repositories.PlanningRepository = (*Store)(nil)
var _ repositories.SnapshotReader = (*Store)(nil)
var _ repositories.CatalogRepository = (*Store)(nil)
var _ repositories.SubstitutionStore = (*Store)(nil)
var _ repositories.SubstitutionTx = (*transaction)(nil)
var _ repositories.PlanningRepository = (*state)(nil)

// InjectFault makes the named transaction operation (e.g. "ReassignPurchaseOrders")
// fail with err. A nil err clears the fault.
func (s *Store) InjectFault(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

// WithTx runs fn against a private copy of the tables and commits it only if fn succeeds
func (s *Store) WithTx(ctx context.Context, fn func(tx repositories.SubstitutionTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	tx := &transaction{state: s.state.clone(), faults: s.faults}
	if err := fn(tx); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

// WithSnapshot serves fn from one consistent view of the tables
func (s *Store) WithSnapshot(ctx context.Context, fn func(repo repositories.PlanningRepository) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(s.state)
}

// Tables is a full copy of the store contents, ordered by row identity
type Tables struct {
	Items            []entities.Item
	Inventory        []entities.InventoryLot
	BOMEdges         []entities.BOMEdge
	PurchaseOrders   []entities.PurchaseOrder
	ProductionOrders []entities.ProductionOrder
	LedgerEntries    int
}

// Dump copies every table, for before/after comparisons in tests and tooling
func (s *Store) Dump() Tables {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := s.state
	return Tables{
		Items:            valuesByKey(st.items),
		Inventory:        valuesByKey(st.lots),
		BOMEdges:         valuesByKey(st.edges),
		PurchaseOrders:   valuesByKey(st.purchases),
		ProductionOrders: valuesByKey(st.productions),
		LedgerEntries:    len(st.ledger),
	}
}

// state holds the tables. It is never shared between a live store and an open transaction.
type state struct {
	nextItemID       entities.ItemID
	nextLotID        int64
	nextEdgeID       int64
	nextPurchaseID   int64
	nextProductionID int64
	nextLedgerID     int64

	items       map[entities.ItemID]entities.Item
	lots        map[int64]entities.InventoryLot
	edges       map[int64]entities.BOMEdge
	purchases   map[int64]entities.PurchaseOrder
	productions map[int64]entities.ProductionOrder
	ledger      []ledgerRow
}

func newState() *state {
	return &state{
		items:       make(map[entities.ItemID]entities.Item),
		lots:        make(map[int64]entities.InventoryLot),
		edges:       make(map[int64]entities.BOMEdge),
		purchases:   make(map[int64]entities.PurchaseOrder),
		productions: make(map[int64]entities.ProductionOrder),
	}
}

// clone copies the tables. Rows are values and their pointer fields are never
// written through, so a shallow copy per map is enough.
func (st *state) clone() *state {
	out := *st
	out.items = maps.Clone(st.items)
	out.lots = maps.Clone(st.lots)
	out.edges = maps.Clone(st.edges)
	out.purchases = maps.Clone(st.purchases)
	out.productions = maps.Clone(st.productions)
	out.ledger = slices.Clone(st.ledger)
	return &out
}

func valuesByKey[K ~int64, V any](m map[K]V) []V {
	out := make([]V, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		out = append(out, m[k])
	}
	return out
}
