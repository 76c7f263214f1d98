package substitution

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
	"github.com/vsinha/blendmrp/pkg/infrastructure/events"
	"github.com/vsinha/blendmrp/pkg/infrastructure/repositories/memory"
)

var now = time.Date(2026, 2, 20, 9, 30, 0, 0, time.UTC)

type recorder struct {
	replacements map[string]int
	failures     int
	rows         map[string]int64
	undos        int
}

func newRecorder() *recorder {
	return &recorder{replacements: map[string]int{}, rows: map[string]int64{}}
}

func (r *recorder) ObserveReplacement(mode string, err error) {
	r.replacements[mode]++
	if err != nil {
		r.failures++
	}
}

func (r *recorder) ObserveRowsRewritten(table string, n int64) { r.rows[table] += n }

func (r *recorder) ObserveUndo(error) { r.undos++ }

func newTestService(store *memory.Store, opts ...Option) *Service {
	opts = append([]Option{WithLogger(zerolog.Nop()), WithClock(func() time.Time { return now })}, opts...)
	return NewService(store, Config{PlaceholderUOM: "kg"}, opts...)
}

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func addItem(t *testing.T, store *memory.Store, code entities.ItemCode) {
	t.Helper()
	item, err := entities.NewItem(code, "", "kg", 3, d(25))
	require.NoError(t, err)
	_, err = store.CreateItem(context.Background(), item)
	require.NoError(t, err)
}

// seed builds FG_X <- OLD_1 (normal), FG_X <- WATER (dilution of OLD_1), plus
// stock and open orders for OLD_1
func seed(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()
	for _, code := range []entities.ItemCode{"FG_X", "OLD_1", "NEW_1", "WATER"} {
		addItem(t, store, code)
	}

	_, err := store.AddBOMEdge(ctx, entities.BOMEdgeInput{Parent: "FG_X", Child: "OLD_1", QtyPer: d(2)})
	require.NoError(t, err)
	_, err = store.AddBOMEdge(ctx, entities.BOMEdgeInput{
		Parent:       "FG_X",
		Child:        "WATER",
		IsDilution:   true,
		PerMainQty:   decimal.NewNullDecimal(d(4)),
		DilutionMain: "OLD_1",
	})
	require.NoError(t, err)
	_, err = store.AddInventoryLot(ctx, "OLD_1", "Main", d(30))
	require.NoError(t, err)
	_, err = store.AddInventoryLot(ctx, "OLD_1", "Overflow", d(5))
	require.NoError(t, err)
	eta := now.AddDate(0, 0, 7)
	_, err = store.AddPurchaseOrder(ctx, "OLD_1", d(50), &eta)
	require.NoError(t, err)
	_, err = store.AddProductionOrder(ctx, "OLD_1", d(10), nil)
	require.NoError(t, err)
}

// assertTablesEqual compares row tables by their serialized form, since restored
// rows come back through the ledger's JSON snapshot
func assertTablesEqual(t *testing.T, want, got memory.Tables) {
	t.Helper()
	want.Items, got.Items = nil, nil
	want.LedgerEntries, got.LedgerEntries = 0, 0

	wantJSON, err := json.Marshal(want)
	require.NoError(t, err)
	gotJSON, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(wantJSON), string(gotJSON))
}

func TestService_ReplaceRewritesEveryReference(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seed(t, store)
	rec := newRecorder()
	svc := newTestService(store, WithMetrics(rec))

	result, err := svc.Replace(ctx, "OLD_1", "NEW_1", false)
	require.NoError(t, err)

	assert.True(t, result.Replaced)
	assert.False(t, result.CreatedNew)
	assert.Equal(t, int64(1), result.HistoryID)
	assert.Equal(t, now, result.Timestamp)
	assert.Equal(t, int64(2), result.RowsUpdated.Inventory)
	assert.Equal(t, int64(2), result.RowsUpdated.BOMEdges)
	assert.Equal(t, int64(1), result.RowsUpdated.PurchaseOrders)
	assert.Equal(t, int64(1), result.RowsUpdated.ProductionOrders)

	edges, err := store.ListBOMEdgesForParent(ctx, "FG_X")
	require.NoError(t, err)
	require.Len(t, edges, 2)
	assert.Equal(t, entities.ItemCode("NEW_1"), edges[0].ChildCode)
	assert.Equal(t, entities.ItemCode("WATER"), edges[1].ChildCode)
	assert.Equal(t, entities.ItemCode("NEW_1"), edges[1].DilutionMainCode)

	inventory, err := store.ListInventory(ctx)
	require.NoError(t, err)
	for _, lot := range inventory {
		assert.Equal(t, entities.ItemCode("NEW_1"), lot.Code)
	}

	_, err = store.FindItemByCode(ctx, "OLD_1")
	assert.NoError(t, err, "old item stays in the catalog")

	assert.Equal(t, 1, rec.replacements[ModeSingle])
	assert.Equal(t, int64(2), rec.rows["boms"])
}

func TestService_UndoRestoresRowsExactly(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seed(t, store)
	svc := newTestService(store)
	before := store.Dump()

	replaced, err := svc.Replace(ctx, "OLD_1", "NEW_1", false)
	require.NoError(t, err)

	undone, err := svc.Undo(ctx, replaced.HistoryID)
	require.NoError(t, err)

	assert.True(t, undone.Undone)
	assert.False(t, undone.RecreatedItem)
	assert.Equal(t, 6, undone.RowsRestored)
	assertTablesEqual(t, before, store.Dump())

	history, err := svc.History(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 1, "undo keeps the ledger entry")
}

func TestService_UndoRecreatesDeletedItem(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seed(t, store)
	svc := newTestService(store)
	before := store.Dump()

	replaced, err := svc.Replace(ctx, "OLD_1", "NEW_1", false)
	require.NoError(t, err)
	require.NoError(t, store.DeleteItem(ctx, "OLD_1"))

	undone, err := svc.Undo(ctx, replaced.HistoryID)
	require.NoError(t, err)
	assert.True(t, undone.RecreatedItem)

	item, err := store.FindItemByCode(ctx, "OLD_1")
	require.NoError(t, err)
	assert.Equal(t, 3, item.LeadTimeDays)
	assert.Equal(t, "kg", item.UnitOfMeasure)

	inventory, err := store.ListInventory(ctx)
	require.NoError(t, err)
	require.Len(t, inventory, 2)
	for _, lot := range inventory {
		assert.Equal(t, entities.ItemCode("OLD_1"), lot.Code)
	}

	edges, err := store.ListBOMEdgesForParent(ctx, "FG_X")
	require.NoError(t, err)
	assert.Equal(t, entities.ItemCode("OLD_1"), edges[0].ChildCode)
	assert.Equal(t, entities.ItemCode("OLD_1"), edges[1].DilutionMainCode)
	assert.Len(t, store.Dump().BOMEdges, len(before.BOMEdges))
}

func TestService_UndoUnknownHistory(t *testing.T) {
	store := memory.NewStore()
	rec := newRecorder()
	svc := newTestService(store, WithMetrics(rec))

	_, err := svc.Undo(context.Background(), 42)

	assert.ErrorIs(t, err, entities.ErrNotFound)
	assert.Equal(t, 1, rec.undos)
}

func TestService_UndoFailsWhenOtherReferenceIsGone(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	addItem(t, store, "FG_X")
	addItem(t, store, "OLD_1")
	addItem(t, store, "NEW_1")
	_, err := store.AddBOMEdge(ctx, entities.BOMEdgeInput{Parent: "FG_X", Child: "OLD_1", QtyPer: d(1)})
	require.NoError(t, err)
	svc := newTestService(store)

	replaced, err := svc.Replace(ctx, "OLD_1", "NEW_1", false)
	require.NoError(t, err)

	// Retarget the line so FG_X can be dropped from the catalog
	edges, err := store.ListBOMEdges(ctx)
	require.NoError(t, err)
	newParent := entities.ItemCode("OLD_1")
	require.NoError(t, store.UpdateBOMEdge(ctx, edges[0].ID, entities.BOMEdgeUpdate{Parent: &newParent}))
	require.NoError(t, store.DeleteItem(ctx, "FG_X"))
	before := store.Dump()

	_, err = svc.Undo(ctx, replaced.HistoryID)

	assert.ErrorIs(t, err, entities.ErrInvalidReference)
	assertTablesEqual(t, before, store.Dump())
}

func TestService_UndoFailsWhenRestoredRowIsGone(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	addItem(t, store, "FG_X")
	addItem(t, store, "OLD_1")
	addItem(t, store, "NEW_1")
	_, err := store.AddBOMEdge(ctx, entities.BOMEdgeInput{Parent: "FG_X", Child: "OLD_1", QtyPer: d(1)})
	require.NoError(t, err)
	svc := newTestService(store)

	replaced, err := svc.Replace(ctx, "OLD_1", "NEW_1", false)
	require.NoError(t, err)

	edges, err := store.ListBOMEdges(ctx)
	require.NoError(t, err)
	require.NoError(t, store.DeleteBOMEdge(ctx, edges[0].ID))
	before := store.Dump()

	_, err = svc.Undo(ctx, replaced.HistoryID)

	assert.ErrorIs(t, err, entities.ErrInvalidReference)
	assert.NotErrorIs(t, err, entities.ErrNotFound, "the history entry itself exists")
	assertTablesEqual(t, before, store.Dump())
}

func TestService_ReplaceMissingOldItem(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seed(t, store)
	svc := newTestService(store)
	before := store.Dump()

	_, err := svc.Replace(ctx, "GHOST", "NEW_1", false)

	assert.ErrorIs(t, err, entities.ErrNotFound)
	assert.Equal(t, before, store.Dump())
}

func TestService_ReplaceMissingNewItem(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seed(t, store)
	svc := newTestService(store)

	_, err := svc.Replace(ctx, "OLD_1", "NEW_9", false)
	assert.ErrorIs(t, err, entities.ErrNotFound)

	result, err := svc.Replace(ctx, "OLD_1", "NEW_9", true)
	require.NoError(t, err)
	assert.True(t, result.CreatedNew)

	item, err := store.FindItemByCode(ctx, "NEW_9")
	require.NoError(t, err)
	assert.Equal(t, "NEW_9", item.Name)
	assert.Equal(t, "kg", item.UnitOfMeasure)
	assert.Equal(t, 0, item.LeadTimeDays)
}

func TestService_ReplaceRejectsInvalidArguments(t *testing.T) {
	store := memory.NewStore()
	seed(t, store)
	svc := newTestService(store)

	tests := []struct {
		name     string
		old, new entities.ItemCode
	}{
		{"empty old", "", "NEW_1"},
		{"empty new", "OLD_1", ""},
		{"same code", "OLD_1", "OLD_1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Replace(context.Background(), tt.old, tt.new, true)
			assert.ErrorIs(t, err, entities.ErrInvalidArgument)
		})
	}
}

func TestService_ReplaceRejectsSelfConsumption(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seed(t, store)
	svc := newTestService(store)
	before := store.Dump()

	// FG_X consumes OLD_1, so replacing OLD_1 with FG_X would make FG_X consume itself
	_, err := svc.Replace(ctx, "OLD_1", "FG_X", false)

	assert.ErrorIs(t, err, entities.ErrInvalidReference)
	assert.Equal(t, before, store.Dump())
}

func TestService_ReplaceIsAtomic(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seed(t, store)
	rec := newRecorder()
	svc := newTestService(store, WithMetrics(rec))
	before := store.Dump()

	boom := errors.New("connection reset")
	store.InjectFault("ReassignPurchaseOrders", boom)

	_, err := svc.Replace(ctx, "OLD_1", "NEW_1", false)

	assert.ErrorIs(t, err, entities.ErrAtomicityViolation)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, before, store.Dump(), "inventory and bom rewrites must roll back with the ledger entry")
	assert.Equal(t, 1, rec.failures)
	assert.Empty(t, rec.rows)
}

func TestService_ReplaceBulkWildcard(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	for _, code := range []entities.ItemCode{"OLD_1", "OLD_2", "KEEP_3", "NEW_1"} {
		addItem(t, store, code)
	}
	_, err := store.AddInventoryLot(ctx, "OLD_2", "Main", d(10))
	require.NoError(t, err)
	_, err = store.AddInventoryLot(ctx, "KEEP_3", "Main", d(10))
	require.NoError(t, err)
	eventStore := events.NewInMemoryEventStore(0)
	svc := newTestService(store, WithEvents(eventStore))

	result, err := svc.ReplaceBulk(ctx, "OLD_*", "NEW_*", true)
	require.NoError(t, err)

	require.Len(t, result.Items, 2)
	assert.Equal(t, 0, result.Failed())
	assert.Equal(t, entities.ItemCode("OLD_1"), result.Items[0].OldCode)
	assert.Equal(t, entities.ItemCode("NEW_1"), result.Items[0].NewCode)
	assert.Equal(t, entities.ItemCode("NEW_2"), result.Items[1].NewCode)
	assert.NotNil(t, result.Items[1].Timestamp)

	inventory, err := store.ListInventory(ctx)
	require.NoError(t, err)
	codes := make([]entities.ItemCode, 0, len(inventory))
	for _, lot := range inventory {
		codes = append(codes, lot.Code)
	}
	assert.ElementsMatch(t, []entities.ItemCode{"NEW_2", "KEEP_3"}, codes)

	published, err := eventStore.ReadAllEvents(0)
	require.NoError(t, err)
	require.Len(t, published, 3)
	assert.Equal(t, events.BulkReplaceFinishedEvent, published[2].Type())
}

func TestService_ReplaceBulkMatchesByPrefixOnly(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	for _, code := range []entities.ItemCode{"OLD_1_KG", "OLD_2_LB", "KEEP_3"} {
		addItem(t, store, code)
	}
	svc := newTestService(store)

	result, err := svc.ReplaceBulk(ctx, "OLD_*_KG", "NEW_*", true)
	require.NoError(t, err)

	require.Len(t, result.Items, 2)
	assert.Equal(t, 0, result.Failed())
	assert.Equal(t, entities.ItemCode("NEW_1_KG"), result.Items[0].NewCode)
	assert.Equal(t, entities.ItemCode("NEW_2_LB"), result.Items[1].NewCode)

	_, err = store.FindItemByCode(ctx, "NEW_2_LB")
	assert.NoError(t, err)
	_, err = store.FindItemByCode(ctx, "KEEP_3")
	assert.NoError(t, err)
}

func TestService_ReplaceBulkIsolatesFailures(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	for _, code := range []entities.ItemCode{"OLD_1", "OLD_2"} {
		addItem(t, store, code)
	}
	svc := newTestService(store)

	// NEW_2 does not exist and creation is disabled
	addItem(t, store, "NEW_1")
	result, err := svc.ReplaceBulk(ctx, "OLD_*", "NEW_*", false)
	require.NoError(t, err)

	require.Len(t, result.Items, 2)
	assert.True(t, result.Items[0].OK)
	assert.False(t, result.Items[1].OK)
	assert.Contains(t, result.Items[1].Error, "not found")
	assert.Equal(t, 1, result.Failed())

	history, err := svc.History(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestService_ReplaceBulkWithoutWildcard(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seed(t, store)
	svc := newTestService(store)

	result, err := svc.ReplaceBulk(ctx, "OLD_1", "NEW_*", true)
	require.NoError(t, err)

	require.Len(t, result.Items, 1)
	assert.True(t, result.Items[0].OK)
	assert.Equal(t, entities.ItemCode("NEW_*"), result.Items[0].NewCode, "new pattern is used verbatim")
}

func TestService_HistoryEntry(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seed(t, store)
	svc := newTestService(store)

	replaced, err := svc.Replace(ctx, "OLD_1", "NEW_1", false)
	require.NoError(t, err)

	entry, err := svc.HistoryEntry(ctx, replaced.HistoryID)
	require.NoError(t, err)
	assert.Equal(t, entities.ItemCode("OLD_1"), entry.Snapshot.OldItem.Code)
	assert.Equal(t, 6, entry.Snapshot.RowCount())

	_, err = svc.HistoryEntry(ctx, 99)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}
