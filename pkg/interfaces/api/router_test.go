package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vsinha/blendmrp/pkg/application/services/planning"
	"github.com/vsinha/blendmrp/pkg/application/services/substitution"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
	"github.com/vsinha/blendmrp/pkg/infrastructure/events"
	"github.com/vsinha/blendmrp/pkg/infrastructure/metrics"
	"github.com/vsinha/blendmrp/pkg/infrastructure/repositories/memory"
)

var today = time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	store  *memory.Store
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := memory.NewStore()
	seed(t, store)

	clock := func() time.Time { return today }
	collector := metrics.NewCollector()
	eventStore := events.NewInMemoryEventStore(0)
	services := &Services{
		Planning: planning.NewPlanningService(store, planning.Config{},
			planning.WithLogger(zerolog.Nop()), planning.WithClock(clock),
			planning.WithMetrics(collector), planning.WithEvents(eventStore)),
		Substitution: substitution.NewService(store, substitution.Config{},
			substitution.WithLogger(zerolog.Nop()), substitution.WithClock(clock),
			substitution.WithMetrics(collector), substitution.WithEvents(eventStore)),
		Catalog: store,
		Events:  eventStore,
		Metrics: collector,
	}
	return &testServer{store: store, router: NewRouter(services, []string{"*"}, WithLogger(zerolog.Nop()))}
}

// seed builds FG_X <- RAW_A (2 per unit) with one open production order for FG_X
func seed(t *testing.T, store *memory.Store) {
	t.Helper()
	ctx := context.Background()
	for _, code := range []entities.ItemCode{"FG_X", "RAW_A", "RAW_B"} {
		item, err := entities.NewItem(code, "", "kg", 5, decimal.NewFromInt(25))
		require.NoError(t, err)
		_, err = store.CreateItem(ctx, item)
		require.NoError(t, err)
	}
	_, err := store.AddBOMEdge(ctx, entities.BOMEdgeInput{Parent: "FG_X", Child: "RAW_A", QtyPer: decimal.NewFromInt(2)})
	require.NoError(t, err)
	_, err = store.AddInventoryLot(ctx, "RAW_A", "Main", decimal.NewFromInt(30))
	require.NoError(t, err)
	due := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err = store.AddProductionOrder(ctx, "FG_X", decimal.NewFromInt(40), &due)
	require.NoError(t, err)
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func TestRouter_Healthz(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_Plan(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/api/v1/plan", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		RunID string `json:"run_id"`
		Plan  []struct {
			Code string `json:"code"`
			Need string `json:"need"`
			Net  string `json:"net"`
		} `json:"exploded_requirements"`
	}
	decode(t, rec, &body)
	assert.NotEmpty(t, body.RunID)

	needs := map[string]string{}
	for _, line := range body.Plan {
		needs[line.Code] = line.Net
	}
	// 40 rounds up to 2 batches of 25, so RAW_A needs 100 against 30 on hand
	assert.Equal(t, "70", needs["RAW_A"])
}

func TestRouter_PlanCycleIsConflict(t *testing.T) {
	s := newTestServer(t)
	_, err := s.store.AddBOMEdge(context.Background(), entities.BOMEdgeInput{Parent: "RAW_A", Child: "FG_X", QtyPer: decimal.NewFromInt(1)})
	require.NoError(t, err)

	rec := s.do(t, http.MethodGet, "/api/v1/plan", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "FG_X -> RAW_A -> FG_X")
}

func TestRouter_ReplaceHistoryUndo(t *testing.T) {
	s := newTestServer(t)
	before := s.store.Dump()

	rec := s.do(t, http.MethodPost, "/api/v1/replace", gin.H{"old_code": "RAW_A", "new_code": "RAW_B"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var replaced struct {
		HistoryID int64 `json:"history_id"`
		Rows      struct {
			Inventory int64 `json:"inventory"`
			BOMEdges  int64 `json:"bom_edges"`
		} `json:"rows_updated"`
	}
	decode(t, rec, &replaced)
	assert.Equal(t, int64(1), replaced.Rows.Inventory)
	assert.Equal(t, int64(1), replaced.Rows.BOMEdges)

	rec = s.do(t, http.MethodGet, "/api/v1/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history struct {
		History []entities.LedgerSummary `json:"history"`
	}
	decode(t, rec, &history)
	require.Len(t, history.History, 1)
	assert.Equal(t, entities.ItemCode("RAW_A"), history.History[0].OldCode)

	rec = s.do(t, http.MethodGet, "/api/v1/history/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "snapshot")

	rec = s.do(t, http.MethodPost, "/api/v1/history/1/undo", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	after := s.store.Dump()
	assert.Equal(t, len(before.BOMEdges), len(after.BOMEdges))
	assert.Equal(t, before.BOMEdges[0].ChildID, after.BOMEdges[0].ChildID)
	assert.Equal(t, before.Inventory[0].ItemID, after.Inventory[0].ItemID)
}

func TestRouter_UndoDeletedRowIsUnprocessable(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/v1/replace", gin.H{"old_code": "RAW_A", "new_code": "RAW_B"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodDelete, "/api/v1/boms/1", nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPost, "/api/v1/history/1/undo", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
}

func TestRouter_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"unknown old code", http.MethodPost, "/api/v1/replace", gin.H{"old_code": "NOPE", "new_code": "RAW_B"}, http.StatusNotFound},
		{"unknown new code", http.MethodPost, "/api/v1/replace", gin.H{"old_code": "RAW_A", "new_code": "NOPE"}, http.StatusNotFound},
		{"same code", http.MethodPost, "/api/v1/replace", gin.H{"old_code": "RAW_A", "new_code": "RAW_A"}, http.StatusUnprocessableEntity},
		{"self consumption", http.MethodPost, "/api/v1/replace", gin.H{"old_code": "RAW_A", "new_code": "FG_X"}, http.StatusUnprocessableEntity},
		{"missing fields", http.MethodPost, "/api/v1/replace", gin.H{"old_code": "RAW_A"}, http.StatusBadRequest},
		{"unknown history", http.MethodPost, "/api/v1/history/99/undo", nil, http.StatusNotFound},
		{"bad history id", http.MethodPost, "/api/v1/history/abc/undo", nil, http.StatusBadRequest},
		{"unknown parent", http.MethodGet, "/api/v1/boms?parent=NOPE", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			rec := s.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestRouter_ReplaceBulk(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/v1/replace/bulk", gin.H{
		"old_pattern":       "RAW_*",
		"new_pattern":       "ALT_*",
		"create_if_missing": true,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result struct {
		Items []struct {
			OldCode string `json:"old_code"`
			NewCode string `json:"new_code"`
			OK      bool   `json:"ok"`
		} `json:"items"`
	}
	decode(t, rec, &result)
	require.Len(t, result.Items, 2)
	for _, item := range result.Items {
		assert.True(t, item.OK)
		assert.Equal(t, "ALT_"+strings.TrimPrefix(item.OldCode, "RAW_"), item.NewCode)
	}
}

func TestRouter_Catalog(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/api/v1/items", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var items struct {
		Items []entities.Item `json:"items"`
	}
	decode(t, rec, &items)
	assert.Len(t, items.Items, 3)

	rec = s.do(t, http.MethodGet, "/api/v1/boms?parent=FG_X", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var boms struct {
		BOMs []entities.BOMEdgeView `json:"boms"`
	}
	decode(t, rec, &boms)
	require.Len(t, boms.BOMs, 1)
	assert.Equal(t, entities.ItemCode("RAW_A"), boms.BOMs[0].ChildCode)

	rec = s.do(t, http.MethodGet, "/api/v1/boms/validate", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"valid":true`)
}

func planNet(t *testing.T, s *testServer, code string) string {
	t.Helper()
	rec := s.do(t, http.MethodGet, "/api/v1/plan", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body struct {
		Plan []struct {
			Code string `json:"code"`
			Net  string `json:"net"`
		} `json:"exploded_requirements"`
	}
	decode(t, rec, &body)
	for _, line := range body.Plan {
		if line.Code == code {
			return line.Net
		}
	}
	return ""
}

func TestRouter_ItemWrites(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/items", gin.H{"code": "RAW_C", "uom": "kg", "lead_time_days": 4, "batch_size": "10"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodPatch, "/api/v1/items/RAW_C", gin.H{"lead_time_days": 9})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var item entities.Item
	decode(t, rec, &item)
	assert.Equal(t, 9, item.LeadTimeDays)
	assert.Equal(t, "10", item.BatchSize.String())

	// a zero batch size falls back to the default
	rec = s.do(t, http.MethodPatch, "/api/v1/items/RAW_C", gin.H{"batch_size": 0})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decode(t, rec, &item)
	assert.Equal(t, "25", item.BatchSize.String())

	rec = s.do(t, http.MethodPost, "/api/v1/inventory", gin.H{"code": "RAW_C", "location": "Main", "qty": "5"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodDelete, "/api/v1/items/RAW_C", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code, "stocked items cannot be deleted")

	rec = s.do(t, http.MethodDelete, "/api/v1/items/RAW_B", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	_, err := s.store.FindItemByCode(context.Background(), "RAW_B")
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestRouter_BOMWrites(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/boms", gin.H{"parent": "FG_X", "child": "RAW_B", "qty": "1"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID int64 `json:"id"`
	}
	decode(t, rec, &created)

	rec = s.do(t, http.MethodPatch, "/api/v1/boms/"+strconv.FormatInt(created.ID, 10), gin.H{"qty": "3"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	// 2 batches of 25 at 3 per unit
	assert.Equal(t, "150", planNet(t, s, "RAW_B"))

	rec = s.do(t, http.MethodDelete, "/api/v1/boms/"+strconv.FormatInt(created.ID, 10), nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	assert.Equal(t, "", planNet(t, s, "RAW_B"))
	assert.Len(t, s.store.Dump().BOMEdges, 1)
}

func TestRouter_OrderWrites(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/purchase_orders", gin.H{"code": "RAW_A", "qty": "50", "date": "2026-03-01"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "20", planNet(t, s, "RAW_A"))

	rec = s.do(t, http.MethodPatch, "/api/v1/purchase_orders/1", gin.H{"status": "CANCELLED"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "70", planNet(t, s, "RAW_A"))

	rec = s.do(t, http.MethodPost, "/api/v1/production_orders", gin.H{"code": "FG_X", "qty": "10", "date": "2026-03-05"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	// each order rounds on its own: 50 + 25 units of FG_X need 150 RAW_A
	assert.Equal(t, "120", planNet(t, s, "RAW_A"))

	rec = s.do(t, http.MethodPatch, "/api/v1/production_orders/1", gin.H{"status": "COMPLETED"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	// only the new order for 10 is open: 1 batch of 25 needs 50 against 30 on hand
	assert.Equal(t, "20", planNet(t, s, "RAW_A"))
}

func TestRouter_CatalogWriteErrors(t *testing.T) {
	tests := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"unknown item", http.MethodPatch, "/api/v1/items/NOPE", gin.H{"lead_time_days": 1}, http.StatusNotFound},
		{"negative lead time", http.MethodPatch, "/api/v1/items/RAW_A", gin.H{"lead_time_days": -1}, http.StatusUnprocessableEntity},
		{"item without code", http.MethodPost, "/api/v1/items", gin.H{"name": "x"}, http.StatusBadRequest},
		{"self edge", http.MethodPost, "/api/v1/boms", gin.H{"parent": "RAW_A", "child": "RAW_A", "qty": "1"}, http.StatusUnprocessableEntity},
		{"edge to unknown item", http.MethodPost, "/api/v1/boms", gin.H{"parent": "FG_X", "child": "NOPE", "qty": "1"}, http.StatusNotFound},
		{"bad bom id", http.MethodDelete, "/api/v1/boms/x", nil, http.StatusBadRequest},
		{"unknown bom line", http.MethodPatch, "/api/v1/boms/99", gin.H{"qty": "1"}, http.StatusNotFound},
		{"bad date", http.MethodPost, "/api/v1/purchase_orders", gin.H{"code": "RAW_A", "qty": "1", "date": "03/01/2026"}, http.StatusUnprocessableEntity},
		{"unknown status", http.MethodPatch, "/api/v1/production_orders/1", gin.H{"status": "DONE"}, http.StatusUnprocessableEntity},
		{"unknown order", http.MethodPatch, "/api/v1/purchase_orders/42", gin.H{"status": "RECEIVED"}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			rec := s.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestRouter_Events(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/api/v1/plan", nil)
	rec := s.do(t, http.MethodPost, "/api/v1/replace", gin.H{"old_code": "RAW_A", "new_code": "RAW_B"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	type eventPage struct {
		Events []struct {
			Type     string `json:"type"`
			Stream   string `json:"stream"`
			Position int64  `json:"position"`
		} `json:"events"`
		LastPosition int64 `json:"last_position"`
	}

	rec = s.do(t, http.MethodGet, "/api/v1/events", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var page eventPage
	decode(t, rec, &page)
	require.Len(t, page.Events, 2)
	assert.Equal(t, events.PlanningCompletedEvent, page.Events[0].Type)
	assert.Equal(t, events.ItemReplacedEvent, page.Events[1].Type)
	assert.Equal(t, int64(2), page.LastPosition)

	rec = s.do(t, http.MethodGet, "/api/v1/events?from=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page = eventPage{}
	decode(t, rec, &page)
	require.Len(t, page.Events, 1)
	assert.Equal(t, events.ItemReplacedEvent, page.Events[0].Type)

	rec = s.do(t, http.MethodGet, "/api/v1/events?stream="+events.PlanningStream, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page = eventPage{}
	decode(t, rec, &page)
	require.Len(t, page.Events, 1)
	assert.Equal(t, int64(2), page.LastPosition)

	rec = s.do(t, http.MethodGet, "/api/v1/events?from=-1", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRouter_Metrics(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodGet, "/api/v1/plan", nil)

	rec := s.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mrp_planning_runs_total")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(entities.ErrNotFound))
	assert.Equal(t, http.StatusConflict, statusFor(&entities.CycleError{Path: []entities.ItemCode{"A", "A"}}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(entities.ErrAtomicityViolation))
}
