package planning

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

func date(s string) *time.Time {
	t, err := entities.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNettingCalculator_Net(t *testing.T) {
	today := time.Date(2026, 2, 20, 16, 45, 0, 0, time.UTC)
	x := newExplosion()
	x.add("RAW_A", entities.RequirementEntry{Quantity: d(60), DueDate: date("2026-03-05")})
	x.add("RAW_A", entities.RequirementEntry{Quantity: d(40), DueDate: date("2026-03-01")})
	x.add("RAW_B", entities.RequirementEntry{Quantity: d(10)})
	x.add("RAW_C", entities.RequirementEntry{Quantity: d(5), DueDate: date("2026-02-22")})

	lines := NewNettingCalculator(today).Net(x, NettingInput{
		OnHand:   map[entities.ItemCode]decimal.Decimal{"RAW_A": d(30), "RAW_B": d(50)},
		OnOpenPO: map[entities.ItemCode]decimal.Decimal{"RAW_A": d(20)},
		Attributes: map[entities.ItemCode]entities.PlanningAttributes{
			"RAW_A": {LeadTimeDays: 5},
			"RAW_C": {LeadTimeDays: 3},
		},
	})

	if len(lines) != 3 {
		t.Fatalf("Expected 3 plan lines, got %d", len(lines))
	}

	a := lines[0]
	if !a.Need.Equal(d(100)) || !a.Net.Equal(d(50)) {
		t.Errorf("RAW_A: expected need 100 net 50, got need %s net %s", a.Need, a.Net)
	}
	if entities.FormatDate(a.EarliestDue) != "2026-03-01" {
		t.Errorf("RAW_A: expected earliest due 2026-03-01, got %s", entities.FormatDate(a.EarliestDue))
	}
	if entities.FormatDate(a.SuggestedOrderDate) != "2026-02-24" {
		t.Errorf("RAW_A: expected suggested 2026-02-24, got %s", entities.FormatDate(a.SuggestedOrderDate))
	}
	if a.DaysUntilOrder == nil || *a.DaysUntilOrder != 4 {
		t.Errorf("RAW_A: expected 4 days until order, got %v", a.DaysUntilOrder)
	}
	if a.Urgent {
		t.Error("RAW_A: should not be urgent")
	}

	b := lines[1]
	if !b.Net.IsZero() {
		t.Errorf("RAW_B: net must clamp at zero, got %s", b.Net)
	}
	if b.EarliestDue != nil || b.SuggestedOrderDate != nil || b.DaysUntilOrder != nil || b.Urgent {
		t.Errorf("RAW_B: expected no timing without a due date, got %+v", b)
	}

	c := lines[2]
	if entities.FormatDate(c.SuggestedOrderDate) != "2026-02-19" {
		t.Errorf("RAW_C: expected suggested 2026-02-19, got %s", entities.FormatDate(c.SuggestedOrderDate))
	}
	if c.DaysUntilOrder == nil || *c.DaysUntilOrder != -1 {
		t.Errorf("RAW_C: expected -1 days until order, got %v", c.DaysUntilOrder)
	}
	if !c.Urgent {
		t.Error("RAW_C: overdue order date should be urgent")
	}
}

func TestNettingCalculator_UrgentOnTheDay(t *testing.T) {
	today := time.Date(2026, 2, 24, 9, 0, 0, 0, time.UTC)
	x := newExplosion()
	x.add("RAW_A", entities.RequirementEntry{Quantity: d(1), DueDate: date("2026-03-01")})

	lines := NewNettingCalculator(today).Net(x, NettingInput{
		Attributes: map[entities.ItemCode]entities.PlanningAttributes{"RAW_A": {LeadTimeDays: 5}},
	})

	if !lines[0].Urgent || *lines[0].DaysUntilOrder != 0 {
		t.Errorf("Expected urgent with 0 days on the suggested date, got %+v", lines[0])
	}
	if !lines[0].Net.Equal(d(1)) {
		t.Errorf("Missing supply should count as zero, got net %s", lines[0].Net)
	}
}
