package planning

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

// NettingInput is the supply and master data the calculator nets against
type NettingInput struct {
	OnHand     map[entities.ItemCode]decimal.Decimal
	OnOpenPO   map[entities.ItemCode]decimal.Decimal
	Attributes map[entities.ItemCode]entities.PlanningAttributes
}

// NettingCalculator aggregates requirement entries per code and back-schedules order dates
type NettingCalculator struct {
	today time.Time
}

// NewNettingCalculator creates a calculator that measures urgency against today's date
func NewNettingCalculator(today time.Time) *NettingCalculator {
	return &NettingCalculator{today: entities.Date(today)}
}

// Net returns one plan line per code in explosion order
func (c *NettingCalculator) Net(explosion *Explosion, input NettingInput) []entities.PlanLine {
	lines := make([]entities.PlanLine, 0, len(explosion.Order))
	for _, code := range explosion.Order {
		lines = append(lines, c.netCode(code, explosion.Requirements[code], input))
	}
	return lines
}

func (c *NettingCalculator) netCode(code entities.ItemCode, entries []entities.RequirementEntry, input NettingInput) entities.PlanLine {
	need := decimal.Zero
	var earliest *time.Time
	for _, entry := range entries {
		need = need.Add(entry.Quantity)
		if entry.DueDate != nil && (earliest == nil || entry.DueDate.Before(*earliest)) {
			earliest = entry.DueDate
		}
	}

	onHand := input.OnHand[code]
	onPO := input.OnOpenPO[code]
	net := need.Sub(onHand).Sub(onPO)
	if net.IsNegative() {
		net = decimal.Zero
	}

	line := entities.PlanLine{
		Code:         code,
		Need:         need,
		EarliestDue:  entities.DatePtr(earliest),
		LeadTimeDays: input.Attributes[code].LeadTimeDays,
		OnHand:       onHand,
		OnOpenPO:     onPO,
		Net:          net,
	}

	if line.EarliestDue != nil {
		suggested := line.EarliestDue.AddDate(0, 0, -line.LeadTimeDays)
		days := entities.DaysBetween(c.today, suggested)
		line.SuggestedOrderDate = &suggested
		line.DaysUntilOrder = &days
		line.Urgent = !suggested.After(c.today)
	}

	return line
}
