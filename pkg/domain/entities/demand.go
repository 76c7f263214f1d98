package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// DemandLine is an open production order after batch quantization
type DemandLine struct {
	OrderID      int64           `json:"order_id"`
	Code         ItemCode        `json:"code"`
	RequestedQty decimal.Decimal `json:"qty"`
	DueDate      *time.Time      `json:"due_date,omitempty"`
	BatchSize    decimal.Decimal `json:"batch_size"`
	Batches      int64           `json:"batches"`
	EffectiveQty decimal.Decimal `json:"effective_qty"`
}

// RequirementEntry is one independent gross requirement produced by a single
// explosion path. Entries for the same item accumulate, they never overwrite.
type RequirementEntry struct {
	Quantity    decimal.Decimal `json:"qty"`
	DueDate     *time.Time      `json:"due_date,omitempty"`
	DemandTrace string          `json:"demand_trace"`
}

// PlanLine is the netted, timed requirement for one item code
type PlanLine struct {
	Code               ItemCode        `json:"code"`
	Need               decimal.Decimal `json:"need"`
	EarliestDue        *time.Time      `json:"earliest_due,omitempty"`
	LeadTimeDays       int             `json:"lead_time"`
	OnHand             decimal.Decimal `json:"on_hand"`
	OnOpenPO           decimal.Decimal `json:"on_po"`
	Net                decimal.Decimal `json:"net"`
	SuggestedOrderDate *time.Time      `json:"suggested_order_date,omitempty"`
	DaysUntilOrder     *int            `json:"days_until_order,omitempty"`
	Urgent             bool            `json:"urgent"`
}

// BOMLine is a normal-consumption adjacency entry: Quantity of Child per unit of the parent
type BOMLine struct {
	Child    ItemCode        `json:"child"`
	Quantity decimal.Decimal `json:"qty"`
}

// DilutionLine is a dilution adjacency entry: PerMainQty of Child per unit of the main ingredient
type DilutionLine struct {
	Child      ItemCode        `json:"child"`
	PerMainQty decimal.Decimal `json:"per_main_qty"`
}

// BOMMap maps a parent code to its normal-consumption children
type BOMMap map[ItemCode][]BOMLine

// DilutionMap maps a main-ingredient code to its diluent lines
type DilutionMap map[ItemCode][]DilutionLine
