package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ItemCode represents the unique business identifier of an item
type ItemCode string

// ItemID is the opaque storage identity of an item row
type ItemID int64

// DefaultUnitOfMeasure is used for placeholder items created during substitution
const DefaultUnitOfMeasure = "ea"

// DefaultBatchSize is the production batch size applied when an item has none
var DefaultBatchSize = decimal.NewFromInt(25)

// Item represents a manufacturing item with its planning attributes
type Item struct {
	ID            ItemID          `json:"id" db:"id"`
	Code          ItemCode        `json:"code" db:"code"`
	Name          string          `json:"name" db:"name"`
	UnitOfMeasure string          `json:"uom" db:"uom"`
	LeadTimeDays  int             `json:"lead_time_days" db:"lead_time"`
	BatchSize     decimal.Decimal `json:"batch_size" db:"batch_size"`
}

// NewItem creates a validated Item. A non-positive batch size falls back to DefaultBatchSize.
func NewItem(code ItemCode, name, uom string, leadTimeDays int, batchSize decimal.Decimal) (*Item, error) {
	if string(code) == "" {
		return nil, fmt.Errorf("%w: item code cannot be empty", ErrInvalidArgument)
	}
	if leadTimeDays < 0 {
		return nil, fmt.Errorf("%w: lead time cannot be negative, got %d", ErrInvalidArgument, leadTimeDays)
	}
	if name == "" {
		name = string(code)
	}
	if uom == "" {
		uom = DefaultUnitOfMeasure
	}

	return &Item{
		Code:          code,
		Name:          name,
		UnitOfMeasure: uom,
		LeadTimeDays:  leadTimeDays,
		BatchSize:     EffectiveBatchSize(batchSize, DefaultBatchSize),
	}, nil
}

// NewPlaceholderItem creates the minimal item used when a substitution target is missing
func NewPlaceholderItem(code ItemCode, uom string) *Item {
	if uom == "" {
		uom = DefaultUnitOfMeasure
	}
	return &Item{
		Code:          code,
		Name:          string(code),
		UnitOfMeasure: uom,
		LeadTimeDays:  0,
		BatchSize:     DefaultBatchSize,
	}
}

// EffectiveBatchSize returns batchSize, or fallback when batchSize is zero or negative
func EffectiveBatchSize(batchSize, fallback decimal.Decimal) decimal.Decimal {
	if batchSize.IsPositive() {
		return batchSize
	}
	if fallback.IsPositive() {
		return fallback
	}
	return DefaultBatchSize
}

// PlanningAttributes is the subset of item master data consumed by the planning run
type PlanningAttributes struct {
	LeadTimeDays int
	BatchSize    decimal.Decimal
}
