package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// InventoryLot represents on-hand stock of one item at one location.
// Multiple lots per item are summed for netting.
type InventoryLot struct {
	ID       int64           `json:"id" db:"id"`
	ItemID   ItemID          `json:"item_id" db:"item_id"`
	Location string          `json:"location" db:"location"`
	Quantity decimal.Decimal `json:"qty" db:"qty"`
}

// NewInventoryLot creates a validated InventoryLot
func NewInventoryLot(itemID ItemID, location string, quantity decimal.Decimal) (*InventoryLot, error) {
	if itemID == 0 {
		return nil, fmt.Errorf("%w: inventory lot must reference an item", ErrInvalidArgument)
	}
	if location == "" {
		location = "Main"
	}

	return &InventoryLot{
		ItemID:   itemID,
		Location: location,
		Quantity: quantity,
	}, nil
}

// InventoryView is an inventory lot resolved to its item code
type InventoryView struct {
	ID       int64           `json:"id" db:"id"`
	Code     ItemCode        `json:"code" db:"code"`
	Name     string          `json:"name" db:"name"`
	Location string          `json:"location" db:"location"`
	Quantity decimal.Decimal `json:"qty" db:"qty"`
}
