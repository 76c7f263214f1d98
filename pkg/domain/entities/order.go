package entities

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the lifecycle state of a purchase or production order
type OrderStatus string

const (
	StatusOpen      OrderStatus = "OPEN"
	StatusReceived  OrderStatus = "RECEIVED"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// IsOpen reports whether the order still counts toward supply or demand
func (s OrderStatus) IsOpen() bool {
	return s == StatusOpen
}

// ParseOrderStatus accepts one of the known statuses, case-sensitively
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch status := OrderStatus(s); status {
	case StatusOpen, StatusReceived, StatusCompleted, StatusCancelled:
		return status, nil
	default:
		return "", fmt.Errorf("%w: unknown order status %q", ErrInvalidArgument, s)
	}
}

// PurchaseOrder represents inbound supply for an item
type PurchaseOrder struct {
	ID       int64           `json:"id"`
	ItemID   ItemID          `json:"item_id"`
	Quantity decimal.Decimal `json:"qty"`
	ETA      *time.Time      `json:"eta,omitempty"`
	Status   OrderStatus     `json:"status"`
}

// NewPurchaseOrder creates a validated open PurchaseOrder
func NewPurchaseOrder(itemID ItemID, quantity decimal.Decimal, eta *time.Time) (*PurchaseOrder, error) {
	if itemID == 0 {
		return nil, fmt.Errorf("%w: purchase order must reference an item", ErrInvalidArgument)
	}
	if quantity.IsNegative() {
		return nil, fmt.Errorf("%w: purchase order quantity cannot be negative, got %s", ErrInvalidArgument, quantity)
	}

	return &PurchaseOrder{
		ItemID:   itemID,
		Quantity: quantity,
		ETA:      DatePtr(eta),
		Status:   StatusOpen,
	}, nil
}

// ProductionOrder represents demand to produce an item by a due date
type ProductionOrder struct {
	ID       int64           `json:"id"`
	ItemID   ItemID          `json:"item_id"`
	Quantity decimal.Decimal `json:"qty"`
	DueDate  *time.Time      `json:"due_date,omitempty"`
	Status   OrderStatus     `json:"status"`
}

// NewProductionOrder creates a validated open ProductionOrder
func NewProductionOrder(itemID ItemID, quantity decimal.Decimal, dueDate *time.Time) (*ProductionOrder, error) {
	if itemID == 0 {
		return nil, fmt.Errorf("%w: production order must reference an item", ErrInvalidArgument)
	}
	if quantity.IsNegative() {
		return nil, fmt.Errorf("%w: production order quantity cannot be negative, got %s", ErrInvalidArgument, quantity)
	}

	return &ProductionOrder{
		ItemID:   itemID,
		Quantity: quantity,
		DueDate:  DatePtr(dueDate),
		Status:   StatusOpen,
	}, nil
}

// ProductionOrderView is an open production order resolved to its item code
type ProductionOrderView struct {
	ID       int64           `json:"id"`
	Code     ItemCode        `json:"code"`
	Quantity decimal.Decimal `json:"qty"`
	DueDate  *time.Time      `json:"due_date,omitempty"`
}

// PurchaseOrderView is a purchase order resolved to its item code
type PurchaseOrderView struct {
	ID       int64           `json:"id"`
	Code     ItemCode        `json:"code"`
	Quantity decimal.Decimal `json:"qty"`
	ETA      *time.Time      `json:"eta,omitempty"`
	Status   OrderStatus     `json:"status"`
}
