package entities

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestProductionOrder_Validation(t *testing.T) {
	due := time.Date(2026, 3, 1, 15, 30, 0, 0, time.UTC)

	order, err := NewProductionOrder(1, decimal.NewFromInt(40), &due)
	if err != nil {
		t.Fatalf("Expected valid order creation to succeed: %v", err)
	}
	if order.Status != StatusOpen {
		t.Errorf("Expected status OPEN, got %s", order.Status)
	}
	if order.DueDate.Hour() != 0 {
		t.Errorf("Expected due date truncated to a calendar date, got %v", order.DueDate)
	}

	if _, err := NewProductionOrder(0, decimal.NewFromInt(1), nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for missing item, got %v", err)
	}
	if _, err := NewProductionOrder(1, decimal.NewFromInt(-1), nil); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for negative quantity, got %v", err)
	}
}

func TestPurchaseOrder_Validation(t *testing.T) {
	po, err := NewPurchaseOrder(1, decimal.NewFromInt(200), nil)
	if err != nil {
		t.Fatalf("Expected valid purchase order creation to succeed: %v", err)
	}
	if !po.Status.IsOpen() {
		t.Errorf("Expected new purchase order to be open, got %s", po.Status)
	}
	if StatusReceived.IsOpen() {
		t.Error("Expected RECEIVED not to count as open")
	}
}

func TestDateHelpers(t *testing.T) {
	d, err := ParseDate("2026-03-01")
	if err != nil {
		t.Fatalf("Failed to parse date: %v", err)
	}
	if FormatDate(d) != "2026-03-01" {
		t.Errorf("Expected 2026-03-01, got %s", FormatDate(d))
	}

	empty, err := ParseDate("")
	if err != nil || empty != nil {
		t.Errorf("Expected nil date for empty input, got %v (%v)", empty, err)
	}

	if _, err := ParseDate("03/01/2026"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for bad layout, got %v", err)
	}

	from := time.Date(2026, 2, 20, 23, 59, 0, 0, time.UTC)
	to := time.Date(2026, 2, 24, 0, 1, 0, 0, time.UTC)
	if got := DaysBetween(from, to); got != 4 {
		t.Errorf("Expected 4 days, got %d", got)
	}
	if got := DaysBetween(to, from); got != -4 {
		t.Errorf("Expected -4 days, got %d", got)
	}
}

func TestParseOrderStatus(t *testing.T) {
	for _, s := range []string{"OPEN", "RECEIVED", "COMPLETED", "CANCELLED"} {
		status, err := ParseOrderStatus(s)
		if err != nil {
			t.Errorf("ParseOrderStatus(%q) failed: %v", s, err)
		}
		if string(status) != s {
			t.Errorf("Expected %s, got %s", s, status)
		}
	}

	if _, err := ParseOrderStatus("open"); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Expected ErrInvalidArgument for lowercase status, got %v", err)
	}
}
