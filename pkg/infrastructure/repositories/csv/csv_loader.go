package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

// Scenario file names inside a scenario directory. Only items.csv is required.
const (
	ItemsFile            = "items.csv"
	BOMFile              = "bom.csv"
	InventoryFile        = "inventory.csv"
	PurchaseOrdersFile   = "purchase_orders.csv"
	ProductionOrdersFile = "production_orders.csv"
)

// BOMRow is one parsed bom.csv line. PerBatch, when set, is the quantity per
// batch of the parent and replaces Qty after conversion.
type BOMRow struct {
	Parent       entities.ItemCode
	Child        entities.ItemCode
	Qty          decimal.Decimal
	PerBatch     decimal.NullDecimal
	IsDilution   bool
	PerMainQty   decimal.NullDecimal
	DilutionMain entities.ItemCode
}

// InventoryRow is one parsed inventory.csv line
type InventoryRow struct {
	Code     entities.ItemCode
	Location string
	Qty      decimal.Decimal
}

// OrderRow is one parsed purchase or production order line; Date is the ETA or due date
type OrderRow struct {
	Code entities.ItemCode
	Qty  decimal.Decimal
	Date *time.Time
}

// Scenario holds every table of a scenario directory
type Scenario struct {
	Items            []*entities.Item
	BOM              []BOMRow
	Inventory        []InventoryRow
	PurchaseOrders   []OrderRow
	ProductionOrders []OrderRow
}

// Loader handles loading scenario data from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadScenario reads every known file from dir
func (l *Loader) LoadScenario(dir string) (*Scenario, error) {
	var (
		s   Scenario
		err error
	)

	if s.Items, err = l.LoadItems(filepath.Join(dir, ItemsFile)); err != nil {
		return nil, err
	}
	if s.BOM, err = optional(l.LoadBOM, filepath.Join(dir, BOMFile)); err != nil {
		return nil, err
	}
	if s.Inventory, err = optional(l.LoadInventory, filepath.Join(dir, InventoryFile)); err != nil {
		return nil, err
	}
	if s.PurchaseOrders, err = optional(l.LoadPurchaseOrders, filepath.Join(dir, PurchaseOrdersFile)); err != nil {
		return nil, err
	}
	if s.ProductionOrders, err = optional(l.LoadProductionOrders, filepath.Join(dir, ProductionOrdersFile)); err != nil {
		return nil, err
	}
	return &s, nil
}

func optional[T any](load func(string) ([]T, error), filename string) ([]T, error) {
	rows, err := load(filename)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	return rows, err
}

// LoadItems loads items from a CSV file
func (l *Loader) LoadItems(filename string) ([]*entities.Item, error) {
	records, err := readRecords(filename, "items", []string{"code", "name", "uom", "lead_time_days", "batch_size"})
	if err != nil {
		return nil, err
	}

	var items []*entities.Item
	for i, record := range records {
		item, err := parseItem(record)
		if err != nil {
			return nil, fmt.Errorf("items CSV row %d: %w", i+2, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// LoadBOM loads BOM lines from a CSV file
func (l *Loader) LoadBOM(filename string) ([]BOMRow, error) {
	records, err := readRecords(filename, "BOM", []string{"parent", "child", "qty", "per_batch", "is_dilution", "per_main_qty", "dilution_main"})
	if err != nil {
		return nil, err
	}

	var rows []BOMRow
	for i, record := range records {
		row, err := parseBOMRow(record)
		if err != nil {
			return nil, fmt.Errorf("BOM CSV row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// LoadInventory loads inventory lots from a CSV file
func (l *Loader) LoadInventory(filename string) ([]InventoryRow, error) {
	records, err := readRecords(filename, "inventory", []string{"code", "location", "qty"})
	if err != nil {
		return nil, err
	}

	var rows []InventoryRow
	for i, record := range records {
		qty, err := parseDecimal(record[2], "qty")
		if err != nil {
			return nil, fmt.Errorf("inventory CSV row %d: %w", i+2, err)
		}
		rows = append(rows, InventoryRow{
			Code:     entities.ItemCode(strings.TrimSpace(record[0])),
			Location: strings.TrimSpace(record[1]),
			Qty:      qty,
		})
	}
	return rows, nil
}

// LoadPurchaseOrders loads open purchase orders from a CSV file
func (l *Loader) LoadPurchaseOrders(filename string) ([]OrderRow, error) {
	return loadOrders(filename, "purchase orders", "eta")
}

// LoadProductionOrders loads open production orders from a CSV file
func (l *Loader) LoadProductionOrders(filename string) ([]OrderRow, error) {
	return loadOrders(filename, "production orders", "due_date")
}

func loadOrders(filename, kind, dateColumn string) ([]OrderRow, error) {
	records, err := readRecords(filename, kind, []string{"code", "qty", dateColumn})
	if err != nil {
		return nil, err
	}

	var rows []OrderRow
	for i, record := range records {
		qty, err := parseDecimal(record[1], "qty")
		if err != nil {
			return nil, fmt.Errorf("%s CSV row %d: %w", kind, i+2, err)
		}
		date, err := entities.ParseDate(strings.TrimSpace(record[2]))
		if err != nil {
			return nil, fmt.Errorf("%s CSV row %d: %w", kind, i+2, err)
		}
		rows = append(rows, OrderRow{
			Code: entities.ItemCode(strings.TrimSpace(record[0])),
			Qty:  qty,
			Date: date,
		})
	}
	return rows, nil
}

// readRecords reads a CSV file, validates its header and returns the data rows
func readRecords(filename, kind string, expectedHeader []string) ([][]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file %s: %w", kind, filename, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read %s CSV: %w", kind, err)
	}

	if len(records) < 1 {
		return nil, fmt.Errorf("%s CSV must have a header row", kind)
	}

	header := records[0]
	if !validateHeader(header, expectedHeader) {
		return nil, fmt.Errorf("%s CSV header mismatch. Expected: %v, Got: %v", kind, expectedHeader, header)
	}

	for i, record := range records[1:] {
		if len(record) != len(expectedHeader) {
			return nil, fmt.Errorf("%s CSV row %d: expected %d columns, got %d", kind, i+2, len(expectedHeader), len(record))
		}
	}
	return records[1:], nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}

func parseItem(record []string) (*entities.Item, error) {
	leadTimeDays := 0
	if s := strings.TrimSpace(record[3]); s != "" {
		days, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid lead_time_days: %s", record[3])
		}
		leadTimeDays = days
	}

	batchSize, err := parseNullDecimal(record[4], "batch_size")
	if err != nil {
		return nil, err
	}

	return entities.NewItem(
		entities.ItemCode(strings.TrimSpace(record[0])),
		strings.TrimSpace(record[1]),
		strings.TrimSpace(record[2]),
		leadTimeDays,
		batchSize.Decimal,
	)
}

func parseBOMRow(record []string) (BOMRow, error) {
	row := BOMRow{
		Parent:       entities.ItemCode(strings.TrimSpace(record[0])),
		Child:        entities.ItemCode(strings.TrimSpace(record[1])),
		DilutionMain: entities.ItemCode(strings.TrimSpace(record[6])),
	}

	qty, err := parseNullDecimal(record[2], "qty")
	if err != nil {
		return BOMRow{}, err
	}
	row.Qty = qty.Decimal

	if row.PerBatch, err = parseNullDecimal(record[3], "per_batch"); err != nil {
		return BOMRow{}, err
	}
	if row.PerMainQty, err = parseNullDecimal(record[5], "per_main_qty"); err != nil {
		return BOMRow{}, err
	}

	switch strings.ToLower(strings.TrimSpace(record[4])) {
	case "", "false", "0", "no":
	case "true", "1", "yes":
		row.IsDilution = true
	default:
		return BOMRow{}, fmt.Errorf("invalid is_dilution: %s (expected true or false)", record[4])
	}

	return row, nil
}

func parseDecimal(s, column string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %s", column, s)
	}
	return d, nil
}

// parseNullDecimal treats an empty cell as absent
func parseNullDecimal(s, column string) (decimal.NullDecimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := parseDecimal(s, column)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
