package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

// WriteScenario writes s into dir in the layout LoadScenario reads.
// Empty order and inventory tables still get a header-only file.
func WriteScenario(dir string, s *Scenario) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create scenario directory: %w", err)
	}

	items := [][]string{{"code", "name", "uom", "lead_time_days", "batch_size"}}
	for _, item := range s.Items {
		items = append(items, []string{
			string(item.Code),
			item.Name,
			item.UnitOfMeasure,
			strconv.Itoa(item.LeadTimeDays),
			item.BatchSize.String(),
		})
	}

	bom := [][]string{{"parent", "child", "qty", "per_batch", "is_dilution", "per_main_qty", "dilution_main"}}
	for _, row := range s.BOM {
		bom = append(bom, []string{
			string(row.Parent),
			string(row.Child),
			row.Qty.String(),
			nullString(row.PerBatch),
			strconv.FormatBool(row.IsDilution),
			nullString(row.PerMainQty),
			string(row.DilutionMain),
		})
	}

	inventory := [][]string{{"code", "location", "qty"}}
	for _, row := range s.Inventory {
		inventory = append(inventory, []string{string(row.Code), row.Location, row.Qty.String()})
	}

	files := map[string][][]string{
		ItemsFile:            items,
		BOMFile:              bom,
		InventoryFile:        inventory,
		PurchaseOrdersFile:   orderRecords("eta", s.PurchaseOrders),
		ProductionOrdersFile: orderRecords("due_date", s.ProductionOrders),
	}
	for name, records := range files {
		if err := writeRecords(filepath.Join(dir, name), records); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}

func orderRecords(dateColumn string, rows []OrderRow) [][]string {
	records := [][]string{{"code", "qty", dateColumn}}
	for _, row := range rows {
		records = append(records, []string{string(row.Code), row.Qty.String(), entities.FormatDate(row.Date)})
	}
	return records
}

func writeRecords(filename string, records [][]string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}

	w := csv.NewWriter(file)
	if err := w.WriteAll(records); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
