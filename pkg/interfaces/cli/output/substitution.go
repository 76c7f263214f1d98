package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vsinha/blendmrp/pkg/application/dto"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
	"github.com/vsinha/blendmrp/pkg/domain/services"
	"github.com/vsinha/blendmrp/pkg/infrastructure/repositories/csv"
)

// WriteJSON writes any command result as indented JSON
func WriteJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteReplace prints the outcome of a single replacement
func WriteReplace(w io.Writer, result *dto.ReplaceResult) {
	fmt.Fprintf(w, "✅ Replaced %s with %s (history #%d)\n", result.OldCode, result.NewCode, result.HistoryID)
	if result.CreatedNew {
		fmt.Fprintf(w, "   created placeholder item %s\n", result.NewCode)
	}
	writeRowCounts(w, result.RowsUpdated)
}

func writeRowCounts(w io.Writer, rows dto.RowCounts) {
	fmt.Fprintf(w, "   %-18s %d\n", "inventory", rows.Inventory)
	fmt.Fprintf(w, "   %-18s %d\n", "bom lines", rows.BOMEdges)
	fmt.Fprintf(w, "   %-18s %d\n", "purchase orders", rows.PurchaseOrders)
	fmt.Fprintf(w, "   %-18s %d\n", "production orders", rows.ProductionOrders)
}

// WriteBulkReplace prints one line per matched item
func WriteBulkReplace(w io.Writer, result *dto.BulkReplaceResult) {
	if len(result.Items) == 0 {
		fmt.Fprintf(w, "No items match %s\n", result.OldPattern)
		return
	}

	fmt.Fprintf(w, "🔁 Bulk replace %s -> %s\n", result.OldPattern, result.NewPattern)
	fmt.Fprintf(w, "%-15s %-15s %-8s %s\n", "Old", "New", "History", "Result")
	fmt.Fprintf(w, "%-15s %-15s %-8s %s\n", "---------------", "---------------", "--------", "------")
	for _, item := range result.Items {
		status := "ok"
		history := "-"
		if item.OK {
			history = fmt.Sprintf("#%d", item.HistoryID)
		} else {
			status = "❌ " + item.Error
		}
		fmt.Fprintf(w, "%-15s %-15s %-8s %s\n", item.OldCode, item.NewCode, history, status)
	}
	fmt.Fprintf(w, "\n%d replaced, %d failed\n", len(result.Items)-result.Failed(), result.Failed())
}

// WriteUndo prints the outcome of an undo
func WriteUndo(w io.Writer, result *dto.UndoResult) {
	fmt.Fprintf(w, "↩️  Undid history #%d: %d rows restored to %s\n", result.HistoryID, result.RowsRestored, result.OldCode)
	if result.RecreatedItem {
		fmt.Fprintf(w, "   recreated item %s\n", result.OldCode)
	}
}

// WriteHistory prints ledger summaries newest first
func WriteHistory(w io.Writer, entries []entities.LedgerSummary) {
	if len(entries) == 0 {
		fmt.Fprintf(w, "No replacement history.\n")
		return
	}
	fmt.Fprintf(w, "%-6s %-22s %-15s %-15s\n", "ID", "Timestamp", "Old", "New")
	fmt.Fprintf(w, "%-6s %-22s %-15s %-15s\n", "------", "----------------------", "---------------", "---------------")
	for _, entry := range entries {
		fmt.Fprintf(w, "%-6d %-22s %-15s %-15s\n",
			entry.ID,
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.OldCode,
			entry.NewCode)
	}
}

// WriteValidation prints BOM validation errors and warnings
func WriteValidation(w io.Writer, result *services.ValidationResult) {
	if result.IsValid() && len(result.Warnings) == 0 {
		fmt.Fprintf(w, "✅ BOM is valid\n")
		return
	}
	for _, msg := range result.Errors {
		fmt.Fprintf(w, "❌ %s\n", msg)
	}
	for _, msg := range result.Warnings {
		fmt.Fprintf(w, "⚠️  %s\n", msg)
	}
}

// WriteSeedSummary prints what a scenario seed loaded and which rows were rejected
func WriteSeedSummary(w io.Writer, summary *csv.SeedSummary) {
	fmt.Fprintf(w, "🌱 Seeded %d items, %d BOM lines, %d inventory lots, %d purchase orders, %d production orders\n",
		summary.Items, summary.BOMLines, summary.Inventory, summary.PurchaseOrders, summary.ProductionOrders)
	for _, msg := range summary.Errors {
		fmt.Fprintf(w, "   ⚠️  %s\n", msg)
	}
}
