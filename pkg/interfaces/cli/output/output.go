package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/vsinha/blendmrp/pkg/application/dto"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

// Supported output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// CSV files written for a planning run
const (
	PlanFile         = "plan.csv"
	DemandFile       = "demand.csv"
	RequirementsFile = "requirements.csv"
)

// Config holds configuration for output generation
type Config struct {
	Format    string
	OutputDir string
	Verbose   bool
	Duration  time.Duration
}

// Generate renders a planning result in the configured format
func Generate(w io.Writer, result *dto.PlanningResult, config Config) error {
	switch config.Format {
	case FormatText, "":
		return generateTextOutput(w, result, config)
	case FormatJSON:
		return generateJSONOutput(w, result, config)
	case FormatCSV:
		return generateCSVOutput(w, result, config)
	default:
		return fmt.Errorf("unsupported output format: %s", config.Format)
	}
}

// generateTextOutput creates human-readable text output
func generateTextOutput(w io.Writer, result *dto.PlanningResult, config Config) error {
	fmt.Fprintf(w, "📊 Planning Results Summary\n")
	fmt.Fprintf(w, "===========================\n\n")

	fmt.Fprintf(w, "Run:            %s\n", result.RunID)
	fmt.Fprintf(w, "Today:          %s\n", entities.FormatDate(&result.Today))
	fmt.Fprintf(w, "Demand Lines:   %d\n", len(result.Demand))
	fmt.Fprintf(w, "Planned Items:  %d\n", len(result.Plan))
	fmt.Fprintf(w, "Shortages:      %d\n", len(result.ShortageLines()))
	fmt.Fprintf(w, "Urgent:         %d\n", len(result.UrgentLines()))
	if config.Duration > 0 {
		fmt.Fprintf(w, "Planning Time:  %v\n", config.Duration)
	}
	fmt.Fprintln(w)

	if config.Verbose && len(result.Demand) > 0 {
		fmt.Fprintf(w, "📦 Demand:\n")
		fmt.Fprintf(w, "%-8s %-15s %-10s %-12s %-8s %-8s %-10s\n",
			"Order", "Item", "Qty", "Due Date", "Batch", "Batches", "Effective")
		fmt.Fprintf(w, "%-8s %-15s %-10s %-12s %-8s %-8s %-10s\n",
			"--------", "---------------", "----------", "------------", "--------", "--------", "----------")
		for _, line := range result.Demand {
			fmt.Fprintf(w, "%-8d %-15s %-10s %-12s %-8s %-8d %-10s\n",
				line.OrderID,
				line.Code,
				line.RequestedQty.String(),
				orDash(entities.FormatDate(line.DueDate)),
				line.BatchSize.String(),
				line.Batches,
				line.EffectiveQty.String())
		}
		fmt.Fprintln(w)
	}

	if len(result.Plan) == 0 {
		fmt.Fprintf(w, "No open production orders, nothing to plan.\n")
		return nil
	}

	fmt.Fprintf(w, "📋 Material Plan:\n")
	fmt.Fprintf(w, "%-15s %-10s %-12s %-5s %-10s %-10s %-10s %-12s %-6s %-6s\n",
		"Item", "Need", "Due Date", "Lead", "On Hand", "On PO", "Net", "Order By", "Days", "Urgent")
	fmt.Fprintf(w, "%-15s %-10s %-12s %-5s %-10s %-10s %-10s %-12s %-6s %-6s\n",
		"---------------", "----------", "------------", "-----", "----------", "----------", "----------", "------------", "------", "------")
	for _, line := range result.Plan {
		urgent := ""
		if line.Urgent {
			urgent = "⚠️"
		}
		fmt.Fprintf(w, "%-15s %-10s %-12s %-5d %-10s %-10s %-10s %-12s %-6s %-6s\n",
			line.Code,
			line.Need.String(),
			orDash(entities.FormatDate(line.EarliestDue)),
			line.LeadTimeDays,
			line.OnHand.String(),
			line.OnOpenPO.String(),
			line.Net.String(),
			orDash(entities.FormatDate(line.SuggestedOrderDate)),
			orDash(days(line.DaysUntilOrder)),
			urgent)
	}
	fmt.Fprintln(w)

	if config.Verbose {
		writeRequirementsText(w, result)
	}
	return nil
}

func writeRequirementsText(w io.Writer, result *dto.PlanningResult) {
	fmt.Fprintf(w, "🔍 Requirement Traces:\n")
	for _, code := range sortedCodes(result.Requirements) {
		fmt.Fprintf(w, "  %s\n", code)
		for _, entry := range result.Requirements[code] {
			fmt.Fprintf(w, "    %-10s %-12s %s\n",
				entry.Quantity.String(),
				orDash(entities.FormatDate(entry.DueDate)),
				entry.DemandTrace)
		}
	}
	fmt.Fprintln(w)
}

// generateJSONOutput writes the full result as indented JSON to w, or to OutputDir when set
func generateJSONOutput(w io.Writer, result *dto.PlanningResult, config Config) error {
	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if config.OutputDir == "" {
		_, err = fmt.Fprintln(w, string(jsonData))
		return err
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	filename := filepath.Join(config.OutputDir, "plan.json")
	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write JSON file: %w", err)
	}
	if config.Verbose {
		fmt.Fprintf(w, "💾 JSON results saved to: %s\n", filename)
	}
	return nil
}

// generateCSVOutput writes plan, demand and requirement CSVs into OutputDir
func generateCSVOutput(w io.Writer, result *dto.PlanningResult, config Config) error {
	if config.OutputDir == "" {
		return WritePlanCSV(w, result.Plan)
	}

	if err := os.MkdirAll(config.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{PlanFile, func(f io.Writer) error { return WritePlanCSV(f, result.Plan) }},
		{DemandFile, func(f io.Writer) error { return writeDemandCSV(f, result.Demand) }},
		{RequirementsFile, func(f io.Writer) error { return writeRequirementsCSV(f, result.Requirements) }},
	}
	for _, file := range files {
		filename := filepath.Join(config.OutputDir, file.name)
		if err := writeFile(filename, file.write); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.name, err)
		}
	}

	if config.Verbose {
		fmt.Fprintf(w, "💾 CSV results saved to: %s\n", config.OutputDir)
		for _, file := range files {
			fmt.Fprintf(w, "  %s\n", file.name)
		}
	}
	return nil
}

func writeFile(filename string, write func(io.Writer) error) error {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// WritePlanCSV writes one row per plan line
func WritePlanCSV(w io.Writer, lines []entities.PlanLine) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"code", "need", "earliest_due", "lead_time", "on_hand", "on_po", "net", "suggested_order_date", "days_until_order", "urgent"})
	for _, line := range lines {
		_ = cw.Write([]string{
			string(line.Code),
			line.Need.String(),
			entities.FormatDate(line.EarliestDue),
			strconv.Itoa(line.LeadTimeDays),
			line.OnHand.String(),
			line.OnOpenPO.String(),
			line.Net.String(),
			entities.FormatDate(line.SuggestedOrderDate),
			days(line.DaysUntilOrder),
			strconv.FormatBool(line.Urgent),
		})
	}
	cw.Flush()
	return cw.Error()
}

func writeDemandCSV(w io.Writer, demand []entities.DemandLine) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"order_id", "code", "qty", "due_date", "batch_size", "batches", "effective_qty"})
	for _, line := range demand {
		_ = cw.Write([]string{
			strconv.FormatInt(line.OrderID, 10),
			string(line.Code),
			line.RequestedQty.String(),
			entities.FormatDate(line.DueDate),
			line.BatchSize.String(),
			strconv.FormatInt(line.Batches, 10),
			line.EffectiveQty.String(),
		})
	}
	cw.Flush()
	return cw.Error()
}

func writeRequirementsCSV(w io.Writer, requirements map[entities.ItemCode][]entities.RequirementEntry) error {
	cw := csv.NewWriter(w)
	_ = cw.Write([]string{"code", "qty", "due_date", "demand_trace"})
	for _, code := range sortedCodes(requirements) {
		for _, entry := range requirements[code] {
			_ = cw.Write([]string{
				string(code),
				entry.Quantity.String(),
				entities.FormatDate(entry.DueDate),
				entry.DemandTrace,
			})
		}
	}
	cw.Flush()
	return cw.Error()
}

func sortedCodes(requirements map[entities.ItemCode][]entities.RequirementEntry) []entities.ItemCode {
	codes := make([]entities.ItemCode, 0, len(requirements))
	for code := range requirements {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

func days(d *int) string {
	if d == nil {
		return ""
	}
	return strconv.Itoa(*d)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
