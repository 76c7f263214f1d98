package output

import (
	"bytes"
	encodingcsv "encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vsinha/blendmrp/pkg/application/dto"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

func testResult() *dto.PlanningResult {
	today := time.Date(2026, 2, 20, 0, 0, 0, 0, time.UTC)
	due := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	orderBy := time.Date(2026, 2, 18, 0, 0, 0, 0, time.UTC)
	daysUntil := -2

	return &dto.PlanningResult{
		RunID: "run-1",
		Today: today,
		Demand: []entities.DemandLine{{
			OrderID:      1,
			Code:         "FG_X",
			RequestedQty: decimal.NewFromInt(40),
			DueDate:      &due,
			BatchSize:    decimal.NewFromInt(25),
			Batches:      2,
			EffectiveQty: decimal.NewFromInt(50),
		}},
		Requirements: map[entities.ItemCode][]entities.RequirementEntry{
			"RAW_A": {{Quantity: decimal.NewFromInt(10), DueDate: &due, DemandTrace: "FG_X>CONC>RAW_A"}},
			"CONC":  {{Quantity: decimal.NewFromInt(20), DueDate: &due, DemandTrace: "FG_X>CONC"}},
		},
		Plan: []entities.PlanLine{{
			Code:               "RAW_A",
			Need:               decimal.NewFromInt(10),
			EarliestDue:        &due,
			LeadTimeDays:       20,
			OnHand:             decimal.NewFromInt(2),
			OnOpenPO:           decimal.Zero,
			Net:                decimal.NewFromInt(8),
			SuggestedOrderDate: &orderBy,
			DaysUntilOrder:     &daysUntil,
			Urgent:             true,
		}},
	}
}

func TestGenerate_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := Generate(&buf, testResult(), Config{Format: FormatText, Verbose: true}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Shortages:      1", "Urgent:         1", "RAW_A", "2026-02-18", "FG_X>CONC>RAW_A"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestGenerate_TextEmptyPlan(t *testing.T) {
	var buf bytes.Buffer
	if err := Generate(&buf, &dto.PlanningResult{}, Config{}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(buf.String(), "nothing to plan") {
		t.Errorf("expected empty-plan notice, got:\n%s", buf.String())
	}
}

func TestGenerate_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Generate(&buf, testResult(), Config{Format: FormatJSON}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	var decoded struct {
		Plan []struct {
			Code           string `json:"code"`
			Net            string `json:"net"`
			DaysUntilOrder int    `json:"days_until_order"`
			Urgent         bool   `json:"urgent"`
		} `json:"exploded_requirements"`
	}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(decoded.Plan) != 1 {
		t.Fatalf("expected 1 plan line, got %d", len(decoded.Plan))
	}
	line := decoded.Plan[0]
	if line.Code != "RAW_A" || line.Net != "8" || line.DaysUntilOrder != -2 || !line.Urgent {
		t.Errorf("unexpected plan line: %+v", line)
	}
}

func TestGenerate_CSVFiles(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer
	if err := Generate(&buf, testResult(), Config{Format: FormatCSV, OutputDir: dir}); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	expected := map[string]int{PlanFile: 2, DemandFile: 2, RequirementsFile: 3}
	for name, rows := range expected {
		f, err := os.Open(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
		records, err := encodingcsv.NewReader(f).ReadAll()
		f.Close()
		if err != nil {
			t.Fatalf("%s is not valid CSV: %v", name, err)
		}
		if len(records) != rows {
			t.Errorf("%s: expected %d records, got %d", name, rows, len(records))
		}
	}
}

func TestWritePlanCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePlanCSV(&buf, testResult().Plan); err != nil {
		t.Fatalf("WritePlanCSV failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %d lines", len(lines))
	}
	if lines[1] != "RAW_A,10,2026-03-10,20,2,0,8,2026-02-18,-2,true" {
		t.Errorf("unexpected row: %s", lines[1])
	}
}

func TestGenerate_UnsupportedFormat(t *testing.T) {
	if err := Generate(&bytes.Buffer{}, testResult(), Config{Format: "xml"}); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestWriteBulkReplace(t *testing.T) {
	var buf bytes.Buffer
	WriteBulkReplace(&buf, &dto.BulkReplaceResult{
		OldPattern: "OLD_*",
		NewPattern: "NEW_*",
		Items: []dto.BulkReplaceItem{
			{OldCode: "OLD_1", NewCode: "NEW_1", OK: true, HistoryID: 3},
			{OldCode: "OLD_2", NewCode: "NEW_2", Error: "not found: item NEW_2"},
		},
	})

	out := buf.String()
	if !strings.Contains(out, "#3") || !strings.Contains(out, "not found: item NEW_2") {
		t.Errorf("unexpected bulk output:\n%s", out)
	}
	if !strings.Contains(out, "1 replaced, 1 failed") {
		t.Errorf("missing totals:\n%s", out)
	}
}
