package csv

import (
	"context"
	"reflect"
	"testing"

	"github.com/vsinha/blendmrp/pkg/domain/services"
	"github.com/vsinha/blendmrp/pkg/infrastructure/repositories/memory"
)

func TestGenerator_Deterministic(t *testing.T) {
	config := GenerateConfig{Items: 60, MaxDepth: 4, Orders: 5, Inventory: 0.5, DilutionRate: 0.3, Seed: 42}

	first, err := NewGenerator(config).Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	second, err := NewGenerator(config).Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Error("Expected the same seed to produce the same scenario")
	}
	if len(first.Items) != config.Items+len(diluents) {
		t.Errorf("Expected %d items, got %d", config.Items+len(diluents), len(first.Items))
	}
	if len(first.ProductionOrders) != config.Orders {
		t.Errorf("Expected %d production orders, got %d", config.Orders, len(first.ProductionOrders))
	}
}

func TestGenerator_RoundTripSeedsAcyclicBOM(t *testing.T) {
	ctx := context.Background()
	generated, err := NewGenerator(GenerateConfig{Items: 120, MaxDepth: 5, Orders: 8, Inventory: 1, DilutionRate: 0.5, Seed: 7}).Generate()
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	dir := t.TempDir()
	if err := WriteScenario(dir, generated); err != nil {
		t.Fatalf("WriteScenario failed: %v", err)
	}
	loaded, err := NewLoader().LoadScenario(dir)
	if err != nil {
		t.Fatalf("LoadScenario failed: %v", err)
	}
	if len(loaded.Items) != len(generated.Items) || len(loaded.BOM) != len(generated.BOM) {
		t.Fatalf("Round trip lost rows: %d/%d items, %d/%d BOM rows",
			len(loaded.Items), len(generated.Items), len(loaded.BOM), len(generated.BOM))
	}

	store := memory.NewStore()
	summary, err := Seed(ctx, store, loaded)
	if err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	if len(summary.Errors) != 0 {
		t.Fatalf("Expected a clean seed, got %v", summary.Errors)
	}

	edges, err := store.ListBOMEdges(ctx)
	if err != nil {
		t.Fatalf("Failed to list BOM: %v", err)
	}
	result := services.ValidateBOM(edges)
	if result.HasCycles || len(result.SelfEdges) > 0 {
		t.Errorf("Generated BOM is not acyclic: %v", result.Errors)
	}
}

func TestGenerator_RejectsEmptyScenario(t *testing.T) {
	if _, err := NewGenerator(GenerateConfig{}).Generate(); err == nil {
		t.Error("Expected an error for zero items")
	}
}
