package main

import (
	"context"
	"fmt"
	"os"

	"github.com/vsinha/blendmrp/pkg/application/services/planning"
	"github.com/vsinha/blendmrp/pkg/application/services/substitution"
	"github.com/vsinha/blendmrp/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/blendmrp/pkg/infrastructure/repositories/memory"
	"github.com/vsinha/blendmrp/pkg/interfaces/cli/output"
)

func main() {
	ctx := context.Background()
	scenarioDir := "scenarios/blending"
	if len(os.Args) > 1 {
		scenarioDir = os.Args[1]
	}

	// Embedded use: everything lives in the in-memory store
	store := memory.NewStore()

	scenario, err := csv.NewLoader().LoadScenario(scenarioDir)
	if err != nil {
		fmt.Printf("❌ Failed to load scenario: %v\n", err)
		os.Exit(1)
	}
	summary, err := csv.Seed(ctx, store, scenario)
	if err != nil {
		fmt.Printf("❌ Failed to seed scenario: %v\n", err)
		os.Exit(1)
	}
	output.WriteSeedSummary(os.Stdout, summary)
	fmt.Println()

	planner := planning.NewPlanningService(store, planning.Config{})
	substitutor := substitution.NewService(store, substitution.Config{})

	fmt.Println("🧪 Planning current production orders...")
	if err := plan(ctx, planner); err != nil {
		fmt.Printf("❌ Planning failed: %v\n", err)
		os.Exit(1)
	}

	// Swap the raw material for a new supplier's code and plan again
	replaced, err := substitutor.Replace(ctx, "RAW_A", "RAW_A_SUPPLIER2", true)
	if err != nil {
		fmt.Printf("❌ Replace failed: %v\n", err)
		os.Exit(1)
	}
	output.WriteReplace(os.Stdout, replaced)
	fmt.Println()

	if err := plan(ctx, planner); err != nil {
		fmt.Printf("❌ Planning failed: %v\n", err)
		os.Exit(1)
	}

	undone, err := substitutor.Undo(ctx, replaced.HistoryID)
	if err != nil {
		fmt.Printf("❌ Undo failed: %v\n", err)
		os.Exit(1)
	}
	output.WriteUndo(os.Stdout, undone)
}

func plan(ctx context.Context, planner *planning.PlanningService) error {
	result, err := planner.RunPlanning(ctx)
	if err != nil {
		return err
	}
	return output.Generate(os.Stdout, result, output.Config{Format: output.FormatText})
}
