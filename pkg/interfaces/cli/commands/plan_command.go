package commands

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
	"github.com/vsinha/blendmrp/pkg/domain/services"
	"github.com/vsinha/blendmrp/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/blendmrp/pkg/interfaces/cli/output"
)

func (a *app) seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Load a scenario directory of CSV files into the database",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "scenario",
				Usage:    "Directory containing items.csv and optional bom/inventory/order files",
				Required: true,
				EnvVars:  []string{"MRP_SCENARIO_DIR"},
			},
			jsonFlag(),
		},
		Before: a.open,
		After:  a.close,
		Action: a.seed,
	}
}

func (a *app) seed(c *cli.Context) error {
	scenario, err := csv.NewLoader().LoadScenario(c.String("scenario"))
	if err != nil {
		return fmt.Errorf("error loading scenario: %w", err)
	}

	summary, err := csv.Seed(c.Context, a.runtime.Store, scenario)
	if err != nil {
		return fmt.Errorf("error seeding scenario: %w", err)
	}

	if c.Bool("json") {
		return output.WriteJSON(a.out, summary)
	}
	output.WriteSeedSummary(a.out, summary)
	return nil
}

func (a *app) planCommand() *cli.Command {
	return &cli.Command{
		Name:  "plan",
		Usage: "Explode open production orders and net requirements against stock and open POs",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "format",
				Usage: "Output format: text, json, csv",
				Value: output.FormatText,
			},
			&cli.StringFlag{
				Name:  "output",
				Usage: "Output directory for json/csv results (optional)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Include demand lines and requirement traces",
			},
		},
		Before: a.open,
		After:  a.close,
		Action: a.plan,
	}
}

func (a *app) plan(c *cli.Context) error {
	start := time.Now()
	result, err := a.runtime.Planning.RunPlanning(c.Context)
	if err != nil {
		return fmt.Errorf("planning failed: %w", err)
	}

	return output.Generate(a.out, result, output.Config{
		Format:    c.String("format"),
		OutputDir: c.String("output"),
		Verbose:   c.Bool("verbose"),
		Duration:  time.Since(start),
	})
}

func (a *app) validateCommand() *cli.Command {
	return &cli.Command{
		Name:   "validate",
		Usage:  "Check the BOM for cycles, self edges and dilution lines without a main ingredient",
		Flags:  []cli.Flag{jsonFlag()},
		Before: a.open,
		After:  a.close,
		Action: a.validate,
	}
}

func (a *app) validate(c *cli.Context) error {
	edges, err := a.runtime.Store.ListBOMEdges(c.Context)
	if err != nil {
		return fmt.Errorf("failed to read BOM: %w", err)
	}

	result := services.ValidateBOM(edges)
	if c.Bool("json") {
		if err := output.WriteJSON(a.out, result); err != nil {
			return err
		}
	} else {
		output.WriteValidation(a.out, result)
	}

	if !result.IsValid() {
		return cli.Exit(fmt.Sprintf("BOM validation failed with %d errors", len(result.Errors)), 1)
	}
	return nil
}
