package commands

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
	"github.com/vsinha/blendmrp/pkg/interfaces/cli/output"
)

func createFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:  "create",
		Usage: "Create the new item as a placeholder when it does not exist",
	}
}

func (a *app) replaceCommand() *cli.Command {
	return &cli.Command{
		Name:      "replace",
		Usage:     "Replace an item code in inventory, BOMs, purchase orders and production orders",
		ArgsUsage: "OLD_CODE NEW_CODE",
		Flags:     []cli.Flag{createFlag(), jsonFlag()},
		Before:    a.open,
		After:     a.close,
		Action:    a.replace,
	}
}

func (a *app) replace(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("replace requires OLD_CODE and NEW_CODE", 2)
	}

	result, err := a.runtime.Substitution.Replace(c.Context,
		entities.ItemCode(c.Args().Get(0)), entities.ItemCode(c.Args().Get(1)), c.Bool("create"))
	if err != nil {
		return err
	}

	if c.Bool("json") {
		return output.WriteJSON(a.out, result)
	}
	output.WriteReplace(a.out, result)
	return nil
}

func (a *app) replaceBulkCommand() *cli.Command {
	return &cli.Command{
		Name:      "replace-bulk",
		Usage:     "Replace every item code matching a wildcard pattern, e.g. OLD_* NEW_*",
		ArgsUsage: "OLD_PATTERN NEW_PATTERN",
		Flags:     []cli.Flag{createFlag(), jsonFlag()},
		Before:    a.open,
		After:     a.close,
		Action:    a.replaceBulk,
	}
}

func (a *app) replaceBulk(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("replace-bulk requires OLD_PATTERN and NEW_PATTERN", 2)
	}

	result, err := a.runtime.Substitution.ReplaceBulk(c.Context, c.Args().Get(0), c.Args().Get(1), c.Bool("create"))
	if err != nil {
		return err
	}

	if c.Bool("json") {
		if err := output.WriteJSON(a.out, result); err != nil {
			return err
		}
	} else {
		output.WriteBulkReplace(a.out, result)
	}

	if failed := result.Failed(); failed > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d replacements failed", failed, len(result.Items)), 1)
	}
	return nil
}

func (a *app) undoCommand() *cli.Command {
	return &cli.Command{
		Name:      "undo",
		Usage:     "Reverse a replacement from its history snapshot",
		ArgsUsage: "HISTORY_ID",
		Flags:     []cli.Flag{jsonFlag()},
		Before:    a.open,
		After:     a.close,
		Action:    a.undo,
	}
}

func (a *app) undo(c *cli.Context) error {
	id, err := historyArg(c)
	if err != nil {
		return err
	}

	result, err := a.runtime.Substitution.Undo(c.Context, id)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		return output.WriteJSON(a.out, result)
	}
	output.WriteUndo(a.out, result)
	return nil
}

func (a *app) historyCommand() *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "List replacements newest first, or show one entry with its snapshot",
		ArgsUsage: "[HISTORY_ID]",
		Flags:     []cli.Flag{jsonFlag()},
		Before:    a.open,
		After:     a.close,
		Action:    a.history,
	}
}

func (a *app) history(c *cli.Context) error {
	if c.NArg() > 0 {
		id, err := historyArg(c)
		if err != nil {
			return err
		}
		entry, err := a.runtime.Substitution.HistoryEntry(c.Context, id)
		if err != nil {
			return err
		}
		// a single entry always prints as JSON so the snapshot is readable
		return output.WriteJSON(a.out, entry)
	}

	entries, err := a.runtime.Substitution.History(c.Context)
	if err != nil {
		return err
	}
	if c.Bool("json") {
		return output.WriteJSON(a.out, entries)
	}
	output.WriteHistory(a.out, entries)
	return nil
}

func historyArg(c *cli.Context) (int64, error) {
	if c.NArg() != 1 {
		return 0, cli.Exit("expected exactly one HISTORY_ID", 2)
	}
	id, err := strconv.ParseInt(c.Args().First(), 10, 64)
	if err != nil || id <= 0 {
		return 0, cli.Exit(fmt.Sprintf("invalid history id %q", c.Args().First()), 2)
	}
	return id, nil
}
