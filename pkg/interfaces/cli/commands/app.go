package commands

import (
	"io"
	"os"

	"github.com/urfave/cli/v2"
	"github.com/vsinha/blendmrp/pkg/logger"
)

// app holds the state shared by every command of one invocation
type app struct {
	out     io.Writer
	runtime *Runtime
}

// NewApp builds the mrp command line. Command output goes to out.
func NewApp(out io.Writer) *cli.App {
	a := &app{out: out}

	return &cli.App{
		Name:      "mrp",
		Usage:     "Blend material requirements planning and item substitution",
		Writer:    out,
		ErrWriter: os.Stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db-driver",
				Usage:   "Database driver: sqlite3 or pgx",
				EnvVars: []string{"MRP_DB_DRIVER"},
			},
			&cli.StringFlag{
				Name:    "db-dsn",
				Usage:   "Database connection string",
				EnvVars: []string{"MRP_DB_DSN"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level: debug, info, warn, error",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Commands: []*cli.Command{
			a.generateCommand(),
			a.seedCommand(),
			a.planCommand(),
			a.validateCommand(),
			a.replaceCommand(),
			a.replaceBulkCommand(),
			a.undoCommand(),
			a.historyCommand(),
			a.serveCommand(),
		},
	}
}

// open is the Before hook of every database command
func (a *app) open(c *cli.Context) error {
	cfg := settings(c)
	logger.SetLevel(cfg.LogLevel)

	rt, err := NewRuntime(c.Context, cfg)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	a.runtime = rt
	return nil
}

// close is the After hook of every database command
func (a *app) close(c *cli.Context) error {
	if a.runtime == nil {
		return nil
	}
	err := a.runtime.Close()
	a.runtime = nil
	return err
}

func jsonFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:  "json",
		Usage: "Print the result as JSON",
	}
}
