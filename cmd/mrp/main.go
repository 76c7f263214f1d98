package main

import (
	"fmt"
	"os"

	"github.com/vsinha/blendmrp/pkg/interfaces/cli/commands"
)

func main() {
	app := commands.NewApp(os.Stdout)

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
