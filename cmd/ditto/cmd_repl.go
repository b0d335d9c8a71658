package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ditto-lang/ditto/internal/repl"
)

func runREPL(cmd *cobra.Command, args []string) error {
	repl.New().Start(os.Stdin, os.Stdout)
	return nil
}
