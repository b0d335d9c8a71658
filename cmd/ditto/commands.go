package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	deterministic bool

	rootCmd = &cobra.Command{
		Use:   "ditto",
		Short: "The Ditto compiler front-end: parse, resolve, kind-check and type-check a module",
		Version: fmt.Sprintf("%s (commit %s, built %s)", Version, Commit, BuildTime),
	}

	compileCmd = &cobra.Command{
		Use:   "compile",
		Short: "Run one stage of the compilation pipeline",
	}

	compileASTCmd = &cobra.Command{
		Use:   "ast",
		Short: "Check one module and emit its .ast, .ast-exports and .checker-warnings artefacts",
		RunE:  runCompileAST,
	}

	checkCmd = &cobra.Command{
		Use:   "check FILE...",
		Short: "Typecheck one or more .ditto files directly, without a build directory",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runCheck,
	}

	replCmd = &cobra.Command{
		Use:   "repl",
		Short: "Start an interactive type-checking session",
		RunE:  runREPL,
	}
)

var (
	buildDir       string
	inputPaths     []string
	outputPaths    []string
	packageDepArgs []string
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&deterministic, "deterministic", true, "use deterministic SCC scheduling (stable output, slightly slower)")

	compileASTCmd.Flags().StringVar(&buildDir, "build-dir", ".ditto", "build directory holding compiled artefacts")
	compileASTCmd.Flags().StringArrayVarP(&inputPaths, "input", "i", nil, "input files: one .ditto source plus its same-package dependencies' .ast-exports")
	compileASTCmd.Flags().StringArrayVarP(&outputPaths, "output", "o", nil, "output artefact paths (.ast, .ast-exports, .checker-warnings)")
	compileASTCmd.Flags().StringArrayVar(&packageDepArgs, "package-dep", nil, "cross-package dependency exports, as pkgName=path/to/Module.ast-exports")

	compileCmd.AddCommand(compileASTCmd)
	rootCmd.AddCommand(compileCmd, checkCmd, replCmd)
}
