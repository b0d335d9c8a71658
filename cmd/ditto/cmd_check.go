package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ditto-lang/ditto/internal/build"
	"github.com/ditto-lang/ditto/internal/resolve"
)

// runCheck implements `ditto check`: a convenience entry point that
// plans and typechecks a handful of files together in one process,
// without standing up a .ditto build directory or Ninja file. Useful
// for ad-hoc checking during development; a real multi-module build
// goes through `ditto compile ast` per-file, driven by Ninja.
func runCheck(cmd *cobra.Command, args []string) error {
	headers, errs := build.Plan(args, deterministic)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "%s %s\n", red("error:"), e)
		}
		return fmt.Errorf("planning failed with %d error(s)", len(errs))
	}

	everything := resolve.NewEverything()
	currentPackage := currentPackageName()
	failures := 0

	for _, h := range headers {
		compiled, errs := build.CompileModule(currentPackage, h.Path, everything, deterministic)
		if len(errs) > 0 {
			failures++
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", red("FAIL"), h.ModuleName)
			for _, e := range errs {
				fmt.Fprintf(os.Stderr, "  %s\n", e)
			}
			continue
		}
		everything.Modules[h.ModuleName] = compiled.Module.Exports
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", green("OK"), h.ModuleName)
		for _, w := range compiled.Module.Warnings {
			printWarning(w.Code, w.Span.String())
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d of %d module(s) failed to check", failures, len(headers))
	}
	return nil
}
