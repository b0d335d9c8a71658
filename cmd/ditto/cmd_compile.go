package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ditto-lang/ditto/internal/build"
	"github.com/ditto-lang/ditto/internal/iface"
	"github.com/ditto-lang/ditto/internal/manifest"
)

// runCompileAST implements `ditto compile ast`: one module in, its
// three artefacts out. -i lists the module's own .ditto source plus
// every same-package dependency's already-built .ast-exports file (the
// shape the Ninja files build.WriteNinjaFile generates expect);
// --package-dep lists installed-package dependencies as
// pkgName=path.ast-exports, since those live outside the current
// build's own module graph. -o lists the .ast, .ast-exports and
// .checker-warnings paths to write, identified by suffix so argument
// order doesn't matter.
func runCompileAST(cmd *cobra.Command, args []string) error {
	lock, err := build.NewLock(buildDir)
	if err != nil {
		return err
	}
	session := build.NewSessionID()
	if err := lock.Acquire(session); err != nil {
		return err
	}
	defer lock.Release()

	sourcePath, depPaths, err := splitCompileInputs(inputPaths)
	if err != nil {
		return err
	}

	packageDeps, err := parsePackageDeps(packageDepArgs)
	if err != nil {
		return err
	}

	deps := make([]build.Dependency, 0, len(depPaths)+len(packageDeps))
	for _, p := range depPaths {
		deps = append(deps, build.Dependency{Path: p})
	}
	deps = append(deps, packageDeps...)

	everything, err := build.LoadEverything(deps)
	if err != nil {
		return err
	}

	currentPackage := currentPackageName()

	compiled, errs := build.CompileModule(currentPackage, sourcePath, everything, deterministic)
	if len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "%s %s\n", red("error:"), e)
		}
		return fmt.Errorf("compilation of %s failed with %d error(s)", sourcePath, len(errs))
	}

	astOut, exportsOut, warningsOut := splitCompileOutputs(outputPaths)

	if astOut != "" {
		data, err := iface.EncodeModule(compiled.Module)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", astOut, err)
		}
		if err := writeArtifact(astOut, data); err != nil {
			return err
		}
	}
	if exportsOut != "" {
		data, err := json.Marshal(compiled.Exports)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", exportsOut, err)
		}
		if err := writeArtifact(exportsOut, data); err != nil {
			return err
		}
	}
	if warningsOut != "" {
		data, err := json.Marshal(compiled.Module.Warnings)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", warningsOut, err)
		}
		if err := writeArtifact(warningsOut, data); err != nil {
			return err
		}
	}

	for _, w := range compiled.Module.Warnings {
		printWarning(w.Code, w.Span.String())
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", green("checked"), compiled.Module.Name.String())
	return nil
}

func splitCompileInputs(inputs []string) (source string, deps []string, err error) {
	for _, in := range inputs {
		if strings.HasSuffix(in, ".ditto") {
			if source != "" {
				return "", nil, fmt.Errorf("compile ast: more than one .ditto input (%s and %s)", source, in)
			}
			source = in
			continue
		}
		deps = append(deps, in)
	}
	if source == "" {
		return "", nil, fmt.Errorf("compile ast: no .ditto input given (-i)")
	}
	return source, deps, nil
}

// parsePackageDeps turns a list of "pkgName=path" --package-dep
// arguments into build.Dependency values naming the owning package.
func parsePackageDeps(args []string) ([]build.Dependency, error) {
	deps := make([]build.Dependency, 0, len(args))
	for _, arg := range args {
		pkg, path, ok := strings.Cut(arg, "=")
		if !ok || pkg == "" || path == "" {
			return nil, fmt.Errorf("--package-dep expects pkgName=path, got %q", arg)
		}
		deps = append(deps, build.Dependency{Package: pkg, Path: path})
	}
	return deps, nil
}

func splitCompileOutputs(outputs []string) (ast, exports, warnings string) {
	for _, o := range outputs {
		switch {
		case strings.HasSuffix(o, ".ast-exports"):
			exports = o
		case strings.HasSuffix(o, ".ast"):
			ast = o
		case strings.HasSuffix(o, ".checker-warnings"):
			warnings = o
		}
	}
	return
}

func writeArtifact(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// currentPackageName reads ditto.toml from the working directory, if
// present, so CompileModule can re-qualify imports from other packages
// correctly. A standalone module with no manifest checks under "".
func currentPackageName() string {
	cfg, err := manifest.Load(manifest.ConfigFileName)
	if err != nil {
		return ""
	}
	return cfg.Name
}

func printWarning(code, span string) {
	fmt.Fprintf(os.Stderr, "%s %s at %s\n", yellow("warning:"), code, span)
}
