package build

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ditto-lang/ditto/internal/ast"
	"github.com/ditto-lang/ditto/internal/parser"
)

// ModuleHeader is one source file's cheaply-parsed header: its module
// name and the modules it imports, used to build the cross-module
// dependency graph before any full parse or typecheck runs.
type ModuleHeader struct {
	Path       string
	ModuleName string
	Imports    []string // module names this file imports, current-package only
}

// LoadHeaders runs PartialParseHeader over every input file: a cheap
// first pass that only needs each file's module/import lines to plan
// the build.
func LoadHeaders(paths []string) ([]ModuleHeader, []error) {
	var headers []ModuleHeader
	var errs []error
	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("reading %s: %w", path, err))
			continue
		}
		module, parseErrs := parser.PartialParseHeader(path, src)
		if len(parseErrs) > 0 {
			errs = append(errs, parseErrs...)
			continue
		}
		h := ModuleHeader{Path: path, ModuleName: module.Name.String()}
		for _, imp := range module.Imports {
			if imp.Package != nil {
				continue // cross-package import: resolved against the installed package set, not this build's own graph
			}
			h.Imports = append(h.Imports, imp.ModuleName.String())
		}
		headers = append(headers, h)
	}
	return headers, errs
}

// CycleError reports a dependency cycle among current-package modules.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("BLD003: module dependency cycle: %s", strings.Join(e.Cycle, " -> "))
}

// TopoSort orders headers so each module appears after every
// current-package module it imports, via a post-order DFS (dependencies
// first) with cycle detection along the current path. deterministic
// sorts modules with no ordering constraint between them by name, for
// reproducible Ninja file output and tests.
func TopoSort(headers []ModuleHeader, deterministic bool) ([]ModuleHeader, error) {
	byName := make(map[string]ModuleHeader, len(headers))
	for _, h := range headers {
		byName[h.ModuleName] = h
	}

	visited := make(map[string]bool)
	inPath := make(map[string]bool)
	var sorted []ModuleHeader
	var path []string

	names := make([]string, 0, len(headers))
	for _, h := range headers {
		names = append(names, h.ModuleName)
	}
	if deterministic {
		sort.Strings(names)
	}

	var visit func(name string) error
	visit = func(name string) error {
		if visited[name] {
			return nil
		}
		if inPath[name] {
			cycle := append([]string(nil), path...)
			cycle = append(cycle, name)
			start := 0
			for i, n := range cycle {
				if n == name {
					start = i
					break
				}
			}
			return &CycleError{Cycle: cycle[start:]}
		}
		h, ok := byName[name]
		if !ok {
			return nil // imported module lives outside this build's input set (a package dependency already checked)
		}

		inPath[name] = true
		path = append(path, name)

		deps := append([]string(nil), h.Imports...)
		if deterministic {
			sort.Strings(deps)
		}
		for _, dep := range deps {
			if err := visit(dep); err != nil {
				return err
			}
		}

		path = path[:len(path)-1]
		inPath[name] = false
		visited[name] = true
		sorted = append(sorted, h)
		return nil
	}

	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return sorted, nil
}

// moduleNameSegments splits a dotted module name ("Foo.Bar") into the
// ast.ModuleName it came from, for re-feeding into the parser-facing API.
func moduleNameSegments(dotted string) ast.ModuleName {
	parts := strings.Split(dotted, ".")
	segments := make([]ast.ProperName, len(parts))
	for i, p := range parts {
		segments[i] = ast.ProperName{Value: p}
	}
	return ast.ModuleName{Segments: segments}
}
