package build

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// astDir is where compiled module artefacts (.ast, .ast-exports) live
// under a build directory.
const astDir = "ast"

// astPath returns the path a module's serialized AST artefact is
// written to.
func astPath(buildDir, moduleName string) string {
	return filepath.Join(buildDir, astDir, moduleName+".ast")
}

// astExportsPath returns the path a module's serialized exports
// artefact is written to: the input every importer's build edge
// depends on.
func astExportsPath(buildDir, moduleName string) string {
	return filepath.Join(buildDir, astDir, moduleName+".ast-exports")
}

// WriteNinjaFile renders a build.ninja file listing one "ditto compile
// ast" rule invocation per module, in the order headers is given
// (callers pass the result of TopoSort so dependency edges point at
// already-scheduled outputs). ditto is the path to the ditto binary
// ninja should invoke for every build edge. session namespaces the
// rule name so two invocations writing to the same build directory
// never emit a colliding rule.
func WriteNinjaFile(buildDir, ditto, session string, headers []ModuleHeader) string {
	var b strings.Builder

	ruleName := "ast-" + session

	fmt.Fprintf(&b, "builddir = %s\n\n", buildDir)
	fmt.Fprintf(&b, "rule %s\n  command = %s compile ast --build-dir %s -i ${in} -o ${out}\n  description = Checking ${in}\n\n", ruleName, ditto, buildDir)

	for _, h := range headers {
		outputs := []string{astPath(buildDir, h.ModuleName), astExportsPath(buildDir, h.ModuleName)}

		deps := append([]string(nil), h.Imports...)
		sort.Strings(deps)
		inputs := make([]string, 0, len(deps)+1)
		for _, dep := range deps {
			inputs = append(inputs, astExportsPath(buildDir, dep))
		}
		inputs = append(inputs, h.Path)

		fmt.Fprintf(&b, "build %s: %s %s\n\n", strings.Join(outputs, " "), ruleName, strings.Join(inputs, " "))
	}

	return b.String()
}
