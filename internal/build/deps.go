package build

import (
	"fmt"
	"os"

	"github.com/ditto-lang/ditto/internal/core"
	"github.com/ditto-lang/ditto/internal/iface"
	"github.com/ditto-lang/ditto/internal/resolve"
)

// Dependency names one already-built `.ast-exports` artefact
// LoadEverything should install. Package is "" for a same-package
// dependency (installed under Everything.Modules, keyed by module
// name) or the owning package's name for a cross-package dependency
// (installed under Everything.Packages[Package]).
type Dependency struct {
	Package string
	Path    string
}

// LoadEverything reads every dependency `.ast-exports` artefact named
// in deps and assembles a resolve.Everything with them installed.
// Each path must have been produced by an earlier `ditto compile ast`
// invocation (directly, via one of this build's own upstream Ninja
// edges, or as part of an installed package); CompileModule needs
// exactly this to resolve the current module's imports without
// re-checking its dependencies' source.
func LoadEverything(deps []Dependency) (*resolve.Everything, error) {
	everything := resolve.NewEverything()
	for _, dep := range deps {
		data, err := os.ReadFile(dep.Path)
		if err != nil {
			return nil, fmt.Errorf("reading dependency exports %s: %w", dep.Path, err)
		}
		artifact, err := iface.DecodeExports(data)
		if err != nil {
			return nil, fmt.Errorf("decoding dependency exports %s: %w", dep.Path, err)
		}
		exports, err := artifact.ToExports()
		if err != nil {
			return nil, fmt.Errorf("reconstructing exports from %s: %w", dep.Path, err)
		}
		if dep.Package == "" {
			everything.Modules[artifact.ModuleName] = exports
			continue
		}
		if everything.Packages[dep.Package] == nil {
			everything.Packages[dep.Package] = make(map[string]*core.Exports)
		}
		everything.Packages[dep.Package][artifact.ModuleName] = exports
	}
	return everything, nil
}
