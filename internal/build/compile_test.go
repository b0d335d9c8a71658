package build

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ditto-lang/ditto/internal/resolve"
	"github.com/ditto-lang/ditto/internal/types"
)

// TestCompileModuleAcrossExportsRoundTrip exercises the same path
// `ditto compile ast` drives for a multi-module build: compile a
// dependency, write its .ast-exports artefact to disk, reload it
// through LoadEverything, then compile a second module importing the
// first purely from that on-disk artefact. A dependent module's check
// must not need the dependency's source, only its already-checked
// exports.
func TestCompileModuleAcrossExportsRoundTrip(t *testing.T) {
	dir := t.TempDir()

	listPath := writeModule(t, dir, "List", `module List exports (..);

singleton = fn (x) -> [x];
`)

	everything := resolve.NewEverything()
	listCompiled, errs := CompileModule("", listPath, everything, true)
	if len(errs) > 0 {
		t.Fatalf("compiling List: %v", errs)
	}

	exportsPath := filepath.Join(dir, "List.ast-exports")
	data, err := json.Marshal(listCompiled.Exports)
	if err != nil {
		t.Fatalf("marshaling List exports: %s", err)
	}
	if err := os.WriteFile(exportsPath, data, 0o644); err != nil {
		t.Fatalf("writing List exports: %s", err)
	}

	mainPath := writeModule(t, dir, "Main", `module Main exports (..);
import List;

one = List.singleton(1);
`)

	reloaded, err := LoadEverything([]Dependency{{Path: exportsPath}})
	if err != nil {
		t.Fatalf("LoadEverything: %s", err)
	}

	mainCompiled, errs := CompileModule("", mainPath, reloaded, true)
	if len(errs) > 0 {
		t.Fatalf("compiling Main against reloaded exports: %v", errs)
	}

	oneVal, ok := mainCompiled.Module.Exports.Values["one"]
	if !ok {
		t.Fatal("Main's exports have no value \"one\"")
	}
	if oneVal.Scheme.Signature.String() == "" {
		t.Fatal("expected a non-empty inferred signature for \"one\"")
	}
}

// TestCompileModuleCrossPackageRequalifiesConstructor exercises the
// installed-package half of the dependency graph: a value imported
// from another package carries, in its inferred scheme, a Constructor
// node naming a type declared in that package. The exporting module's
// own .ast-exports never names its package (a package has no way to
// know its own installed name), so the importer must stamp it in at
// resolution time.
func TestCompileModuleCrossPackageRequalifiesConstructor(t *testing.T) {
	dir := t.TempDir()

	maybePath := writeModule(t, dir, "Maybe", `module Maybe exports (..);

type Maybe(a) = Just(a) | Nothing;

just1 = Just(1);
`)

	maybeCompiled, errs := CompileModule("", maybePath, resolve.NewEverything(), true)
	if len(errs) > 0 {
		t.Fatalf("compiling Maybe: %v", errs)
	}

	exportsPath := filepath.Join(dir, "Maybe.ast-exports")
	data, err := json.Marshal(maybeCompiled.Exports)
	if err != nil {
		t.Fatalf("marshaling Maybe exports: %s", err)
	}
	if err := os.WriteFile(exportsPath, data, 0o644); err != nil {
		t.Fatalf("writing Maybe exports: %s", err)
	}

	mainPath := writeModule(t, dir, "Main", `module Main exports (..);
import (some-pkg) Maybe (just1);

one = just1;
`)

	everything, err := LoadEverything([]Dependency{{Package: "some-pkg", Path: exportsPath}})
	if err != nil {
		t.Fatalf("LoadEverything: %s", err)
	}
	if _, ok := everything.Packages["some-pkg"]["Maybe"]; !ok {
		t.Fatal("expected Maybe's exports installed under Packages[\"some-pkg\"]")
	}

	mainCompiled, errs := CompileModule("", mainPath, everything, true)
	if len(errs) > 0 {
		t.Fatalf("compiling Main against the installed package: %v", errs)
	}

	oneVal, ok := mainCompiled.Module.Exports.Values["one"]
	if !ok {
		t.Fatal("Main's exports have no value \"one\"")
	}
	call, ok := oneVal.Scheme.Signature.(*types.Call)
	if !ok {
		t.Fatalf("expected \"one\"'s signature to be a Call, got %T", oneVal.Scheme.Signature)
	}
	ctor, ok := call.Function.(*types.Constructor)
	if !ok {
		t.Fatalf("expected Call.Function to be a Constructor, got %T", call.Function)
	}
	if ctor.Canonical.PackageName == nil || ctor.Canonical.PackageName.Value != "some-pkg" {
		t.Fatalf("expected Maybe's Constructor node requalified to \"some-pkg\", got %+v", ctor.Canonical.PackageName)
	}
}
