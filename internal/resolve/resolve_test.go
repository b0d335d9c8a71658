package resolve

import (
	"testing"

	"github.com/ditto-lang/ditto/internal/ast"
	"github.com/ditto-lang/ditto/internal/core"
	dittoerrors "github.com/ditto-lang/ditto/internal/errors"
	"github.com/ditto-lang/ditto/internal/types"
)

func properName(v string) ast.ProperName { return ast.ProperName{Value: v} }

func moduleName(segments ...string) ast.ModuleName {
	var m ast.ModuleName
	for _, s := range segments {
		m.Segments = append(m.Segments, properName(s))
	}
	return m
}

func TestResolveScenarioE_DuplicateImportModuleAlias(t *testing.T) {
	everything := NewEverything()
	everything.Modules["Foo.A"] = core.NewExports()
	everything.Modules["Bar.A"] = core.NewExports()

	imports := []*ast.ImportLine{
		{Span: ast.Span{Start: 0, End: 10}, ModuleName: moduleName("Foo", "A"), ModuleSpan: ast.Span{Start: 1, End: 2}, Alias: &ast.ProperName{Value: "X"}, AliasSpan: ast.Span{Start: 5, End: 6}},
		{Span: ast.Span{Start: 20, End: 30}, ModuleName: moduleName("Bar", "A"), ModuleSpan: ast.Span{Start: 21, End: 22}, Alias: &ast.ProperName{Value: "X"}, AliasSpan: ast.Span{Start: 25, End: 26}},
	}

	_, errs := Resolve("current", imports, everything)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %d: %v", len(errs), errs)
	}
	re, ok := errs[0].(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", errs[0])
	}
	if re.Code != dittoerrors.DuplicateImportModule {
		t.Errorf("code = %s, want %s", re.Code, dittoerrors.DuplicateImportModule)
	}
	if re.Span.Start != 25 || re.OtherSpan.Start != 5 {
		t.Errorf("expected spans in source order, got span=%v other=%v", re.Span, *re.OtherSpan)
	}
}

func TestResolveDuplicateImportLine(t *testing.T) {
	everything := NewEverything()
	everything.Modules["Foo.A"] = core.NewExports()

	line := func(start int) *ast.ImportLine {
		return &ast.ImportLine{Span: ast.Span{Start: start, End: start + 5}, ModuleName: moduleName("Foo", "A"), ModuleSpan: ast.Span{Start: start + 1, End: start + 2}}
	}
	imports := []*ast.ImportLine{line(0), line(20)}

	_, errs := Resolve("current", imports, everything)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %d", len(errs))
	}
	re := errs[0].(*Error)
	if re.Code != dittoerrors.DuplicateImportLine {
		t.Errorf("code = %s, want %s", re.Code, dittoerrors.DuplicateImportLine)
	}
}

func TestResolveInstallsQualifiedExports(t *testing.T) {
	everything := NewEverything()
	exports := core.NewExports()
	exports.Values["map"] = &core.ValueExport{Scheme: nil}
	everything.Modules["List"] = exports

	imports := []*ast.ImportLine{
		{Span: ast.Span{Start: 0, End: 10}, ModuleName: moduleName("List"), ModuleSpan: ast.Span{Start: 1, End: 2}},
	}
	imported, errs := Resolve("current", imports, everything)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if _, ok := imported.Values["List.map"]; !ok {
		t.Fatal("expected List.map to be installed under its implicit alias")
	}
}

func TestResolveRequalifiesCrossPackageSchemes(t *testing.T) {
	everything := NewEverything()
	exports := core.NewExports()
	// Maybe's own Constructor node names no package, same as how a
	// compiled package's .ast-exports would describe its own types.
	maybeCanonical := ast.FullyQualified[ast.ProperName]{ModuleName: moduleName("Maybe"), Value: properName("Maybe")}
	scheme := &types.Scheme{Signature: &types.Call{
		Function:  &types.Constructor{Canonical: maybeCanonical},
		Arguments: []types.Type{types.Int},
	}}
	exports.Values["just1"] = &core.ValueExport{Scheme: scheme}
	everything.Packages = map[string]map[string]*core.Exports{
		"some-package": {"Maybe": exports},
	}

	imports := []*ast.ImportLine{
		{Span: ast.Span{Start: 0, End: 10}, Package: &ast.PackageName{Value: "some-package"}, ModuleName: moduleName("Maybe"), ModuleSpan: ast.Span{Start: 1, End: 2}},
	}
	imported, errs := Resolve("current", imports, everything)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	got := imported.Values["Maybe.just1"].Export.Scheme.Signature.(*types.Call).Function.(*types.Constructor)
	if got.Canonical.PackageName == nil || got.Canonical.PackageName.Value != "some-package" {
		t.Fatalf("expected Maybe's Constructor node requalified to \"some-package\", got %+v", got.Canonical.PackageName)
	}
	// The package export itself must be untouched by the requalification.
	original := exports.Values["just1"].Scheme.Signature.(*types.Call).Function.(*types.Constructor)
	if original.Canonical.PackageName != nil {
		t.Fatalf("requalification mutated the shared export in place: %+v", original.Canonical.PackageName)
	}
}

func TestResolveReboundImportValueAcrossLines(t *testing.T) {
	everything := NewEverything()
	fooExports := core.NewExports()
	fooExports.Values["value"] = &core.ValueExport{}
	barExports := core.NewExports()
	barExports.Values["value"] = &core.ValueExport{}
	everything.Modules["Foo"] = fooExports
	everything.Modules["Bar"] = barExports

	imports := []*ast.ImportLine{
		{Span: ast.Span{Start: 0, End: 10}, ModuleName: moduleName("Foo"), ModuleSpan: ast.Span{Start: 1, End: 2},
			Unqualified: []ast.ImportItem{{Value: &ast.Name{Value: "value"}, Span: ast.Span{Start: 3, End: 8}}}},
		{Span: ast.Span{Start: 20, End: 30}, ModuleName: moduleName("Bar"), ModuleSpan: ast.Span{Start: 21, End: 22},
			Unqualified: []ast.ImportItem{{Value: &ast.Name{Value: "value"}, Span: ast.Span{Start: 23, End: 28}}}},
	}
	_, errs := Resolve("current", imports, everything)
	if len(errs) != 1 {
		t.Fatalf("expected exactly one error, got %d: %v", len(errs), errs)
	}
	re, ok := errs[0].(*Error)
	if !ok || re.Code != dittoerrors.ReboundImportValue {
		t.Fatalf("expected ReboundImportValue, got %+v", errs[0])
	}
}

func TestResolveUnknownModule(t *testing.T) {
	everything := NewEverything()
	imports := []*ast.ImportLine{
		{Span: ast.Span{Start: 0, End: 10}, ModuleName: moduleName("Missing"), ModuleSpan: ast.Span{Start: 1, End: 2}},
	}
	_, errs := Resolve("current", imports, everything)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %d", len(errs))
	}
	if errs[0].(*Error).Code != dittoerrors.ModuleNotFound {
		t.Errorf("expected ModuleNotFound, got %s", errs[0].(*Error).Code)
	}
}
