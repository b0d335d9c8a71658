// Package resolve implements import resolution, ported from the
// algorithm in ditto-checker/src/module/imports/mod.rs.
package resolve

import (
	"fmt"
	"sort"

	"github.com/ditto-lang/ditto/internal/ast"
	"github.com/ditto-lang/ditto/internal/core"
	dittoerrors "github.com/ditto-lang/ditto/internal/errors"
)

// Everything is the outer typing context: current-package modules plus
// all known packages, each mapped to their exports.
type Everything struct {
	Packages map[string]map[string]*core.Exports // packageName -> moduleName -> exports
	Modules  map[string]*core.Exports            // current-package moduleName -> exports
}

func NewEverything() *Everything {
	return &Everything{
		Packages: make(map[string]map[string]*core.Exports),
		Modules:  make(map[string]*core.Exports),
	}
}

// ImportedType, ImportedConstructor and ImportedValue are the three
// pristine-map entries resolution produces: each records the
// import-line span, the reference span, and the canonical
// fully-qualified target.
type ImportedType struct {
	ImportSpan ast.Span
	RefSpan    ast.Span
	Ref        core.GlobalRef
	Export     *core.TypeExport
}

type ImportedConstructor struct {
	ImportSpan ast.Span
	RefSpan    ast.Span
	Ref        core.GlobalRef
	Export     *core.ConstructorExport
}

type ImportedValue struct {
	ImportSpan ast.Span
	RefSpan    ast.Span
	Ref        core.GlobalRef
	Export     *core.ValueExport
}

// Imported is the resolver's output: three pristine maps keyed by the
// alias-qualified name as it will be looked up during typechecking
// (e.g. "List.map").
type Imported struct {
	Types        map[string]*ImportedType
	Constructors map[string]*ImportedConstructor
	Values       map[string]*ImportedValue
}

func newImported() *Imported {
	return &Imported{
		Types:        make(map[string]*ImportedType),
		Constructors: make(map[string]*ImportedConstructor),
		Values:       make(map[string]*ImportedValue),
	}
}

// Error is one of the named import-resolution failures.
type Error struct {
	Code    string
	Message string
	Span    ast.Span
	OtherSpan *ast.Span // "previously defined here", when applicable
}

func (e *Error) Error() string { return e.Code + ": " + e.Message }

func (e *Error) toReport() *dittoerrors.Report {
	data := map[string]any{}
	if e.OtherSpan != nil {
		data["previous_span"] = *e.OtherSpan
	}
	return &dittoerrors.Report{
		Schema:  "ditto.error/v1",
		Code:    e.Code,
		Phase:   "import",
		Message: e.Message,
		Span:    &e.Span,
		Data:    data,
	}
}

// registeredPair tracks a (package, module) import for DuplicateImportLine.
type registeredPair struct {
	key  string
	span ast.Span
}

// Resolve processes every import line of a module against Everything,
// following a six-step contract: register aliases, reject duplicate
// package/module pairs, install qualified names, install unqualified
// names, flag unknown imports, and collect diagnostics in source order.
func Resolve(currentPackage string, imports []*ast.ImportLine, everything *Everything) (*Imported, []error) {
	result := newImported()
	var errs []error

	takenAliases := map[string]ast.Span{}   // alias -> first import's alias span
	registeredPairs := map[string]ast.Span{} // "pkg::module" -> first import's span

	// process in source order so duplicate/rebind diagnostics report
	// the two spans in source order.
	sorted := append([]*ast.ImportLine(nil), imports...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Span.Start < sorted[j].Span.Start })

	for _, line := range sorted {
		pkgName := currentPackage
		if line.Package != nil {
			pkgName = line.Package.Value
		}

		exports, err := selectExports(line, pkgName, currentPackage, everything)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		pairKey := pkgName + "::" + line.ModuleName.String()
		if prevSpan, exists := registeredPairs[pairKey]; exists {
			errs = append(errs, &Error{
				Code:      dittoerrors.DuplicateImportLine,
				Message:   fmt.Sprintf("module %q is imported more than once", line.ModuleName.String()),
				Span:      line.Span,
				OtherSpan: &prevSpan,
			})
			continue
		}
		registeredPairs[pairKey] = line.Span

		alias := line.ModuleName.Segments[len(line.ModuleName.Segments)-1].Value
		aliasSpan := line.ModuleSpan
		if line.Alias != nil {
			alias = line.Alias.Value
			aliasSpan = line.AliasSpan
		}
		if prevSpan, taken := takenAliases[alias]; taken {
			errs = append(errs, &Error{
				Code:      dittoerrors.DuplicateImportModule,
				Message:   fmt.Sprintf("import alias %q is already taken", alias),
				Span:      aliasSpan,
				OtherSpan: &prevSpan,
			})
			continue
		}
		takenAliases[alias] = aliasSpan

		crossPackage := pkgName != currentPackage
		installAllQualified(result, alias, line, pkgName, crossPackage, exports)

		if line.Unqualified != nil {
			errs = append(errs, processUnqualifiedList(result, line, pkgName, crossPackage, exports)...)
		}
	}

	return result, errs
}

func selectExports(line *ast.ImportLine, pkgName, currentPackage string, everything *Everything) (*core.Exports, error) {
	modKey := line.ModuleName.String()
	if pkgName == currentPackage {
		ex, ok := everything.Modules[modKey]
		if !ok {
			return nil, &Error{Code: dittoerrors.ModuleNotFound, Message: fmt.Sprintf("module %q not found", modKey), Span: line.ModuleSpan}
		}
		return ex, nil
	}
	pkgModules, ok := everything.Packages[pkgName]
	if !ok {
		return nil, &Error{Code: dittoerrors.PackageNotFound, Message: fmt.Sprintf("package %q not found", pkgName), Span: line.Span}
	}
	ex, ok := pkgModules[modKey]
	if !ok {
		return nil, &Error{Code: dittoerrors.ModuleNotFound, Message: fmt.Sprintf("module %q not found in package %q", modKey, pkgName), Span: line.ModuleSpan}
	}
	return ex, nil
}

// installAllQualified installs every exported type/constructor/value
// under "Alias.name". Cross-package constructor/value schemes are
// requalified at install time so every Constructor/ConstructorAlias
// node they carry names the exporting package explicitly, never
// relying on the importer's own package identity.
func installAllQualified(result *Imported, alias string, line *ast.ImportLine, pkgName string, crossPackage bool, exports *core.Exports) {
	for name, t := range exports.Types {
		ref := core.GlobalRef{PackageName: pkgName, ModuleName: line.ModuleName.String(), Name: name}
		result.Types[alias+"."+name] = &ImportedType{ImportSpan: line.Span, RefSpan: line.ModuleSpan, Ref: ref, Export: t}
	}
	for name, c := range exports.Constructors {
		if crossPackage {
			c = requalifyConstructorExport(pkgName, c)
		}
		ref := core.GlobalRef{PackageName: pkgName, ModuleName: line.ModuleName.String(), Name: name}
		result.Constructors[alias+"."+name] = &ImportedConstructor{ImportSpan: line.Span, RefSpan: line.ModuleSpan, Ref: ref, Export: c}
	}
	for name, v := range exports.Values {
		if crossPackage {
			v = requalifyValueExport(pkgName, v)
		}
		ref := core.GlobalRef{PackageName: pkgName, ModuleName: line.ModuleName.String(), Name: name}
		result.Values[alias+"."+name] = &ImportedValue{ImportSpan: line.Span, RefSpan: line.ModuleSpan, Ref: ref, Export: v}
	}
}

// processUnqualifiedList installs the items named in an unqualified
// import list, `import Mod (foo, Bar, Baz(..))`. A bare name already
// installed by an earlier import line (necessarily from a different
// module, since DuplicateImportLine already rejects re-importing the
// same one) is a rebind, not a silent overwrite.
func processUnqualifiedList(result *Imported, line *ast.ImportLine, pkgName string, crossPackage bool, exports *core.Exports) []error {
	var errs []error
	seenValues := map[string]bool{}
	seenTypes := map[string]bool{}

	for _, item := range line.Unqualified {
		switch {
		case item.Value != nil:
			name := item.Value.Value
			v, ok := exports.Values[name]
			if !ok {
				errs = append(errs, &Error{Code: dittoerrors.UnknownValueImport, Message: fmt.Sprintf("module %q has no exported value %q", line.ModuleName.String(), name), Span: item.Span})
				continue
			}
			if seenValues[name] {
				continue // duplicate within the same list: skipped, no warning is recorded
			}
			seenValues[name] = true
			if prev, exists := result.Values[name]; exists {
				errs = append(errs, &Error{Code: dittoerrors.ReboundImportValue, Message: fmt.Sprintf("value %q is already imported", name), Span: item.Span, OtherSpan: &prev.RefSpan})
				continue
			}
			if crossPackage {
				v = requalifyValueExport(pkgName, v)
			}
			ref := core.GlobalRef{PackageName: pkgName, ModuleName: line.ModuleName.String(), Name: name}
			result.Values[name] = &ImportedValue{ImportSpan: line.Span, RefSpan: item.Span, Ref: ref, Export: v}

		case item.Type != nil:
			name := item.Type.Value
			t, ok := exports.Types[name]
			if !ok {
				errs = append(errs, &Error{Code: dittoerrors.UnknownTypeImport, Message: fmt.Sprintf("module %q has no exported type %q", line.ModuleName.String(), name), Span: item.Span})
				continue
			}
			if seenTypes[name] {
				continue
			}
			seenTypes[name] = true
			if prev, exists := result.Types[name]; exists {
				errs = append(errs, &Error{Code: dittoerrors.ReboundImportType, Message: fmt.Sprintf("type %q is already imported", name), Span: item.Span, OtherSpan: &prev.RefSpan})
				continue
			}
			ref := core.GlobalRef{PackageName: pkgName, ModuleName: line.ModuleName.String(), Name: name}
			result.Types[name] = &ImportedType{ImportSpan: line.Span, RefSpan: item.Span, Ref: ref, Export: t}

			if item.WithConstructors {
				found := 0
				for cname, c := range exports.Constructors {
					if c.ReturnTypeName != name {
						continue
					}
					found++
					if prev, exists := result.Constructors[cname]; exists {
						errs = append(errs, &Error{Code: dittoerrors.ReboundImportConstructor, Message: fmt.Sprintf("constructor %q is already imported", cname), Span: item.Span, OtherSpan: &prev.RefSpan})
						continue
					}
					if crossPackage {
						c = requalifyConstructorExport(pkgName, c)
					}
					cref := core.GlobalRef{PackageName: pkgName, ModuleName: line.ModuleName.String(), Name: cname}
					result.Constructors[cname] = &ImportedConstructor{ImportSpan: line.Span, RefSpan: item.Span, Ref: cref, Export: c}
				}
				if found == 0 {
					errs = append(errs, &Error{Code: dittoerrors.NoVisibleConstructors, Message: fmt.Sprintf("type %q has no visible constructors", name), Span: item.Span})
				}
			}
		}
	}
	return errs
}

// requalifyConstructorExport returns c with its scheme's Constructor/
// ConstructorAlias nodes requalified against pkg, leaving c untouched
// when the scheme already names its package explicitly.
func requalifyConstructorExport(pkg string, c *core.ConstructorExport) *core.ConstructorExport {
	return &core.ConstructorExport{
		Scheme:         RequalifyScheme(pkg, c.Scheme),
		ReturnTypeName: c.ReturnTypeName,
		Doc:            c.Doc,
		Position:       c.Position,
	}
}

// requalifyValueExport is requalifyConstructorExport's value-export
// counterpart.
func requalifyValueExport(pkg string, v *core.ValueExport) *core.ValueExport {
	return &core.ValueExport{Scheme: RequalifyScheme(pkg, v.Scheme), Doc: v.Doc}
}

// Errors converts a slice of resolution errors into Reports for the
// diagnostics pipeline.
func Errors(errs []error) []*dittoerrors.Report {
	out := make([]*dittoerrors.Report, 0, len(errs))
	for _, e := range errs {
		if re, ok := e.(*Error); ok {
			out = append(out, re.toReport())
		}
	}
	return out
}
