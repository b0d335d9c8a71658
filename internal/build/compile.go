package build

import (
	"fmt"
	"os"
	"sort"

	"github.com/ditto-lang/ditto/internal/ast"
	"github.com/ditto-lang/ditto/internal/core"
	"github.com/ditto-lang/ditto/internal/iface"
	"github.com/ditto-lang/ditto/internal/kindcheck"
	"github.com/ditto-lang/ditto/internal/parser"
	"github.com/ditto-lang/ditto/internal/resolve"
	"github.com/ditto-lang/ditto/internal/typecheck"
	"github.com/ditto-lang/ditto/internal/types"
)

// CompiledModule is the result of running the full per-module pipeline:
// the elaborated module plus its serialized interface artefact.
type CompiledModule struct {
	Module  *core.Module
	Exports *iface.ExportsArtifact
}

// CompileModule runs parse, import resolution, kind checking and type
// checking for one file. everything must already carry every
// dependency's exports: current-package modules compiled earlier in
// topological order, plus every installed package's exports. Every
// top-level declaration is treated as exported; the parser reads a
// module's `exports (...)` list and discards it.
// deterministic selects stable SCC scheduling, for reproducible builds
// and golden tests.
func CompileModule(currentPackage, path string, everything *resolve.Everything, deterministic bool) (*CompiledModule, []error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, []error{fmt.Errorf("reading %s: %w", path, err)}
	}

	parsed, parseErrs := parser.ParseFile(path, src)
	if len(parseErrs) > 0 {
		return nil, parseErrs
	}

	resolved, resolveErrs := resolve.Resolve(currentPackage, parsed.Imports, everything)
	if len(resolveErrs) > 0 {
		return nil, resolveErrs
	}

	kindEnv := kindEnvFromImports(resolved)
	kindResult, kindErrs := kindcheck.CheckTypeDeclarations(kindEnv, parsed.Name, parsed.Types, deterministic)
	if len(kindErrs) > 0 {
		return nil, errorSlice(kindErrs)
	}
	for name, decl := range kindResult.Types {
		kindEnv.Types[name] = kindcheck.EnvType{Canonical: ast.FullyQualified[ast.ProperName]{ModuleName: parsed.Name, Value: decl.Name}, Kind: decl.Kind}
	}

	typeEnv := typeEnvFromImports(resolved)
	registerLocalConstructors(typeEnv, kindResult)

	annotate := func(texpr ast.TypeExpr) (types.Type, *typecheck.Error) {
		t, kerr := kindcheck.CheckAnnotation(kindEnv, texpr)
		if kerr != nil {
			return nil, &typecheck.Error{Code: kerr.Code, Message: kerr.Message, Span: kerr.Span}
		}
		return t, nil
	}

	typeResult, typeErrs := typecheck.CheckValueDeclarations(typeEnv, parsed.Name, parsed.Values, annotate, deterministic)
	if len(typeErrs) > 0 {
		return nil, errorSlice(typeErrs)
	}

	module := &core.Module{
		Name:        parsed.Name,
		TypeDecls:   typeDeclSlice(kindResult),
		ValueGroups: valueGroupSlice(typeResult),
		Exports:     buildExports(kindResult, typeResult),
	}
	module.Warnings = append(kindWarnings(kindResult.Warnings), typeWarnings(typeResult.Warnings)...)

	artifact, err := iface.EncodeExports(parsed.Name.String(), module.Exports)
	if err != nil {
		return nil, []error{fmt.Errorf("encoding exports for %s: %w", parsed.Name.String(), err)}
	}

	return &CompiledModule{Module: module, Exports: artifact}, nil
}

// refToCanonical turns a resolved core.GlobalRef back into the
// FullyQualified form the checkers' environments key types and values
// by: GlobalRef stores its module name as a dotted string so it can sit
// in a plain map, while the checkers want it structured.
func refToCanonical(ref core.GlobalRef) ast.FullyQualified[ast.ProperName] {
	var pkg *ast.PackageName
	if ref.PackageName != "" {
		pkg = &ast.PackageName{Value: ref.PackageName}
	}
	return ast.FullyQualified[ast.ProperName]{
		PackageName: pkg,
		ModuleName:  moduleNameSegments(ref.ModuleName),
		Value:       ast.ProperName{Value: ref.Name},
	}
}

// kindEnvFromImports seeds a fresh kind-checking environment with every
// type this module imports, so its own declarations can reference them.
func kindEnvFromImports(resolved *resolve.Imported) *kindcheck.Env {
	env := kindcheck.NewEnv()
	for name, it := range resolved.Types {
		env.Types[name] = kindcheck.EnvType{Canonical: refToCanonical(it.Ref), Kind: it.Export.Kind}
	}
	return env
}

// typeEnvFromImports seeds a fresh typechecking environment with every
// value and constructor this module imports.
func typeEnvFromImports(resolved *resolve.Imported) *typecheck.Env {
	env := typecheck.NewEnv()
	for name, iv := range resolved.Values {
		ref := iv.Ref
		env.Values[name] = &typecheck.EnvValue{Scheme: iv.Export.Scheme, Ref: &ref, Introduction: iv.RefSpan}
	}
	for name, ic := range resolved.Constructors {
		ref := ic.Ref
		env.Constructors[name] = &typecheck.EnvConstructor{
			Scheme:         ic.Export.Scheme,
			Ref:            &ref,
			ReturnTypeName: ic.Export.ReturnTypeName,
			Introduction:   ic.RefSpan,
		}
	}
	return env
}

// registerLocalConstructors adds this module's own ADT constructors to
// typeEnv, built fresh from the kind checker's output: value
// declarations in the same module construct and pattern-match on them
// without an import.
func registerLocalConstructors(typeEnv *typecheck.Env, kindResult *kindcheck.Result) {
	names := sortedConstructorNames(kindResult.Constructors)
	for _, name := range names {
		ctor := kindResult.Constructors[name]
		decl := declarationOf(kindResult.Types, ctor.ReturnType)
		var forall []int
		if decl != nil {
			forall = decl.Variables
		}
		typeEnv.Constructors[name] = &typecheck.EnvConstructor{
			Scheme:         &types.Scheme{Forall: forall, Signature: constructorSignature(ctor)},
			ReturnTypeName: typeConstructorName(ctor.ReturnType),
			Introduction:   ctor.Span,
		}
	}
}

func constructorSignature(ctor *core.ConstructorDeclaration) types.Type {
	if len(ctor.FieldTypes) == 0 {
		return ctor.ReturnType
	}
	return &types.Function{Parameters: ctor.FieldTypes, Return: ctor.ReturnType}
}

// typeConstructorName unwraps a nominal type's head constructor name,
// whether it's bare (no type parameters) or applied (types.Call over a
// types.Constructor head).
func typeConstructorName(t types.Type) string {
	switch t := t.(type) {
	case *types.Constructor:
		return t.Canonical.Value.Value
	case *types.Call:
		return typeConstructorName(t.Function)
	default:
		return ""
	}
}

func declarationOf(typeDecls map[string]*core.TypeDeclaration, returnType types.Type) *core.TypeDeclaration {
	name := typeConstructorName(returnType)
	return typeDecls[name]
}

func sortedConstructorNames(ctors map[string]*core.ConstructorDeclaration) []string {
	names := make([]string, 0, len(ctors))
	for name := range ctors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// buildExports treats every declared type, constructor and value as
// exported.
func buildExports(kindResult *kindcheck.Result, typeResult *typecheck.Result) *core.Exports {
	exports := core.NewExports()
	for name, decl := range kindResult.Types {
		exports.Types[name] = &core.TypeExport{Kind: decl.Kind, Alias: decl.IsAlias, Doc: decl.Doc}
	}
	for name, ctor := range kindResult.Constructors {
		exports.Constructors[name] = &core.ConstructorExport{
			Scheme:         &types.Scheme{Forall: declarationVariables(kindResult.Types, ctor.ReturnType), Signature: constructorSignature(ctor)},
			ReturnTypeName: typeConstructorName(ctor.ReturnType),
			Doc:            ctor.Doc,
			Position:       ctor.Span,
		}
	}
	for name, val := range typeResult.Values {
		exports.Values[name] = &core.ValueExport{Scheme: val.Scheme, Doc: val.Doc}
	}
	return exports
}

func declarationVariables(typeDecls map[string]*core.TypeDeclaration, returnType types.Type) []int {
	if decl := declarationOf(typeDecls, returnType); decl != nil {
		return decl.Variables
	}
	return nil
}

func typeDeclSlice(kindResult *kindcheck.Result) []*core.TypeDeclaration {
	names := make([]string, 0, len(kindResult.Types))
	for name := range kindResult.Types {
		names = append(names, name)
	}
	sort.Strings(names)
	out := make([]*core.TypeDeclaration, len(names))
	for i, name := range names {
		out[i] = kindResult.Types[name]
	}
	return out
}

func valueGroupSlice(typeResult *typecheck.Result) []*core.ValueGroup {
	out := make([]*core.ValueGroup, len(typeResult.Groups))
	for i, g := range typeResult.Groups {
		decls := make([]*core.ValueDeclaration, len(g.Names))
		for j, name := range g.Names {
			decls[j] = typeResult.Values[name]
		}
		out[i] = &core.ValueGroup{Declarations: decls, IsRecursive: g.IsRecursive}
	}
	return out
}

func kindWarnings(warnings []kindcheck.Warning) []core.Warning {
	out := make([]core.Warning, len(warnings))
	for i, w := range warnings {
		out[i] = core.Warning{Code: w.Code, Span: w.Span}
	}
	return out
}

func typeWarnings(warnings []typecheck.Warning) []core.Warning {
	out := make([]core.Warning, len(warnings))
	for i, w := range warnings {
		out[i] = core.Warning{Code: w.Code, Span: w.Span}
	}
	return out
}

func errorSlice[E error](errs []E) []error {
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return out
}
