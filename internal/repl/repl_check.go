package repl

import (
	"fmt"
	"io"
	"sort"

	"github.com/ditto-lang/ditto/internal/ast"
	"github.com/ditto-lang/ditto/internal/core"
	"github.com/ditto-lang/ditto/internal/kindcheck"
	"github.com/ditto-lang/ditto/internal/parser"
	"github.com/ditto-lang/ditto/internal/typecheck"
	"github.com/ditto-lang/ditto/internal/types"
)

// sessionHeader wraps one entered line as a module body so the
// existing module-level parser can be reused unchanged for a single
// declaration at a time.
const sessionHeader = "module Repl exports (..);\n"

// ProcessDeclaration parses input as a type or value declaration,
// checks it against the session's accumulating environment, widens
// that environment on success, and prints the result.
func (r *REPL) ProcessDeclaration(input string, out io.Writer) {
	src := sessionHeader + input
	if !endsInSemicolon(input) {
		src += ";"
	}

	module, errs := parser.ParseFile("<repl>", []byte(src))
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintf(out, "%s: %s\n", red("parse error"), err)
		}
		return
	}

	if len(module.Types) > 0 {
		r.checkTypes(module.Types, out)
	}
	if len(module.Values) > 0 {
		r.checkValues(module.Values, out)
	}
	if len(module.Types) == 0 && len(module.Values) == 0 {
		fmt.Fprintln(out, yellow("(nothing to check)"))
	}
}

func endsInSemicolon(input string) bool {
	for i := len(input) - 1; i >= 0; i-- {
		switch input[i] {
		case ' ', '\t', '\n', '\r':
			continue
		case ';':
			return true
		default:
			return false
		}
	}
	return false
}

func (r *REPL) checkTypes(decls []*ast.TypeDecl, out io.Writer) {
	result, errs := kindcheck.CheckTypeDeclarations(r.kindEnv, r.module, decls, true)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintf(out, "%s: %s\n", red(err.Code), err.Message)
		}
		return
	}
	for _, name := range sortedKeys(result.Types) {
		decl := result.Types[name]
		r.kindEnv.Types[name] = kindcheck.EnvType{
			Canonical: ast.FullyQualified[ast.ProperName]{ModuleName: r.module, Value: decl.Name},
			Kind:      decl.Kind,
		}
		fmt.Fprintf(out, "%s %s :: %s\n", cyan("type"), name, decl.Kind.String())
	}
	r.registerConstructors(result, out)
}

// registerConstructors widens typeEnv with every constructor the
// session's new types declared, so later value declarations can
// construct and pattern-match on them without a separate import.
func (r *REPL) registerConstructors(result *kindcheck.Result, out io.Writer) {
	for _, name := range sortedConstructorNames(result.Constructors) {
		ctor := result.Constructors[name]
		decl := typeDeclFor(result.Types, ctor.ReturnType)
		var forall []int
		if decl != nil {
			forall = decl.Variables
		}
		r.typeEnv.Constructors[name] = &typecheck.EnvConstructor{
			Scheme:         &types.Scheme{Forall: forall, Signature: constructorSignature(ctor)},
			ReturnTypeName: typeConstructorName(ctor.ReturnType),
			Introduction:   ctor.Span,
		}
		fmt.Fprintf(out, "%s %s :: %s\n", cyan("ctor"), name, r.typeEnv.Constructors[name].Scheme.Signature.String())
	}
}

func (r *REPL) checkValues(decls []*ast.ValueDecl, out io.Writer) {
	annotate := func(texpr ast.TypeExpr) (types.Type, *typecheck.Error) {
		t, kerr := kindcheck.CheckAnnotation(r.kindEnv, texpr)
		if kerr != nil {
			return nil, &typecheck.Error{Code: kerr.Code, Message: kerr.Message, Span: kerr.Span}
		}
		return t, nil
	}

	result, errs := typecheck.CheckValueDeclarations(r.typeEnv, r.module, decls, annotate, true)
	if len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintf(out, "%s: %s\n", red(err.Code), err.Message)
		}
		return
	}
	for _, name := range sortedKeys(result.Values) {
		decl := result.Values[name]
		r.typeEnv.Values[name] = &typecheck.EnvValue{Scheme: decl.Scheme, Introduction: decl.Span}
		fmt.Fprintf(out, "%s :: %s\n", green(name), schemeString(decl.Scheme))
	}
}

func schemeString(scheme *types.Scheme) string {
	if len(scheme.Forall) == 0 {
		return scheme.Signature.String()
	}
	vars := make([]string, len(scheme.Forall))
	for i, id := range scheme.Forall {
		vars[i] = fmt.Sprintf("t%d", id)
	}
	return fmt.Sprintf("forall %s. %s", joinWithSpaces(vars), scheme.Signature.String())
}

func joinWithSpaces(parts []string) string {
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += " "
		}
		out += p
	}
	return out
}

func constructorSignature(ctor *core.ConstructorDeclaration) types.Type {
	if len(ctor.FieldTypes) == 0 {
		return ctor.ReturnType
	}
	return &types.Function{Parameters: ctor.FieldTypes, Return: ctor.ReturnType}
}

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

func typeDeclFor(typeDecls map[string]*core.TypeDeclaration, returnType types.Type) *core.TypeDeclaration {
	return typeDecls[typeConstructorName(returnType)]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedConstructorNames(ctors map[string]*core.ConstructorDeclaration) []string {
	return sortedKeys(ctors)
}
