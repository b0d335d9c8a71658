package parser

import (
	"testing"

	"github.com/ditto-lang/ditto/internal/ast"
)

func parseModule(t *testing.T, src string) *ast.Module {
	t.Helper()
	module, errs := ParseFile("test.ditto", []byte(src))
	if len(errs) != 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	return module
}

func TestParsesModuleHeaderAndName(t *testing.T) {
	module := parseModule(t, `module My.Mod exports (..);`)
	if got := module.Name.String(); got != "My.Mod" {
		t.Fatalf("got module name %q, want My.Mod", got)
	}
}

func TestParsesExplicitExportList(t *testing.T) {
	module := parseModule(t, `module Foo exports (foo, Bar(..), Baz,);`)
	if module.Name.String() != "Foo" {
		t.Fatalf("got %q", module.Name.String())
	}
}

func TestParsesWholeModuleImport(t *testing.T) {
	module := parseModule(t, `
module Foo exports (..);
import Bar.Baz;
`)
	if len(module.Imports) != 1 {
		t.Fatalf("got %d imports, want 1", len(module.Imports))
	}
	imp := module.Imports[0]
	if imp.ModuleName.String() != "Bar.Baz" {
		t.Fatalf("got module %q", imp.ModuleName.String())
	}
	if imp.Package != nil {
		t.Fatalf("expected nil package, got %v", imp.Package)
	}
	if imp.Alias != nil {
		t.Fatalf("expected nil alias, got %v", imp.Alias)
	}
}

func TestParsesScopedAliasedImportWithItems(t *testing.T) {
	module := parseModule(t, `
module Foo exports (..);
import (some-package) Some.Module as SM (foo, Ctor(..), Bar,);
`)
	imp := module.Imports[0]
	if imp.Package == nil || imp.Package.Value != "some-package" {
		t.Fatalf("got package %v", imp.Package)
	}
	if imp.Alias == nil || imp.Alias.Value != "SM" {
		t.Fatalf("got alias %v", imp.Alias)
	}
	if len(imp.Unqualified) != 3 {
		t.Fatalf("got %d unqualified items, want 3", len(imp.Unqualified))
	}
	if imp.Unqualified[0].Value == nil || imp.Unqualified[0].Value.Value != "foo" {
		t.Fatalf("item 0: got %+v", imp.Unqualified[0])
	}
	if imp.Unqualified[1].Type == nil || imp.Unqualified[1].Type.Value != "Ctor" || !imp.Unqualified[1].WithConstructors {
		t.Fatalf("item 1: got %+v", imp.Unqualified[1])
	}
	if imp.Unqualified[2].Type == nil || imp.Unqualified[2].Type.Value != "Bar" || imp.Unqualified[2].WithConstructors {
		t.Fatalf("item 2: got %+v", imp.Unqualified[2])
	}
}

func TestParsesAdtTypeDecl(t *testing.T) {
	module := parseModule(t, `
module Foo exports (..);
type Maybe(a) = Just(a) | Nothing;
`)
	if len(module.Types) != 1 {
		t.Fatalf("got %d types, want 1", len(module.Types))
	}
	decl := module.Types[0]
	if decl.Name.Value != "Maybe" {
		t.Fatalf("got type name %q", decl.Name.Value)
	}
	if len(decl.Variables) != 1 || decl.Variables[0].Value != "a" {
		t.Fatalf("got variables %+v", decl.Variables)
	}
	if len(decl.Constructors) != 2 {
		t.Fatalf("got %d constructors, want 2", len(decl.Constructors))
	}
	if decl.Constructors[0].Name.Value != "Just" || len(decl.Constructors[0].Fields) != 1 {
		t.Fatalf("got %+v", decl.Constructors[0])
	}
	if decl.Constructors[1].Name.Value != "Nothing" || len(decl.Constructors[1].Fields) != 0 {
		t.Fatalf("got %+v", decl.Constructors[1])
	}
	if decl.Alias != nil {
		t.Fatalf("expected nil alias for ADT decl")
	}
}

func TestParsesTypeAliasDecl(t *testing.T) {
	module := parseModule(t, `
module Foo exports (..);
type IntPair = alias { fst: Int, snd: Int };
`)
	decl := module.Types[0]
	if decl.Alias == nil {
		t.Fatal("expected non-nil alias")
	}
	if decl.Constructors != nil {
		t.Fatalf("expected nil constructors for alias decl, got %+v", decl.Constructors)
	}
	record, ok := decl.Alias.(*ast.TypeExprRecordClosed)
	if !ok {
		t.Fatalf("got %T, want *ast.TypeExprRecordClosed", decl.Alias)
	}
	if len(record.Fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(record.Fields))
	}
}

func TestParsesValueDeclWithAnnotation(t *testing.T) {
	module := parseModule(t, `
module Foo exports (..);
five: Int = 5;
`)
	decl := module.Values[0]
	if decl.Name.Value != "five" {
		t.Fatalf("got name %q", decl.Name.Value)
	}
	if decl.Annotation == nil {
		t.Fatal("expected non-nil annotation")
	}
	lit, ok := decl.Expr.(*ast.ExprInt)
	if !ok || lit.Lexeme != "5" {
		t.Fatalf("got %+v", decl.Expr)
	}
}

func TestParsesForeignValueDecl(t *testing.T) {
	module := parseModule(t, `
module Foo exports (..);
foreign log: (String) -> Unit;
`)
	decl := module.Values[0]
	if !decl.IsForeign {
		t.Fatal("expected IsForeign to be true")
	}
	if decl.Expr != nil {
		t.Fatalf("expected nil body for a foreign decl, got %+v", decl.Expr)
	}
}

func parseValueExpr(t *testing.T, exprSrc string) ast.Expr {
	t.Helper()
	src := "module Foo exports (..);\nx = " + exprSrc + ";\n"
	module := parseModule(t, src)
	return module.Values[0].Expr
}

func TestParsesIfExpr(t *testing.T) {
	expr := parseValueExpr(t, "if true then 1 else 2")
	ifExpr, ok := expr.(*ast.ExprIf)
	if !ok {
		t.Fatalf("got %T", expr)
	}
	if _, ok := ifExpr.Condition.(*ast.ExprTrue); !ok {
		t.Fatalf("got condition %T", ifExpr.Condition)
	}
}

func TestParsesMatchExprWithArmsAndGuard(t *testing.T) {
	expr := parseValueExpr(t, `
match foo with
| Just(x) if x -> x
| Nothing -> unit
end`)
	match, ok := expr.(*ast.ExprMatch)
	if !ok {
		t.Fatalf("got %T", expr)
	}
	if len(match.Arms) != 2 {
		t.Fatalf("got %d arms, want 2", len(match.Arms))
	}
	if match.Arms[0].Guard == nil {
		t.Fatal("expected first arm to have a guard")
	}
	ctor, ok := match.Arms[0].Pattern.(*ast.PatternConstructor)
	if !ok || ctor.Name.Value.Value != "Just" || len(ctor.Args) != 1 {
		t.Fatalf("got pattern %+v", match.Arms[0].Pattern)
	}
}

func TestParsesFunctionLiteralAndCall(t *testing.T) {
	expr := parseValueExpr(t, "fn (x, _unused: Int) -> f(x)")
	fn, ok := expr.(*ast.ExprFunction)
	if !ok {
		t.Fatalf("got %T", expr)
	}
	if len(fn.Binders) != 2 || fn.Binders[0].Name.Value != "x" {
		t.Fatalf("got binders %+v", fn.Binders)
	}
	if fn.Binders[1].Annotation == nil {
		t.Fatal("expected annotation on second binder")
	}
	if _, ok := fn.Body.(*ast.ExprCall); !ok {
		t.Fatalf("got body %T", fn.Body)
	}
}

func TestParsesChainedLetBindings(t *testing.T) {
	expr := parseValueExpr(t, "let five = 5; ten: Int = 10; in add(five, ten)")
	outer, ok := expr.(*ast.ExprLet)
	if !ok {
		t.Fatalf("got %T", expr)
	}
	if outer.Name.Value != "five" {
		t.Fatalf("got outer binding %q", outer.Name.Value)
	}
	inner, ok := outer.Rest.(*ast.ExprLet)
	if !ok {
		t.Fatalf("got rest %T", outer.Rest)
	}
	if inner.Name.Value != "ten" || inner.Annotation == nil {
		t.Fatalf("got inner binding %+v", inner)
	}
	if _, ok := inner.Rest.(*ast.ExprCall); !ok {
		t.Fatalf("got innermost rest %T", inner.Rest)
	}
}

func TestParsesDoBlockWithBindAndReturn(t *testing.T) {
	expr := parseValueExpr(t, "do { x <- someEffect(); logSomething(); return f(x) }")
	do, ok := expr.(*ast.ExprEffect)
	if !ok {
		t.Fatalf("got %T", expr)
	}
	if len(do.Statements) != 3 {
		t.Fatalf("got %d statements, want 3", len(do.Statements))
	}
	if _, ok := do.Statements[0].(*ast.EffectBind); !ok {
		t.Fatalf("statement 0: got %T", do.Statements[0])
	}
	if _, ok := do.Statements[1].(*ast.EffectExpression); !ok {
		t.Fatalf("statement 1: got %T", do.Statements[1])
	}
	if _, ok := do.Statements[2].(*ast.EffectReturn); !ok {
		t.Fatalf("statement 2: got %T", do.Statements[2])
	}
}

func TestParsesRecordLiteralWithPunning(t *testing.T) {
	expr := parseValueExpr(t, "{ x = 1, y }")
	record, ok := expr.(*ast.ExprRecord)
	if !ok {
		t.Fatalf("got %T", expr)
	}
	if len(record.Fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(record.Fields))
	}
	if record.Fields[0].Value == nil {
		t.Fatal("expected field 0 to have an explicit value")
	}
	if record.Fields[1].Value != nil {
		t.Fatalf("expected field 1 to be punned, got %+v", record.Fields[1].Value)
	}
}

func TestParsesRecordUpdate(t *testing.T) {
	expr := parseValueExpr(t, "{ r | x = 2 }")
	update, ok := expr.(*ast.ExprRecordUpdate)
	if !ok {
		t.Fatalf("got %T", expr)
	}
	if len(update.Fields) != 1 || update.Fields[0].Name.Value != "x" {
		t.Fatalf("got fields %+v", update.Fields)
	}
}

func TestParsesRecordAccessChainedWithCall(t *testing.T) {
	expr := parseValueExpr(t, "Foo.foo().bar()")
	outerCall, ok := expr.(*ast.ExprCall)
	if !ok {
		t.Fatalf("got %T", expr)
	}
	access, ok := outerCall.Function.(*ast.ExprRecordAccess)
	if !ok {
		t.Fatalf("got function %T", outerCall.Function)
	}
	if access.Label.Value != "bar" {
		t.Fatalf("got label %q", access.Label.Value)
	}
	innerCall, ok := access.Target.(*ast.ExprCall)
	if !ok {
		t.Fatalf("got target %T", access.Target)
	}
	variable, ok := innerCall.Function.(*ast.ExprVariable)
	if !ok || variable.Name.ModuleName == nil || variable.Name.ModuleName.Value != "Foo" || variable.Name.Value.Value != "foo" {
		t.Fatalf("got %+v", innerCall.Function)
	}
}

func TestParsesQualifiedConstructor(t *testing.T) {
	expr := parseValueExpr(t, "Foo.Bar")
	ctor, ok := expr.(*ast.ExprConstructor)
	if !ok {
		t.Fatalf("got %T", expr)
	}
	if ctor.Name.ModuleName == nil || ctor.Name.ModuleName.Value != "Foo" || ctor.Name.Value.Value != "Bar" {
		t.Fatalf("got %+v", ctor.Name)
	}
}

func TestParseErrorsOnMismatchedToken(t *testing.T) {
	_, errs := ParseFile("test.ditto", []byte(`module Foo exports (..)`))
	if len(errs) == 0 {
		t.Fatal("expected a parse error for a missing semicolon")
	}
}

func TestPartialParseHeaderStopsBeforeDeclarations(t *testing.T) {
	module, errs := PartialParseHeader("test.ditto", []byte(`
module Foo exports (..);
import Bar.Baz;
import Qux;

this is not valid ditto and should never be reached
`))
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if module.Name.String() != "Foo" {
		t.Fatalf("got module name %q", module.Name.String())
	}
	if len(module.Imports) != 2 {
		t.Fatalf("got %d imports, want 2", len(module.Imports))
	}
	if len(module.Types) != 0 || len(module.Values) != 0 {
		t.Fatalf("expected no declarations to be parsed, got %d types, %d values", len(module.Types), len(module.Values))
	}
}
