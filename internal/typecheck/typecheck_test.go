package typecheck

import (
	"testing"

	"github.com/ditto-lang/ditto/internal/ast"
	"github.com/ditto-lang/ditto/internal/types"
)

func properName(v string) ast.ProperName { return ast.ProperName{Value: v} }
func name(v string) ast.Name             { return ast.Name{Value: v} }

func bareVar(n string) ast.Expr {
	return &ast.ExprVariable{Name: ast.Qualified[ast.Name]{Value: name(n)}}
}

func TestInferLiteralsYieldPrimTypes(t *testing.T) {
	env := NewEnv()
	state := NewState()

	expr, err := Infer(env, state, &ast.ExprTrue{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := expr.GetType().(*types.PrimConstructor); !ok {
		t.Fatalf("expected a prim type, got %T", expr.GetType())
	}
}

func TestInferIfUnifiesBothBranches(t *testing.T) {
	env := NewEnv()
	state := NewState()

	expr, err := Infer(env, state, &ast.ExprIf{
		Condition: &ast.ExprTrue{},
		Then:      &ast.ExprInt{Lexeme: "1"},
		Else:      &ast.ExprInt{Lexeme: "2"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if expr.GetType() != types.Int {
		t.Fatalf("expected Int, got %s", expr.GetType())
	}
}

func TestInferIfBranchMismatchIsAnError(t *testing.T) {
	env := NewEnv()
	state := NewState()

	_, err := Infer(env, state, &ast.ExprIf{
		Condition: &ast.ExprTrue{},
		Then:      &ast.ExprInt{Lexeme: "1"},
		Else:      &ast.ExprTrue{},
	})
	if err == nil {
		t.Fatal("expected a type mismatch error")
	}
}

func TestInferFunctionAndCall(t *testing.T) {
	env := NewEnv()
	state := NewState()

	// (x) -> x applied to 1
	identity := &ast.ExprFunction{
		Binders: []ast.FunctionBinder{{Name: name("x")}},
		Body:    bareVar("x"),
	}
	call := &ast.ExprCall{Function: identity, Arguments: []ast.Expr{&ast.ExprInt{Lexeme: "1"}}}

	expr, err := Infer(env, state, call)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := types.Apply(state.Substitution, expr.GetType())
	if got != types.Int {
		t.Fatalf("expected Int, got %s", got)
	}
}

func TestInferUnknownVariableError(t *testing.T) {
	env := NewEnv()
	state := NewState()

	_, err := Infer(env, state, bareVar("nope"))
	if err == nil {
		t.Fatal("expected an unknown-variable error")
	}
	if err.Code != "IMP001" {
		t.Fatalf("expected IMP001, got %s", err.Code)
	}
}

func TestInferFunctionWarnsOnUnusedBinder(t *testing.T) {
	env := NewEnv()
	state := NewState()

	fn := &ast.ExprFunction{
		Binders: []ast.FunctionBinder{{Name: name("unused")}},
		Body:    &ast.ExprInt{Lexeme: "1"},
	}
	if _, err := Infer(env, state, fn); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	found := false
	for _, w := range state.Warnings {
		if w.Code == WarnUnusedFunctionBinder {
			found = true
		}
	}
	if !found {
		t.Fatal("expected an unused-function-binder warning")
	}
}

func TestInferFunctionDuplicateBinderIsAnError(t *testing.T) {
	env := NewEnv()
	state := NewState()

	fn := &ast.ExprFunction{
		Binders: []ast.FunctionBinder{{Name: name("x")}, {Name: name("x")}},
		Body:    bareVar("x"),
	}
	_, err := Infer(env, state, fn)
	if err == nil {
		t.Fatal("expected a duplicate-binder error")
	}
	if err.Code != "TYC020" {
		t.Fatalf("expected TYC020, got %s", err.Code)
	}
}

func TestInferLetBindsValueForRest(t *testing.T) {
	env := NewEnv()
	state := NewState()

	let := &ast.ExprLet{
		Name:  name("x"),
		Value: &ast.ExprInt{Lexeme: "1"},
		Rest:  bareVar("x"),
	}
	expr, err := Infer(env, state, let)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := types.Apply(state.Substitution, expr.GetType()); got != types.Int {
		t.Fatalf("expected Int, got %s", got)
	}
}

// Sets up a pair of nullary constructors standing in for `Bool = True | False`.
func boolEnv() *Env {
	env := NewEnv()
	boolCanonical := ast.FullyQualified[ast.ProperName]{ModuleName: ast.ModuleName{Segments: []ast.ProperName{properName("M")}}, Value: properName("Bool")}
	boolType := &types.Constructor{Canonical: boolCanonical}
	env.Constructors["True"] = &EnvConstructor{Scheme: &types.Scheme{Signature: boolType}, ReturnTypeName: "Bool"}
	env.Constructors["False"] = &EnvConstructor{Scheme: &types.Scheme{Signature: boolType}, ReturnTypeName: "Bool"}
	return env
}

func TestMatchMissingArmIsNotExhaustive(t *testing.T) {
	env := boolEnv()
	state := NewState()

	scrutinee := &ast.ExprConstructor{Name: ast.Qualified[ast.ProperName]{Value: properName("True")}}
	match := &ast.ExprMatch{
		Scrutinee: scrutinee,
		Arms: []ast.MatchArm{
			{Pattern: &ast.PatternConstructor{Name: ast.Qualified[ast.ProperName]{Value: properName("True")}}, Body: &ast.ExprInt{Lexeme: "1"}},
		},
	}
	_, err := Infer(env, state, match)
	if err == nil {
		t.Fatal("expected a match-not-exhaustive error")
	}
	if err.Code != "COV001" {
		t.Fatalf("expected COV001, got %s", err.Code)
	}
}

func TestMatchAllConstructorsCoveredIsExhaustive(t *testing.T) {
	env := boolEnv()
	state := NewState()

	scrutinee := &ast.ExprConstructor{Name: ast.Qualified[ast.ProperName]{Value: properName("True")}}
	match := &ast.ExprMatch{
		Scrutinee: scrutinee,
		Arms: []ast.MatchArm{
			{Pattern: &ast.PatternConstructor{Name: ast.Qualified[ast.ProperName]{Value: properName("True")}}, Body: &ast.ExprInt{Lexeme: "1"}},
			{Pattern: &ast.PatternConstructor{Name: ast.Qualified[ast.ProperName]{Value: properName("False")}}, Body: &ast.ExprInt{Lexeme: "2"}},
		},
	}
	expr, err := Infer(env, state, match)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := types.Apply(state.Substitution, expr.GetType()); got != types.Int {
		t.Fatalf("expected Int, got %s", got)
	}
}

func TestMatchVariablePatternIsExhaustive(t *testing.T) {
	env := boolEnv()
	state := NewState()

	scrutinee := &ast.ExprConstructor{Name: ast.Qualified[ast.ProperName]{Value: properName("True")}}
	match := &ast.ExprMatch{
		Scrutinee: scrutinee,
		Arms: []ast.MatchArm{
			{Pattern: &ast.PatternVariable{Name: name("x")}, Body: bareVar("x")},
		},
	}
	if _, err := Infer(env, state, match); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCheckArrayAgainstExpectedElementType(t *testing.T) {
	env := NewEnv()
	state := NewState()

	expr, err := Check(env, state, types.Array(types.Int), &ast.ExprArray{
		Elements: []ast.Expr{&ast.ExprInt{Lexeme: "1"}, &ast.ExprInt{Lexeme: "2"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := expr.GetType(); got.String() != types.Array(types.Int).String() {
		t.Fatalf("expected Array(Int), got %s", got)
	}
}

func TestRecordAccessConstrainsOpenRow(t *testing.T) {
	env := NewEnv()
	state := NewState()

	record := &ast.ExprRecord{Fields: []ast.ExprRecordField{
		{Name: name("x"), Value: &ast.ExprInt{Lexeme: "1"}},
	}}
	access := &ast.ExprRecordAccess{Target: record, Label: name("x")}

	expr, err := Infer(env, state, access)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := types.Apply(state.Substitution, expr.GetType()); got != types.Int {
		t.Fatalf("expected Int, got %s", got)
	}
}
