package coverage

import (
	"sort"
	"testing"

	"github.com/ditto-lang/ditto/internal/ast"
	"github.com/ditto-lang/ditto/internal/core"
	"github.com/ditto-lang/ditto/internal/types"
)

func properName(v string) ast.ProperName { return ast.ProperName{Value: v} }
func name(v string) ast.Name             { return ast.Name{Value: v} }

// boolType stands in for a two-constructor ADT (True/False) so tests
// don't need the real Bool special-case — any nominal type with a
// closed constructor set exercises the same algorithm.
var boolType = &types.Constructor{Canonical: ast.FullyQualified[ast.ProperName]{Value: properName("Bool")}}

func boolLookup(_ types.Type) []ConstructorInfo {
	return []ConstructorInfo{
		{Name: "True", Signature: boolType},
		{Name: "False", Signature: boolType},
	}
}

func ctorPattern(n string, args ...core.Pattern) core.Pattern {
	return &core.LocalConstructorPattern{Name: properName(n), Args: args}
}

func varPattern(n string) core.Pattern {
	return &core.VariablePattern{Name: name(n)}
}

func unusedPattern() core.Pattern {
	return &core.UnusedPattern{Name: ast.UnusedName{Value: "_"}}
}

func TestIsExhaustiveTwoConstructorsBothCovered(t *testing.T) {
	patterns := []core.Pattern{ctorPattern("True"), ctorPattern("False")}
	if err := IsExhaustive(boolLookup, boolType, patterns); err != nil {
		t.Fatalf("expected exhaustive, got %v", err.MissingPatterns())
	}
}

func TestIsExhaustiveMissingConstructorReported(t *testing.T) {
	patterns := []core.Pattern{ctorPattern("True")}
	err := IsExhaustive(boolLookup, boolType, patterns)
	if err == nil {
		t.Fatal("expected a not-covered error")
	}
	missing := err.MissingPatterns()
	if len(missing) != 1 || missing[0] != "False" {
		t.Fatalf("expected missing pattern False, got %v", missing)
	}
}

func TestIsExhaustiveCatchAllCoversEverything(t *testing.T) {
	patterns := []core.Pattern{varPattern("x")}
	if err := IsExhaustive(boolLookup, boolType, patterns); err != nil {
		t.Fatalf("expected exhaustive, got %v", err.MissingPatterns())
	}
}

func TestIsExhaustiveUnusedPatternCoversEverything(t *testing.T) {
	patterns := []core.Pattern{unusedPattern()}
	if err := IsExhaustive(boolLookup, boolType, patterns); err != nil {
		t.Fatalf("expected exhaustive, got %v", err.MissingPatterns())
	}
}

func TestIsExhaustiveRedundantClauseAfterCatchAll(t *testing.T) {
	trueSpan := ast.Span{Start: 10, End: 20}
	patterns := []core.Pattern{
		&core.VariablePattern{Name: name("x")},
		&core.LocalConstructorPattern{Name: properName("True"), Span: trueSpan},
	}
	err := IsExhaustive(boolLookup, boolType, patterns)
	if err == nil {
		t.Fatal("expected a redundancy error")
	}
	if len(err.RedundantClauses) != 1 || err.RedundantClauses[0] != trueSpan {
		t.Fatalf("expected the second clause's span reported redundant, got %v", err.RedundantClauses)
	}
}

// listType models `List(a) = Nil | Cons(a, List(a))`, nested one level,
// so the case-split fans out over a second slot's constructors.
var listElemType = &types.Variable{ID: 1}
var listType = &types.Call{
	Function:  &types.Constructor{Canonical: ast.FullyQualified[ast.ProperName]{Value: properName("List")}},
	Arguments: []types.Type{listElemType},
}

func listLookup(t types.Type) []ConstructorInfo {
	call, ok := t.(*types.Call)
	if !ok {
		return nil
	}
	elem := call.Arguments[0]
	return []ConstructorInfo{
		{Name: "Nil", Signature: listType},
		{Name: "Cons", Signature: &types.Function{Parameters: []types.Type{elem, listType}, Return: listType}},
	}
}

func TestIsExhaustiveNestedConstructorMissingCase(t *testing.T) {
	// Only `Nil` and `Cons(_, Nil)` are covered; `Cons(_, Cons(_, _))` is not.
	patterns := []core.Pattern{
		ctorPattern("Nil"),
		ctorPattern("Cons", varPattern("x"), ctorPattern("Nil")),
	}
	err := IsExhaustive(listLookup, listType, patterns)
	if err == nil {
		t.Fatal("expected a not-covered error for the nested Cons(_, Cons(...)) case")
	}
	missing := err.MissingPatterns()
	sort.Strings(missing)
	found := false
	for _, m := range missing {
		if m == "Cons(_, Cons(_, _))" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected Cons(_, Cons(_, _)) among missing patterns, got %v", missing)
	}
}

func TestIsExhaustiveNestedConstructorFullyCovered(t *testing.T) {
	patterns := []core.Pattern{
		ctorPattern("Nil"),
		ctorPattern("Cons", varPattern("x"), varPattern("xs")),
	}
	if err := IsExhaustive(listLookup, listType, patterns); err != nil {
		t.Fatalf("expected exhaustive, got %v", err.MissingPatterns())
	}
}
