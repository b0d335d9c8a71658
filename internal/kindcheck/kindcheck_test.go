package kindcheck

import (
	"testing"

	"github.com/ditto-lang/ditto/internal/ast"
	"github.com/ditto-lang/ditto/internal/kind"
	"github.com/ditto-lang/ditto/internal/types"
)

func properName(v string) ast.ProperName { return ast.ProperName{Value: v} }
func name(v string) ast.Name             { return ast.Name{Value: v} }

func typeVar(name string) ast.TypeExpr {
	return &ast.TypeExprVariable{Name: properName(name)}
}

func typeCon(name string) ast.TypeExpr {
	return &ast.TypeExprConstructor{Name: ast.Qualified[ast.ProperName]{Value: properName(name)}}
}

func typeCall(fn ast.TypeExpr, args ...ast.TypeExpr) ast.TypeExpr {
	return &ast.TypeExprCall{Function: fn, Arguments: args}
}

func moduleNameOf(seg string) ast.ModuleName {
	return ast.ModuleName{Segments: []ast.ProperName{properName(seg)}}
}

// type Box(a) = Box(a)
func boxDecl() *ast.TypeDecl {
	return &ast.TypeDecl{
		Name:      properName("Box"),
		Variables: []ast.ProperName{properName("a")},
		Constructors: []*ast.ConstructorDecl{
			{Name: properName("Box"), Fields: []ast.TypeExpr{typeVar("a")}},
		},
	}
}

func TestCheckTypeDeclarationsAssignsFunctionKindToParameterisedType(t *testing.T) {
	env := NewEnv()
	result, errs := CheckTypeDeclarations(env, moduleNameOf("M"), []*ast.TypeDecl{boxDecl()}, true)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	boxType, ok := result.Types["Box"]
	if !ok {
		t.Fatal("expected Box to be declared")
	}
	fn, ok := boxType.Kind.(*kind.Function)
	if !ok {
		t.Fatalf("expected Box's kind to be a function kind, got %T", boxType.Kind)
	}
	if len(fn.Parameters) != 1 {
		t.Fatalf("expected one parameter kind, got %d", len(fn.Parameters))
	}
	if _, ok := fn.Result.(*kind.Type); !ok {
		t.Errorf("expected result kind Type, got %s", fn.Result)
	}
	ctor, ok := result.Constructors["Box"]
	if !ok {
		t.Fatal("expected constructor Box to be recorded")
	}
	if len(ctor.FieldTypes) != 1 {
		t.Fatalf("expected one field, got %d", len(ctor.FieldTypes))
	}
	if _, ok := ctor.FieldTypes[0].(*types.Variable); !ok {
		t.Errorf("expected field to be a rigid type variable, got %T", ctor.FieldTypes[0])
	}
}

// type Nat = Zero | Succ(Nat) — self-reference, must resolve via declEnv
// seeding itself before checking fields.
func TestCheckTypeDeclarationsHandlesSelfReference(t *testing.T) {
	decl := &ast.TypeDecl{
		Name: properName("Nat"),
		Constructors: []*ast.ConstructorDecl{
			{Name: properName("Zero")},
			{Name: properName("Succ"), Fields: []ast.TypeExpr{typeCon("Nat")}},
		},
	}
	env := NewEnv()
	result, errs := CheckTypeDeclarations(env, moduleNameOf("M"), []*ast.TypeDecl{decl}, true)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	succ := result.Constructors["Succ"]
	if _, ok := succ.FieldTypes[0].(*types.Constructor); !ok {
		t.Fatalf("expected Succ's field to resolve to the Nat constructor, got %T", succ.FieldTypes[0])
	}
}

// type Even = EvenZero | EvenSucc(Odd)
// type Odd = OddSucc(Even)  — a true mutual cycle.
func TestCheckTypeDeclarationsHandlesMutualCycle(t *testing.T) {
	even := &ast.TypeDecl{
		Name: properName("Even"),
		Constructors: []*ast.ConstructorDecl{
			{Name: properName("EvenZero")},
			{Name: properName("EvenSucc"), Fields: []ast.TypeExpr{typeCon("Odd")}},
		},
	}
	odd := &ast.TypeDecl{
		Name: properName("Odd"),
		Constructors: []*ast.ConstructorDecl{
			{Name: properName("OddSucc"), Fields: []ast.TypeExpr{typeCon("Even")}},
		},
	}
	env := NewEnv()
	result, errs := CheckTypeDeclarations(env, moduleNameOf("M"), []*ast.TypeDecl{even, odd}, true)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if _, ok := result.Types["Even"]; !ok {
		t.Fatal("expected Even to be declared")
	}
	if _, ok := result.Types["Odd"]; !ok {
		t.Fatal("expected Odd to be declared")
	}
}

func TestCheckTypeDeclarationsDetectsDuplicateTypeName(t *testing.T) {
	a := &ast.TypeDecl{Name: ast.ProperName{Value: "Dup", Span: ast.Span{Start: 0, End: 3}}}
	b := &ast.TypeDecl{Name: ast.ProperName{Value: "Dup", Span: ast.Span{Start: 10, End: 13}}}
	env := NewEnv()
	_, errs := CheckTypeDeclarations(env, moduleNameOf("M"), []*ast.TypeDecl{a, b}, true)
	if len(errs) == 0 {
		t.Fatal("expected a duplicate-type-declaration error")
	}
	found := false
	for _, e := range errs {
		if e.Code == "IMP023" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected DuplicateTypeDeclaration among errors, got %v", errs)
	}
}

func TestCheckTypeDeclarationsDetectsDuplicateConstructor(t *testing.T) {
	decl := &ast.TypeDecl{
		Name: properName("T"),
		Constructors: []*ast.ConstructorDecl{
			{Name: ast.ProperName{Value: "C", Span: ast.Span{Start: 0, End: 1}}},
			{Name: ast.ProperName{Value: "C", Span: ast.Span{Start: 5, End: 6}}},
		},
	}
	env := NewEnv()
	_, errs := CheckTypeDeclarations(env, moduleNameOf("M"), []*ast.TypeDecl{decl}, true)
	if len(errs) == 0 {
		t.Fatal("expected a duplicate-constructor error")
	}
	if errs[0].Code != "IMP024" {
		t.Errorf("expected DuplicateTypeConstructor, got %s", errs[0].Code)
	}
}

func TestCheckTypeDeclarationsDetectsUnknownTypeConstructor(t *testing.T) {
	decl := &ast.TypeDecl{
		Name: properName("T"),
		Constructors: []*ast.ConstructorDecl{
			{Name: properName("C"), Fields: []ast.TypeExpr{typeCon("Ghost")}},
		},
	}
	env := NewEnv()
	_, errs := CheckTypeDeclarations(env, moduleNameOf("M"), []*ast.TypeDecl{decl}, true)
	if len(errs) != 1 || errs[0].Code != "IMP003" {
		t.Fatalf("expected a single UnknownTypeConstructor error, got %v", errs)
	}
}

// type Pair(a, b) = { fst: a, snd: b } — a type alias whose body has
// kind Type even though the alias head itself is higher-kinded.
func TestCheckTypeDeclarationsHandlesAlias(t *testing.T) {
	decl := &ast.TypeDecl{
		Name:      properName("Pair"),
		Variables: []ast.ProperName{properName("a"), properName("b")},
		Alias: &ast.TypeExprRecordClosed{
			Fields: []ast.TypeExprField{
				{Name: name("fst"), Type: typeVar("a")},
				{Name: name("snd"), Type: typeVar("b")},
			},
		},
	}
	env := NewEnv()
	result, errs := CheckTypeDeclarations(env, moduleNameOf("M"), []*ast.TypeDecl{decl}, true)
	if len(errs) > 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	pair := result.Types["Pair"]
	if !pair.IsAlias {
		t.Fatal("expected Pair to be recorded as an alias")
	}
	if _, ok := pair.AliasedType.(*types.RecordClosed); !ok {
		t.Fatalf("expected the alias body to be a closed record, got %T", pair.AliasedType)
	}
}
