package core

import (
	"github.com/ditto-lang/ditto/internal/ast"
	"github.com/ditto-lang/ditto/internal/kind"
	"github.com/ditto-lang/ditto/internal/types"
)

// TypeDeclaration is an elaborated type declaration with its resolved
// kind and constructor schemes.
type TypeDeclaration struct {
	Name         ast.ProperName
	Variables    []int // type-variable IDs in declaration order
	Kind         kind.Kind
	Constructors []*ConstructorDeclaration
	IsAlias      bool
	AliasedType  types.Type // non-nil only for aliases
	Doc          string
}

// ConstructorDeclaration is one elaborated ADT alternative.
type ConstructorDeclaration struct {
	Name       ast.ProperName
	FieldTypes []types.Type
	ReturnType types.Type
	Doc        string
	Span       ast.Span
}

// ValueDeclaration is one elaborated top-level binding.
type ValueDeclaration struct {
	Name       ast.Name
	Scheme     *types.Scheme
	Expression Expression
	IsForeign  bool
	Doc        string
	Span       ast.Span
}

// ValueGroup is one scheduled SCC of value declarations: a singleton
// for an acyclic binding, or several mutually-recursive declarations
// typechecked together.
type ValueGroup struct {
	Declarations []*ValueDeclaration
	IsRecursive  bool
}

// Module is the fully elaborated, frozen unit handed to code generation.
type Module struct {
	Name         ast.ModuleName
	Exports      *Exports
	ValueGroups  []*ValueGroup
	TypeDecls    []*TypeDeclaration
	Warnings     []Warning
}

// Exports is the set of named types, constructors and values a module
// makes visible to importers.
type Exports struct {
	Types        map[string]*TypeExport
	Constructors map[string]*ConstructorExport
	Values       map[string]*ValueExport
}

func NewExports() *Exports {
	return &Exports{
		Types:        make(map[string]*TypeExport),
		Constructors: make(map[string]*ConstructorExport),
		Values:       make(map[string]*ValueExport),
	}
}

type TypeExport struct {
	Kind  kind.Kind
	Alias bool
	Doc   string
}

type ConstructorExport struct {
	Scheme         *types.Scheme
	ReturnTypeName string
	Doc            string
	Position       ast.Span
}

type ValueExport struct {
	Scheme *types.Scheme
	Doc    string
}

// Warning is a non-fatal diagnostic accumulated during checking; every
// stage appends to the same Warnings buffer.
type Warning struct {
	Code string
	Span ast.Span
	Data map[string]any
}
