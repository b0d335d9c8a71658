// Package types implements Ditto's semantic type system: the 8-variant
// Type sum, row-polymorphic records, schemes and unification.
// Representation follows a well-worn recipe: a tagged sum with boxed
// recursive children only where one is actually needed (Call.Function,
// Function.Return, row entries, ConstructorAlias's expansion).
package types

import (
	"fmt"
	"sort"

	"github.com/ditto-lang/ditto/internal/ast"
	"github.com/ditto-lang/ditto/internal/kind"
)

// Prim enumerates the built-in primitive constructors.
type Prim int

const (
	PrimString Prim = iota
	PrimInt
	PrimFloat
	PrimBool
	PrimArray
	PrimUnit
	PrimEffect
)

func (p Prim) String() string {
	switch p {
	case PrimString:
		return "String"
	case PrimInt:
		return "Int"
	case PrimFloat:
		return "Float"
	case PrimBool:
		return "Bool"
	case PrimArray:
		return "Array"
	case PrimUnit:
		return "Unit"
	case PrimEffect:
		return "Effect"
	default:
		return "?prim"
	}
}

// Type is the closed sum of type forms the checker works over.
type Type interface {
	isType()
	String() string
}

// Variable is a unification variable. Rigid variables are written by the
// programmer (skolems): they unify only with themselves or another
// rigid variable of the same SourceName.
type Variable struct {
	ID           int
	SourceName   string // "" if none
	IsRigid      bool
	VariableKind kind.Kind
}

// Constructor references a named nominal type by its canonical identity.
type Constructor struct {
	Canonical       ast.FullyQualified[ast.ProperName]
	SourceValue     *ast.Qualified[ast.ProperName] // as written, if available
	ConstructorKind kind.Kind
}

// ConstructorAlias is an expanded type alias: it carries both the alias
// head and its expansion, transparent for equality — it unifies with
// either its canonical head or its expansion.
type ConstructorAlias struct {
	Canonical     ast.FullyQualified[ast.ProperName]
	SourceValue   *ast.Qualified[ast.ProperName]
	AliasVariables []int // variable IDs bound by the alias definition
	AliasedType   Type   // boxed: the expansion
}

// PrimConstructor is one of the built-ins String, Int, Float, Bool,
// Array, Unit, Effect.
type PrimConstructor struct {
	Prim Prim
}

// Call is type application: function applied to one or more arguments.
type Call struct {
	Function  Type // boxed
	Arguments []Type
}

// Function is a fully saturated arrow.
type Function struct {
	Parameters []Type
	Return     Type // boxed
}

// Row is a labelled finite map of types; insertion order is preserved
// for diagnostics but irrelevant to equality/unification.
type Row struct {
	Fields     map[string]Type
	fieldOrder []string // preserves first-insertion order
}

// NewRow builds a Row from fields in the given order.
func NewRow(names []string, types []Type) *Row {
	r := &Row{Fields: make(map[string]Type, len(names))}
	for i, n := range names {
		r.Set(n, types[i])
	}
	return r
}

// Set inserts or overwrites a field, recording insertion order on first write.
func (r *Row) Set(name string, t Type) {
	if r.Fields == nil {
		r.Fields = make(map[string]Type)
	}
	if _, exists := r.Fields[name]; !exists {
		r.fieldOrder = append(r.fieldOrder, name)
	}
	r.Fields[name] = t
}

// SortedNames returns field names in insertion order.
func (r *Row) SortedNames() []string {
	out := make([]string, len(r.fieldOrder))
	copy(out, r.fieldOrder)
	return out
}

// Clone returns a shallow copy of the row (new map, same Type values).
func (r *Row) Clone() *Row {
	clone := &Row{Fields: make(map[string]Type, len(r.Fields))}
	for _, n := range r.fieldOrder {
		clone.Set(n, r.Fields[n])
	}
	return clone
}

// RecordClosed is an exact field map.
type RecordClosed struct {
	RowData *Row
}

// RecordOpen is a field map with a polymorphic tail variable.
type RecordOpen struct {
	Var        int
	SourceName string
	IsRigid    bool
	RowData    *Row
}

func (*Variable) isType()         {}
func (*Constructor) isType()      {}
func (*ConstructorAlias) isType() {}
func (*PrimConstructor) isType()  {}
func (*Call) isType()             {}
func (*Function) isType()         {}
func (*RecordClosed) isType()     {}
func (*RecordOpen) isType()       {}

func (v *Variable) String() string {
	if v.IsRigid {
		if v.SourceName != "" {
			return v.SourceName + "!"
		}
		return fmt.Sprintf("t%d!", v.ID)
	}
	if v.SourceName != "" {
		return v.SourceName
	}
	return fmt.Sprintf("t%d", v.ID)
}

func (c *Constructor) String() string { return c.Canonical.ModuleName.String() + "." + c.Canonical.Value.Value }

func (a *ConstructorAlias) String() string { return a.Canonical.Value.Value }

func (p *PrimConstructor) String() string { return p.Prim.String() }

func (c *Call) String() string {
	s := c.Function.String() + "("
	for i, a := range c.Arguments {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ")"
}

func (f *Function) String() string {
	s := "("
	for i, p := range f.Parameters {
		if i > 0 {
			s += ", "
		}
		s += p.String()
	}
	return s + ") -> " + f.Return.String()
}

func rowString(r *Row) string {
	names := r.SortedNames()
	sort.Strings(names)
	s := ""
	for i, n := range names {
		if i > 0 {
			s += ", "
		}
		s += n + ": " + r.Fields[n].String()
	}
	return s
}

func (r *RecordClosed) String() string { return "{ " + rowString(r.RowData) + " }" }

func (r *RecordOpen) String() string {
	tail := r.SourceName
	if tail == "" {
		tail = fmt.Sprintf("t%d", r.Var)
	}
	fields := rowString(r.RowData)
	if fields == "" {
		return "{ " + tail + " }"
	}
	return "{ " + tail + " | " + fields + " }"
}

// Scheme is a universally quantified type: (forall V*, signature).
type Scheme struct {
	Forall    []int // quantified variable IDs
	Signature Type
}

// Array builds the Array(elem) prim application.
func Array(elem Type) Type {
	return &Call{Function: &PrimConstructor{Prim: PrimArray}, Arguments: []Type{elem}}
}

// Effect builds the Effect(t) prim application.
func Effect(t Type) Type {
	return &Call{Function: &PrimConstructor{Prim: PrimEffect}, Arguments: []Type{t}}
}

var (
	String = &PrimConstructor{Prim: PrimString}
	Int    = &PrimConstructor{Prim: PrimInt}
	Float  = &PrimConstructor{Prim: PrimFloat}
	Bool   = &PrimConstructor{Prim: PrimBool}
	Unit   = &PrimConstructor{Prim: PrimUnit}
)
