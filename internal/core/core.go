// Package core is the elaborated, fully-typed abstract syntax tree
// produced by the front-end after type checking. Every node carries
// its inferred types.Type and a Span; reference nodes
// additionally carry the span of their binding site.
package core

import (
	"github.com/ditto-lang/ditto/internal/ast"
	"github.com/ditto-lang/ditto/internal/types"
)

// GlobalRef identifies a value, type or constructor canonically by
// module and name, mirroring ast.FullyQualified but kept as a plain
// struct for convenient use as a map value across packages.
type GlobalRef struct {
	PackageName string // "" for the current package
	ModuleName  string
	Name        string
}

// Expression is the elaborated expression tree.
type Expression interface {
	GetType() types.Type
	GetSpan() ast.Span
	isExpression()
}

type (
	True  struct{ Span ast.Span }
	False struct{ Span ast.Span }
	Unit  struct{ Span ast.Span }

	// String/Int/Float keep their source lexeme verbatim: numbers must
	// round-trip unchanged to emitted JS.
	String struct {
		Span   ast.Span
		Lexeme string
	}
	Int struct {
		Span   ast.Span
		Lexeme string
	}
	Float struct {
		Span   ast.Span
		Lexeme string
	}

	Array struct {
		Span     ast.Span
		Type     types.Type
		Elements []Expression
	}

	RecordFields = []RecordField

	RecordField struct {
		Label ast.Name
		Value Expression
	}

	Record struct {
		Span   ast.Span
		Type   types.Type
		Fields RecordFields
	}

	RecordAccess struct {
		Span   ast.Span
		Type   types.Type
		Target Expression
		Label  ast.Name
	}

	RecordUpdate struct {
		Span   ast.Span
		Type   types.Type
		Target Expression
		Fields RecordFields
	}

	If struct {
		Span      ast.Span
		Type      types.Type
		Condition Expression
		True      Expression
		False     Expression
	}

	Match struct {
		Span      ast.Span
		Type      types.Type
		Scrutinee Expression
		Arms      []MatchArm
	}

	Function struct {
		Span    ast.Span
		Type    types.Type
		Binders []FunctionBinder
		Body    Expression
	}

	Call struct {
		Span           ast.Span
		Type           types.Type
		Function       Expression
		Arguments      []Expression
	}

	Let struct {
		Span  ast.Span
		Type  types.Type
		Decl  LetValueDeclaration
		Rest  Expression
	}

	Effect struct {
		Span  ast.Span
		Type  types.Type // always Effect(t)
		Chain EffectNode
	}

	// LocalVariable is bound earlier in the same module.
	LocalVariable struct {
		Span         ast.Span
		Type         types.Type
		Name         ast.Name
		Introduction ast.Span
	}

	// ImportedVariable resolves to a value from another module.
	ImportedVariable struct {
		Span         ast.Span
		Type         types.Type
		Name         ast.Name
		Ref          GlobalRef
		Introduction ast.Span
	}

	// ForeignVariable is a same-module binding backed by a foreign JS value.
	ForeignVariable struct {
		Span ast.Span
		Type types.Type
		Name ast.Name
	}

	LocalConstructor struct {
		Span         ast.Span
		Type         types.Type
		Name         ast.ProperName
		Introduction ast.Span
	}

	ImportedConstructor struct {
		Span         ast.Span
		Type         types.Type
		Name         ast.ProperName
		Ref          GlobalRef
		Introduction ast.Span
	}
)

func (*True) isExpression()                {}
func (*False) isExpression()                {}
func (*Unit) isExpression()                 {}
func (*String) isExpression()               {}
func (*Int) isExpression()                  {}
func (*Float) isExpression()                {}
func (*Array) isExpression()                {}
func (*Record) isExpression()               {}
func (*RecordAccess) isExpression()         {}
func (*RecordUpdate) isExpression()         {}
func (*If) isExpression()                   {}
func (*Match) isExpression()                {}
func (*Function) isExpression()             {}
func (*Call) isExpression()                 {}
func (*Let) isExpression()                  {}
func (*Effect) isExpression()               {}
func (*LocalVariable) isExpression()        {}
func (*ImportedVariable) isExpression()     {}
func (*ForeignVariable) isExpression()      {}
func (*LocalConstructor) isExpression()     {}
func (*ImportedConstructor) isExpression()  {}

func (e *True) GetType() types.Type  { return types.Bool }
func (e *False) GetType() types.Type { return types.Bool }
func (e *Unit) GetType() types.Type  { return types.Unit }
func (e *String) GetType() types.Type { return types.String }
func (e *Int) GetType() types.Type    { return types.Int }
func (e *Float) GetType() types.Type  { return types.Float }
func (e *Array) GetType() types.Type                { return e.Type }
func (e *Record) GetType() types.Type               { return e.Type }
func (e *RecordAccess) GetType() types.Type         { return e.Type }
func (e *RecordUpdate) GetType() types.Type         { return e.Type }
func (e *If) GetType() types.Type                   { return e.Type }
func (e *Match) GetType() types.Type                { return e.Type }
func (e *Function) GetType() types.Type             { return e.Type }
func (e *Call) GetType() types.Type                 { return e.Type }
func (e *Let) GetType() types.Type                  { return e.Type }
func (e *Effect) GetType() types.Type               { return e.Type }
func (e *LocalVariable) GetType() types.Type        { return e.Type }
func (e *ImportedVariable) GetType() types.Type     { return e.Type }
func (e *ForeignVariable) GetType() types.Type      { return e.Type }
func (e *LocalConstructor) GetType() types.Type     { return e.Type }
func (e *ImportedConstructor) GetType() types.Type  { return e.Type }

func (e *True) GetSpan() ast.Span   { return e.Span }
func (e *False) GetSpan() ast.Span  { return e.Span }
func (e *Unit) GetSpan() ast.Span   { return e.Span }
func (e *String) GetSpan() ast.Span { return e.Span }
func (e *Int) GetSpan() ast.Span    { return e.Span }
func (e *Float) GetSpan() ast.Span  { return e.Span }
func (e *Array) GetSpan() ast.Span                { return e.Span }
func (e *Record) GetSpan() ast.Span               { return e.Span }
func (e *RecordAccess) GetSpan() ast.Span         { return e.Span }
func (e *RecordUpdate) GetSpan() ast.Span         { return e.Span }
func (e *If) GetSpan() ast.Span                   { return e.Span }
func (e *Match) GetSpan() ast.Span                { return e.Span }
func (e *Function) GetSpan() ast.Span             { return e.Span }
func (e *Call) GetSpan() ast.Span                 { return e.Span }
func (e *Let) GetSpan() ast.Span                  { return e.Span }
func (e *Effect) GetSpan() ast.Span               { return e.Span }
func (e *LocalVariable) GetSpan() ast.Span        { return e.Span }
func (e *ImportedVariable) GetSpan() ast.Span     { return e.Span }
func (e *ForeignVariable) GetSpan() ast.Span      { return e.Span }
func (e *LocalConstructor) GetSpan() ast.Span     { return e.Span }
func (e *ImportedConstructor) GetSpan() ast.Span  { return e.Span }

// FunctionBinder is one elaborated function parameter.
type FunctionBinder struct {
	Span ast.Span
	Name ast.Name // zero value for an UnusedName binder
	Type types.Type
}

// MatchArm is one elaborated `| Pattern -> Expr` arm.
type MatchArm struct {
	Span    ast.Span
	Pattern Pattern
	Guard   Expression // nil if unguarded
	Body    Expression
}

// LetValueDeclaration is the single binding of a non-recursive Let node.
type LetValueDeclaration struct {
	Pattern        Pattern
	ExpressionType types.Type
	Expression     Expression
}

// Pattern is the elaborated pattern tree.
type Pattern interface {
	GetType() types.Type
	GetSpan() ast.Span
	isPattern()
}

type (
	LocalConstructorPattern struct {
		Span ast.Span
		Type types.Type
		Name ast.ProperName
		Args []Pattern
	}
	ImportedConstructorPattern struct {
		Span ast.Span
		Type types.Type
		Name ast.ProperName
		Ref  GlobalRef
		Args []Pattern
	}
	VariablePattern struct {
		Span ast.Span
		Type types.Type
		Name ast.Name
	}
	UnusedPattern struct {
		Span ast.Span
		Type types.Type
		Name ast.UnusedName
	}
)

func (*LocalConstructorPattern) isPattern()    {}
func (*ImportedConstructorPattern) isPattern() {}
func (*VariablePattern) isPattern()            {}
func (*UnusedPattern) isPattern()              {}

func (p *LocalConstructorPattern) GetType() types.Type    { return p.Type }
func (p *ImportedConstructorPattern) GetType() types.Type { return p.Type }
func (p *VariablePattern) GetType() types.Type            { return p.Type }
func (p *UnusedPattern) GetType() types.Type              { return p.Type }

func (p *LocalConstructorPattern) GetSpan() ast.Span    { return p.Span }
func (p *ImportedConstructorPattern) GetSpan() ast.Span { return p.Span }
func (p *VariablePattern) GetSpan() ast.Span            { return p.Span }
func (p *UnusedPattern) GetSpan() ast.Span              { return p.Span }

// EffectNode is one node of a `do { ... }` statement chain: a Bind,
// Let, Expression (optionally with a rest), or Return.
type EffectNode interface {
	GetType() types.Type
	GetSpan() ast.Span
	isEffectNode()
}

type (
	EffectBind struct {
		Span  ast.Span
		Type  types.Type
		Name  ast.Name
		Value Expression
		Rest  EffectNode
	}
	EffectLet struct {
		Span  ast.Span
		Type  types.Type
		Decl  LetValueDeclaration
		Rest  EffectNode
	}
	EffectExpression struct {
		Span  ast.Span
		Type  types.Type
		Value Expression
		Rest  EffectNode // nil if this is the last statement
	}
	EffectReturn struct {
		Span  ast.Span
		Type  types.Type
		Value Expression
	}
)

func (*EffectBind) isEffectNode()       {}
func (*EffectLet) isEffectNode()        {}
func (*EffectExpression) isEffectNode() {}
func (*EffectReturn) isEffectNode()     {}

func (e *EffectBind) GetType() types.Type       { return e.Type }
func (e *EffectLet) GetType() types.Type        { return e.Type }
func (e *EffectExpression) GetType() types.Type { return e.Type }
func (e *EffectReturn) GetType() types.Type     { return e.Type }

func (e *EffectBind) GetSpan() ast.Span       { return e.Span }
func (e *EffectLet) GetSpan() ast.Span        { return e.Span }
func (e *EffectExpression) GetSpan() ast.Span { return e.Span }
func (e *EffectReturn) GetSpan() ast.Span     { return e.Span }
