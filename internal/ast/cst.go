package ast

// Module is the parsed top-level unit: a module header, its import
// lines, and its top-level declarations, in source order.
type Module struct {
	Name    ModuleName
	Span    Span
	Imports []*ImportLine
	Types   []*TypeDecl
	Values  []*ValueDecl
}

// ImportLine is `import (pkg)? Mod.Name (as Alias)? (list)? ;`.
type ImportLine struct {
	Span        Span
	Package     *PackageName // nil => current package
	ModuleName  ModuleName
	ModuleSpan  Span // span of the module-name tokens, for collision diagnostics
	Alias       *ProperName  // explicit `as Alias`; nil => last segment of ModuleName
	AliasSpan   Span         // span of the alias as written (or the module name if implicit)
	Unqualified []ImportItem // the `(...)` list; nil => whole-module import
}

// ImportItem is one entry of an unqualified import list.
type ImportItem struct {
	Span Span
	// Exactly one of the following is populated.
	Value *Name       // bare value import
	Type  *ProperName // `Type` (abstract) or `Type(..)` (with constructors)
	WithConstructors bool
}

// TypeDecl is `type Name(vars...) = Ctor(fields) | Ctor2(...) ;` or a
// type alias `type Name(vars...) = <type expr> ;`.
type TypeDecl struct {
	Span         Span
	Name         ProperName
	Variables    []ProperName // declared type variables, rigid by convention
	Constructors []*ConstructorDecl // nil for an alias
	Alias        TypeExpr // non-nil for an alias, nil otherwise
	Doc          string
}

// ConstructorDecl is one `Ctor(Field1, Field2)` alternative of a TypeDecl.
type ConstructorDecl struct {
	Span   Span
	Name   ProperName
	Fields []TypeExpr
}

// ValueDecl is a top-level `name : Type = expr ;` or `name = expr ;`.
type ValueDecl struct {
	Span       Span
	Name       Name
	Annotation TypeExpr // nil if unannotated
	Expr       Expr
	Doc        string
	IsForeign  bool // backed by an accompanying foreign JS value
}

// TypeExpr is the CST type-expression tree: unresolved names, application,
// function arrows and record rows as written in source.
type TypeExpr interface {
	isTypeExpr()
	Span() Span
}

type (
	TypeExprConstructor struct {
		ConSpan Span
		Name    Qualified[ProperName]
	}
	TypeExprVariable struct {
		VarSpan Span
		Name    ProperName
	}
	TypeExprCall struct {
		CallSpan  Span
		Function  TypeExpr
		Arguments []TypeExpr
	}
	TypeExprFunction struct {
		FnSpan     Span
		Parameters []TypeExpr
		Return     TypeExpr
	}
	TypeExprRecordClosed struct {
		RecSpan Span
		Fields  []TypeExprField
	}
	TypeExprRecordOpen struct {
		RecSpan Span
		Tail    ProperName // the row variable name as written
		Fields  []TypeExprField
	}
)

type TypeExprField struct {
	Span Span
	Name Name
	Type TypeExpr
}

func (t *TypeExprConstructor) isTypeExpr()   {}
func (t *TypeExprVariable) isTypeExpr()      {}
func (t *TypeExprCall) isTypeExpr()          {}
func (t *TypeExprFunction) isTypeExpr()      {}
func (t *TypeExprRecordClosed) isTypeExpr()  {}
func (t *TypeExprRecordOpen) isTypeExpr()    {}

func (t *TypeExprConstructor) Span() Span  { return t.ConSpan }
func (t *TypeExprVariable) Span() Span     { return t.VarSpan }
func (t *TypeExprCall) Span() Span         { return t.CallSpan }
func (t *TypeExprFunction) Span() Span     { return t.FnSpan }
func (t *TypeExprRecordClosed) Span() Span { return t.RecSpan }
func (t *TypeExprRecordOpen) Span() Span   { return t.RecSpan }

// Expr is the CST expression tree.
type Expr interface {
	isExpr()
	Span() Span
}

type (
	ExprTrue  struct{ ExprSpan Span }
	ExprFalse struct{ ExprSpan Span }
	ExprUnit  struct{ ExprSpan Span }
	// ExprString/Int/Float retain the verbatim lexeme (with quotes/escapes
	// for strings) so emission round-trips byte for byte.
	ExprString struct {
		ExprSpan Span
		Lexeme   string
	}
	ExprInt struct {
		ExprSpan Span
		Lexeme   string
	}
	ExprFloat struct {
		ExprSpan Span
		Lexeme   string
	}
	ExprArray struct {
		ExprSpan Span
		Elements []Expr
	}
	ExprRecord struct {
		ExprSpan Span
		Fields   []ExprRecordField
	}
	ExprRecordField struct {
		Span  Span
		Name  Name
		Value Expr // nil => punning, value is Name
	}
	ExprRecordAccess struct {
		ExprSpan Span
		Target   Expr
		Label    Name
	}
	ExprRecordUpdate struct {
		ExprSpan Span
		Target   Expr
		Fields   []ExprRecordField
	}
	ExprIf struct {
		ExprSpan  Span
		Condition Expr
		Then      Expr
		Else      Expr
	}
	ExprMatch struct {
		ExprSpan  Span
		Scrutinee Expr
		Arms      []MatchArm
	}
	ExprFunction struct {
		ExprSpan Span
		Binders  []FunctionBinder
		Body     Expr
	}
	ExprCall struct {
		ExprSpan  Span
		Function  Expr
		Arguments []Expr
	}
	ExprLet struct {
		ExprSpan   Span
		Name       Name
		Annotation TypeExpr // nil if unannotated
		Value      Expr
		Rest       Expr
	}
	ExprEffect struct {
		ExprSpan   Span
		Statements []EffectStmt
	}
	// ExprVariable/ExprConstructor are unresolved references as written;
	// resolution distinguishes local/imported/foreign at elaboration time.
	ExprVariable struct {
		ExprSpan Span
		Name     Qualified[Name]
	}
	ExprConstructor struct {
		ExprSpan Span
		Name     Qualified[ProperName]
	}
)

func (e *ExprTrue) isExpr()           {}
func (e *ExprFalse) isExpr()          {}
func (e *ExprUnit) isExpr()           {}
func (e *ExprString) isExpr()         {}
func (e *ExprInt) isExpr()            {}
func (e *ExprFloat) isExpr()          {}
func (e *ExprArray) isExpr()          {}
func (e *ExprRecord) isExpr()         {}
func (e *ExprRecordAccess) isExpr()   {}
func (e *ExprRecordUpdate) isExpr()   {}
func (e *ExprIf) isExpr()             {}
func (e *ExprMatch) isExpr()          {}
func (e *ExprFunction) isExpr()       {}
func (e *ExprCall) isExpr()           {}
func (e *ExprLet) isExpr()            {}
func (e *ExprEffect) isExpr()         {}
func (e *ExprVariable) isExpr()       {}
func (e *ExprConstructor) isExpr()    {}

func (e *ExprTrue) Span() Span         { return e.ExprSpan }
func (e *ExprFalse) Span() Span        { return e.ExprSpan }
func (e *ExprUnit) Span() Span         { return e.ExprSpan }
func (e *ExprString) Span() Span       { return e.ExprSpan }
func (e *ExprInt) Span() Span          { return e.ExprSpan }
func (e *ExprFloat) Span() Span        { return e.ExprSpan }
func (e *ExprArray) Span() Span        { return e.ExprSpan }
func (e *ExprRecord) Span() Span       { return e.ExprSpan }
func (e *ExprRecordAccess) Span() Span { return e.ExprSpan }
func (e *ExprRecordUpdate) Span() Span { return e.ExprSpan }
func (e *ExprIf) Span() Span           { return e.ExprSpan }
func (e *ExprMatch) Span() Span        { return e.ExprSpan }
func (e *ExprFunction) Span() Span     { return e.ExprSpan }
func (e *ExprCall) Span() Span         { return e.ExprSpan }
func (e *ExprLet) Span() Span          { return e.ExprSpan }
func (e *ExprEffect) Span() Span       { return e.ExprSpan }
func (e *ExprVariable) Span() Span     { return e.ExprSpan }
func (e *ExprConstructor) Span() Span  { return e.ExprSpan }

// FunctionBinder is one parameter of a function literal. Binders are
// restricted to simple names (no nested pattern matching) until
// changed deliberately.
type FunctionBinder struct {
	Span       Span
	Name       Name // may be an UnusedName lexically; resolution decides
	Annotation TypeExpr
}

// MatchArm is `| Pattern -> Expr` (the coverage checker never sees
// guards; a guarded arm is treated as only partially covering its
// pattern).
type MatchArm struct {
	Span    Span
	Pattern Pattern
	Guard   Expr // nil if unguarded
	Body    Expr
}

// Pattern is the CST pattern tree.
type Pattern interface {
	isPattern()
	Span() Span
}

type (
	PatternConstructor struct {
		PatSpan Span
		Name    Qualified[ProperName]
		Args    []Pattern
	}
	PatternVariable struct {
		PatSpan Span
		Name    Name
	}
	PatternUnused struct {
		PatSpan Span
		Name    UnusedName
	}
)

func (p *PatternConstructor) isPattern() {}
func (p *PatternVariable) isPattern()    {}
func (p *PatternUnused) isPattern()      {}

func (p *PatternConstructor) Span() Span { return p.PatSpan }
func (p *PatternVariable) Span() Span    { return p.PatSpan }
func (p *PatternUnused) Span() Span      { return p.PatSpan }

// EffectStmt is one statement of a `do ... end` block.
type EffectStmt interface {
	isEffectStmt()
	Span() Span
}

type (
	EffectBind struct {
		StmtSpan Span
		Name     Name
		Value    Expr
	}
	EffectLet struct {
		StmtSpan   Span
		Name       Name
		Annotation TypeExpr
		Value      Expr
	}
	EffectExpression struct {
		StmtSpan Span
		Value    Expr
		HasRest  bool
	}
	EffectReturn struct {
		StmtSpan Span
		Value    Expr
	}
)

func (e *EffectBind) isEffectStmt()       {}
func (e *EffectLet) isEffectStmt()        {}
func (e *EffectExpression) isEffectStmt() {}
func (e *EffectReturn) isEffectStmt()     {}

func (e *EffectBind) Span() Span       { return e.StmtSpan }
func (e *EffectLet) Span() Span        { return e.StmtSpan }
func (e *EffectExpression) Span() Span { return e.StmtSpan }
func (e *EffectReturn) Span() Span     { return e.StmtSpan }
