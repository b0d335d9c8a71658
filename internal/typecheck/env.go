// Package typecheck implements the bidirectional Hindley-Milner engine:
// Infer/Check over the expression tree, extended with row-polymorphic
// records, let-generalisation between SCCs of value declarations, ADTs
// and the Effect monad. Grounded on ditto-checker/src/typechecker/mod.rs
// and its sibling module/value_declarations/mod.rs.
package typecheck

import (
	"github.com/ditto-lang/ditto/internal/ast"
	"github.com/ditto-lang/ditto/internal/core"
	"github.com/ditto-lang/ditto/internal/types"
)

// EnvValue is a value binding visible at the point an expression is
// checked: a module-local declaration (possibly generalised into a
// Scheme already), a function/pattern/effect binder (never
// generalised — monomorphic), an import from another module, or a
// foreign (JS-backed) value.
type EnvValue struct {
	Scheme       *types.Scheme
	Ref          *core.GlobalRef // nil for local/foreign bindings
	IsForeign    bool
	Introduction ast.Span
}

// ToExpression instantiates this binding at a use site, producing the
// appropriately-shaped core.Expression reference node.
func (v *EnvValue) ToExpression(supply *types.Supply, span ast.Span, name ast.Name) core.Expression {
	t := types.Instantiate(supply, v.Scheme)
	switch {
	case v.IsForeign:
		return &core.ForeignVariable{Span: span, Type: t, Name: name}
	case v.Ref != nil:
		return &core.ImportedVariable{Span: span, Type: t, Name: name, Ref: *v.Ref, Introduction: v.Introduction}
	default:
		return &core.LocalVariable{Span: span, Type: t, Name: name, Introduction: v.Introduction}
	}
}

// EnvConstructor is a known ADT constructor: its instantiable type
// (parameters -> ReturnType, or just ReturnType for a nullary
// constructor) and enough identity to build the right core node.
type EnvConstructor struct {
	Scheme         *types.Scheme
	Ref            *core.GlobalRef // nil for a same-module constructor
	ReturnTypeName string          // unqualified type name, for coverage/exhaustiveness
	Introduction   ast.Span
}

func (c *EnvConstructor) ToExpression(supply *types.Supply, span ast.Span, name ast.ProperName) core.Expression {
	t := types.Instantiate(supply, c.Scheme)
	if c.Ref != nil {
		return &core.ImportedConstructor{Span: span, Type: t, Name: name, Ref: *c.Ref, Introduction: c.Introduction}
	}
	return &core.LocalConstructor{Span: span, Type: t, Name: name, Introduction: c.Introduction}
}

func (c *EnvConstructor) ToPattern(supply *types.Supply, span ast.Span, name ast.ProperName, args []core.Pattern) core.Pattern {
	t := types.Instantiate(supply, c.Scheme)
	// The pattern's own type is the constructor's (possibly-instantiated)
	// result type, not its full function type.
	resultType := t
	if fn, ok := t.(*types.Function); ok {
		resultType = fn.Return
	}
	if c.Ref != nil {
		return &core.ImportedConstructorPattern{Span: span, Type: resultType, Name: name, Ref: *c.Ref, Args: args}
	}
	return &core.LocalConstructorPattern{Span: span, Type: resultType, Name: name, Args: args}
}

// Env is the lookup environment threaded through Infer/Check: every
// value and constructor visible at this point, keyed by their
// qualified-or-bare lookup string (the same convention resolve.Imported
// uses: "Alias.name" for a qualified import, bare "name" otherwise).
type Env struct {
	Values       map[string]*EnvValue
	Constructors map[string]*EnvConstructor
}

func NewEnv() *Env {
	return &Env{Values: make(map[string]*EnvValue), Constructors: make(map[string]*EnvConstructor)}
}

// Clone returns a shallow copy, safe to extend without mutating env.
func (e *Env) Clone() *Env {
	out := &Env{Values: make(map[string]*EnvValue, len(e.Values)), Constructors: make(map[string]*EnvConstructor, len(e.Constructors))}
	for k, v := range e.Values {
		out.Values[k] = v
	}
	for k, v := range e.Constructors {
		out.Constructors[k] = v
	}
	return out
}

// Generalize quantifies t over every free variable not already free in
// env's own bindings.
func (e *Env) Generalize(t types.Type) *types.Scheme {
	envFree := make(map[int]bool)
	for _, v := range e.Values {
		for id := range types.FreeVars(v.Scheme.Signature) {
			envFree[id] = true
		}
	}
	return types.Generalize(envFree, t)
}

// References counts uses of qualified lookup keys, used both for
// unused-import/unused-binder warnings and for the LSP's
// go-to-definition.
type References map[string]int

func (r References) register(key string) {
	r[key]++
}

func mergeReferences(a, b References) References {
	if a == nil {
		a = References{}
	}
	for k, n := range b {
		a[k] += n
	}
	return a
}

// State is the mutable state threaded through one Infer/Check walk: the
// fresh-variable supply, the accumulating substitution, diagnostics,
// and the value/constructor reference counters.
type State struct {
	Supply                types.Supply
	Substitution          types.Substitution
	Warnings              []Warning
	ValueReferences       References
	ConstructorReferences References
}

func NewState() *State {
	return &State{
		Substitution:          types.Substitution{},
		ValueReferences:       References{},
		ConstructorReferences: References{},
	}
}

func (s *State) registerValueReference(key string)       { s.ValueReferences.register(key) }
func (s *State) registerConstructorReference(key string)  { s.ConstructorReferences.register(key) }

// Warning is a non-fatal typecheck diagnostic.
type Warning struct {
	Code string
	Span ast.Span
}

const (
	WarnUnusedFunctionBinder = "unused-function-binder"
	WarnUnusedEffectBinder   = "unused-effect-binder"
	WarnUnusedPatternBinder  = "unused-pattern-binder"
	WarnUnusedLetBinder      = "unused-let-binder"
	WarnRedundantMatchArm    = "redundant-match-arm"
)
