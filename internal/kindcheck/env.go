// Package kindcheck implements the type declaration checker: it assigns
// a Kind to every declared type and ADT constructor, following the
// structure of ditto-checker's type_declarations and kindchecker
// modules.
package kindcheck

import (
	"github.com/ditto-lang/ditto/internal/ast"
	"github.com/ditto-lang/ditto/internal/kind"
)

// EnvType is a known type constructor: either a prior module's export,
// re-qualified, or one of the current module's own type declarations
// already checked earlier in its dependency order.
type EnvType struct {
	Canonical ast.FullyQualified[ast.ProperName]
	Kind      kind.Kind
}

// EnvTypeVariable is a declared type variable in scope for the body of
// one type declaration: the fresh type-variable ID it was assigned, and
// its (possibly still unresolved) kind.
type EnvTypeVariable struct {
	Var          int
	VariableKind kind.Kind
}

// Env is the lookup environment threaded through check: every named
// type visible at this point in the module, plus the type variables
// bound by the declaration currently being checked.
type Env struct {
	Types         map[string]EnvType
	TypeVariables map[string]EnvTypeVariable
}

func NewEnv() *Env {
	return &Env{Types: make(map[string]EnvType), TypeVariables: make(map[string]EnvTypeVariable)}
}

// Clone returns a shallow copy of env, safe to extend without mutating
// the original (mirrors the Rust checker's `env_types.clone()` calls).
func (e *Env) Clone() *Env {
	out := &Env{Types: make(map[string]EnvType, len(e.Types)), TypeVariables: make(map[string]EnvTypeVariable, len(e.TypeVariables))}
	for k, v := range e.Types {
		out.Types[k] = v
	}
	for k, v := range e.TypeVariables {
		out.TypeVariables[k] = v
	}
	return out
}

// TypeReferences accumulates, for each referenced type name, every span
// at which it was mentioned from a constructor field — used for
// go-to-definition and unused-import diagnostics.
type TypeReferences map[string][]ast.Span

func mergeReferences(a, b TypeReferences) TypeReferences {
	if a == nil {
		a = TypeReferences{}
	}
	for k, spans := range b {
		a[k] = append(a[k], spans...)
	}
	return a
}

// State is the mutable state threaded through a single declaration (or
// SCC of declarations) being kind-checked: fresh-variable supplies, the
// accumulating kind substitution, and side outputs.
type State struct {
	KindSupply     kind.Supply
	TypeSupply     typeSupply
	Substitution   kind.Substitution
	Warnings       []Warning
	TypeReferences TypeReferences
}

// typeSupply is a tiny local counter for type-variable IDs, independent
// of internal/types.Supply: type-declaration variables are scoped to
// their own declaration (or SCC) and never escape into the inference
// supply used by internal/typecheck.
type typeSupply struct{ next int }

func (s *typeSupply) fresh() int {
	s.next++
	return s.next
}

func NewState() *State {
	return &State{Substitution: kind.Substitution{}, TypeReferences: TypeReferences{}}
}

// Warning is a non-fatal kindcheck diagnostic (e.g. an unused type
// variable), kept separate from core.Warning until a type declaration
// is fully elaborated.
type Warning struct {
	Code string
	Span ast.Span
}
