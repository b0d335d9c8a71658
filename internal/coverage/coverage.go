// Package coverage implements the "ideal pattern" exhaustiveness and
// redundancy check for match expressions, ported from
// ditto-checker/src/typechecker/coverage/mod.rs.
//
// REFERENCE: https://adamschoenemann.dk/posts/2018-05-29-pattern-matching.html
package coverage

import (
	"sort"

	"github.com/ditto-lang/ditto/internal/ast"
	"github.com/ditto-lang/ditto/internal/core"
	"github.com/ditto-lang/ditto/internal/types"
)

// ConstructorInfo is the slice of an EnvConstructor the coverage checker
// actually needs: its unqualified name, and its (uninstantiated) scheme
// signature, from which siblinghood and arity are derived.
type ConstructorInfo struct {
	Name      string
	Signature types.Type // Function{Parameters, Return} or just Return for nullary
}

// clausePattern mirrors the CST-level pattern shape the checker reasons
// about: constructor application or a catch-all variable (plain
// variables and unused-name patterns are indistinguishable here).
type clausePattern struct {
	span        ast.Span
	isVariable  bool
	constructor string
	arguments   []clausePattern
}

func fromPattern(p core.Pattern) clausePattern {
	switch p := p.(type) {
	case *core.LocalConstructorPattern:
		return clausePattern{span: p.Span, constructor: p.Name.Value, arguments: fromPatterns(p.Args)}
	case *core.ImportedConstructorPattern:
		return clausePattern{span: p.Span, constructor: p.Name.Value, arguments: fromPatterns(p.Args)}
	case *core.VariablePattern:
		return clausePattern{span: p.Span, isVariable: true}
	case *core.UnusedPattern:
		return clausePattern{span: p.Span, isVariable: true}
	default:
		return clausePattern{isVariable: true}
	}
}

func fromPatterns(ps []core.Pattern) []clausePattern {
	out := make([]clausePattern, len(ps))
	for i, p := range ps {
		out[i] = fromPattern(p)
	}
	return out
}

// freshName identifies one "slot" in the ideal pattern being refined.
type freshName int

type supply struct{ next freshName }

func (s *supply) fresh() freshName {
	n := s.next
	s.next++
	return n
}

// idealPattern is the checker's working hypothesis for "the pattern
// that would need to match here" — refined one constructor at a time
// as covered_by walks the clause list.
type idealPattern struct {
	isVariable  bool
	variable    freshName
	constructor string
	arguments   []idealPattern
}

func idealFromClause(s *supply, c clausePattern) idealPattern {
	if c.isVariable {
		return idealPattern{isVariable: true, variable: s.fresh()}
	}
	args := make([]idealPattern, len(c.arguments))
	for i, a := range c.arguments {
		args[i] = idealFromClause(s, a)
	}
	return idealPattern{constructor: c.constructor, arguments: args}
}

// Render prints an ideal pattern for a MatchNotExhaustive diagnostic's
// "missing patterns" list.
func (p idealPattern) Render() string {
	if p.isVariable {
		return "_"
	}
	if len(p.arguments) == 0 {
		return p.constructor
	}
	s := p.constructor + "("
	for i, a := range p.arguments {
		if i > 0 {
			s += ", "
		}
		s += a.Render()
	}
	return s + ")"
}

// constructorEntry is one alternative available for a given ideal
// slot's type: its name and the (possibly type-substituted) field
// types used to recurse when that slot is refined further.
type constructorEntry struct {
	name      string
	arguments []types.Type
}

// Lookup resolves, for a pattern's static type, every constructor that
// could appear there — the closed alternative set exhaustiveness is
// checked against.
type Lookup func(t types.Type) []ConstructorInfo

func constructorsForType(t types.Type, lookup Lookup) []constructorEntry {
	switch t := t.(type) {
	case *types.Call:
		con, ok := t.Function.(*types.Constructor)
		if !ok {
			return nil
		}
		var out []constructorEntry
		for _, ci := range lookup(t) {
			params, ret := splitFunction(ci.Signature)
			if ret == nil {
				out = append(out, constructorEntry{name: ci.Name})
				continue
			}
			retCall, ok := ret.(*types.Call)
			args := params
			if ok {
				subst := map[int]types.Type{}
				for i, a := range retCall.Arguments {
					if v, ok := a.(*types.Variable); ok && i < len(t.Arguments) {
						subst[v.ID] = t.Arguments[i]
					}
				}
				args = make([]types.Type, len(params))
				for i, p := range params {
					if v, ok := p.(*types.Variable); ok {
						if s, ok := subst[v.ID]; ok {
							args[i] = s
							continue
						}
					}
					args[i] = p
				}
			}
			out = append(out, constructorEntry{name: ci.Name, arguments: args})
		}
		_ = con
		return out

	case *types.Constructor:
		var out []constructorEntry
		for _, ci := range lookup(t) {
			params, _ := splitFunction(ci.Signature)
			out = append(out, constructorEntry{name: ci.Name, arguments: params})
		}
		return out

	default:
		return nil
	}
}

func splitFunction(t types.Type) ([]types.Type, types.Type) {
	if fn, ok := t.(*types.Function); ok {
		return fn.Parameters, fn.Return
	}
	return nil, t
}

func (c constructorEntry) toPattern(s *supply, lookup Lookup) (idealPattern, map[freshName][]constructorEntry) {
	env := map[freshName][]constructorEntry{}
	args := make([]idealPattern, len(c.arguments))
	for i, argType := range c.arguments {
		fresh := s.fresh()
		env[fresh] = constructorsForType(argType, lookup)
		args[i] = idealPattern{isVariable: true, variable: fresh}
	}
	return idealPattern{constructor: c.name, arguments: args}, env
}

// Error is either a set of redundant clauses (COV002) or the set of
// ideal patterns not covered by any clause (COV001).
type Error struct {
	RedundantClauses []ast.Span // span of each clause that can never match
	NotCovered       []idealPattern
}

func (e *Error) MissingPatterns() []string {
	out := make([]string, len(e.NotCovered))
	for i, p := range e.NotCovered {
		out[i] = p.Render()
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) < len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

type clause struct {
	pattern clausePattern
	usages  int
}

// IsExhaustive runs the coverage check over one match expression's arm
// patterns against its scrutinee's static type, returning nil if the
// match is exhaustive and non-redundant.
func IsExhaustive(lookup Lookup, patternType types.Type, patterns []core.Pattern) *Error {
	s := &supply{}
	fresh := s.fresh()
	env := map[freshName][]constructorEntry{fresh: constructorsForType(patternType, lookup)}
	ideal := idealPattern{isVariable: true, variable: fresh}

	clauses := make([]clause, len(patterns))
	for i, p := range patterns {
		clauses[i] = clause{pattern: fromPattern(p)}
	}

	var notCovered []idealPattern
	checked := coveredBy(env, lookup, s, ideal, clauses, &notCovered)

	if len(notCovered) > 0 {
		return &Error{NotCovered: notCovered}
	}

	var redundant []ast.Span
	for _, c := range checked {
		if c.usages < 1 {
			redundant = append(redundant, c.pattern.span)
		}
	}
	if len(redundant) > 0 {
		return &Error{RedundantClauses: redundant}
	}
	return nil
}

func coveredBy(env map[freshName][]constructorEntry, lookup Lookup, s *supply, ideal idealPattern, clauses []clause, notCovered *[]idealPattern) []clause {
	if len(clauses) == 0 {
		*notCovered = append(*notCovered, ideal)
		return nil
	}
	head, rest := clauses[0], clauses[1:]

	subst, ok := hasSubst(s, ideal, head.pattern)
	if !ok {
		checked := append([]clause{head}, coveredBy(env, lookup, s, ideal, rest, notCovered)...)
		return checked
	}

	if injectiveVar, notInjective := firstNonInjective(subst); notInjective {
		entries := env[injectiveVar]
		var checked []clause = append([]clause(nil), clauses...)
		for _, entry := range entries {
			newIdeal, newEnv := entry.toPattern(s, lookup)
			merged := map[freshName][]constructorEntry{}
			for k, v := range env {
				merged[k] = v
			}
			for k, v := range newEnv {
				merged[k] = v
			}
			substituted := applySubst(map[freshName]idealPattern{injectiveVar: newIdeal}, ideal)
			checked = coveredBy(merged, lookup, s, substituted, checked, notCovered)
		}
		return checked
	}

	checked := append([]clause{{pattern: head.pattern, usages: head.usages + 1}}, rest...)
	return checked
}

// hasSubst reports whether clausePattern could match the shape ideal
// describes, and if so the substitution of ideal's free slots that
// makes them equal.
func hasSubst(s *supply, ideal idealPattern, cp clausePattern) (map[freshName]idealPattern, bool) {
	if ideal.isVariable {
		return map[freshName]idealPattern{ideal.variable: idealFromClause(s, cp)}, true
	}
	if cp.isVariable {
		return map[freshName]idealPattern{}, true
	}
	if ideal.constructor != cp.constructor {
		return nil, false
	}
	if len(ideal.arguments) != len(cp.arguments) {
		// Malformed (arity mismatch between a resolved constructor and its
		// pattern) — treated as "doesn't match" since this indicates a
		// typecheck bug upstream, not a legitimate coverage gap.
		return nil, false
	}
	subst := map[freshName]idealPattern{}
	for i := range ideal.arguments {
		argSubst, ok := hasSubst(s, ideal.arguments[i], cp.arguments[i])
		if !ok {
			return nil, false
		}
		for k, v := range argSubst {
			subst[k] = v
		}
	}
	return subst, true
}

// firstNonInjective reports the first slot in subst bound to a
// constructor pattern (as opposed to a bare variable) — such a
// substitution discriminates on that slot's shape, so coveredBy must
// recurse into every sibling constructor rather than taking this
// clause as a blanket match.
func firstNonInjective(subst map[freshName]idealPattern) (freshName, bool) {
	for v, p := range subst {
		if !p.isVariable {
			return v, true
		}
	}
	return 0, false
}

func applySubst(subst map[freshName]idealPattern, ideal idealPattern) idealPattern {
	if ideal.isVariable {
		if p, ok := subst[ideal.variable]; ok {
			return applySubst(subst, p)
		}
		return ideal
	}
	args := make([]idealPattern, len(ideal.arguments))
	for i, a := range ideal.arguments {
		args[i] = applySubst(subst, a)
	}
	return idealPattern{constructor: ideal.constructor, arguments: args}
}
