package types

import (
	"fmt"
	"sync/atomic"
)

// freshRowVar hands out synthetic row-variable IDs for the merged row
// produced when unifying two flexible open records. These never escape
// to the surface language, so they live in their own negative range,
// disjoint from every id a Supply ever hands out.
var freshRowVarCounter int64

func freshRowVar() int {
	return int(atomic.AddInt64(&freshRowVarCounter, -1))
}

// UnifyError is TypesNotEqual or InfiniteType.
type UnifyError struct {
	Kind     string // "TypesNotEqual" | "InfiniteType"
	Expected Type
	Actual   Type
	Var      int // populated for InfiniteType
}

func (e *UnifyError) Error() string {
	if e.Kind == "InfiniteType" {
		return fmt.Sprintf("infinite type: variable t%d occurs in %s", e.Var, e.Actual)
	}
	return fmt.Sprintf("types not equal: expected %s, got %s", e.Expected, e.Actual)
}

func notEqual(expected, actual Type) error {
	return &UnifyError{Kind: "TypesNotEqual", Expected: expected, Actual: actual}
}

func occursIn(id int, t Type) bool {
	switch t := t.(type) {
	case *Variable:
		return t.ID == id
	case *ConstructorAlias:
		return occursIn(id, t.AliasedType)
	case *Call:
		if occursIn(id, t.Function) {
			return true
		}
		for _, a := range t.Arguments {
			if occursIn(id, a) {
				return true
			}
		}
		return false
	case *Function:
		for _, p := range t.Parameters {
			if occursIn(id, p) {
				return true
			}
		}
		return occursIn(id, t.Return)
	case *RecordClosed:
		for _, n := range t.RowData.SortedNames() {
			if occursIn(id, t.RowData.Fields[n]) {
				return true
			}
		}
		return false
	case *RecordOpen:
		if t.Var == id {
			return true
		}
		for _, n := range t.RowData.SortedNames() {
			if occursIn(id, t.RowData.Fields[n]) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func bind(sub Substitution, id int, t Type) (Substitution, error) {
	if v, ok := t.(*Variable); ok && v.ID == id {
		return sub, nil // binding a variable to itself is a no-op
	}
	if occursIn(id, t) {
		return nil, &UnifyError{Kind: "InfiniteType", Var: id, Actual: t}
	}
	next := make(Substitution, len(sub)+1)
	for k, v := range sub {
		next[k] = v
	}
	next[id] = t
	return next, nil
}

// Unify implements the core unification relation. It applies sub to
// both sides first, matching "unify(span, expected, actual) applies the
// current substitution to both sides and then recurses".
func Unify(sub Substitution, expected, actual Type) (Substitution, error) {
	expected = Apply(sub, expected)
	actual = Apply(sub, actual)

	if ev, ok := expected.(*Variable); ok {
		if av, ok := actual.(*Variable); ok {
			if ev.IsRigid || av.IsRigid {
				if ev.IsRigid && av.IsRigid && ev.SourceName == av.SourceName && ev.SourceName != "" {
					return sub, nil
				}
				if ev.ID == av.ID {
					return sub, nil
				}
				return nil, notEqual(expected, actual)
			}
			if ev.ID == av.ID {
				return sub, nil
			}
			return bind(sub, ev.ID, actual)
		}
		if ev.IsRigid {
			return nil, notEqual(expected, actual)
		}
		return bind(sub, ev.ID, actual)
	}
	if av, ok := actual.(*Variable); ok {
		if av.IsRigid {
			return nil, notEqual(expected, actual)
		}
		return bind(sub, av.ID, expected)
	}

	// ConstructorAlias on either side expands lazily: try the head form
	// first, retry against the expansion on failure, preserving the
	// original error if neither succeeds.
	if ea, ok := expected.(*ConstructorAlias); ok {
		if s2, err := unifyHead(sub, ea, actual); err == nil {
			return s2, nil
		}
		if s2, err := Unify(sub, ea.AliasedType, actual); err == nil {
			return s2, nil
		}
		return nil, notEqual(expected, actual)
	}
	if aa, ok := actual.(*ConstructorAlias); ok {
		if s2, err := unifyHead(sub, expected, aa); err == nil {
			return s2, nil
		}
		if s2, err := Unify(sub, expected, aa.AliasedType); err == nil {
			return s2, nil
		}
		return nil, notEqual(expected, actual)
	}

	return unifyHead(sub, expected, actual)
}

func unifyHead(sub Substitution, expected, actual Type) (Substitution, error) {
	switch e := expected.(type) {
	case *PrimConstructor:
		if a, ok := actual.(*PrimConstructor); ok && a.Prim == e.Prim {
			return sub, nil
		}
		return nil, notEqual(expected, actual)

	case *Constructor:
		if a, ok := actual.(*Constructor); ok && a.Canonical.Key() == e.Canonical.Key() {
			return sub, nil
		}
		if a, ok := actual.(*ConstructorAlias); ok && a.Canonical.Key() == e.Canonical.Key() {
			return sub, nil
		}
		return nil, notEqual(expected, actual)

	case *ConstructorAlias:
		if a, ok := actual.(*Constructor); ok && a.Canonical.Key() == e.Canonical.Key() {
			return sub, nil
		}
		if a, ok := actual.(*ConstructorAlias); ok && a.Canonical.Key() == e.Canonical.Key() {
			return sub, nil
		}
		return nil, notEqual(expected, actual)

	case *Call:
		a, ok := actual.(*Call)
		if !ok || len(e.Arguments) != len(a.Arguments) {
			return nil, notEqual(expected, actual)
		}
		cur, err := Unify(sub, e.Function, a.Function)
		if err != nil {
			return nil, err
		}
		for i := range e.Arguments {
			cur, err = Unify(cur, e.Arguments[i], a.Arguments[i])
			if err != nil {
				return nil, err
			}
		}
		return cur, nil

	case *Function:
		a, ok := actual.(*Function)
		if !ok || len(e.Parameters) != len(a.Parameters) {
			return nil, notEqual(expected, actual)
		}
		cur := sub
		var err error
		for i := range e.Parameters {
			cur, err = Unify(cur, e.Parameters[i], a.Parameters[i])
			if err != nil {
				return nil, err
			}
		}
		cur, err = Unify(cur, e.Return, a.Return)
		if err != nil {
			return nil, err
		}
		return cur, nil

	case *RecordClosed:
		return unifyRecord(sub, e, nil, actual)

	case *RecordOpen:
		return unifyRecord(sub, nil, e, actual)
	}
	return nil, notEqual(expected, actual)
}

// unifyRecord implements the five row-unification cases.
// Exactly one of closedE/openE is non-nil, representing "expected".
func unifyRecord(sub Substitution, closedE *RecordClosed, openE *RecordOpen, actual Type) (Substitution, error) {
	switch a := actual.(type) {
	case *RecordClosed:
		if openE != nil {
			return unifyOpenClosed(sub, openE, a)
		}
		return unifyClosedClosed(sub, closedE, a)

	case *RecordOpen:
		if closedE != nil {
			return unifyOpenClosed(sub, a, closedE)
		}
		return unifyOpenOpen(sub, openE, a)
	}
	var expected Type
	if closedE != nil {
		expected = closedE
	} else {
		expected = openE
	}
	return nil, notEqual(expected, actual)
}

func unifyClosedClosed(sub Substitution, e, a *RecordClosed) (Substitution, error) {
	en, an := e.RowData.SortedNames(), a.RowData.SortedNames()
	if len(en) != len(an) {
		return nil, notEqual(e, a)
	}
	cur := sub
	for _, n := range en {
		at, ok := a.RowData.Fields[n]
		if !ok {
			return nil, notEqual(e, a)
		}
		var err error
		cur, err = Unify(cur, e.RowData.Fields[n], at)
		if err != nil {
			return nil, err
		}
	}
	return cur, nil
}

// unifyOpenClosed unifies an open row against a closed one: the open
// key set must be a subset of the closed one; the intersection unifies;
// the open var binds to the closed record.
func unifyOpenClosed(sub Substitution, open *RecordOpen, closed *RecordClosed) (Substitution, error) {
	cur := sub
	for _, n := range open.RowData.SortedNames() {
		ct, ok := closed.RowData.Fields[n]
		if !ok {
			return nil, notEqual(open, closed)
		}
		var err error
		cur, err = Unify(cur, open.RowData.Fields[n], ct)
		if err != nil {
			return nil, err
		}
	}
	if open.IsRigid {
		// A rigid open row can only be satisfied by an identical rigid
		// row elsewhere; it never binds to an arbitrary closed record.
		return nil, notEqual(open, closed)
	}
	return bind(cur, open.Var, closed)
}

func unifyOpenOpen(sub Substitution, e, a *RecordOpen) (Substitution, error) {
	if e.Var == a.Var {
		// One shared tail variable: the listed fields must agree exactly,
		// and nothing is bound.
		return unifyClosedClosed(sub, &RecordClosed{RowData: e.RowData}, &RecordClosed{RowData: a.RowData})
	}
	if e.IsRigid && a.IsRigid {
		if e.SourceName != a.SourceName || e.SourceName == "" {
			return nil, notEqual(e, a)
		}
		// same rule as closed~closed over the shared field set
		cur := sub
		for _, n := range e.RowData.SortedNames() {
			at, ok := a.RowData.Fields[n]
			if !ok {
				return nil, notEqual(e, a)
			}
			var err error
			cur, err = Unify(cur, e.RowData.Fields[n], at)
			if err != nil {
				return nil, err
			}
		}
		return cur, nil
	}
	if a.IsRigid && !e.IsRigid {
		// open(non-rigid) ~ open(rigid): open subset, bind flexible to rigid
		cur := sub
		for _, n := range e.RowData.SortedNames() {
			at, ok := a.RowData.Fields[n]
			if !ok {
				return nil, notEqual(e, a)
			}
			var err error
			cur, err = Unify(cur, e.RowData.Fields[n], at)
			if err != nil {
				return nil, err
			}
		}
		return bind(cur, e.Var, a)
	}
	if e.IsRigid && !a.IsRigid {
		return unifyOpenOpen(sub, a, e)
	}

	// both non-rigid: union of fields, values from expected (e) win on
	// overlap, bind both vars to a fresh shared open record
	merged := e.RowData.Clone()
	cur := sub
	for _, n := range a.RowData.SortedNames() {
		if et, ok := merged.Fields[n]; ok {
			var err error
			cur, err = Unify(cur, et, a.RowData.Fields[n])
			if err != nil {
				return nil, err
			}
		} else {
			merged.Set(n, a.RowData.Fields[n])
		}
	}
	fresh := &RecordOpen{Var: freshRowVar(), RowData: merged}
	var err error
	cur, err = bind(cur, e.Var, fresh)
	if err != nil {
		return nil, err
	}
	cur, err = bind(cur, a.Var, fresh)
	if err != nil {
		return nil, err
	}
	return cur, nil
}
