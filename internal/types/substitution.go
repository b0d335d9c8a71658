package types

// Substitution is a hash map Var -> Type, applied lazily during
// unification and eagerly once at the end of top-level inference
// down to a concrete environment.
type Substitution map[int]Type

// Supply hands out fresh non-rigid type variables.
type Supply struct{ next int }

func (s *Supply) Fresh() *Variable {
	s.next++
	return &Variable{ID: s.next}
}

func (s *Supply) FreshRow() *Row {
	return &Row{Fields: make(map[string]Type)}
}

// maxApplyDepth guards the recursive Apply against pathological cycles,
// turning them into a loud failure instead of a stack overflow.
const maxApplyDepth = 10000

// Apply substitutes every variable in t bound in sub, recursively. It
// panics with a *CycleError past maxApplyDepth rather than overflowing
// the stack; no caller in this module recovers that panic.
func Apply(sub Substitution, t Type) Type {
	return applyDepth(sub, t, 0)
}

// CycleError is raised when substitution application exceeds the depth
// guard; it indicates a substitution containing a genuine cycle, which
// should never happen for well-formed inference state.
type CycleError struct{ Var int }

func (e *CycleError) Error() string { return "infinite substitution cycle" }

func applyDepth(sub Substitution, t Type, depth int) Type {
	if depth > maxApplyDepth {
		panic(&CycleError{})
	}
	switch t := t.(type) {
	case *Variable:
		if replacement, ok := sub[t.ID]; ok {
			if rv, same := replacement.(*Variable); same && rv.ID == t.ID {
				return t
			}
			return applyDepth(sub, replacement, depth+1)
		}
		return t
	case *Constructor:
		return t
	case *ConstructorAlias:
		return &ConstructorAlias{
			Canonical:      t.Canonical,
			SourceValue:    t.SourceValue,
			AliasVariables: t.AliasVariables,
			AliasedType:    applyDepth(sub, t.AliasedType, depth+1),
		}
	case *PrimConstructor:
		return t
	case *Call:
		args := make([]Type, len(t.Arguments))
		for i, a := range t.Arguments {
			args[i] = applyDepth(sub, a, depth+1)
		}
		return &Call{Function: applyDepth(sub, t.Function, depth+1), Arguments: args}
	case *Function:
		params := make([]Type, len(t.Parameters))
		for i, p := range t.Parameters {
			params[i] = applyDepth(sub, p, depth+1)
		}
		return &Function{Parameters: params, Return: applyDepth(sub, t.Return, depth+1)}
	case *RecordClosed:
		return &RecordClosed{RowData: applyRow(sub, t.RowData, depth+1)}
	case *RecordOpen:
		if replacement, ok := sub[t.Var]; ok {
			return applyOpenSubst(sub, t, replacement, depth+1)
		}
		return &RecordOpen{Var: t.Var, SourceName: t.SourceName, IsRigid: t.IsRigid, RowData: applyRow(sub, t.RowData, depth+1)}
	default:
		return t
	}
}

func applyRow(sub Substitution, r *Row, depth int) *Row {
	out := &Row{Fields: make(map[string]Type, len(r.Fields))}
	for _, n := range r.SortedNames() {
		out.Set(n, applyDepth(sub, r.Fields[n], depth))
	}
	return out
}

// applyOpenSubst handles binding a row variable whose substitute is
// itself an open row: field maps concatenate, with the inner (new)
// row's values winning on duplicate keys (how record-update narrowing
// works).
func applyOpenSubst(sub Substitution, original *RecordOpen, replacement Type, depth int) Type {
	replacement = applyDepth(sub, replacement, depth)
	outerFields := applyRow(sub, original.RowData, depth)
	switch rep := replacement.(type) {
	case *RecordOpen:
		merged := outerFields.Clone()
		for _, n := range rep.RowData.SortedNames() {
			merged.Set(n, rep.RowData.Fields[n])
		}
		return &RecordOpen{Var: rep.Var, SourceName: rep.SourceName, IsRigid: rep.IsRigid, RowData: merged}
	case *RecordClosed:
		merged := outerFields.Clone()
		for _, n := range rep.RowData.SortedNames() {
			merged.Set(n, rep.RowData.Fields[n])
		}
		return &RecordClosed{RowData: merged}
	default:
		return replacement
	}
}

// Compose returns a substitution equivalent to applying s1 then s2.
func Compose(s1, s2 Substitution) Substitution {
	result := make(Substitution, len(s1)+len(s2))
	for id, t := range s2 {
		result[id] = Apply(s1, t)
	}
	for id, t := range s1 {
		if _, exists := result[id]; !exists {
			result[id] = t
		}
	}
	return result
}

// FreeVars returns the set of non-rigid variable IDs free in t.
func FreeVars(t Type) map[int]bool {
	out := make(map[int]bool)
	collectFreeVars(t, out)
	return out
}

func collectFreeVars(t Type, out map[int]bool) {
	switch t := t.(type) {
	case *Variable:
		if !t.IsRigid {
			out[t.ID] = true
		}
	case *ConstructorAlias:
		collectFreeVars(t.AliasedType, out)
	case *Call:
		collectFreeVars(t.Function, out)
		for _, a := range t.Arguments {
			collectFreeVars(a, out)
		}
	case *Function:
		for _, p := range t.Parameters {
			collectFreeVars(p, out)
		}
		collectFreeVars(t.Return, out)
	case *RecordClosed:
		for _, n := range t.RowData.SortedNames() {
			collectFreeVars(t.RowData.Fields[n], out)
		}
	case *RecordOpen:
		out[t.Var] = true
		for _, n := range t.RowData.SortedNames() {
			collectFreeVars(t.RowData.Fields[n], out)
		}
	}
}

// Instantiate replaces every quantified variable of a scheme with a
// fresh non-rigid variable.
func Instantiate(supply *Supply, s *Scheme) Type {
	sub := make(Substitution, len(s.Forall))
	for _, id := range s.Forall {
		sub[id] = supply.Fresh()
	}
	return Apply(sub, s.Signature)
}

// Generalize quantifies over every free variable of t not free in env.
func Generalize(envFree map[int]bool, t Type) *Scheme {
	free := FreeVars(t)
	var forall []int
	for id := range free {
		if !envFree[id] {
			forall = append(forall, id)
		}
	}
	return &Scheme{Forall: forall, Signature: t}
}
