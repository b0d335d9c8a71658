package kindcheck

import (
	"fmt"
	"sort"

	"github.com/ditto-lang/ditto/internal/ast"
	"github.com/ditto-lang/ditto/internal/core"
	dittoerrors "github.com/ditto-lang/ditto/internal/errors"
	"github.com/ditto-lang/ditto/internal/kind"
	"github.com/ditto-lang/ditto/internal/scc"
	"github.com/ditto-lang/ditto/internal/types"
)

// Result is the output of CheckTypeDeclarations: every declared type,
// keyed by name, plus the flattened constructor table and accumulated
// references/warnings, ready to fold into a module's exports.
type Result struct {
	Types          map[string]*core.TypeDeclaration
	Constructors   map[string]*core.ConstructorDeclaration
	TypeReferences TypeReferences
	Warnings       []Warning
}

type constructorSeen struct {
	span ast.Span
}

// CheckTypeDeclarations kind-checks every type declaration of a module,
// scheduling by SCC over constructor-field references. baseEnv carries
// every type already visible (imports plus, for a
// cyclic group, sibling declarations); moduleName identifies the
// canonical home of every type declared here.
func CheckTypeDeclarations(baseEnv *Env, moduleName ast.ModuleName, decls []*ast.TypeDecl, deterministic bool) (*Result, []*Error) {
	result := &Result{
		Types:          make(map[string]*core.TypeDeclaration),
		Constructors:   make(map[string]*core.ConstructorDeclaration),
		TypeReferences: TypeReferences{},
	}

	// Step 0: duplicate-type-name check, before anything else touches
	// the graph — duplicate names would otherwise corrupt the toposort.
	seen := map[string]ast.Span{}
	byName := map[string]*ast.TypeDecl{}
	for _, d := range decls {
		if prev, ok := seen[d.Name.Value]; ok {
			first, second := prev, d.Name.Span
			if d.Name.Span.Start < prev.Start {
				first, second = d.Name.Span, prev
			}
			return nil, []*Error{{
				Code:    dittoerrors.DuplicateTypeDeclaration,
				Message: fmt.Sprintf("type %q is declared more than once", d.Name.Value),
				Span:    second,
			}, {
				Code:    dittoerrors.DuplicateTypeDeclaration,
				Message: fmt.Sprintf("%q first declared here", d.Name.Value),
				Span:    first,
			}}
		}
		seen[d.Name.Value] = d.Name.Span
		byName[d.Name.Value] = d
	}

	graph := scc.NewGraph()
	for _, d := range decls {
		graph.AddNode(d.Name.Value)
	}
	for _, d := range decls {
		for ref := range referencedTypeNames(d) {
			graph.AddEdge(d.Name.Value, ref)
		}
	}

	globalConstructors := map[string]constructorSeen{}
	env := baseEnv.Clone()

	for _, group := range graph.SCCs(deterministic) {
		groupDecls := make([]*ast.TypeDecl, len(group.Names))
		for i, n := range group.Names {
			groupDecls[i] = byName[n]
		}

		if group.IsRecursive && len(groupDecls) > 1 {
			declared, refs, warnings, errs := checkCyclicGroup(env, moduleName, groupDecls)
			if len(errs) > 0 {
				return nil, errs
			}
			for _, d := range declared {
				env.Types[d.decl.Name.Value] = EnvType{Canonical: canonicalName(moduleName, d.decl.Name), Kind: d.decl.Kind}
				result.Types[d.decl.Name.Value] = d.decl
				if errs := mergeConstructors(result.Constructors, globalConstructors, d.ctors); len(errs) > 0 {
					return nil, errs
				}
			}
			result.TypeReferences = mergeReferences(result.TypeReferences, refs)
			result.Warnings = append(result.Warnings, warnings...)
			continue
		}

		d := groupDecls[0]
		declared, ctors, refs, warnings, errs := checkOneDeclaration(env, moduleName, d)
		if len(errs) > 0 {
			return nil, errs
		}
		env.Types[d.Name.Value] = EnvType{Canonical: canonicalName(moduleName, d.Name), Kind: declared.Kind}
		result.Types[d.Name.Value] = declared
		if errs := mergeConstructors(result.Constructors, globalConstructors, ctors); len(errs) > 0 {
			return nil, errs
		}
		result.TypeReferences = mergeReferences(result.TypeReferences, refs)
		result.Warnings = append(result.Warnings, warnings...)
	}

	return result, nil
}

func canonicalName(moduleName ast.ModuleName, name ast.ProperName) ast.FullyQualified[ast.ProperName] {
	return ast.FullyQualified[ast.ProperName]{ModuleName: moduleName, Value: name}
}

func mergeConstructors(into map[string]*core.ConstructorDeclaration, seen map[string]constructorSeen, ctors map[string]*core.ConstructorDeclaration) []*Error {
	names := make([]string, 0, len(ctors))
	for name := range ctors {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ctor := ctors[name]
		if prev, ok := seen[name]; ok {
			first, second := prev.span, ctor.Span
			if ctor.Span.Start < prev.span.Start {
				first, second = ctor.Span, prev.span
			}
			return []*Error{{
				Code:    dittoerrors.DuplicateTypeConstructor,
				Message: fmt.Sprintf("constructor %q is declared more than once", name),
				Span:    second,
			}, {
				Code:    dittoerrors.DuplicateTypeConstructor,
				Message: fmt.Sprintf("%q first declared here", name),
				Span:    first,
			}}
		}
		seen[name] = constructorSeen{span: ctor.Span}
		into[name] = ctor
	}
	return nil
}

// declared pairs one SCC member's elaborated declaration with its
// constructors, kept together until it's safe to register both.
type declared struct {
	decl  *core.TypeDeclaration
	ctors map[string]*core.ConstructorDeclaration
}

func checkOneDeclaration(env *Env, moduleName ast.ModuleName, d *ast.TypeDecl) (*core.TypeDeclaration, map[string]*core.ConstructorDeclaration, TypeReferences, []Warning, []*Error) {
	state := NewState()
	declEnv := env.Clone()

	vars, varErrs := declareTypeVariables(&state.TypeSupply, &state.KindSupply, d)
	if varErrs != nil {
		return nil, nil, nil, nil, varErrs
	}
	for _, v := range vars {
		declEnv.TypeVariables[v.name] = EnvTypeVariable{Var: v.id, VariableKind: v.kind}
	}

	declKind := declarationKind(vars)
	canonical := canonicalName(moduleName, d.Name)
	declEnv.Types[d.Name.Value] = EnvType{Canonical: canonical, Kind: declKind}

	if d.Alias != nil {
		aliased, err := check(declEnv, state, &kind.Type{}, d.Alias)
		if err != nil {
			return nil, nil, nil, nil, []*Error{err.(*Error)}
		}
		decl := &core.TypeDeclaration{
			Name:        d.Name,
			Variables:   varIDs(vars),
			Kind:        kind.Apply(state.Substitution, declKind),
			IsAlias:     true,
			AliasedType: applyKinds(state.Substitution, aliased),
			Doc:         d.Doc,
		}
		return decl, map[string]*core.ConstructorDeclaration{}, state.TypeReferences, state.Warnings, nil
	}

	declType := declarationType(vars, declKind, canonical)
	ctors := make(map[string]*core.ConstructorDeclaration, len(d.Constructors))
	ctorSpansSeen := map[string]ast.Span{}
	for _, cd := range d.Constructors {
		fields := make([]types.Type, len(cd.Fields))
		for i, f := range cd.Fields {
			ft, err := check(declEnv, state, &kind.Type{}, f)
			if err != nil {
				return nil, nil, nil, nil, []*Error{err.(*Error)}
			}
			fields[i] = ft
		}
		if prev, dup := ctorSpansSeen[cd.Name.Value]; dup {
			first, second := prev, cd.Span
			if cd.Span.Start < prev.Start {
				first, second = cd.Span, prev
			}
			return nil, nil, nil, nil, []*Error{
				{Code: dittoerrors.DuplicateTypeConstructor, Message: fmt.Sprintf("constructor %q is declared more than once", cd.Name.Value), Span: second},
				{Code: dittoerrors.DuplicateTypeConstructor, Message: fmt.Sprintf("%q first declared here", cd.Name.Value), Span: first},
			}
		}
		ctorSpansSeen[cd.Name.Value] = cd.Span
		ctors[cd.Name.Value] = &core.ConstructorDeclaration{
			Name:       cd.Name,
			FieldTypes: fields,
			ReturnType: declType,
			Span:       cd.Span,
		}
	}

	for name, c := range ctors {
		ctors[name] = &core.ConstructorDeclaration{
			Name:       c.Name,
			FieldTypes: applyKindsAll(state.Substitution, c.FieldTypes),
			ReturnType: applyKinds(state.Substitution, c.ReturnType),
			Doc:        c.Doc,
			Span:       c.Span,
		}
	}

	decl := &core.TypeDeclaration{
		Name:      d.Name,
		Variables: varIDs(vars),
		Kind:      kind.Apply(state.Substitution, declKind),
		Doc:       d.Doc,
	}
	for _, cd := range d.Constructors {
		decl.Constructors = append(decl.Constructors, ctors[cd.Name.Value])
	}

	return decl, ctors, state.TypeReferences, state.Warnings, nil
}

func checkCyclicGroup(env *Env, moduleName ast.ModuleName, decls []*ast.TypeDecl) ([]declared, TypeReferences, []Warning, []*Error) {
	state := NewState()
	groupEnv := env.Clone()

	type prepared struct {
		decl      *ast.TypeDecl
		vars      []typeVariable
		declKind  kind.Kind
		declType  types.Type
		canonical ast.FullyQualified[ast.ProperName]
	}

	var preparedDecls []prepared
	for _, d := range decls {
		vars, errs := declareTypeVariables(&state.TypeSupply, &state.KindSupply, d)
		if errs != nil {
			return nil, nil, nil, errs
		}
		declKind := declarationKind(vars)
		canonical := canonicalName(moduleName, d.Name)
		groupEnv.Types[d.Name.Value] = EnvType{Canonical: canonical, Kind: declKind}
		preparedDecls = append(preparedDecls, prepared{d, vars, declKind, declarationType(vars, declKind, canonical), canonical})
	}

	var out []declared
	for _, p := range preparedDecls {
		declEnv := groupEnv.Clone()
		for _, v := range p.vars {
			declEnv.TypeVariables[v.name] = EnvTypeVariable{Var: v.id, VariableKind: v.kind}
		}

		if p.decl.Alias != nil {
			aliased, err := check(declEnv, state, &kind.Type{}, p.decl.Alias)
			if err != nil {
				return nil, nil, nil, []*Error{err.(*Error)}
			}
			decl := &core.TypeDeclaration{
				Name:        p.decl.Name,
				Variables:   varIDs(p.vars),
				Kind:        p.declKind,
				IsAlias:     true,
				AliasedType: aliased,
				Doc:         p.decl.Doc,
			}
			out = append(out, declared{decl: decl, ctors: map[string]*core.ConstructorDeclaration{}})
			continue
		}

		ctors := make(map[string]*core.ConstructorDeclaration, len(p.decl.Constructors))
		ctorSpansSeen := map[string]ast.Span{}
		for _, cd := range p.decl.Constructors {
			fields := make([]types.Type, len(cd.Fields))
			for i, f := range cd.Fields {
				ft, err := check(declEnv, state, &kind.Type{}, f)
				if err != nil {
					return nil, nil, nil, []*Error{err.(*Error)}
				}
				fields[i] = ft
			}
			if prev, dup := ctorSpansSeen[cd.Name.Value]; dup {
				first, second := prev, cd.Span
				if cd.Span.Start < prev.Start {
					first, second = cd.Span, prev
				}
				return nil, nil, nil, []*Error{
					{Code: dittoerrors.DuplicateTypeConstructor, Message: fmt.Sprintf("constructor %q is declared more than once", cd.Name.Value), Span: second},
					{Code: dittoerrors.DuplicateTypeConstructor, Message: fmt.Sprintf("%q first declared here", cd.Name.Value), Span: first},
				}
			}
			ctorSpansSeen[cd.Name.Value] = cd.Span
			ctors[cd.Name.Value] = &core.ConstructorDeclaration{Name: cd.Name, FieldTypes: fields, ReturnType: p.declType, Span: cd.Span}
		}
		decl := &core.TypeDeclaration{Name: p.decl.Name, Variables: varIDs(p.vars), Kind: p.declKind, Doc: p.decl.Doc}
		for _, cd := range p.decl.Constructors {
			decl.Constructors = append(decl.Constructors, ctors[cd.Name.Value])
		}
		out = append(out, declared{decl: decl, ctors: ctors})
	}

	// Apply the fully-accumulated substitution once, across every
	// member of the group.
	for _, d := range out {
		d.decl.Kind = kind.Apply(state.Substitution, d.decl.Kind)
		if d.decl.IsAlias {
			d.decl.AliasedType = applyKinds(state.Substitution, d.decl.AliasedType)
			continue
		}
		for name, c := range d.ctors {
			d.ctors[name] = &core.ConstructorDeclaration{
				Name:       c.Name,
				FieldTypes: applyKindsAll(state.Substitution, c.FieldTypes),
				ReturnType: applyKinds(state.Substitution, c.ReturnType),
				Doc:        c.Doc,
				Span:       c.Span,
			}
		}
	}

	return out, state.TypeReferences, state.Warnings, nil
}

type typeVariable struct {
	name string
	id   int
	kind kind.Kind
}

func declareTypeVariables(typeSupply *typeSupply, kindSupply *kind.Supply, d *ast.TypeDecl) ([]typeVariable, []*Error) {
	seen := map[string]ast.Span{}
	var out []typeVariable
	for _, v := range d.Variables {
		if prev, ok := seen[v.Value]; ok {
			first, second := prev, v.Span
			if v.Span.Start < prev.Start {
				first, second = v.Span, prev
			}
			return nil, []*Error{{
				Code:    dittoerrors.DuplicateTypeDeclarationVariable,
				Message: fmt.Sprintf("type variable %q is repeated", v.Value),
				Span:    second,
			}, {
				Code:    dittoerrors.DuplicateTypeDeclarationVariable,
				Message: fmt.Sprintf("%q first bound here", v.Value),
				Span:    first,
			}}
		}
		seen[v.Value] = v.Span
		out = append(out, typeVariable{name: v.Value, id: typeSupply.fresh(), kind: kindSupply.Fresh()})
	}
	return out, nil
}

func declarationKind(vars []typeVariable) kind.Kind {
	if len(vars) == 0 {
		return &kind.Type{}
	}
	params := make([]kind.Kind, len(vars))
	for i, v := range vars {
		params[i] = v.kind
	}
	return &kind.Function{Parameters: params, Result: &kind.Type{}}
}

func declarationType(vars []typeVariable, declKind kind.Kind, canonical ast.FullyQualified[ast.ProperName]) types.Type {
	head := &types.Constructor{Canonical: canonical, ConstructorKind: declKind}
	if len(vars) == 0 {
		return head
	}
	args := make([]types.Type, len(vars))
	for i, v := range vars {
		args[i] = &types.Variable{ID: v.id, SourceName: v.name, IsRigid: true, VariableKind: v.kind}
	}
	return &types.Call{Function: head, Arguments: args}
}

func varIDs(vars []typeVariable) []int {
	out := make([]int, len(vars))
	for i, v := range vars {
		out[i] = v.id
	}
	return out
}

// applyKinds rewrites every Variable.VariableKind and Constructor/
// ConstructorAlias.ConstructorKind annotation embedded in t using the
// final kind substitution: each declaration's kind and every
// constructor's field types and return type get rewritten. It is a
// distinct walk from types.Apply, which
// substitutes type variables themselves — kind and type substitutions
// live in independent spaces.
func applyKinds(sub kind.Substitution, t types.Type) types.Type {
	switch t := t.(type) {
	case *types.Variable:
		return &types.Variable{ID: t.ID, SourceName: t.SourceName, IsRigid: t.IsRigid, VariableKind: kind.Apply(sub, t.VariableKind)}
	case *types.Constructor:
		return &types.Constructor{Canonical: t.Canonical, SourceValue: t.SourceValue, ConstructorKind: kind.Apply(sub, t.ConstructorKind)}
	case *types.ConstructorAlias:
		return &types.ConstructorAlias{Canonical: t.Canonical, SourceValue: t.SourceValue, AliasVariables: t.AliasVariables, AliasedType: applyKinds(sub, t.AliasedType)}
	case *types.PrimConstructor:
		return t
	case *types.Call:
		return &types.Call{Function: applyKinds(sub, t.Function), Arguments: applyKindsAll(sub, t.Arguments)}
	case *types.Function:
		return &types.Function{Parameters: applyKindsAll(sub, t.Parameters), Return: applyKinds(sub, t.Return)}
	case *types.RecordClosed:
		return &types.RecordClosed{RowData: applyKindsRow(sub, t.RowData)}
	case *types.RecordOpen:
		return &types.RecordOpen{Var: t.Var, SourceName: t.SourceName, IsRigid: t.IsRigid, RowData: applyKindsRow(sub, t.RowData)}
	default:
		return t
	}
}

func applyKindsAll(sub kind.Substitution, ts []types.Type) []types.Type {
	out := make([]types.Type, len(ts))
	for i, t := range ts {
		out[i] = applyKinds(sub, t)
	}
	return out
}

func applyKindsRow(sub kind.Substitution, r *types.Row) *types.Row {
	out := r.Clone()
	for _, n := range out.SortedNames() {
		out.Set(n, applyKinds(sub, out.Fields[n]))
	}
	return out
}

// referencedTypeNames walks a type declaration's constructor fields,
// collecting every bare type-constructor name mentioned — the edge set
// for SCC scheduling: constructor references in their field types,
// self-references count.
func referencedTypeNames(d *ast.TypeDecl) map[string]bool {
	out := map[string]bool{}
	if d.Alias != nil {
		collectTypeExprRefs(d.Alias, out)
	}
	for _, c := range d.Constructors {
		for _, f := range c.Fields {
			collectTypeExprRefs(f, out)
		}
	}
	return out
}

func collectTypeExprRefs(t ast.TypeExpr, out map[string]bool) {
	switch t := t.(type) {
	case *ast.TypeExprConstructor:
		if t.Name.ModuleName == nil {
			out[t.Name.Value.Value] = true
		}
	case *ast.TypeExprVariable:
	case *ast.TypeExprCall:
		collectTypeExprRefs(t.Function, out)
		for _, a := range t.Arguments {
			collectTypeExprRefs(a, out)
		}
	case *ast.TypeExprFunction:
		for _, p := range t.Parameters {
			collectTypeExprRefs(p, out)
		}
		collectTypeExprRefs(t.Return, out)
	case *ast.TypeExprRecordClosed:
		for _, f := range t.Fields {
			collectTypeExprRefs(f.Type, out)
		}
	case *ast.TypeExprRecordOpen:
		for _, f := range t.Fields {
			collectTypeExprRefs(f.Type, out)
		}
	}
}
