package typecheck

import (
	"fmt"

	"github.com/ditto-lang/ditto/internal/ast"
	"github.com/ditto-lang/ditto/internal/core"
	"github.com/ditto-lang/ditto/internal/scc"
	"github.com/ditto-lang/ditto/internal/types"
)

// AnnotateType elaborates a value declaration's CST type annotation
// into a semantic type. The caller wires this to the type-declaration
// checker's own type-expression elaborator, so annotations are resolved
// against the same set of declared types/kinds a constructor field
// would be.
type AnnotateType func(ast.TypeExpr) (types.Type, *Error)

// Result is the output of CheckValueDeclarations: every declared value,
// grouped by its scheduling SCC in dependency order, plus the
// accumulated references and warnings.
type Result struct {
	Groups                []ValueGroup
	Values                map[string]*core.ValueDeclaration
	ValueReferences       References
	ConstructorReferences References
	Warnings              []Warning
}

// ValueGroup mirrors core.module's ValueGroup: the declarations checked
// together, and whether they form a true cycle.
type ValueGroup struct {
	Names       []string
	IsRecursive bool
}

// CheckValueDeclarations typechecks every value declaration of a
// module, scheduling by SCC over value references. baseEnv carries
// every value already visible (imports, plus foreign
// declarations of the same module, already registered by the caller).
func CheckValueDeclarations(baseEnv *Env, moduleName ast.ModuleName, decls []*ast.ValueDecl, annotate AnnotateType, deterministic bool) (*Result, []*Error) {
	result := &Result{
		Values:                make(map[string]*core.ValueDeclaration),
		ValueReferences:       References{},
		ConstructorReferences: References{},
	}

	seen := map[string]ast.Span{}
	byName := map[string]*ast.ValueDecl{}
	for _, d := range decls {
		if prev, ok := seen[d.Name.Value]; ok {
			first, second := prev, d.Name.Span
			if d.Name.Span.Start < prev.Start {
				first, second = d.Name.Span, prev
			}
			return nil, []*Error{duplicateValueDeclaration(first, second)}
		}
		seen[d.Name.Value] = d.Name.Span
		byName[d.Name.Value] = d
	}

	graph := scc.NewGraph()
	for _, d := range decls {
		graph.AddNode(d.Name.Value)
	}
	for _, d := range decls {
		for ref := range referencedValueNames(d) {
			graph.AddEdge(d.Name.Value, ref)
		}
	}

	env := baseEnv.Clone()

	for _, group := range graph.SCCs(deterministic) {
		groupDecls := make([]*ast.ValueDecl, len(group.Names))
		for i, n := range group.Names {
			groupDecls[i] = byName[n]
		}

		if group.IsRecursive && len(groupDecls) > 1 {
			declared, state, errs := checkCyclicGroup(env, moduleName, groupDecls, annotate, deterministic)
			if len(errs) > 0 {
				return nil, errs
			}
			for _, d := range declared {
				env.Values[d.Name.Value] = &EnvValue{Scheme: env.Generalize(d.Expression.GetType()), Introduction: d.Span}
				result.Values[d.Name.Value] = d
			}
			result.Groups = append(result.Groups, ValueGroup{Names: group.Names, IsRecursive: true})
			result.ValueReferences = mergeReferences(result.ValueReferences, state.ValueReferences)
			result.ConstructorReferences = mergeReferences(result.ConstructorReferences, state.ConstructorReferences)
			result.Warnings = append(result.Warnings, state.Warnings...)
			continue
		}

		d := groupDecls[0]
		declared, state, err := checkOneDeclaration(env, moduleName, d, annotate)
		if err != nil {
			return nil, []*Error{err}
		}
		env.Values[d.Name.Value] = &EnvValue{Scheme: env.Generalize(declared.Expression.GetType()), Introduction: d.Span}
		result.Values[d.Name.Value] = declared
		result.Groups = append(result.Groups, ValueGroup{Names: []string{d.Name.Value}, IsRecursive: group.IsRecursive})
		result.ValueReferences = mergeReferences(result.ValueReferences, state.ValueReferences)
		result.ConstructorReferences = mergeReferences(result.ConstructorReferences, state.ConstructorReferences)
		result.Warnings = append(result.Warnings, state.Warnings...)
	}

	return result, nil
}

func checkOneDeclaration(env *Env, moduleName ast.ModuleName, d *ast.ValueDecl, annotate AnnotateType) (*core.ValueDeclaration, *State, *Error) {
	state := NewState()

	var expr core.Expression
	var err *Error
	var scheme *types.Scheme

	if d.Annotation != nil {
		annotated, aerr := annotate(d.Annotation)
		if aerr != nil {
			return nil, nil, aerr
		}
		expr, err = Check(env, state, annotated, d.Expr)
		if err != nil {
			return nil, nil, err
		}
		scheme = env.Generalize(types.Apply(state.Substitution, annotated))
	} else {
		expr, err = Infer(env, state, d.Expr)
		if err != nil {
			return nil, nil, err
		}
		scheme = env.Generalize(types.Apply(state.Substitution, expr.GetType()))
	}

	expr = applySubstExpr(state.Substitution, expr)

	return &core.ValueDeclaration{
		Name:       d.Name,
		Scheme:     scheme,
		Expression: expr,
		IsForeign:  d.IsForeign,
		Doc:        d.Doc,
		Span:       d.Span,
	}, state, nil
}

// checkCyclicGroup handles a set of mutually-recursive value
// declarations: every member is pre-seeded into env with either its
// annotation's type or a fresh generalised variable (so recursive
// references resolve before any member is actually checked), then all
// members are inferred against that shared environment in one shared
// State, and the final substitution is applied to every member's
// expression afterwards: infer first, then resolve.
func checkCyclicGroup(env *Env, moduleName ast.ModuleName, decls []*ast.ValueDecl, annotate AnnotateType, deterministic bool) ([]*core.ValueDeclaration, *State, []*Error) {
	state := NewState()
	groupEnv := env.Clone()

	type prepared struct {
		decl       *ast.ValueDecl
		annotated  types.Type // non-nil if the declaration carries an annotation
	}

	var preparedDecls []prepared
	for _, d := range decls {
		if d.Annotation != nil {
			t, err := annotate(d.Annotation)
			if err != nil {
				return nil, nil, []*Error{err}
			}
			groupEnv.Values[d.Name.Value] = &EnvValue{Scheme: groupEnv.Generalize(t), Introduction: d.Span}
			preparedDecls = append(preparedDecls, prepared{decl: d, annotated: t})
		} else {
			fresh := state.Supply.Fresh()
			groupEnv.Values[d.Name.Value] = &EnvValue{Scheme: groupEnv.Generalize(fresh), Introduction: d.Span}
			preparedDecls = append(preparedDecls, prepared{decl: d})
		}
	}

	var out []*core.ValueDeclaration
	for _, p := range preparedDecls {
		var expr core.Expression
		var err *Error
		if p.annotated != nil {
			expr, err = Check(groupEnv, state, p.annotated, p.decl.Expr)
		} else {
			expr, err = Infer(groupEnv, state, p.decl.Expr)
		}
		if err != nil {
			return nil, nil, []*Error{err}
		}
		out = append(out, &core.ValueDeclaration{
			Name:       p.decl.Name,
			Expression: expr,
			IsForeign:  p.decl.IsForeign,
			Doc:        p.decl.Doc,
			Span:       p.decl.Span,
		})
	}

	for i, d := range out {
		d.Expression = applySubstExpr(state.Substitution, d.Expression)
		if preparedDecls[i].annotated != nil {
			d.Scheme = env.Generalize(types.Apply(state.Substitution, preparedDecls[i].annotated))
		} else {
			d.Scheme = env.Generalize(d.Expression.GetType())
		}
	}

	return out, state, nil
}

// referencedValueNames walks a value declaration's body collecting
// every bare (unqualified) variable/constructor name mentioned — the
// edge set for SCC scheduling: qualified references are excluded since
// they can never participate in a same-module cycle.
func referencedValueNames(d *ast.ValueDecl) map[string]bool {
	out := map[string]bool{}
	collectExprRefs(d.Expr, out)
	return out
}

func collectExprRefs(e ast.Expr, out map[string]bool) {
	if e == nil {
		return
	}
	switch e := e.(type) {
	case *ast.ExprVariable:
		if e.Name.ModuleName == nil {
			out[e.Name.Value.Value] = true
		}
	case *ast.ExprConstructor:
	case *ast.ExprArray:
		for _, el := range e.Elements {
			collectExprRefs(el, out)
		}
	case *ast.ExprRecord:
		for _, f := range e.Fields {
			collectExprRefs(f.Value, out)
		}
	case *ast.ExprRecordAccess:
		collectExprRefs(e.Target, out)
	case *ast.ExprRecordUpdate:
		collectExprRefs(e.Target, out)
		for _, f := range e.Fields {
			collectExprRefs(f.Value, out)
		}
	case *ast.ExprIf:
		collectExprRefs(e.Condition, out)
		collectExprRefs(e.Then, out)
		collectExprRefs(e.Else, out)
	case *ast.ExprMatch:
		collectExprRefs(e.Scrutinee, out)
		for _, arm := range e.Arms {
			collectExprRefs(arm.Guard, out)
			collectExprRefs(arm.Body, out)
		}
	case *ast.ExprFunction:
		collectExprRefs(e.Body, out)
	case *ast.ExprCall:
		collectExprRefs(e.Function, out)
		for _, a := range e.Arguments {
			collectExprRefs(a, out)
		}
	case *ast.ExprLet:
		collectExprRefs(e.Value, out)
		collectExprRefs(e.Rest, out)
	case *ast.ExprEffect:
		for _, stmt := range e.Statements {
			collectEffectStmtRefs(stmt, out)
		}
	}
}

func collectEffectStmtRefs(stmt ast.EffectStmt, out map[string]bool) {
	switch stmt := stmt.(type) {
	case *ast.EffectBind:
		collectExprRefs(stmt.Value, out)
	case *ast.EffectLet:
		collectExprRefs(stmt.Value, out)
	case *ast.EffectExpression:
		collectExprRefs(stmt.Value, out)
	case *ast.EffectReturn:
		collectExprRefs(stmt.Value, out)
	}
}

// applySubstExpr applies sub to every type annotation embedded in e,
// recursively, producing the fully-resolved expression tree
// CheckValueDeclarations hands back: the final substitution applies
// across the whole declaration, not just its top-level type.
func applySubstExpr(sub types.Substitution, e core.Expression) core.Expression {
	switch e := e.(type) {
	case *core.True, *core.False, *core.Unit, *core.String, *core.Int, *core.Float:
		return e
	case *core.Array:
		elems := make([]core.Expression, len(e.Elements))
		for i, el := range e.Elements {
			elems[i] = applySubstExpr(sub, el)
		}
		return &core.Array{Span: e.Span, Type: types.Apply(sub, e.Type), Elements: elems}
	case *core.Record:
		return &core.Record{Span: e.Span, Type: types.Apply(sub, e.Type), Fields: applySubstFields(sub, e.Fields)}
	case *core.RecordAccess:
		return &core.RecordAccess{Span: e.Span, Type: types.Apply(sub, e.Type), Target: applySubstExpr(sub, e.Target), Label: e.Label}
	case *core.RecordUpdate:
		return &core.RecordUpdate{Span: e.Span, Type: types.Apply(sub, e.Type), Target: applySubstExpr(sub, e.Target), Fields: applySubstFields(sub, e.Fields)}
	case *core.If:
		return &core.If{Span: e.Span, Type: types.Apply(sub, e.Type), Condition: applySubstExpr(sub, e.Condition), True: applySubstExpr(sub, e.True), False: applySubstExpr(sub, e.False)}
	case *core.Match:
		arms := make([]core.MatchArm, len(e.Arms))
		for i, arm := range e.Arms {
			arms[i] = core.MatchArm{Span: arm.Span, Pattern: applySubstPattern(sub, arm.Pattern), Guard: applySubstExprMaybe(sub, arm.Guard), Body: applySubstExpr(sub, arm.Body)}
		}
		return &core.Match{Span: e.Span, Type: types.Apply(sub, e.Type), Scrutinee: applySubstExpr(sub, e.Scrutinee), Arms: arms}
	case *core.Function:
		binders := make([]core.FunctionBinder, len(e.Binders))
		for i, b := range e.Binders {
			binders[i] = core.FunctionBinder{Span: b.Span, Name: b.Name, Type: types.Apply(sub, b.Type)}
		}
		return &core.Function{Span: e.Span, Type: types.Apply(sub, e.Type), Binders: binders, Body: applySubstExpr(sub, e.Body)}
	case *core.Call:
		args := make([]core.Expression, len(e.Arguments))
		for i, a := range e.Arguments {
			args[i] = applySubstExpr(sub, a)
		}
		return &core.Call{Span: e.Span, Type: types.Apply(sub, e.Type), Function: applySubstExpr(sub, e.Function), Arguments: args}
	case *core.Let:
		return &core.Let{Span: e.Span, Type: types.Apply(sub, e.Type), Decl: applySubstDecl(sub, e.Decl), Rest: applySubstExpr(sub, e.Rest)}
	case *core.Effect:
		return &core.Effect{Span: e.Span, Type: types.Apply(sub, e.Type), Chain: applySubstEffectNode(sub, e.Chain)}
	case *core.LocalVariable:
		return &core.LocalVariable{Span: e.Span, Type: types.Apply(sub, e.Type), Name: e.Name, Introduction: e.Introduction}
	case *core.ImportedVariable:
		return &core.ImportedVariable{Span: e.Span, Type: types.Apply(sub, e.Type), Name: e.Name, Ref: e.Ref, Introduction: e.Introduction}
	case *core.ForeignVariable:
		return &core.ForeignVariable{Span: e.Span, Type: types.Apply(sub, e.Type), Name: e.Name}
	case *core.LocalConstructor:
		return &core.LocalConstructor{Span: e.Span, Type: types.Apply(sub, e.Type), Name: e.Name, Introduction: e.Introduction}
	case *core.ImportedConstructor:
		return &core.ImportedConstructor{Span: e.Span, Type: types.Apply(sub, e.Type), Name: e.Name, Ref: e.Ref, Introduction: e.Introduction}
	default:
		panic(fmt.Sprintf("applySubstExpr: unhandled expression %T", e))
	}
}

func applySubstExprMaybe(sub types.Substitution, e core.Expression) core.Expression {
	if e == nil {
		return nil
	}
	return applySubstExpr(sub, e)
}

func applySubstFields(sub types.Substitution, fields core.RecordFields) core.RecordFields {
	out := make(core.RecordFields, len(fields))
	for i, f := range fields {
		out[i] = core.RecordField{Label: f.Label, Value: applySubstExpr(sub, f.Value)}
	}
	return out
}

func applySubstDecl(sub types.Substitution, d core.LetValueDeclaration) core.LetValueDeclaration {
	return core.LetValueDeclaration{
		Pattern:        applySubstPattern(sub, d.Pattern),
		ExpressionType: types.Apply(sub, d.ExpressionType),
		Expression:     applySubstExpr(sub, d.Expression),
	}
}

func applySubstPattern(sub types.Substitution, p core.Pattern) core.Pattern {
	switch p := p.(type) {
	case *core.LocalConstructorPattern:
		args := make([]core.Pattern, len(p.Args))
		for i, a := range p.Args {
			args[i] = applySubstPattern(sub, a)
		}
		return &core.LocalConstructorPattern{Span: p.Span, Type: types.Apply(sub, p.Type), Name: p.Name, Args: args}
	case *core.ImportedConstructorPattern:
		args := make([]core.Pattern, len(p.Args))
		for i, a := range p.Args {
			args[i] = applySubstPattern(sub, a)
		}
		return &core.ImportedConstructorPattern{Span: p.Span, Type: types.Apply(sub, p.Type), Name: p.Name, Ref: p.Ref, Args: args}
	case *core.VariablePattern:
		return &core.VariablePattern{Span: p.Span, Type: types.Apply(sub, p.Type), Name: p.Name}
	case *core.UnusedPattern:
		return &core.UnusedPattern{Span: p.Span, Type: types.Apply(sub, p.Type), Name: p.Name}
	default:
		panic(fmt.Sprintf("applySubstPattern: unhandled pattern %T", p))
	}
}

func applySubstEffectNode(sub types.Substitution, n core.EffectNode) core.EffectNode {
	switch n := n.(type) {
	case *core.EffectBind:
		return &core.EffectBind{Span: n.Span, Type: types.Apply(sub, n.Type), Name: n.Name, Value: applySubstExpr(sub, n.Value), Rest: applySubstEffectNode(sub, n.Rest)}
	case *core.EffectLet:
		return &core.EffectLet{Span: n.Span, Type: types.Apply(sub, n.Type), Decl: applySubstDecl(sub, n.Decl), Rest: applySubstEffectNode(sub, n.Rest)}
	case *core.EffectExpression:
		var rest core.EffectNode
		if n.Rest != nil {
			rest = applySubstEffectNode(sub, n.Rest)
		}
		return &core.EffectExpression{Span: n.Span, Type: types.Apply(sub, n.Type), Value: applySubstExpr(sub, n.Value), Rest: rest}
	case *core.EffectReturn:
		return &core.EffectReturn{Span: n.Span, Type: types.Apply(sub, n.Type), Value: applySubstExpr(sub, n.Value)}
	default:
		panic(fmt.Sprintf("applySubstEffectNode: unhandled effect node %T", n))
	}
}
