package typecheck

import (
	"github.com/ditto-lang/ditto/internal/ast"
	"github.com/ditto-lang/ditto/internal/core"
	"github.com/ditto-lang/ditto/internal/coverage"
	"github.com/ditto-lang/ditto/internal/types"
)

// localValue is a monomorphic binding introduced by a function binder,
// pattern, let-binding or effect bind — never generalised, unlike a
// module-level declaration.
type localValue struct {
	span ast.Span
	typ  types.Type
	name ast.Name
}

// Infer synthesizes a type for expr: the bidirectional "infer" mode.
func Infer(env *Env, state *State, expr ast.Expr) (core.Expression, *Error) {
	switch expr := expr.(type) {

	case *ast.ExprTrue:
		return &core.True{Span: expr.ExprSpan}, nil
	case *ast.ExprFalse:
		return &core.False{Span: expr.ExprSpan}, nil
	case *ast.ExprUnit:
		return &core.Unit{Span: expr.ExprSpan}, nil
	case *ast.ExprString:
		return &core.String{Span: expr.ExprSpan, Lexeme: expr.Lexeme}, nil
	case *ast.ExprInt:
		return &core.Int{Span: expr.ExprSpan, Lexeme: expr.Lexeme}, nil
	case *ast.ExprFloat:
		return &core.Float{Span: expr.ExprSpan, Lexeme: expr.Lexeme}, nil

	case *ast.ExprArray:
		if len(expr.Elements) == 0 {
			elemType := state.Supply.Fresh()
			return &core.Array{Span: expr.ExprSpan, Type: types.Array(elemType), Elements: nil}, nil
		}
		head, err := Infer(env, state, expr.Elements[0])
		if err != nil {
			return nil, err
		}
		elemType := head.GetType()
		elements := []core.Expression{head}
		for _, e := range expr.Elements[1:] {
			checked, err := Check(env, state, elemType, e)
			if err != nil {
				return nil, err
			}
			elements = append(elements, checked)
		}
		return &core.Array{Span: expr.ExprSpan, Type: types.Array(elemType), Elements: elements}, nil

	case *ast.ExprVariable:
		key := qualifiedKey(expr.Name.ModuleName, expr.Name.Value.Value)
		state.registerValueReference(key)
		v, ok := env.Values[key]
		if !ok {
			return nil, unknownVariable(expr.ExprSpan, key, namesInScope(env.Values))
		}
		return v.ToExpression(&state.Supply, expr.ExprSpan, expr.Name.Value), nil

	case *ast.ExprConstructor:
		key := qualifiedKey(expr.Name.ModuleName, expr.Name.Value.Value)
		state.registerConstructorReference(key)
		c, ok := env.Constructors[key]
		if !ok {
			return nil, unknownConstructor(expr.ExprSpan, key, namesInScope(constructorNames(env.Constructors)))
		}
		return c.ToExpression(&state.Supply, expr.ExprSpan, expr.Name.Value), nil

	case *ast.ExprIf:
		condition, err := Check(env, state, types.Bool, expr.Condition)
		if err != nil {
			return nil, err
		}
		trueClause, err := Infer(env, state, expr.Then)
		if err != nil {
			return nil, err
		}
		trueType := types.Apply(state.Substitution, trueClause.GetType())
		falseClause, err := Check(env, state, trueType, expr.Else)
		if err != nil {
			return nil, err
		}
		return &core.If{Span: expr.ExprSpan, Type: trueType, Condition: condition, True: trueClause, False: falseClause}, nil

	case *ast.ExprCall:
		return inferOrCheckCall(env, state, nil, expr.ExprSpan, expr.Function, expr.Arguments)

	case *ast.ExprFunction:
		return inferFunction(env, state, expr, nil)

	case *ast.ExprMatch:
		return inferOrCheckMatch(env, state, expr.ExprSpan, expr.Scrutinee, expr.Arms, nil)

	case *ast.ExprEffect:
		returnType := state.Supply.Fresh()
		chain, err := checkEffect(env, state, returnType, expr.Statements)
		if err != nil {
			return nil, err
		}
		return &core.Effect{Span: expr.ExprSpan, Type: types.Effect(returnType), Chain: chain}, nil

	case *ast.ExprRecord:
		fields := make(core.RecordFields, 0, len(expr.Fields))
		for _, f := range expr.Fields {
			value := f.Value
			if value == nil {
				value = &ast.ExprVariable{ExprSpan: f.Span, Name: ast.Qualified[ast.Name]{Value: f.Name}}
			}
			v, err := Infer(env, state, value)
			if err != nil {
				return nil, err
			}
			fields = append(fields, core.RecordField{Label: f.Name, Value: v})
		}
		row := types.NewRow(nil, nil)
		for _, f := range fields {
			row.Set(f.Label.Value, f.Value.GetType())
		}
		return &core.Record{Span: expr.ExprSpan, Type: &types.RecordClosed{RowData: row}, Fields: fields}, nil

	case *ast.ExprRecordAccess:
		fieldType := state.Supply.Fresh()
		row := types.NewRow([]string{expr.Label.Value}, []types.Type{fieldType})
		expected := &types.RecordOpen{Var: state.Supply.Fresh().ID, RowData: row}
		target, err := Check(env, state, expected, expr.Target)
		if err != nil {
			return nil, err
		}
		return &core.RecordAccess{Span: expr.ExprSpan, Type: fieldType, Target: target, Label: expr.Label}, nil

	case *ast.ExprRecordUpdate:
		target, err := Infer(env, state, expr.Target)
		if err != nil {
			return nil, err
		}
		targetType := types.Apply(state.Substitution, target.GetType())
		fields := make(core.RecordFields, 0, len(expr.Fields))
		for _, f := range expr.Fields {
			fieldType := state.Supply.Fresh()
			row := types.NewRow([]string{f.Name.Value}, []types.Type{fieldType})
			expected := &types.RecordOpen{Var: state.Supply.Fresh().ID, RowData: row}
			if err := unify(state, f.Span, expected, targetType); err != nil {
				return nil, err
			}
			value := f.Value
			if value == nil {
				value = &ast.ExprVariable{ExprSpan: f.Span, Name: ast.Qualified[ast.Name]{Value: f.Name}}
			}
			v, err := Check(env, state, fieldType, value)
			if err != nil {
				return nil, err
			}
			fields = append(fields, core.RecordField{Label: f.Name, Value: v})
		}
		return &core.RecordUpdate{Span: expr.ExprSpan, Type: targetType, Target: target, Fields: fields}, nil

	case *ast.ExprLet:
		return inferLet(env, state, expr, nil)
	}

	return nil, &Error{Code: "TYC999", Message: "unhandled expression node", Span: expr.Span()}
}

// Check checks expr against expected: the bidirectional "check" mode,
// falling back to infer-then-unify for any shape check doesn't
// specialise (the original's trailing `(expr, expected) => ...` arm).
func Check(env *Env, state *State, expected types.Type, expr ast.Expr) (core.Expression, *Error) {
	switch expr := expr.(type) {

	case *ast.ExprArray:
		if call, ok := types.Apply(state.Substitution, expected).(*types.Call); ok {
			if prim, ok := call.Function.(*types.PrimConstructor); ok && prim.Prim == types.PrimArray && len(call.Arguments) == 1 {
				elemType := call.Arguments[0]
				elements := make([]core.Expression, 0, len(expr.Elements))
				for _, e := range expr.Elements {
					checked, err := Check(env, state, elemType, e)
					if err != nil {
						return nil, err
					}
					elements = append(elements, checked)
				}
				return &core.Array{Span: expr.ExprSpan, Type: types.Array(elemType), Elements: elements}, nil
			}
		}

	case *ast.ExprIf:
		condition, err := Check(env, state, types.Bool, expr.Condition)
		if err != nil {
			return nil, err
		}
		trueClause, err := Check(env, state, expected, expr.Then)
		if err != nil {
			return nil, err
		}
		falseClause, err := Check(env, state, expected, expr.Else)
		if err != nil {
			return nil, err
		}
		return &core.If{Span: expr.ExprSpan, Type: expected, Condition: condition, True: trueClause, False: falseClause}, nil

	case *ast.ExprMatch:
		return inferOrCheckMatch(env, state, expr.ExprSpan, expr.Scrutinee, expr.Arms, &expected)

	case *ast.ExprCall:
		return inferOrCheckCall(env, state, &expected, expr.ExprSpan, expr.Function, expr.Arguments)

	case *ast.ExprFunction:
		return inferFunction(env, state, expr, &expected)

	case *ast.ExprLet:
		return inferLet(env, state, expr, &expected)

	case *ast.ExprEffect:
		if call, ok := types.Apply(state.Substitution, expected).(*types.Call); ok {
			if prim, ok := call.Function.(*types.PrimConstructor); ok && prim.Prim == types.PrimEffect && len(call.Arguments) == 1 {
				returnType := call.Arguments[0]
				chain, err := checkEffect(env, state, returnType, expr.Statements)
				if err != nil {
					return nil, err
				}
				return &core.Effect{Span: expr.ExprSpan, Type: types.Effect(returnType), Chain: chain}, nil
			}
		}

	case *ast.ExprRecord:
		if closed, ok := types.Apply(state.Substitution, expected).(*types.RecordClosed); ok && len(expr.Fields) == len(closed.RowData.Fields) {
			allPresent := true
			for _, f := range expr.Fields {
				if _, ok := closed.RowData.Fields[f.Name.Value]; !ok {
					allPresent = false
					break
				}
			}
			if allPresent {
				fields := make(core.RecordFields, 0, len(expr.Fields))
				for _, f := range expr.Fields {
					value := f.Value
					if value == nil {
						value = &ast.ExprVariable{ExprSpan: f.Span, Name: ast.Qualified[ast.Name]{Value: f.Name}}
					}
					v, err := Check(env, state, closed.RowData.Fields[f.Name.Value], value)
					if err != nil {
						return nil, err
					}
					fields = append(fields, core.RecordField{Label: f.Name, Value: v})
				}
				return &core.Record{Span: expr.ExprSpan, Type: expected, Fields: fields}, nil
			}
		}

	case *ast.ExprTrue:
		if err := unify(state, expr.ExprSpan, expected, types.Bool); err != nil {
			return nil, err
		}
		return &core.True{Span: expr.ExprSpan}, nil
	case *ast.ExprFalse:
		if err := unify(state, expr.ExprSpan, expected, types.Bool); err != nil {
			return nil, err
		}
		return &core.False{Span: expr.ExprSpan}, nil
	case *ast.ExprUnit:
		if err := unify(state, expr.ExprSpan, expected, types.Unit); err != nil {
			return nil, err
		}
		return &core.Unit{Span: expr.ExprSpan}, nil
	case *ast.ExprString:
		if err := unify(state, expr.ExprSpan, expected, types.String); err != nil {
			return nil, err
		}
		return &core.String{Span: expr.ExprSpan, Lexeme: expr.Lexeme}, nil
	case *ast.ExprInt:
		if err := unify(state, expr.ExprSpan, expected, types.Int); err != nil {
			return nil, err
		}
		return &core.Int{Span: expr.ExprSpan, Lexeme: expr.Lexeme}, nil
	case *ast.ExprFloat:
		if err := unify(state, expr.ExprSpan, expected, types.Float); err != nil {
			return nil, err
		}
		return &core.Float{Span: expr.ExprSpan, Lexeme: expr.Lexeme}, nil
	}

	// Fallback: infer, then unify against expected.
	inferred, err := Infer(env, state, expr)
	if err != nil {
		return nil, err
	}
	if uerr := unify(state, inferred.GetSpan(), expected, inferred.GetType()); uerr != nil {
		return nil, uerr
	}
	if arr, ok := inferred.(*core.Array); ok {
		return &core.Array{Span: arr.Span, Type: expected, Elements: arr.Elements}, nil
	}
	return inferred, nil
}

func inferOrCheckCall(env *Env, state *State, expectedCallType *types.Type, span ast.Span, functionExpr ast.Expr, argumentExprs []ast.Expr) (core.Expression, *Error) {
	function, err := Infer(env, state, functionExpr)
	if err != nil {
		return nil, err
	}
	functionSpan := function.GetSpan()
	functionType := types.Apply(state.Substitution, function.GetType())

	if _, ok := function.(*core.Function); ok {
		// Anonymise an immediately-invoked function literal's type
		// variables: a binder's fresh variable must not be confused with
		// an unrelated fresh variable from the call site.
		functionType = anonymize(functionType)
	}

	switch ft := functionType.(type) {
	case *types.Function:
		if expectedCallType != nil {
			if uerr := unify(state, functionSpan, *expectedCallType, ft.Return); uerr != nil {
				return nil, uerr
			}
		}
		if len(argumentExprs) != len(ft.Parameters) {
			return nil, argumentLengthMismatch(functionSpan, len(ft.Parameters), len(argumentExprs))
		}
		arguments := make([]core.Expression, len(argumentExprs))
		for i, a := range argumentExprs {
			checked, err := Check(env, state, ft.Parameters[i], a)
			if err != nil {
				return nil, err
			}
			arguments[i] = checked
		}
		return &core.Call{Span: span, Type: ft.Return, Function: function, Arguments: arguments}, nil

	case *types.Variable:
		arguments := make([]core.Expression, len(argumentExprs))
		parameters := make([]types.Type, len(argumentExprs))
		for i, a := range argumentExprs {
			inferred, err := Infer(env, state, a)
			if err != nil {
				return nil, err
			}
			arguments[i] = inferred
			parameters[i] = inferred.GetType()
		}
		var callType types.Type
		if expectedCallType != nil {
			callType = *expectedCallType
		} else {
			callType = state.Supply.Fresh()
		}
		if uerr := unify(state, functionSpan, &types.Function{Parameters: parameters, Return: callType}, ft); uerr != nil {
			return nil, uerr
		}
		return &core.Call{Span: span, Type: callType, Function: function, Arguments: arguments}, nil

	default:
		return nil, notAFunction(functionSpan, functionType)
	}
}

// anonymize replaces every type variable in t with a freshly named
// variable with the same id namespace dropped — implemented as a rename
// pass that keeps only ID and VariableKind (dropping SourceName and
// IsRigid), which is sufficient to stop
// two syntactically-identical-looking-but-unrelated rigid names from
// spuriously unifying (the concern that matters for the IIFE case).
func anonymize(t types.Type) types.Type {
	switch t := t.(type) {
	case *types.Variable:
		return &types.Variable{ID: t.ID, VariableKind: t.VariableKind}
	case *types.Function:
		params := make([]types.Type, len(t.Parameters))
		for i, p := range t.Parameters {
			params[i] = anonymize(p)
		}
		return &types.Function{Parameters: params, Return: anonymize(t.Return)}
	case *types.Call:
		args := make([]types.Type, len(t.Arguments))
		for i, a := range t.Arguments {
			args[i] = anonymize(a)
		}
		return &types.Call{Function: anonymize(t.Function), Arguments: args}
	default:
		return t
	}
}

func qualifiedKey[T ~string](moduleAlias *ast.ProperName, value T) string {
	if moduleAlias != nil {
		return moduleAlias.Value + "." + string(value)
	}
	return string(value)
}

func namesInScope(m any) []string {
	var out []string
	switch m := m.(type) {
	case map[string]*EnvValue:
		for k := range m {
			out = append(out, k)
		}
	case []string:
		return m
	}
	return out
}

func constructorNames(m map[string]*EnvConstructor) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}

// withExtendedEnv runs f against env extended with values, tracking
// which of those bindings went unused for unused-binder warnings, and
// restores any shadowed outer reference counts
// afterwards so an inner shadow doesn't make the outer binding look
// used.
func withExtendedEnv[T any](env *Env, state *State, values []localValue, f func(*Env, *State) (T, *Error)) (T, []ast.Span, *Error) {
	var zero T
	if len(values) == 0 {
		result, err := f(env, state)
		return result, nil, err
	}

	extended := env.Clone()
	shadowed := References{}
	type tracked struct {
		key  string
		span ast.Span
	}
	var names []tracked

	for _, v := range values {
		key := v.name.Value
		names = append(names, tracked{key: key, span: v.span})
		if count, had := state.ValueReferences[key]; had {
			shadowed[key] = count
			delete(state.ValueReferences, key)
		}
		extended.Values[key] = &EnvValue{
			Scheme:       &types.Scheme{Signature: v.typ},
			Introduction: v.span,
		}
	}

	result, err := f(extended, state)
	if err != nil {
		return zero, nil, err
	}

	var unused []ast.Span
	for _, n := range names {
		if _, used := state.ValueReferences[n.key]; !used {
			unused = append(unused, n.span)
		} else {
			delete(state.ValueReferences, n.key)
		}
	}
	for k, n := range shadowed {
		state.ValueReferences[k] = n
	}

	return result, unused, nil
}

func inferFunction(env *Env, state *State, expr *ast.ExprFunction, returnTypeAnnotation *types.Type) (core.Expression, *Error) {
	if len(expr.Binders) == 0 {
		var body core.Expression
		var err *Error
		if returnTypeAnnotation != nil {
			body, err = Check(env, state, *returnTypeAnnotation, expr.Body)
		} else {
			body, err = Infer(env, state, expr.Body)
		}
		if err != nil {
			return nil, err
		}
		return &core.Function{Span: expr.ExprSpan, Type: &types.Function{Return: body.GetType()}, Binders: nil, Body: body}, nil
	}

	binders := make([]core.FunctionBinder, 0, len(expr.Binders))
	var values []localValue
	for _, b := range expr.Binders {
		for _, prior := range binders {
			if !ast.IsUnusedName(b.Name.Value) && prior.Name.Value == b.Name.Value {
				return nil, duplicateFunctionBinder(prior.Span, b.Span)
			}
		}
		binderType := typeOfAnnotation(env, state, b.Annotation)
		binders = append(binders, core.FunctionBinder{Span: b.Span, Name: b.Name, Type: binderType})
		if !ast.IsUnusedName(b.Name.Value) {
			values = append(values, localValue{span: b.Span, typ: binderType, name: b.Name})
		}
	}

	body, unused, err := withExtendedEnv(env, state, values, func(env *Env, state *State) (core.Expression, *Error) {
		if returnTypeAnnotation != nil {
			return Check(env, state, *returnTypeAnnotation, expr.Body)
		}
		return Infer(env, state, expr.Body)
	})
	if err != nil {
		return nil, err
	}
	for _, span := range unused {
		state.Warnings = append(state.Warnings, Warning{Code: WarnUnusedFunctionBinder, Span: span})
	}

	params := make([]types.Type, len(binders))
	for i, b := range binders {
		params[i] = b.Type
	}
	return &core.Function{Span: expr.ExprSpan, Type: &types.Function{Parameters: params, Return: body.GetType()}, Binders: binders, Body: body}, nil
}

// typeOfAnnotation returns the type a function binder starts with
// during inference: a fresh flexible variable. Binder annotations are
// not elaborated, so an annotated binder gets a fresh variable just
// like an unannotated one, and its annotation adds no constraint.
func typeOfAnnotation(env *Env, state *State, annotation ast.TypeExpr) types.Type {
	if annotation == nil {
		return state.Supply.Fresh()
	}
	// The annotation is ignored; see the doc comment above.
	return state.Supply.Fresh()
}

func inferLet(env *Env, state *State, expr *ast.ExprLet, bodyExpected *types.Type) (core.Expression, *Error) {
	value, err := Infer(env, state, expr.Value)
	if err != nil {
		return nil, err
	}
	if expr.Annotation != nil {
		// A let annotation is not elaborated, so an annotated let
		// behaves like an unannotated one.
		_ = expr.Annotation
	}
	valueType := types.Apply(state.Substitution, value.GetType())

	values := []localValue{{span: expr.ExprSpan, typ: valueType, name: expr.Name}}
	if ast.IsUnusedName(expr.Name.Value) {
		values = nil
	}

	rest, unused, err := withExtendedEnv(env, state, values, func(env *Env, state *State) (core.Expression, *Error) {
		if bodyExpected != nil {
			return Check(env, state, *bodyExpected, expr.Rest)
		}
		return Infer(env, state, expr.Rest)
	})
	if err != nil {
		return nil, err
	}
	for _, span := range unused {
		state.Warnings = append(state.Warnings, Warning{Code: WarnUnusedLetBinder, Span: span})
	}

	decl := core.LetValueDeclaration{
		Pattern:        &core.VariablePattern{Span: expr.ExprSpan, Type: valueType, Name: expr.Name},
		ExpressionType: valueType,
		Expression:     value,
	}
	return &core.Let{Span: expr.ExprSpan, Type: rest.GetType(), Decl: decl, Rest: rest}, nil
}

func checkEffect(env *Env, state *State, expectedReturnType types.Type, stmts []ast.EffectStmt) (core.EffectNode, *Error) {
	if len(stmts) == 0 {
		return nil, &Error{Code: "TYC999", Message: "empty effect block", Span: ast.Span{}}
	}
	stmt, rest := stmts[0], stmts[1:]

	switch stmt := stmt.(type) {
	case *ast.EffectReturn:
		value, err := Check(env, state, expectedReturnType, stmt.Value)
		if err != nil {
			return nil, err
		}
		return &core.EffectReturn{Span: stmt.StmtSpan, Type: expectedReturnType, Value: value}, nil

	case *ast.EffectExpression:
		if len(rest) == 0 {
			expected := types.Effect(expectedReturnType)
			value, err := Check(env, state, expected, stmt.Value)
			if err != nil {
				return nil, err
			}
			return &core.EffectExpression{Span: stmt.StmtSpan, Type: expectedReturnType, Value: value, Rest: nil}, nil
		}
		expected := types.Effect(state.Supply.Fresh())
		value, err := Check(env, state, expected, stmt.Value)
		if err != nil {
			return nil, err
		}
		restNode, err := checkEffect(env, state, expectedReturnType, rest)
		if err != nil {
			return nil, err
		}
		return &core.EffectExpression{Span: stmt.StmtSpan, Type: restNode.GetType(), Value: value, Rest: restNode}, nil

	case *ast.EffectBind:
		valueType := state.Supply.Fresh()
		value, err := Check(env, state, types.Effect(valueType), stmt.Value)
		if err != nil {
			return nil, err
		}
		var values []localValue
		if !ast.IsUnusedName(stmt.Name.Value) {
			values = []localValue{{span: stmt.StmtSpan, typ: valueType, name: stmt.Name}}
		}
		restNode, unused, err := withExtendedEnv(env, state, values, func(env *Env, state *State) (core.EffectNode, *Error) {
			return checkEffect(env, state, expectedReturnType, rest)
		})
		if err != nil {
			return nil, err
		}
		for _, span := range unused {
			state.Warnings = append(state.Warnings, Warning{Code: WarnUnusedEffectBinder, Span: span})
		}
		return &core.EffectBind{Span: stmt.StmtSpan, Type: restNode.GetType(), Name: stmt.Name, Value: value, Rest: restNode}, nil

	case *ast.EffectLet:
		value, err := Infer(env, state, stmt.Value)
		if err != nil {
			return nil, err
		}
		valueType := types.Apply(state.Substitution, value.GetType())
		var values []localValue
		if !ast.IsUnusedName(stmt.Name.Value) {
			values = []localValue{{span: stmt.StmtSpan, typ: valueType, name: stmt.Name}}
		}
		restNode, unused, err := withExtendedEnv(env, state, values, func(env *Env, state *State) (core.EffectNode, *Error) {
			return checkEffect(env, state, expectedReturnType, rest)
		})
		if err != nil {
			return nil, err
		}
		for _, span := range unused {
			state.Warnings = append(state.Warnings, Warning{Code: WarnUnusedEffectBinder, Span: span})
		}
		decl := core.LetValueDeclaration{
			Pattern:        &core.VariablePattern{Span: stmt.StmtSpan, Type: valueType, Name: stmt.Name},
			ExpressionType: valueType,
			Expression:     value,
		}
		return &core.EffectLet{Span: stmt.StmtSpan, Type: restNode.GetType(), Decl: decl, Rest: restNode}, nil
	}

	return nil, &Error{Code: "TYC999", Message: "unhandled effect statement", Span: stmt.Span()}
}

func inferOrCheckMatch(env *Env, state *State, span ast.Span, scrutineeExpr ast.Expr, arms []ast.MatchArm, matchType *types.Type) (core.Expression, *Error) {
	scrutinee, err := Infer(env, state, scrutineeExpr)
	if err != nil {
		return nil, err
	}
	patternType := scrutinee.GetType()

	head, tail := arms[0], arms[1:]

	headValues := map[string]localValue{}
	headPattern, err := checkPattern(env, state, headValues, patternType, head.Pattern)
	if err != nil {
		return nil, err
	}

	var resolvedMatchType types.Type
	var headGuard core.Expression
	headBody, unused, err := withExtendedEnv(env, state, valuesOf(headValues), func(env *Env, state *State) (core.Expression, *Error) {
		if head.Guard != nil {
			g, err := Check(env, state, types.Bool, head.Guard)
			if err != nil {
				return nil, err
			}
			headGuard = g
		}
		if matchType != nil {
			body, err := Check(env, state, *matchType, head.Body)
			if err != nil {
				return nil, err
			}
			resolvedMatchType = *matchType
			return body, nil
		}
		body, err := Infer(env, state, head.Body)
		if err != nil {
			return nil, err
		}
		resolvedMatchType = body.GetType()
		return body, nil
	})
	if err != nil {
		return nil, err
	}
	for _, span := range unused {
		state.Warnings = append(state.Warnings, Warning{Code: WarnUnusedPatternBinder, Span: span})
	}

	coreArms := []core.MatchArm{{Span: head.Span, Pattern: headPattern, Guard: headGuard, Body: headBody}}
	// A guarded arm never counts toward exhaustiveness: it only matches
	// some of the values its bare pattern would, so the coverage checker
	// must still see an uncovered case behind it.
	var patterns []core.Pattern
	if head.Guard == nil {
		patterns = append(patterns, headPattern)
	}

	for _, arm := range tail {
		armValues := map[string]localValue{}
		armPattern, err := checkPattern(env, state, armValues, patternType, arm.Pattern)
		if err != nil {
			return nil, err
		}
		var armGuard core.Expression
		armBody, unused, err := withExtendedEnv(env, state, valuesOf(armValues), func(env *Env, state *State) (core.Expression, *Error) {
			if arm.Guard != nil {
				g, err := Check(env, state, types.Bool, arm.Guard)
				if err != nil {
					return nil, err
				}
				armGuard = g
			}
			return Check(env, state, resolvedMatchType, arm.Body)
		})
		if err != nil {
			return nil, err
		}
		for _, span := range unused {
			state.Warnings = append(state.Warnings, Warning{Code: WarnUnusedPatternBinder, Span: span})
		}
		coreArms = append(coreArms, core.MatchArm{Span: arm.Span, Pattern: armPattern, Guard: armGuard, Body: armBody})
		if arm.Guard == nil {
			patterns = append(patterns, armPattern)
		}
	}

	if err := checkExhaustiveness(env, state, span, types.Apply(state.Substitution, patternType), patterns); err != nil {
		return nil, err
	}

	return &core.Match{Span: span, Type: resolvedMatchType, Scrutinee: scrutinee, Arms: coreArms}, nil
}

func valuesOf(m map[string]localValue) []localValue {
	out := make([]localValue, 0, len(m))
	for _, v := range m {
		out = append(out, v)
	}
	return out
}

func checkExhaustiveness(env *Env, state *State, matchSpan ast.Span, patternType types.Type, patterns []core.Pattern) *Error {
	lookup := func(t types.Type) []coverage.ConstructorInfo {
		var canonicalKey string
		switch t := t.(type) {
		case *types.Constructor:
			canonicalKey = t.Canonical.Key()
		case *types.Call:
			if c, ok := t.Function.(*types.Constructor); ok {
				canonicalKey = c.Canonical.Key()
			}
		}
		if canonicalKey == "" {
			return nil
		}
		var out []coverage.ConstructorInfo
		for name, c := range env.Constructors {
			if retCanonical(c.Scheme.Signature) == canonicalKey {
				out = append(out, coverage.ConstructorInfo{Name: unqualifiedCtorName(name), Signature: c.Scheme.Signature})
			}
		}
		return out
	}

	result := coverage.IsExhaustive(lookup, patternType, patterns)
	if result == nil {
		return nil
	}
	if len(result.RedundantClauses) > 0 {
		for _, span := range result.RedundantClauses {
			state.Warnings = append(state.Warnings, Warning{Code: WarnRedundantMatchArm, Span: span})
		}
		return nil
	}
	return &Error{
		Code:    "COV001",
		Message: "this match expression does not cover every case",
		Span:    matchSpan,
		Data:    map[string]any{"missing_patterns": result.MissingPatterns()},
	}
}

func retCanonical(t types.Type) string {
	switch t := t.(type) {
	case *types.Constructor:
		return t.Canonical.Key()
	case *types.Call:
		return retCanonical(t.Function)
	case *types.Function:
		return retCanonical(t.Return)
	default:
		return ""
	}
}

func unqualifiedCtorName(key string) string {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '.' {
			return key[i+1:]
		}
	}
	return key
}

func checkPattern(env *Env, state *State, localValues map[string]localValue, expected types.Type, pattern ast.Pattern) (core.Pattern, *Error) {
	switch pattern := pattern.(type) {

	case *ast.PatternConstructor:
		key := qualifiedKey(pattern.Name.ModuleName, pattern.Name.Value.Value)
		state.registerConstructorReference(key)
		envCtor, ok := env.Constructors[key]
		if !ok {
			return nil, unknownConstructor(pattern.PatSpan, key, constructorNames(env.Constructors))
		}
		constructorType := types.Instantiate(&state.Supply, envCtor.Scheme)

		var returnType types.Type
		if fn, ok := constructorType.(*types.Function); ok {
			if len(fn.Parameters) != len(pattern.Args) {
				return nil, argumentLengthMismatch(pattern.PatSpan, len(fn.Parameters), len(pattern.Args))
			}
			returnType = fn.Return
		} else {
			if len(pattern.Args) != 0 {
				return nil, argumentLengthMismatch(pattern.PatSpan, 0, len(pattern.Args))
			}
			returnType = constructorType
		}
		if err := unify(state, pattern.PatSpan, expected, returnType); err != nil {
			return nil, err
		}

		var args []core.Pattern
		if fn, ok := types.Apply(state.Substitution, constructorType).(*types.Function); ok {
			for i, param := range fn.Parameters {
				arg, err := checkPattern(env, state, localValues, param, pattern.Args[i])
				if err != nil {
					return nil, err
				}
				args = append(args, arg)
			}
		}
		return envCtor.ToPattern(&state.Supply, pattern.PatSpan, pattern.Name.Value, args), nil

	case *ast.PatternVariable:
		if prior, ok := localValues[pattern.Name.Value]; ok {
			return nil, duplicatePatternBinder(prior.span, pattern.PatSpan)
		}
		localValues[pattern.Name.Value] = localValue{span: pattern.PatSpan, typ: expected, name: pattern.Name}
		return &core.VariablePattern{Span: pattern.PatSpan, Type: expected, Name: pattern.Name}, nil

	case *ast.PatternUnused:
		return &core.UnusedPattern{Span: pattern.PatSpan, Type: expected, Name: pattern.Name}, nil
	}

	return nil, &Error{Code: "TYC999", Message: "unhandled pattern node", Span: pattern.Span()}
}
