package kindcheck

import (
	"fmt"

	"github.com/ditto-lang/ditto/internal/ast"
	dittoerrors "github.com/ditto-lang/ditto/internal/errors"
	"github.com/ditto-lang/ditto/internal/kind"
	"github.com/ditto-lang/ditto/internal/types"
)

// Error is a kindcheck failure, using the KND/IMP error codes.
type Error struct {
	Code    string
	Message string
	Span    ast.Span
}

func (e *Error) Error() string { return e.Code + ": " + e.Message }

func (e *Error) ToReport() *dittoerrors.Report {
	return &dittoerrors.Report{
		Schema:  "ditto.error/v1",
		Code:    e.Code,
		Phase:   "kindcheck",
		Message: e.Message,
		Span:    &e.Span,
	}
}

func qualifiedKey[T ~string](moduleAlias *ast.ProperName, value T) string {
	if moduleAlias != nil {
		return moduleAlias.Value + "." + string(value)
	}
	return string(value)
}

// check elaborates a CST type expression into a semantic types.Type,
// unifying its kind against expectedKind as it goes: the core of the
// type declaration checker.
func check(env *Env, state *State, expectedKind kind.Kind, texpr ast.TypeExpr) (types.Type, error) {
	switch texpr := texpr.(type) {

	case *ast.TypeExprVariable:
		entry, ok := env.TypeVariables[texpr.Name.Value]
		if !ok {
			return nil, &Error{
				Code:    dittoerrors.UnknownTypeVariable,
				Message: fmt.Sprintf("type variable %q is not in scope", texpr.Name.Value),
				Span:    texpr.VarSpan,
			}
		}
		sub, err := kind.Unify(state.Substitution, expectedKind, entry.VariableKind)
		if err != nil {
			return nil, unifyErr(err, texpr.VarSpan)
		}
		state.Substitution = sub
		return &types.Variable{
			ID:           entry.Var,
			SourceName:   texpr.Name.Value,
			IsRigid:      true,
			VariableKind: entry.VariableKind, // resolved by applyKinds once checking finishes
		}, nil

	case *ast.TypeExprConstructor:
		key := qualifiedKey(texpr.Name.ModuleName, texpr.Name.Value.Value)
		entry, ok := env.Types[key]
		if !ok {
			return nil, &Error{
				Code:    dittoerrors.UnknownTypeConstructor,
				Message: fmt.Sprintf("type %q is not in scope", key),
				Span:    texpr.ConSpan,
			}
		}
		sub, err := kind.Unify(state.Substitution, expectedKind, entry.Kind)
		if err != nil {
			return nil, unifyErr(err, texpr.ConSpan)
		}
		state.Substitution = sub
		state.TypeReferences[entry.Canonical.Key()] = append(state.TypeReferences[entry.Canonical.Key()], texpr.ConSpan)
		sourceValue := texpr.Name
		return &types.Constructor{
			Canonical:       entry.Canonical,
			SourceValue:     &sourceValue,
			ConstructorKind: entry.Kind, // resolved by applyKinds once checking finishes
		}, nil

	case *ast.TypeExprCall:
		paramKinds := make([]kind.Kind, len(texpr.Arguments))
		for i := range paramKinds {
			paramKinds[i] = state.KindSupply.Fresh()
		}
		fnKind := &kind.Function{Parameters: paramKinds, Result: expectedKind}
		fnType, err := check(env, state, fnKind, texpr.Function)
		if err != nil {
			return nil, err
		}
		args := make([]types.Type, len(texpr.Arguments))
		for i, a := range texpr.Arguments {
			argType, err := check(env, state, kind.Apply(state.Substitution, paramKinds[i]), a)
			if err != nil {
				return nil, err
			}
			args[i] = argType
		}
		return &types.Call{Function: fnType, Arguments: args}, nil

	case *ast.TypeExprFunction:
		sub, err := kind.Unify(state.Substitution, expectedKind, &kind.Type{})
		if err != nil {
			return nil, unifyErr(err, texpr.FnSpan)
		}
		state.Substitution = sub

		params := make([]types.Type, len(texpr.Parameters))
		for i, p := range texpr.Parameters {
			pt, err := check(env, state, &kind.Type{}, p)
			if err != nil {
				return nil, err
			}
			params[i] = pt
		}
		ret, err := check(env, state, &kind.Type{}, texpr.Return)
		if err != nil {
			return nil, err
		}
		return &types.Function{Parameters: params, Return: ret}, nil

	case *ast.TypeExprRecordClosed:
		sub, err := kind.Unify(state.Substitution, expectedKind, &kind.Type{})
		if err != nil {
			return nil, unifyErr(err, texpr.RecSpan)
		}
		state.Substitution = sub

		row := types.NewRow(nil, nil)
		for _, f := range texpr.Fields {
			ft, err := check(env, state, &kind.Type{}, f.Type)
			if err != nil {
				return nil, err
			}
			row.Set(f.Name.Value, ft)
		}
		return &types.RecordClosed{RowData: row}, nil

	case *ast.TypeExprRecordOpen:
		sub, err := kind.Unify(state.Substitution, expectedKind, &kind.Type{})
		if err != nil {
			return nil, unifyErr(err, texpr.RecSpan)
		}
		state.Substitution = sub

		tailEntry, ok := env.TypeVariables[texpr.Tail.Value]
		if !ok {
			return nil, &Error{
				Code:    dittoerrors.UnknownTypeVariable,
				Message: fmt.Sprintf("row variable %q is not in scope", texpr.Tail.Value),
				Span:    texpr.RecSpan,
			}
		}
		sub, err = kind.Unify(state.Substitution, tailEntry.VariableKind, &kind.Row{})
		if err != nil {
			return nil, unifyErr(err, texpr.RecSpan)
		}
		state.Substitution = sub

		row := types.NewRow(nil, nil)
		for _, f := range texpr.Fields {
			ft, err := check(env, state, &kind.Type{}, f.Type)
			if err != nil {
				return nil, err
			}
			row.Set(f.Name.Value, ft)
		}
		return &types.RecordOpen{Var: tailEntry.Var, SourceName: texpr.Tail.Value, IsRigid: true, RowData: row}, nil
	}

	return nil, &Error{Code: dittoerrors.MalformedPattern, Message: fmt.Sprintf("unhandled type expression %T", texpr), Span: texpr.Span()}
}

func unifyErr(err error, span ast.Span) *Error {
	kerr, ok := err.(*kind.Error)
	if !ok {
		return &Error{Code: dittoerrors.KindsNotEqual, Message: err.Error(), Span: span}
	}
	if kerr.Reason == "infinite" {
		return &Error{Code: dittoerrors.InfiniteKind, Message: kerr.Error(), Span: span}
	}
	return &Error{Code: dittoerrors.KindsNotEqual, Message: kerr.Error(), Span: span}
}
