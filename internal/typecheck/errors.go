package typecheck

import (
	"fmt"

	"github.com/ditto-lang/ditto/internal/ast"
	dittoerrors "github.com/ditto-lang/ditto/internal/errors"
	"github.com/ditto-lang/ditto/internal/types"
)

// Error is a typecheck failure, using the TYC/COV error codes.
type Error struct {
	Code    string
	Message string
	Span    ast.Span
	Data    map[string]any
}

func (e *Error) Error() string { return e.Code + ": " + e.Message }

func (e *Error) ToReport() *dittoerrors.Report {
	return &dittoerrors.Report{
		Schema:  "ditto.error/v1",
		Code:    e.Code,
		Phase:   "typecheck",
		Message: e.Message,
		Span:    &e.Span,
		Data:    e.Data,
	}
}

func unknownVariable(span ast.Span, name string, namesInScope []string) *Error {
	return &Error{
		Code:    dittoerrors.UnknownVariable,
		Message: fmt.Sprintf("variable %q is not in scope", name),
		Span:    span,
		Data:    map[string]any{"names_in_scope": namesInScope},
	}
}

func unknownConstructor(span ast.Span, name string, ctorsInScope []string) *Error {
	return &Error{
		Code:    dittoerrors.UnknownConstructor,
		Message: fmt.Sprintf("constructor %q is not in scope", name),
		Span:    span,
		Data:    map[string]any{"ctors_in_scope": ctorsInScope},
	}
}

func notAFunction(span ast.Span, actual types.Type) *Error {
	return &Error{
		Code:    dittoerrors.NotAFunction,
		Message: fmt.Sprintf("cannot call a value of type %s", actual),
		Span:    span,
	}
}

func argumentLengthMismatch(span ast.Span, wanted, got int) *Error {
	return &Error{
		Code:    dittoerrors.ArgumentLengthMismatch,
		Message: fmt.Sprintf("wanted %d argument(s), got %d", wanted, got),
		Span:    span,
	}
}

func duplicateFunctionBinder(previous, duplicate ast.Span) *Error {
	return &Error{
		Code:    dittoerrors.DuplicateFunctionBinder,
		Message: "a function literal repeats a binder name",
		Span:    duplicate,
		Data:    map[string]any{"previous_binder": previous},
	}
}

func duplicatePatternBinder(previous, duplicate ast.Span) *Error {
	return &Error{
		Code:    dittoerrors.DuplicatePatternBinder,
		Message: "a pattern repeats a binder name",
		Span:    duplicate,
		Data:    map[string]any{"previous_binder": previous},
	}
}

func duplicateValueDeclaration(previous, duplicate ast.Span) *Error {
	return &Error{
		Code:    dittoerrors.DuplicateValueDeclaration,
		Message: "a value name is declared twice at module scope",
		Span:    duplicate,
		Data:    map[string]any{"previous_declaration": previous},
	}
}

func unifyErr(err error, span ast.Span) *Error {
	uerr, ok := err.(*types.UnifyError)
	if !ok {
		return &Error{Code: dittoerrors.TypesNotEqual, Message: err.Error(), Span: span}
	}
	if uerr.Kind == "InfiniteType" {
		return &Error{
			Code:    dittoerrors.InfiniteType,
			Message: uerr.Error(),
			Span:    span,
			Data:    map[string]any{"var": uerr.Var},
		}
	}
	return &Error{
		Code:    dittoerrors.TypesNotEqual,
		Message: uerr.Error(),
		Span:    span,
		Data: map[string]any{
			"expected": uerr.Expected.String(),
			"actual":   uerr.Actual.String(),
		},
	}
}

// unify applies state's substitution to both sides and unifies them,
// threading any resulting binding back into state.
func unify(state *State, span ast.Span, expected, actual types.Type) *Error {
	sub, err := types.Unify(state.Substitution, expected, actual)
	if err != nil {
		return unifyErr(err, span)
	}
	state.Substitution = sub
	return nil
}
