package kindcheck

import (
	"github.com/ditto-lang/ditto/internal/ast"
	"github.com/ditto-lang/ditto/internal/kind"
	"github.com/ditto-lang/ditto/internal/types"
)

// CheckAnnotation elaborates a standalone type expression — a value's
// `: Type` annotation or a foreign declaration's signature — against
// env, expecting kind Type. Unlike CheckTypeDeclarations it runs no SCC
// scheduling: the annotation may only reference types already visible
// in env (imports, plus this module's own type declarations, already
// checked earlier by the build driver).
func CheckAnnotation(env *Env, texpr ast.TypeExpr) (types.Type, *Error) {
	state := NewState()
	t, err := check(env, state, &kind.Type{}, texpr)
	if err != nil {
		if kerr, ok := err.(*Error); ok {
			return nil, kerr
		}
		return nil, &Error{Code: "KND999", Message: err.Error(), Span: texpr.Span()}
	}
	return applyKinds(state.Substitution, t), nil
}
