package resolve

import (
	"github.com/ditto-lang/ditto/internal/ast"
	"github.com/ditto-lang/ditto/internal/types"
)

// Requalify walks t and fills in the package name on every Constructor
// and ConstructorAlias node whose canonical module currently lacks one,
// making imported schemes self-describing. It is
// applied to every constructor and value scheme pulled in from another
// package; type exports are not walked, and same-package imports are
// left as they are.
func Requalify(pkg string, t types.Type) types.Type {
	switch t := t.(type) {
	case *types.Constructor:
		if t.Canonical.PackageName == nil {
			canonical := t.Canonical
			canonical.PackageName = &ast.PackageName{Value: pkg}
			return &types.Constructor{Canonical: canonical, SourceValue: t.SourceValue, ConstructorKind: t.ConstructorKind}
		}
		return t
	case *types.ConstructorAlias:
		canonical := t.Canonical
		if canonical.PackageName == nil {
			canonical.PackageName = &ast.PackageName{Value: pkg}
		}
		return &types.ConstructorAlias{
			Canonical:      canonical,
			SourceValue:    t.SourceValue,
			AliasVariables: t.AliasVariables,
			AliasedType:    Requalify(pkg, t.AliasedType),
		}
	case *types.Call:
		args := make([]types.Type, len(t.Arguments))
		for i, a := range t.Arguments {
			args[i] = Requalify(pkg, a)
		}
		return &types.Call{Function: Requalify(pkg, t.Function), Arguments: args}
	case *types.Function:
		params := make([]types.Type, len(t.Parameters))
		for i, p := range t.Parameters {
			params[i] = Requalify(pkg, p)
		}
		return &types.Function{Parameters: params, Return: Requalify(pkg, t.Return)}
	case *types.RecordClosed:
		return &types.RecordClosed{RowData: requalifyRow(pkg, t.RowData)}
	case *types.RecordOpen:
		return &types.RecordOpen{Var: t.Var, SourceName: t.SourceName, IsRigid: t.IsRigid, RowData: requalifyRow(pkg, t.RowData)}
	default:
		return t
	}
}

// RequalifyScheme applies Requalify to a scheme's signature, keeping
// its quantified variables unchanged. A nil scheme (fixtures only;
// the checker always produces one) passes through unchanged.
func RequalifyScheme(pkg string, s *types.Scheme) *types.Scheme {
	if s == nil {
		return nil
	}
	return &types.Scheme{Forall: s.Forall, Signature: Requalify(pkg, s.Signature)}
}

func requalifyRow(pkg string, r *types.Row) *types.Row {
	out := r.Clone()
	for _, n := range out.SortedNames() {
		out.Set(n, Requalify(pkg, out.Fields[n]))
	}
	return out
}
