package types

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ditto-lang/ditto/internal/ast"
)

func TestUnifySelfAlwaysSucceeds(t *testing.T) {
	cases := []Type{
		Int,
		String,
		&Variable{ID: 1},
		&RecordClosed{RowData: NewRow([]string{"x"}, []Type{Int})},
		&RecordOpen{Var: 2, RowData: NewRow([]string{"y"}, []Type{Bool})},
		&Function{Parameters: []Type{Int}, Return: Bool},
	}
	for _, ty := range cases {
		sub, err := Unify(Substitution{}, ty, ty)
		require.NoError(t, err)
		assert.Empty(t, sub, "unifying a type with itself must not alter the substitution")
	}
}

func TestUnifyRigidSkolemRejectsConcreteType(t *testing.T) {
	// Scenario D: `five : a = 5;` fails with TypesNotEqual (a! != Int).
	rigid := &Variable{ID: 1, SourceName: "a", IsRigid: true}
	_, err := Unify(Substitution{}, rigid, Int)
	require.Error(t, err)
	var uerr *UnifyError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "TypesNotEqual", uerr.Kind)
}

func TestUnifyOccursCheckProducesInfiniteType(t *testing.T) {
	v := &Variable{ID: 5}
	cyclic := &Call{Function: &PrimConstructor{Prim: PrimArray}, Arguments: []Type{v}}
	_, err := Unify(Substitution{}, v, cyclic)
	require.Error(t, err)
	var uerr *UnifyError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "InfiniteType", uerr.Kind)
	assert.Equal(t, 5, uerr.Var)
}

func TestUnifyRowOpenAgainstClosed(t *testing.T) {
	// forall a r. ({ r | x: a }) -> a  applied against { x: Int, y: Bool }
	open := &RecordOpen{Var: 9, RowData: NewRow([]string{"x"}, []Type{&Variable{ID: 1}})}
	closed := &RecordClosed{RowData: NewRow([]string{"x", "y"}, []Type{Int, Bool})}

	sub, err := Unify(Substitution{}, open, closed)
	require.NoError(t, err)
	assert.Equal(t, Int, Apply(sub, &Variable{ID: 1}))
	assert.Equal(t, closed, Apply(sub, &Variable{ID: 9}))
}

func TestUnifyRowOpenOpenUnionsFields(t *testing.T) {
	left := &RecordOpen{Var: 1, RowData: NewRow([]string{"x"}, []Type{Int})}
	right := &RecordOpen{Var: 2, RowData: NewRow([]string{"y"}, []Type{Bool})}

	sub, err := Unify(Substitution{}, left, right)
	require.NoError(t, err)
	result := Apply(sub, &Variable{ID: 1}).(*RecordOpen)
	assert.Equal(t, Int, result.RowData.Fields["x"])
	assert.Equal(t, Bool, result.RowData.Fields["y"])
}

func TestUnifyRecordClosedMismatchedKeysFails(t *testing.T) {
	a := &RecordClosed{RowData: NewRow([]string{"x"}, []Type{Int})}
	b := &RecordClosed{RowData: NewRow([]string{"x", "y"}, []Type{Int, Bool})}
	_, err := Unify(Substitution{}, a, b)
	require.Error(t, err)
}

func TestUnifyCallSubstitutesNestedArgumentStructurally(t *testing.T) {
	// Maybe(a) unified against Maybe(Int) must substitute `a` throughout
	// and leave the rest of the Call node untouched; go-cmp catches a
	// structural mismatch that assert.Equal's shallow field checks in
	// the rest of this file wouldn't reliably surface for nested Rows.
	maybe := &Constructor{Canonical: ast.FullyQualified[ast.ProperName]{
		ModuleName: ast.ModuleName{Segments: []ast.ProperName{{Value: "Maybe"}}},
		Value:      ast.ProperName{Value: "Maybe"},
	}}
	lhs := &Call{Function: maybe, Arguments: []Type{&Variable{ID: 1}}}
	rhs := &Call{Function: maybe, Arguments: []Type{Int}}

	sub, err := Unify(Substitution{}, lhs, rhs)
	require.NoError(t, err)

	got := Apply(sub, lhs)
	want := &Call{Function: maybe, Arguments: []Type{Int}}

	if diff := cmp.Diff(want, got, cmp.AllowUnexported(Row{})); diff != "" {
		t.Errorf("unified type mismatch (-want +got):\n%s", diff)
	}
}
