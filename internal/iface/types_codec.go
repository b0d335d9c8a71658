package iface

import (
	"fmt"
	"strings"

	"github.com/ditto-lang/ditto/internal/ast"
	"github.com/ditto-lang/ditto/internal/kind"
	"github.com/ditto-lang/ditto/internal/types"
)

// This file gives every structural type in internal/types and
// internal/kind a lossless JSON encoding, so a dependency's exports can
// be reloaded from its `.ast-exports` artefact with real Scheme/Kind
// values rather than just the rendered strings EncodeExports also
// writes for human consumption. The two representations live side by
// side in the same artefact: the string one is what a person (or the
// LSP) reads, the node one is what a later `ditto compile` invocation
// feeds back into resolve.Everything.

func toNode(v any) node {
	if v == nil {
		return nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return node(m)
}

func toInt(v any) int {
	switch v := v.(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func strOf(v any) string {
	s, _ := v.(string)
	return s
}

func moduleNameFromDotted(s string) ast.ModuleName {
	parts := strings.Split(s, ".")
	segments := make([]ast.ProperName, len(parts))
	for i, p := range parts {
		segments[i] = ast.ProperName{Value: p}
	}
	return ast.ModuleName{Segments: segments}
}

func encodeSpan(s ast.Span) node {
	return node{"start": s.Start, "end": s.End}
}

func decodeSpan(n node) ast.Span {
	if n == nil {
		return ast.Span{}
	}
	return ast.Span{Start: toInt(n["start"]), End: toInt(n["end"])}
}

func encodeFullyQualifiedProperName(f ast.FullyQualified[ast.ProperName]) node {
	n := node{"module_name": f.ModuleName.String(), "value": f.Value.Value}
	if f.PackageName != nil {
		n["package_name"] = f.PackageName.Value
	}
	return n
}

func decodeFullyQualifiedProperName(n node) ast.FullyQualified[ast.ProperName] {
	f := ast.FullyQualified[ast.ProperName]{
		ModuleName: moduleNameFromDotted(strOf(n["module_name"])),
		Value:      ast.ProperName{Value: strOf(n["value"])},
	}
	if pkg := strOf(n["package_name"]); pkg != "" {
		f.PackageName = &ast.PackageName{Value: pkg}
	}
	return f
}

// encodeKind/decodeKind round-trip internal/kind.Kind.
func encodeKind(k kind.Kind) node {
	if k == nil {
		return nil
	}
	switch k := k.(type) {
	case *kind.Variable:
		return node{"node": "kind_variable", "id": k.ID}
	case *kind.Type:
		return node{"node": "kind_type"}
	case *kind.Row:
		return node{"node": "kind_row"}
	case *kind.Function:
		params := make([]node, len(k.Parameters))
		for i, p := range k.Parameters {
			params[i] = encodeKind(p)
		}
		return node{"node": "kind_function", "parameters": params, "result": encodeKind(k.Result)}
	default:
		return node{"node": "unknown"}
	}
}

func decodeKind(n node) (kind.Kind, error) {
	if n == nil {
		return nil, nil
	}
	switch strOf(n["node"]) {
	case "kind_variable":
		return &kind.Variable{ID: toInt(n["id"])}, nil
	case "kind_type":
		return &kind.Type{}, nil
	case "kind_row":
		return &kind.Row{}, nil
	case "kind_function":
		paramsRaw, _ := n["parameters"].([]any)
		params := make([]kind.Kind, len(paramsRaw))
		for i, p := range paramsRaw {
			pk, err := decodeKind(toNode(p))
			if err != nil {
				return nil, err
			}
			params[i] = pk
		}
		result, err := decodeKind(toNode(n["result"]))
		if err != nil {
			return nil, err
		}
		return &kind.Function{Parameters: params, Result: result}, nil
	default:
		return nil, fmt.Errorf("iface: unknown kind node %q", n["node"])
	}
}

// encodeType/decodeType round-trip internal/types.Type.
func encodeType(t types.Type) node {
	if t == nil {
		return nil
	}
	switch t := t.(type) {
	case *types.Variable:
		n := node{"node": "variable", "id": t.ID, "is_rigid": t.IsRigid, "variable_kind": encodeKind(t.VariableKind)}
		if t.SourceName != "" {
			n["source_name"] = t.SourceName
		}
		return n
	case *types.Constructor:
		n := node{"node": "constructor", "canonical": encodeFullyQualifiedProperName(t.Canonical), "constructor_kind": encodeKind(t.ConstructorKind)}
		return n
	case *types.ConstructorAlias:
		aliasVars := make([]any, len(t.AliasVariables))
		for i, v := range t.AliasVariables {
			aliasVars[i] = v
		}
		return node{
			"node":            "constructor_alias",
			"canonical":       encodeFullyQualifiedProperName(t.Canonical),
			"alias_variables": aliasVars,
			"aliased_type":    encodeType(t.AliasedType),
		}
	case *types.PrimConstructor:
		return node{"node": "prim", "prim": int(t.Prim)}
	case *types.Call:
		return node{"node": "call", "function": encodeType(t.Function), "arguments": encodeTypes(t.Arguments)}
	case *types.Function:
		return node{"node": "function", "parameters": encodeTypes(t.Parameters), "return": encodeType(t.Return)}
	case *types.RecordClosed:
		return node{"node": "record_closed", "row": encodeRow(t.RowData)}
	case *types.RecordOpen:
		n := node{"node": "record_open", "var": t.Var, "is_rigid": t.IsRigid, "row": encodeRow(t.RowData)}
		if t.SourceName != "" {
			n["source_name"] = t.SourceName
		}
		return n
	default:
		return node{"node": "unknown"}
	}
}

func decodeType(n node) (types.Type, error) {
	if n == nil {
		return nil, nil
	}
	switch strOf(n["node"]) {
	case "variable":
		k, err := decodeKind(toNode(n["variable_kind"]))
		if err != nil {
			return nil, err
		}
		return &types.Variable{ID: toInt(n["id"]), SourceName: strOf(n["source_name"]), IsRigid: boolOf(n["is_rigid"]), VariableKind: k}, nil
	case "constructor":
		k, err := decodeKind(toNode(n["constructor_kind"]))
		if err != nil {
			return nil, err
		}
		return &types.Constructor{Canonical: decodeFullyQualifiedProperName(toNode(n["canonical"])), ConstructorKind: k}, nil
	case "constructor_alias":
		rawVars, _ := n["alias_variables"].([]any)
		vars := make([]int, len(rawVars))
		for i, v := range rawVars {
			vars[i] = toInt(v)
		}
		aliased, err := decodeType(toNode(n["aliased_type"]))
		if err != nil {
			return nil, err
		}
		return &types.ConstructorAlias{
			Canonical:      decodeFullyQualifiedProperName(toNode(n["canonical"])),
			AliasVariables: vars,
			AliasedType:    aliased,
		}, nil
	case "prim":
		return &types.PrimConstructor{Prim: types.Prim(toInt(n["prim"]))}, nil
	case "call":
		fn, err := decodeType(toNode(n["function"]))
		if err != nil {
			return nil, err
		}
		args, err := decodeTypes(n["arguments"])
		if err != nil {
			return nil, err
		}
		return &types.Call{Function: fn, Arguments: args}, nil
	case "function":
		params, err := decodeTypes(n["parameters"])
		if err != nil {
			return nil, err
		}
		ret, err := decodeType(toNode(n["return"]))
		if err != nil {
			return nil, err
		}
		return &types.Function{Parameters: params, Return: ret}, nil
	case "record_closed":
		row, err := decodeRow(toNode(n["row"]))
		if err != nil {
			return nil, err
		}
		return &types.RecordClosed{RowData: row}, nil
	case "record_open":
		row, err := decodeRow(toNode(n["row"]))
		if err != nil {
			return nil, err
		}
		return &types.RecordOpen{Var: toInt(n["var"]), SourceName: strOf(n["source_name"]), IsRigid: boolOf(n["is_rigid"]), RowData: row}, nil
	default:
		return nil, fmt.Errorf("iface: unknown type node %q", n["node"])
	}
}

func boolOf(v any) bool {
	b, _ := v.(bool)
	return b
}

func encodeTypes(ts []types.Type) []node {
	out := make([]node, len(ts))
	for i, t := range ts {
		out[i] = encodeType(t)
	}
	return out
}

func decodeTypes(v any) ([]types.Type, error) {
	raw, _ := v.([]any)
	out := make([]types.Type, len(raw))
	for i, r := range raw {
		t, err := decodeType(toNode(r))
		if err != nil {
			return nil, err
		}
		out[i] = t
	}
	return out, nil
}

func encodeRow(r *types.Row) node {
	if r == nil {
		return node{"order": []string{}, "fields": map[string]any{}}
	}
	names := r.SortedNames()
	fields := make(map[string]any, len(names))
	for _, n := range names {
		fields[n] = encodeType(r.Fields[n])
	}
	order := make([]any, len(names))
	for i, n := range names {
		order[i] = n
	}
	return node{"order": order, "fields": fields}
}

func decodeRow(n node) (*types.Row, error) {
	if n == nil {
		return types.NewRow(nil, nil), nil
	}
	orderRaw, _ := n["order"].([]any)
	fieldsRaw, _ := n["fields"].(map[string]any)
	row := types.NewRow(nil, nil)
	for _, o := range orderRaw {
		name := strOf(o)
		ft, err := decodeType(toNode(fieldsRaw[name]))
		if err != nil {
			return nil, err
		}
		row.Set(name, ft)
	}
	return row, nil
}

// encodeScheme/decodeScheme round-trip internal/types.Scheme.
func encodeScheme(s *types.Scheme) node {
	if s == nil {
		return nil
	}
	forall := make([]any, len(s.Forall))
	for i, v := range s.Forall {
		forall[i] = v
	}
	return node{"forall": forall, "signature": encodeType(s.Signature)}
}

func decodeScheme(n node) (*types.Scheme, error) {
	if n == nil {
		return nil, nil
	}
	forallRaw, _ := n["forall"].([]any)
	forall := make([]int, len(forallRaw))
	for i, v := range forallRaw {
		forall[i] = toInt(v)
	}
	sig, err := decodeType(toNode(n["signature"]))
	if err != nil {
		return nil, err
	}
	return &types.Scheme{Forall: forall, Signature: sig}, nil
}
