package iface

import (
	"encoding/json"

	"github.com/ditto-lang/ditto/internal/core"
)

const ModuleSchema = "ditto.ast/v1"

// EncodeModule renders a fully elaborated module as the `.ast`
// artefact: every type and value declaration, expression bodies
// included, in a JSON shape a downstream code generator can walk
// without reaching back into this package's Go types. Every node
// carries its own "node" tag so the decoding side can dispatch on it.
func EncodeModule(module *core.Module) ([]byte, error) {
	artifact := struct {
		Schema string      `json:"schema"`
		Name   string      `json:"module_name"`
		Types  []typeDecl  `json:"types"`
		Groups []valueGroup `json:"value_groups"`
	}{
		Schema: ModuleSchema,
		Name:   module.Name.String(),
	}
	for _, t := range module.TypeDecls {
		artifact.Types = append(artifact.Types, encodeTypeDecl(t))
	}
	for _, g := range module.ValueGroups {
		artifact.Groups = append(artifact.Groups, encodeValueGroup(g))
	}
	return json.Marshal(artifact)
}

type typeDecl struct {
	Name         string            `json:"name"`
	Variables    []int             `json:"variables"`
	Kind         string            `json:"kind"`
	IsAlias      bool              `json:"is_alias"`
	AliasedType  string            `json:"aliased_type,omitempty"`
	Constructors []constructorDecl `json:"constructors,omitempty"`
	Doc          string            `json:"doc,omitempty"`
}

type constructorDecl struct {
	Name       string   `json:"name"`
	FieldTypes []string `json:"field_types"`
	ReturnType string   `json:"return_type"`
	Doc        string   `json:"doc,omitempty"`
}

func encodeTypeDecl(t *core.TypeDeclaration) typeDecl {
	d := typeDecl{
		Name:      t.Name.Value,
		Variables: t.Variables,
		Kind:      t.Kind.String(),
		IsAlias:   t.IsAlias,
		Doc:       t.Doc,
	}
	if t.IsAlias {
		d.AliasedType = t.AliasedType.String()
	}
	for _, c := range t.Constructors {
		fields := make([]string, len(c.FieldTypes))
		for i, f := range c.FieldTypes {
			fields[i] = f.String()
		}
		d.Constructors = append(d.Constructors, constructorDecl{
			Name:       c.Name.Value,
			FieldTypes: fields,
			ReturnType: c.ReturnType.String(),
			Doc:        c.Doc,
		})
	}
	return d
}

type valueGroup struct {
	IsRecursive  bool          `json:"is_recursive"`
	Declarations []valueDecl   `json:"declarations"`
}

type valueDecl struct {
	Name       string `json:"name"`
	Scheme     string `json:"scheme"`
	IsForeign  bool   `json:"is_foreign"`
	Doc        string `json:"doc,omitempty"`
	Expression node   `json:"expression,omitempty"`
}

func encodeValueGroup(g *core.ValueGroup) valueGroup {
	vg := valueGroup{IsRecursive: g.IsRecursive}
	for _, d := range g.Declarations {
		vd := valueDecl{
			Name:      d.Name.Value,
			Scheme:    d.Scheme.Signature.String(),
			IsForeign: d.IsForeign,
			Doc:       d.Doc,
		}
		if !d.IsForeign && d.Expression != nil {
			vd.Expression = encodeExpression(d.Expression)
		}
		vg.Declarations = append(vg.Declarations, vd)
	}
	return vg
}

// node is a generic tagged-union JSON node: "node" identifies the
// Go variant, every other field is variant-specific.
type node map[string]any

func encodeExpression(e core.Expression) node {
	if e == nil {
		return nil
	}
	switch e := e.(type) {
	case *core.True:
		return node{"node": "true"}
	case *core.False:
		return node{"node": "false"}
	case *core.Unit:
		return node{"node": "unit"}
	case *core.String:
		return node{"node": "string", "lexeme": e.Lexeme}
	case *core.Int:
		return node{"node": "int", "lexeme": e.Lexeme}
	case *core.Float:
		return node{"node": "float", "lexeme": e.Lexeme}
	case *core.Array:
		return node{"node": "array", "type": e.Type.String(), "elements": encodeExpressions(e.Elements)}
	case *core.Record:
		return node{"node": "record", "type": e.Type.String(), "fields": encodeRecordFields(e.Fields)}
	case *core.RecordAccess:
		return node{"node": "record_access", "type": e.Type.String(), "target": encodeExpression(e.Target), "label": e.Label.Value}
	case *core.RecordUpdate:
		return node{"node": "record_update", "type": e.Type.String(), "target": encodeExpression(e.Target), "fields": encodeRecordFields(e.Fields)}
	case *core.If:
		return node{"node": "if", "type": e.Type.String(), "condition": encodeExpression(e.Condition), "true": encodeExpression(e.True), "false": encodeExpression(e.False)}
	case *core.Match:
		return node{"node": "match", "type": e.Type.String(), "scrutinee": encodeExpression(e.Scrutinee), "arms": encodeMatchArms(e.Arms)}
	case *core.Function:
		return node{"node": "function", "type": e.Type.String(), "binders": encodeFunctionBinders(e.Binders), "body": encodeExpression(e.Body)}
	case *core.Call:
		return node{"node": "call", "type": e.Type.String(), "function": encodeExpression(e.Function), "arguments": encodeExpressions(e.Arguments)}
	case *core.Let:
		return node{"node": "let", "type": e.Type.String(), "decl": encodeLetValueDeclaration(e.Decl), "rest": encodeExpression(e.Rest)}
	case *core.Effect:
		return node{"node": "effect", "type": e.Type.String(), "chain": encodeEffectNode(e.Chain)}
	case *core.LocalVariable:
		return node{"node": "local_variable", "type": e.Type.String(), "name": e.Name.Value}
	case *core.ImportedVariable:
		return node{"node": "imported_variable", "type": e.Type.String(), "name": e.Name.Value, "ref": encodeGlobalRef(e.Ref)}
	case *core.ForeignVariable:
		return node{"node": "foreign_variable", "type": e.Type.String(), "name": e.Name.Value}
	case *core.LocalConstructor:
		return node{"node": "local_constructor", "type": e.Type.String(), "name": e.Name.Value}
	case *core.ImportedConstructor:
		return node{"node": "imported_constructor", "type": e.Type.String(), "name": e.Name.Value, "ref": encodeGlobalRef(e.Ref)}
	default:
		return node{"node": "unknown"}
	}
}

func encodeExpressions(es []core.Expression) []node {
	out := make([]node, len(es))
	for i, e := range es {
		out[i] = encodeExpression(e)
	}
	return out
}

func encodeRecordFields(fields core.RecordFields) []node {
	out := make([]node, len(fields))
	for i, f := range fields {
		out[i] = node{"label": f.Label.Value, "value": encodeExpression(f.Value)}
	}
	return out
}

func encodeFunctionBinders(binders []core.FunctionBinder) []node {
	out := make([]node, len(binders))
	for i, b := range binders {
		out[i] = node{"name": b.Name.Value, "type": b.Type.String()}
	}
	return out
}

func encodeMatchArms(arms []core.MatchArm) []node {
	out := make([]node, len(arms))
	for i, a := range arms {
		arm := node{"pattern": encodePattern(a.Pattern), "body": encodeExpression(a.Body)}
		if a.Guard != nil {
			arm["guard"] = encodeExpression(a.Guard)
		}
		out[i] = arm
	}
	return out
}

func encodeLetValueDeclaration(d core.LetValueDeclaration) node {
	return node{
		"pattern":         encodePattern(d.Pattern),
		"expression_type": d.ExpressionType.String(),
		"expression":      encodeExpression(d.Expression),
	}
}

func encodeGlobalRef(ref core.GlobalRef) node {
	return node{"package_name": ref.PackageName, "module_name": ref.ModuleName, "name": ref.Name}
}

func encodePattern(p core.Pattern) node {
	if p == nil {
		return nil
	}
	switch p := p.(type) {
	case *core.LocalConstructorPattern:
		return node{"node": "local_constructor_pattern", "type": p.Type.String(), "name": p.Name.Value, "args": encodePatterns(p.Args)}
	case *core.ImportedConstructorPattern:
		return node{"node": "imported_constructor_pattern", "type": p.Type.String(), "name": p.Name.Value, "ref": encodeGlobalRef(p.Ref), "args": encodePatterns(p.Args)}
	case *core.VariablePattern:
		return node{"node": "variable_pattern", "type": p.Type.String(), "name": p.Name.Value}
	case *core.UnusedPattern:
		return node{"node": "unused_pattern", "type": p.Type.String()}
	default:
		return node{"node": "unknown"}
	}
}

func encodePatterns(ps []core.Pattern) []node {
	out := make([]node, len(ps))
	for i, p := range ps {
		out[i] = encodePattern(p)
	}
	return out
}

func encodeEffectNode(e core.EffectNode) node {
	if e == nil {
		return nil
	}
	switch e := e.(type) {
	case *core.EffectBind:
		return node{"node": "effect_bind", "type": e.Type.String(), "name": e.Name.Value, "value": encodeExpression(e.Value), "rest": encodeEffectNode(e.Rest)}
	case *core.EffectLet:
		return node{"node": "effect_let", "type": e.Type.String(), "decl": encodeLetValueDeclaration(e.Decl), "rest": encodeEffectNode(e.Rest)}
	case *core.EffectExpression:
		n := node{"node": "effect_expression", "type": e.Type.String(), "value": encodeExpression(e.Value)}
		if e.Rest != nil {
			n["rest"] = encodeEffectNode(e.Rest)
		}
		return n
	case *core.EffectReturn:
		return node{"node": "effect_return", "type": e.Type.String(), "value": encodeExpression(e.Value)}
	default:
		return node{"node": "unknown"}
	}
}
