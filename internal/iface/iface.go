// Package iface serializes a checked module's interface to the
// `.ast-exports` artefact, and the full module to `.ast`. Downstream
// modules only ever need to deserialize the
// former — they do not need full function bodies to typecheck against
// an already-checked dependency.
package iface

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ditto-lang/ditto/internal/core"
)

const Schema = "ditto.ast-exports/v1"

// ExportsArtifact is the `.ast-exports` artefact: just (ModuleName, Exports).
// Every entry carries both a rendered string (for a human or the LSP to
// read) and a structured node (for a later `ditto compile` invocation
// to decode back into real Scheme/Kind values via ToExports).
type ExportsArtifact struct {
	Schema     string               `json:"schema"`
	ModuleName string               `json:"module_name"`
	Types      map[string]typeJSON  `json:"types"`
	Ctors      map[string]ctorJSON  `json:"constructors"`
	Values     map[string]valueJSON `json:"values"`
	Digest     string               `json:"digest"`
}

type typeJSON struct {
	Kind     string `json:"kind"`
	KindData node   `json:"kind_data"`
	Alias    bool   `json:"alias"`
	Doc      string `json:"doc,omitempty"`
}

type ctorJSON struct {
	Scheme         string `json:"scheme"`
	SchemeData     node   `json:"scheme_data"`
	ReturnTypeName string `json:"return_type_name"`
	Doc            string `json:"doc,omitempty"`
	Position       string `json:"position"`
	PositionData   node   `json:"position_data"`
}

type valueJSON struct {
	Scheme     string `json:"scheme"`
	SchemeData node   `json:"scheme_data"`
	Doc        string `json:"doc,omitempty"`
}

// EncodeExports renders a module's exports deterministically (sorted
// map keys, stable field order) as the `.ast-exports` artefact, and
// stamps it with its own content digest.
func EncodeExports(moduleName string, exports *core.Exports) (*ExportsArtifact, error) {
	a := &ExportsArtifact{
		Schema:     Schema,
		ModuleName: moduleName,
		Types:      make(map[string]typeJSON, len(exports.Types)),
		Ctors:      make(map[string]ctorJSON, len(exports.Constructors)),
		Values:     make(map[string]valueJSON, len(exports.Values)),
	}
	for name, t := range exports.Types {
		a.Types[name] = typeJSON{Kind: t.Kind.String(), KindData: encodeKind(t.Kind), Alias: t.Alias, Doc: t.Doc}
	}
	for name, c := range exports.Constructors {
		a.Ctors[name] = ctorJSON{
			Scheme:         c.Scheme.Signature.String(),
			SchemeData:     encodeScheme(c.Scheme),
			ReturnTypeName: c.ReturnTypeName,
			Doc:            c.Doc,
			Position:       c.Position.String(),
			PositionData:   encodeSpan(c.Position),
		}
	}
	for name, v := range exports.Values {
		a.Values[name] = valueJSON{Scheme: v.Scheme.Signature.String(), SchemeData: encodeScheme(v.Scheme), Doc: v.Doc}
	}

	digest, err := Digest(a)
	if err != nil {
		return nil, err
	}
	a.Digest = digest
	return a, nil
}

// Digest computes a stable SHA-256 digest of an artefact's content,
// excluding the Digest field itself.
func Digest(a *ExportsArtifact) (string, error) {
	clone := *a
	clone.Digest = ""
	data, err := marshalSorted(clone)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// marshalSorted marshals v as indentless JSON; Go's encoding/json
// already sorts map[string]V keys, which is sufficient determinism for
// a digest input.
func marshalSorted(v any) ([]byte, error) {
	return json.Marshal(v)
}

// SortedValueNames returns a's exported value names in sorted order.
func (a *ExportsArtifact) SortedValueNames() []string {
	names := make([]string, 0, len(a.Values))
	for n := range a.Values {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ModuleArtifact is the full `.ast` artefact: the module itself.
type ModuleArtifact struct {
	Schema string       `json:"schema"`
	Module *core.Module `json:"-"` // serialized manually; core.Module isn't JSON-tagged
}

// DecodeExports parses a previously-written `.ast-exports` artefact.
func DecodeExports(data []byte) (*ExportsArtifact, error) {
	var a ExportsArtifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decoding ast-exports: %w", err)
	}
	return &a, nil
}

// ToExports reconstructs a *core.Exports from a decoded artefact,
// feeding its structured node fields back through the type/kind codec.
// This is the build driver's way of loading a dependency's exports into
// resolve.Everything without re-checking that dependency's source.
func (a *ExportsArtifact) ToExports() (*core.Exports, error) {
	exports := core.NewExports()
	for name, t := range a.Types {
		k, err := decodeKind(t.KindData)
		if err != nil {
			return nil, fmt.Errorf("decoding kind of type %s: %w", name, err)
		}
		exports.Types[name] = &core.TypeExport{Kind: k, Alias: t.Alias, Doc: t.Doc}
	}
	for name, c := range a.Ctors {
		scheme, err := decodeScheme(c.SchemeData)
		if err != nil {
			return nil, fmt.Errorf("decoding scheme of constructor %s: %w", name, err)
		}
		exports.Constructors[name] = &core.ConstructorExport{
			Scheme:         scheme,
			ReturnTypeName: c.ReturnTypeName,
			Doc:            c.Doc,
			Position:       decodeSpan(c.PositionData),
		}
	}
	for name, v := range a.Values {
		scheme, err := decodeScheme(v.SchemeData)
		if err != nil {
			return nil, fmt.Errorf("decoding scheme of value %s: %w", name, err)
		}
		exports.Values[name] = &core.ValueExport{Scheme: scheme, Doc: v.Doc}
	}
	return exports, nil
}
