package errors

import (
	"encoding/json"
	"testing"

	"github.com/ditto-lang/ditto/internal/ast"
)

func TestReportToJSONRoundTrips(t *testing.T) {
	r := &Report{
		Schema:  "ditto.error/v1",
		Code:    TypesNotEqual,
		Phase:   "typecheck",
		Message: "expected Int, got Bool",
		Span:    &ast.Span{Start: 10, End: 14},
		Data:    map[string]any{"expected": "Int", "actual": "Bool"},
		Fix:     &Fix{Suggestion: "change the literal to an integer", Confidence: 0.6},
	}

	data, err := r.ToJSON(true)
	if err != nil {
		t.Fatalf("ToJSON: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(data), &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if decoded["code"] != TypesNotEqual {
		t.Errorf("code = %v, want %s", decoded["code"], TypesNotEqual)
	}
	if decoded["phase"] != "typecheck" {
		t.Errorf("phase = %v, want typecheck", decoded["phase"])
	}
}

func TestWrapReportAndAsReport(t *testing.T) {
	r := &Report{Schema: "ditto.error/v1", Code: UnknownVariable, Phase: "typecheck", Message: "unknown variable: x"}
	err := WrapReport(r)

	got, ok := AsReport(err)
	if !ok {
		t.Fatal("expected AsReport to find the wrapped report")
	}
	if got.Code != UnknownVariable {
		t.Errorf("code = %s, want %s", got.Code, UnknownVariable)
	}
}

func TestMarshalDeterministicSortsMapKeys(t *testing.T) {
	data, err := MarshalDeterministic(map[string]any{"b": 1, "a": 2})
	if err != nil {
		t.Fatalf("MarshalDeterministic: %v", err)
	}
	if string(data) != `{"a":2,"b":1}` {
		t.Errorf("got %s, want keys sorted", data)
	}
}
