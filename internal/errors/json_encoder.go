package errors

import "encoding/json"

// Fix is a suggested remediation attached to a Report, with a confidence
// score so tooling can decide whether to apply it automatically.
type Fix struct {
	Suggestion string  `json:"suggestion"`
	Confidence float64 `json:"confidence"`
}

// MarshalDeterministic encodes v as JSON with stable key order: Go's
// encoding/json already sorts map[string]any keys and preserves struct
// field declaration order, so this is a thin, explicitly-named wrapper
// other packages can depend on without reaching into encoding/json
// themselves.
func MarshalDeterministic(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// FormatJSON re-indents already-marshalled JSON for human-readable output.
func FormatJSON(data []byte) ([]byte, error) {
	var buf interface{}
	if err := json.Unmarshal(data, &buf); err != nil {
		return nil, err
	}
	return json.MarshalIndent(buf, "", "  ")
}
