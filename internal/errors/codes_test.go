package errors

import "testing"

func TestErrorCodeTaxonomy(t *testing.T) {
	tests := []struct {
		code     string
		phase    string
		category string
	}{
		{UnknownVariable, "typecheck", "name-resolution"},
		{DuplicateImportModule, "import", "duplication"},
		{ArgumentLengthMismatch, "typecheck", "shape"},
		{TypesNotEqual, "typecheck", "unification"},
		{InfiniteType, "typecheck", "unification"},
		{MatchNotExhaustive, "coverage", "patterns"},
		{RedundantMatchPattern, "coverage", "patterns"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			info, exists := GetErrorInfo(tt.code)
			if !exists {
				t.Fatalf("error code %s not found in registry", tt.code)
			}
			if info.Phase != tt.phase {
				t.Errorf("phase mismatch for %s: got %s, want %s", tt.code, info.Phase, tt.phase)
			}
			if info.Category != tt.category {
				t.Errorf("category mismatch for %s: got %s, want %s", tt.code, info.Category, tt.category)
			}
		})
	}
}

func TestErrorCategoryCheckers(t *testing.T) {
	if !IsNameResolutionError(UnknownVariable) {
		t.Error("UnknownVariable should be a name-resolution error")
	}
	if !IsUnificationError(TypesNotEqual) {
		t.Error("TypesNotEqual should be a unification error")
	}
	if !IsPatternError(MatchNotExhaustive) {
		t.Error("MatchNotExhaustive should be a pattern error")
	}
	if IsUnificationError(MatchNotExhaustive) {
		t.Error("MatchNotExhaustive should not be a unification error")
	}
}

func TestErrorInfoConsistency(t *testing.T) {
	for code, info := range ErrorRegistry {
		if info.Code != code {
			t.Errorf("code mismatch in registry: key=%s, info.Code=%s", code, info.Code)
		}
		if info.Description == "" {
			t.Errorf("empty description for %s", code)
		}
	}
}
