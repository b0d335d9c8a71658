package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing fixture: %s", err)
	}
	return path
}

func TestLoadValidManifest(t *testing.T) {
	path := writeManifest(t, `
name = "my-package"
version = "1.0.0"

[dependencies]
some-dep = "^1.0.0"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if cfg.Name != "my-package" {
		t.Errorf("Name = %q, want my-package", cfg.Name)
	}
	if cfg.Version != "1.0.0" {
		t.Errorf("Version = %q, want 1.0.0", cfg.Version)
	}
	if cfg.Dependencies["some-dep"] != "^1.0.0" {
		t.Errorf("Dependencies[some-dep] = %q, want ^1.0.0", cfg.Dependencies["some-dep"])
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), ConfigFileName))
	if err == nil {
		t.Fatal("expected an error for a missing manifest")
	}
}

func TestLoadMalformedToml(t *testing.T) {
	path := writeManifest(t, `name = "unterminated`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for malformed toml")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "valid",
			cfg:  Config{Name: "my-package", Version: "1.0.0"},
		},
		{
			name:    "missing name",
			cfg:     Config{Version: "1.0.0"},
			wantErr: "missing required field \"name\"",
		},
		{
			name:    "missing version",
			cfg:     Config{Name: "my-package"},
			wantErr: "missing required field \"version\"",
		},
		{
			name:    "uppercase name",
			cfg:     Config{Name: "MyPackage", Version: "1.0.0"},
			wantErr: "invalid package name",
		},
		{
			name: "self dependency",
			cfg: Config{
				Name:         "my-package",
				Version:      "1.0.0",
				Dependencies: map[string]string{"my-package": "^1.0.0"},
			},
			wantErr: "depends on itself",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %s", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestSortedDependencyNames(t *testing.T) {
	cfg := Config{
		Dependencies:     map[string]string{"zeta": "^1.0.0", "alpha": "^1.0.0"},
		TestDependencies: map[string]string{"beta": "^1.0.0", "alpha": "^1.0.0"},
	}

	if got := cfg.SortedDependencyNames(false); strings.Join(got, ",") != "alpha,zeta" {
		t.Errorf("got %v", got)
	}
	if got := cfg.SortedDependencyNames(true); strings.Join(got, ",") != "alpha,beta,zeta" {
		t.Errorf("got %v", got)
	}
}

func TestContentHashIsOrderIndependent(t *testing.T) {
	deps := map[string]string{"a": "^1.0.0", "b": "^2.0.0"}
	setA := []PackageSetEntry{{Name: "a", Version: "1.2.0"}, {Name: "b", Version: "2.3.0"}}
	setB := []PackageSetEntry{{Name: "b", Version: "2.3.0"}, {Name: "a", Version: "1.2.0"}}

	if ContentHash(deps, setA) != ContentHash(deps, setB) {
		t.Error("expected hash to be independent of package set order")
	}
}

func TestContentHashChangesWithDependencies(t *testing.T) {
	set := []PackageSetEntry{{Name: "a", Version: "1.2.0"}}
	h1 := ContentHash(map[string]string{"a": "^1.0.0"}, set)
	h2 := ContentHash(map[string]string{"a": "^2.0.0"}, set)
	if h1 == h2 {
		t.Error("expected hash to change when a dependency constraint changes")
	}
}

func TestContentHashChangesWithPackageSet(t *testing.T) {
	deps := map[string]string{"a": "^1.0.0"}
	h1 := ContentHash(deps, []PackageSetEntry{{Name: "a", Version: "1.2.0"}})
	h2 := ContentHash(deps, []PackageSetEntry{{Name: "a", Version: "1.3.0"}})
	if h1 == h2 {
		t.Error("expected hash to change when the resolved package set changes")
	}
}
