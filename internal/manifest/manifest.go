// Package manifest reads and validates a package's ditto.toml: its name,
// version, and dependency list, plus the content-hash gate internal/build
// uses to decide whether the installed package set is stale.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"regexp"
	"sort"

	"github.com/pelletier/go-toml/v2"

	dittoerrors "github.com/ditto-lang/ditto/internal/errors"
)

// ConfigFileName is the manifest file every package root carries.
const ConfigFileName = "ditto.toml"

// packageNamePattern mirrors ast.PackageName's lexical shape: lowercase
// kebab-case, e.g. "my-package".
var packageNamePattern = regexp.MustCompile(`^[a-z][a-z0-9]*(-[a-z0-9]+)*$`)

// Config is the parsed contents of ditto.toml.
type Config struct {
	Name             string            `toml:"name"`
	Version          string            `toml:"version"`
	Dependencies     map[string]string `toml:"dependencies"`
	TestDependencies map[string]string `toml:"test-dependencies"`
}

// Error wraps a manifest failure with the structured code the rest of
// the front-end's diagnostics use.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Code, e.Message) }

// Load reads and validates ditto.toml at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Code: dittoerrors.ManifestParseError, Message: fmt.Sprintf("reading %s: %s", path, err)}
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, &Error{Code: dittoerrors.ManifestParseError, Message: fmt.Sprintf("parsing %s: %s", path, err)}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the manifest is well-formed independent of any
// package registry: name shape, version presence, no dependency naming
// itself.
func (c *Config) Validate() error {
	if c.Name == "" {
		return &Error{Code: dittoerrors.ManifestParseError, Message: "missing required field \"name\""}
	}
	if !packageNamePattern.MatchString(c.Name) {
		return &Error{Code: dittoerrors.ManifestParseError, Message: fmt.Sprintf("invalid package name %q: must be lowercase kebab-case", c.Name)}
	}
	if c.Version == "" {
		return &Error{Code: dittoerrors.ManifestParseError, Message: "missing required field \"version\""}
	}
	for dep := range c.Dependencies {
		if dep == c.Name {
			return &Error{Code: dittoerrors.ManifestParseError, Message: fmt.Sprintf("package %q depends on itself", c.Name)}
		}
	}
	return nil
}

// SortedDependencyNames returns the declared dependency names in a
// deterministic order, merging Dependencies and TestDependencies.
func (c *Config) SortedDependencyNames(includeTest bool) []string {
	seen := make(map[string]bool, len(c.Dependencies)+len(c.TestDependencies))
	var names []string
	for name := range c.Dependencies {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	if includeTest {
		for name := range c.TestDependencies {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)
	return names
}

// PackageSetEntry is one resolved (name, version) pair from the
// installed package set, as internal/build persists it.
type PackageSetEntry struct {
	Name    string
	Version string
}

// ContentHash computes a deterministic SHA-256 digest over a package's
// declared dependency constraints and its resolved package set, so
// internal/build can gate reinstallation on whether either changed
// since the last successful install.
func ContentHash(dependencies map[string]string, packageSet []PackageSetEntry) string {
	depNames := make([]string, 0, len(dependencies))
	for name := range dependencies {
		depNames = append(depNames, name)
	}
	sort.Strings(depNames)

	entries := append([]PackageSetEntry(nil), packageSet...)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	h := sha256.New()
	for _, name := range depNames {
		fmt.Fprintf(h, "dep:%s=%s\n", name, dependencies[name])
	}
	for _, entry := range entries {
		fmt.Fprintf(h, "pkg:%s=%s\n", entry.Name, entry.Version)
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil))
}
