package build

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ditto-lang/ditto/internal/manifest"
)

// lockFileName is the human-diffable companion to the binary content
// hash at .ditto/packages/_hash: a snapshot of exactly which package
// versions a build resolved against.
const lockFileName = "ditto.lock.yaml"

// LockSnapshot is the resolved package set, serialized alongside a
// project's manifest so a reviewer can diff dependency-version changes
// without decoding the content hash.
type LockSnapshot struct {
	Hash     string          `yaml:"hash"`
	Packages []PackageLockEntry `yaml:"packages"`
}

// PackageLockEntry is one resolved package's pinned version.
type PackageLockEntry struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// WriteLockSnapshot writes ditto.lock.yaml next to a project's
// manifest, recording the package set an install resolved and the
// content hash that set was installed under.
func WriteLockSnapshot(projectDir string, packageSet []manifest.PackageSetEntry, hash string) error {
	snapshot := LockSnapshot{Hash: hash}
	for _, p := range packageSet {
		snapshot.Packages = append(snapshot.Packages, PackageLockEntry{Name: p.Name, Version: p.Version})
	}
	data, err := yaml.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encoding lock snapshot: %w", err)
	}
	if err := os.WriteFile(filepath.Join(projectDir, lockFileName), data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", lockFileName, err)
	}
	return nil
}

// ReadLockSnapshot reads a previously-written ditto.lock.yaml, or
// returns (nil, nil) if none exists yet.
func ReadLockSnapshot(projectDir string) (*LockSnapshot, error) {
	data, err := os.ReadFile(filepath.Join(projectDir, lockFileName))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", lockFileName, err)
	}
	var snapshot LockSnapshot
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", lockFileName, err)
	}
	return &snapshot, nil
}
