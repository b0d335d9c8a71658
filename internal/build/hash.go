package build

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ditto-lang/ditto/internal/manifest"
)

// hashFileName is the gate internal/manifest.ContentHash's digest is
// persisted to: present and matching means the installed package set
// under .ditto/packages is already up to date with ditto.toml.
const hashFileName = "_hash"

// packagesDir returns the .ditto/packages directory under buildDir.
func packagesDir(buildDir string) string {
	return filepath.Join(buildDir, "packages")
}

// ReadInstalledHash returns the digest recorded by the last successful
// package install, or "" if none has run yet.
func ReadInstalledHash(buildDir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(packagesDir(buildDir), hashFileName))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading package hash: %w", err)
	}
	return string(data), nil
}

// WriteInstalledHash persists digest as the new installed-package-set
// marker, called once package installation succeeds.
func WriteInstalledHash(buildDir, digest string) error {
	dir := packagesDir(buildDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating packages directory: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, hashFileName), []byte(digest), 0o644); err != nil {
		return fmt.Errorf("writing package hash: %w", err)
	}
	return nil
}

// NeedsInstall compares the manifest's current content hash against the
// last-installed one, reporting whether the package set must be
// reinstalled before the build can proceed.
func NeedsInstall(buildDir string, cfg *manifest.Config, packageSet []manifest.PackageSetEntry) (bool, error) {
	current := manifest.ContentHash(cfg.Dependencies, packageSet)
	installed, err := ReadInstalledHash(buildDir)
	if err != nil {
		return true, err
	}
	return current != installed, nil
}
