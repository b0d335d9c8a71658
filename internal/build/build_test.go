package build

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ditto-lang/ditto/internal/manifest"
)

func TestLockAcquireRelease(t *testing.T) {
	dir := t.TempDir()
	lock, err := NewLock(dir)
	if err != nil {
		t.Fatalf("NewLock: %s", err)
	}
	if err := lock.Acquire("session-a"); err != nil {
		t.Fatalf("Acquire: %s", err)
	}
	if !lock.Held() {
		t.Fatal("Held() = false after Acquire")
	}
	if err := lock.Release(); err != nil {
		t.Fatalf("Release: %s", err)
	}
	if lock.Held() {
		t.Fatal("Held() = true after Release")
	}
}

func TestLockRejectsConcurrentAcquire(t *testing.T) {
	dir := t.TempDir()
	first, err := NewLock(dir)
	if err != nil {
		t.Fatalf("NewLock: %s", err)
	}
	if err := first.Acquire("session-a"); err != nil {
		t.Fatalf("first Acquire: %s", err)
	}
	defer first.Release()

	second, err := NewLock(dir)
	if err != nil {
		t.Fatalf("NewLock: %s", err)
	}
	err = second.Acquire("session-b")
	if err == nil {
		t.Fatal("expected second Acquire to fail while first holds the lock")
	}
	held, ok := err.(*ErrLockHeld)
	if !ok {
		t.Fatalf("error = %T, want *ErrLockHeld", err)
	}
	if held.Session != "session-a" {
		t.Errorf("Session = %q, want session-a", held.Session)
	}
}

func TestHashGateRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := &manifest.Config{Dependencies: map[string]string{"list": "^1.0.0"}}
	packageSet := []manifest.PackageSetEntry{{Name: "list", Version: "1.2.0"}}

	needs, err := NeedsInstall(dir, cfg, packageSet)
	if err != nil {
		t.Fatalf("NeedsInstall: %s", err)
	}
	if !needs {
		t.Fatal("NeedsInstall = false before any install has run")
	}

	digest := manifest.ContentHash(cfg.Dependencies, packageSet)
	if err := WriteInstalledHash(dir, digest); err != nil {
		t.Fatalf("WriteInstalledHash: %s", err)
	}

	needs, err = NeedsInstall(dir, cfg, packageSet)
	if err != nil {
		t.Fatalf("NeedsInstall: %s", err)
	}
	if needs {
		t.Fatal("NeedsInstall = true after a matching install was recorded")
	}

	cfg.Dependencies["list"] = "^2.0.0"
	needs, err = NeedsInstall(dir, cfg, packageSet)
	if err != nil {
		t.Fatalf("NeedsInstall: %s", err)
	}
	if !needs {
		t.Fatal("NeedsInstall = false after the manifest's dependency constraint changed")
	}
}

func writeModule(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name+".ditto")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing %s: %s", path, err)
	}
	return path
}

func TestLoadHeadersAndTopoSort(t *testing.T) {
	dir := t.TempDir()
	paths := []string{
		writeModule(t, dir, "A", "module A exports (..);\n\na = 1;\n"),
		writeModule(t, dir, "B", "module B exports (..);\nimport A;\n\nb = A.a;\n"),
		writeModule(t, dir, "C", "module C exports (..);\nimport A;\nimport B;\n\nc = B.b;\n"),
	}

	headers, errs := LoadHeaders(paths)
	if len(errs) > 0 {
		t.Fatalf("LoadHeaders errors: %v", errs)
	}
	if len(headers) != 3 {
		t.Fatalf("len(headers) = %d, want 3", len(headers))
	}

	sorted, err := TopoSort(headers, true)
	if err != nil {
		t.Fatalf("TopoSort: %s", err)
	}
	order := make(map[string]int, len(sorted))
	for i, h := range sorted {
		order[h.ModuleName] = i
	}
	if order["A"] > order["B"] {
		t.Errorf("A must precede B: order = %v", order)
	}
	if order["B"] > order["C"] {
		t.Errorf("B must precede C: order = %v", order)
	}
}

func TestTopoSortDetectsCycle(t *testing.T) {
	headers := []ModuleHeader{
		{Path: "a.ditto", ModuleName: "A", Imports: []string{"B"}},
		{Path: "b.ditto", ModuleName: "B", Imports: []string{"A"}},
	}
	_, err := TopoSort(headers, true)
	if err == nil {
		t.Fatal("expected a cycle error")
	}
	if _, ok := err.(*CycleError); !ok {
		t.Fatalf("error = %T, want *CycleError", err)
	}
}

func TestWriteNinjaFileListsOneBuildPerModule(t *testing.T) {
	headers := []ModuleHeader{
		{Path: "A.ditto", ModuleName: "A"},
		{Path: "B.ditto", ModuleName: "B", Imports: []string{"A"}},
	}
	out := WriteNinjaFile("/build", "/usr/bin/ditto", "session-x", headers)

	if !strings.Contains(out, "rule ast-session-x") {
		t.Errorf("missing rule declaration:\n%s", out)
	}
	if !strings.Contains(out, "build /build/ast/A.ast /build/ast/A.ast-exports: ast-session-x A.ditto") {
		t.Errorf("missing build edge for A:\n%s", out)
	}
	if !strings.Contains(out, "/build/ast/A.ast-exports") || !strings.Contains(out, "B.ditto") {
		t.Errorf("B's build edge should depend on A's exports:\n%s", out)
	}
}

func TestLockSnapshotRoundTrip(t *testing.T) {
	dir := t.TempDir()
	packageSet := []manifest.PackageSetEntry{{Name: "list", Version: "1.2.0"}}
	hash := manifest.ContentHash(map[string]string{"list": "^1.0.0"}, packageSet)

	if err := WriteLockSnapshot(dir, packageSet, hash); err != nil {
		t.Fatalf("WriteLockSnapshot: %s", err)
	}
	snapshot, err := ReadLockSnapshot(dir)
	if err != nil {
		t.Fatalf("ReadLockSnapshot: %s", err)
	}
	if snapshot == nil {
		t.Fatal("ReadLockSnapshot returned nil after a snapshot was written")
	}
	if snapshot.Hash != hash {
		t.Errorf("Hash = %q, want %q", snapshot.Hash, hash)
	}
	if len(snapshot.Packages) != 1 || snapshot.Packages[0].Name != "list" {
		t.Errorf("Packages = %+v, want [{list 1.2.0}]", snapshot.Packages)
	}
}

func TestReadLockSnapshotMissing(t *testing.T) {
	dir := t.TempDir()
	snapshot, err := ReadLockSnapshot(dir)
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if snapshot != nil {
		t.Fatalf("snapshot = %+v, want nil", snapshot)
	}
}
