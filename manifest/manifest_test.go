package manifest

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, FileName), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadManifest(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[archive]
path = "store/methods.db"

[rewriter]
rewrite-bytecodes = false

[output]
color = false
verbosity = 2
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Archive.Path != "store/methods.db" {
		t.Errorf("archive path = %q, want store/methods.db", m.Archive.Path)
	}
	if m.Rewriter.RewriteBytecodes {
		t.Error("rewrite-bytecodes = true, want explicit false to win over the default")
	}
	if m.Output.Color {
		t.Error("color = true, want explicit false to win over the default")
	}
	if m.Output.Verbosity != 2 {
		t.Errorf("verbosity = %d, want 2", m.Output.Verbosity)
	}
	if m.Dir == "" || !filepath.IsAbs(m.Dir) {
		t.Errorf("Dir = %q, want an absolute path", m.Dir)
	}

	want := filepath.Join(m.Dir, "store", "methods.db")
	if got := m.ArchivePath(); got != want {
		t.Errorf("ArchivePath = %q, want %q", got, want)
	}
}

func TestLoadManifestDefaults(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `
[archive]
path = "custom.db"
`)

	m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if m.Archive.Path != "custom.db" {
		t.Errorf("archive path = %q, want custom.db", m.Archive.Path)
	}
	if !m.Rewriter.RewriteBytecodes {
		t.Error("rewrite-bytecodes default = false, want true")
	}
	if !m.Output.Color {
		t.Error("color default = false, want true")
	}
	if m.Output.Verbosity != 0 {
		t.Errorf("verbosity default = %d, want 0", m.Output.Verbosity)
	}
}

func TestLoadManifestBadToml(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, `[archive`)

	if _, err := Load(dir); err == nil {
		t.Error("Load accepted malformed toml")
	}
}

func TestDefault(t *testing.T) {
	m := Default()
	if m.Archive.Path != "jrt.db" {
		t.Errorf("default archive path = %q, want jrt.db", m.Archive.Path)
	}
	if !m.Rewriter.RewriteBytecodes || !m.Output.Color {
		t.Error("defaults should enable quickening and color")
	}
	if got := m.ArchivePath(); got != "jrt.db" {
		t.Errorf("ArchivePath with no Dir = %q, want jrt.db", got)
	}
}

func TestFindAndLoad(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `
[archive]
path = "found.db"
`)
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	m, err := FindAndLoad(nested)
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m == nil {
		t.Fatal("FindAndLoad found nothing from a nested directory")
	}
	if m.Archive.Path != "found.db" {
		t.Errorf("archive path = %q, want found.db", m.Archive.Path)
	}

	// The manifest directory, not the start directory, anchors paths.
	wantDir, err := filepath.Abs(root)
	if err != nil {
		t.Fatal(err)
	}
	if m.Dir != wantDir {
		t.Errorf("Dir = %q, want %q", m.Dir, wantDir)
	}
}

func TestFindAndLoadAbsent(t *testing.T) {
	m, err := FindAndLoad(t.TempDir())
	if err != nil {
		t.Fatalf("FindAndLoad failed: %v", err)
	}
	if m != nil {
		t.Errorf("FindAndLoad = %+v, want nil when no manifest exists", m)
	}
}
