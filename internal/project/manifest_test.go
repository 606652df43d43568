package project

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValidManifest(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `[package]
name = "Demo"

[build]
source_root = "src"
entry = "app/main.ts"
runtime = "managed"
union_arity_limit = 4

[external]
"std:" = "Demo.Std"
`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Config.Package.Name != "Demo" {
		t.Fatalf("name = %q", m.Config.Package.Name)
	}
	if got, want := m.SourceRootDir(), filepath.Join(dir, "src"); got != want {
		t.Fatalf("source root = %q, want %q", got, want)
	}
	if got := m.EntryRel(); got != "app/main" {
		t.Fatalf("entry rel = %q", got)
	}
	if got, want := m.EntryFile(), filepath.Join(dir, "src", "app", "main.ts"); got != want {
		t.Fatalf("entry file = %q, want %q", got, want)
	}
	if m.Config.Build.UnionArityLimit != 4 {
		t.Fatalf("union limit = %d", m.Config.Build.UnionArityLimit)
	}
	if m.Config.External["std:"] != "Demo.Std" {
		t.Fatalf("external = %v", m.Config.External)
	}
}

func TestLoadRejectsBadManifests(t *testing.T) {
	cases := map[string]string{
		"missing name": `[build]
entry = "main.ts"
`,
		"bad runtime": `[package]
name = "Demo"

[build]
runtime = "jitted"
`,
		"negative limit": `[package]
name = "Demo"

[build]
union_arity_limit = -1
`,
	}
	for label, content := range cases {
		t.Run(label, func(t *testing.T) {
			path := writeManifest(t, t.TempDir(), content)
			if _, err := Load(path); err == nil {
				t.Fatal("Load accepted an invalid manifest")
			}
		})
	}
}

func TestDefaultsWhenSectionsOmitted(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `[package]
name = "Lib"
`)
	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := m.SourceRootDir(); got != dir {
		t.Fatalf("source root = %q, want manifest dir", got)
	}
	if m.EntryFile() != "" || m.EntryRel() != "" {
		t.Fatal("library manifest grew an entry point")
	}
	if got, want := m.OutDir(), filepath.Join(dir, "out"); got != want {
		t.Fatalf("out dir = %q, want %q", got, want)
	}
}

func TestFindManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `[package]
name = "Demo"
`)
	nested := filepath.Join(root, "src", "deep")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	path, ok, err := FindManifest(nested)
	if err != nil || !ok {
		t.Fatalf("FindManifest: ok=%v err=%v", ok, err)
	}
	if filepath.Dir(path) != root {
		t.Fatalf("found %q, want under %q", path, root)
	}

	_, ok, err = FindManifest(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("found a manifest where none exists")
	}
}

func TestScaffoldRefusesExisting(t *testing.T) {
	dir := t.TempDir()
	created, err := Scaffold(dir, "Demo")
	if err != nil {
		t.Fatalf("Scaffold: %v", err)
	}
	if len(created) != 2 {
		t.Fatalf("created = %v", created)
	}
	if _, err := Load(filepath.Join(dir, ManifestName)); err != nil {
		t.Fatalf("scaffolded manifest invalid: %v", err)
	}
	if _, err := Scaffold(dir, "Demo"); err == nil {
		t.Fatal("Scaffold overwrote an existing project")
	}
}
