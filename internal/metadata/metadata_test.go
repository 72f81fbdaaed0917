package metadata

import (
	"os"
	"path/filepath"
	"testing"
)

func writeManifest(t *testing.T, dir, contents string) string {
	t.Helper()
	path := filepath.Join(dir, "Veryl.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing fixture manifest: %v", err)
	}
	return path
}

func TestLoadVersionShapeDependency(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[project]
name = "proj"
version = "0.1.0"

[dependencies]
"https://example.com/a.git" = "0.1.0"
`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	dep, ok := m.Dependencies["https://example.com/a.git"]
	if !ok {
		t.Fatalf("expected a dependency entry for the git URL")
	}
	if dep.Kind != DependencyVersion || dep.Version != "0.1.0" {
		t.Errorf("got %+v, want Kind=DependencyVersion Version=0.1.0", dep)
	}
}

func TestLoadSingleShapeDependency(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[project]
name = "proj"
version = "0.1.0"

[dependencies."https://example.com/a.git"]
name = "renamed"
version = "1.2.3"
`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	dep := m.Dependencies["https://example.com/a.git"]
	if dep.Kind != DependencySingle || dep.Single.Name != "renamed" || dep.Single.Version != "1.2.3" {
		t.Errorf("got %+v, want Kind=DependencySingle Single={renamed 1.2.3}", dep)
	}
}

func TestLoadMultiShapeDependency(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[project]
name = "proj"
version = "0.1.0"

[[dependencies."https://example.com/a.git"]]
name = "one"
version = "1.0.0"

[[dependencies."https://example.com/a.git"]]
name = "two"
version = "2.0.0"
`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	dep := m.Dependencies["https://example.com/a.git"]
	if dep.Kind != DependencyMulti || len(dep.Multi) != 2 {
		t.Fatalf("got %+v, want Kind=DependencyMulti with 2 entries", dep)
	}
	if dep.Multi[0].Name != "one" || dep.Multi[1].Name != "two" {
		t.Errorf("unexpected multi-dependency order: %v", dep.Multi)
	}
}

func TestLoadRejectsUnknownField(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, `
[project]
name = "proj"
version = "0.1.0"
bogus = "nope"
`)

	if _, err := Load(path); err == nil {
		t.Errorf("Load should reject an unknown field in the [project] table")
	}
}

func TestSaveSchema(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Veryl.toml")

	m := &Metadata{Project: Project{Name: "proj", Version: "0.1.0"}}
	if err := m.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("reloading saved manifest failed: %v", err)
	}
	if loaded.Project.Name != "proj" || loaded.Project.Version != "0.1.0" {
		t.Errorf("round-tripped project = %+v, want {proj 0.1.0}", loaded.Project)
	}
}

func TestCreateDefaultTOML(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, CreateDefaultTOML("myproj"))

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load of CreateDefaultTOML output failed: %v", err)
	}
	if m.Project.Name != "myproj" {
		t.Errorf("Project.Name = %q, want myproj", m.Project.Name)
	}
	if len(m.Dependencies) != 0 {
		t.Errorf("a fresh project should have no dependencies, got %v", m.Dependencies)
	}
}
