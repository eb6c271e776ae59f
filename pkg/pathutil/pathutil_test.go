package pathutil

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestResolve_MixedCase(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Json", "Project_Config.json"))

	got, ok := Resolve(filepath.Join(dir, "JSON", "project_config.JSON"))
	if !ok {
		t.Fatal("Expected path to resolve")
	}
	want := filepath.Join(dir, "Json", "Project_Config.json")
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestResolve_Missing(t *testing.T) {
	dir := t.TempDir()
	if _, ok := Resolve(filepath.Join(dir, "nope", "file.csv")); ok {
		t.Error("Expected missing path not to resolve")
	}
	if _, ok := Resolve(""); ok {
		t.Error("Expected empty path not to resolve")
	}
}

func TestResolveOrOriginal(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "Lookup.csv")
	if got := ResolveOrOriginal(missing); got != missing {
		t.Errorf("Expected original path back, got %q", got)
	}
}

func TestFindFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "1.JSON"))
	if err := os.Mkdir(filepath.Join(dir, "2.json"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, ok := FindFile(dir, "1.json")
	if !ok || filepath.Base(got) != "1.JSON" {
		t.Errorf("Expected to find 1.JSON, got %q (ok=%v)", got, ok)
	}
	if _, ok := FindFile(dir, "2.json"); ok {
		t.Error("Directories must not be returned as files")
	}
	if _, ok := FindFile(filepath.Join(dir, "absent"), "1.json"); ok {
		t.Error("Expected no match in a missing directory")
	}
}

func TestEqual(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "Scan001.TIF"))

	tests := []struct {
		name string
		a, b string
		want bool
	}{
		{"both empty", "", "  ", true},
		{"one empty", "a.tif", "", false},
		{"on disk", filepath.Join(dir, "scan001.tif"), filepath.Join(dir, "SCAN001.tif"), true},
		{"not on disk", "batch/Doc.tif", "BATCH/doc.TIF", true},
		{"different", "a.tif", "b.tif", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.want {
				t.Errorf("Equal(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
