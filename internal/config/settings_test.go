package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseSettings_YAML(t *testing.T) {
	yaml := `
out: build/java
package: org.example.jobs
catalog: .perldoop/catalog.db
strict_statements: true
verbosity: 2
`
	s, err := ParseSettings([]byte(yaml), "perldoop.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Out != "build/java" {
		t.Errorf("out = %q, want build/java", s.Out)
	}
	if s.Package != "org.example.jobs" {
		t.Errorf("package = %q, want org.example.jobs", s.Package)
	}
	if !s.StrictStatements {
		t.Error("expected strict_statements to be true")
	}
	if s.Verbosity != 2 {
		t.Errorf("verbosity = %d, want 2", s.Verbosity)
	}
	if s.Color != ColorAuto {
		t.Errorf("color = %q, want default %q", s.Color, ColorAuto)
	}
	if s.RuntimePackage != RuntimePkg {
		t.Errorf("runtime_package = %q, want default %q", s.RuntimePackage, RuntimePkg)
	}
}

func TestParseSettings_TOML(t *testing.T) {
	src := `
out = "gen"
package = "wordcount"
color = "never"
comments = true
`
	s, err := ParseSettings([]byte(src), "perldoop.toml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Out != "gen" || s.Package != "wordcount" || s.Color != ColorNever || !s.Comments {
		t.Errorf("unexpected settings: %+v", s)
	}
}

func TestParseSettings_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		path string
		want string
	}{
		{"bad color", "color: rainbow\n", "perldoop.yaml", "color must be"},
		{"bad verbosity", "verbosity: 9\n", "perldoop.yaml", "verbosity must be"},
		{"keyword package", "package: org.class.x\n", "perldoop.yaml", "invalid package"},
		{"empty segment", "package = \"a..b\"\n", "perldoop.toml", "invalid package"},
		{"bad yaml", "out: [\n", "perldoop.yaml", "parsing"},
		{"bad toml", "out = \n", "perldoop.toml", "parsing"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSettings([]byte(tt.src), tt.path)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestFindSettings(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "src", "jobs")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	path, err := FindSettings(nested)
	if err != nil {
		t.Fatalf("FindSettings: %v", err)
	}
	if path != "" && strings.HasPrefix(path, root) {
		t.Fatalf("found unexpected settings %s", path)
	}

	want := filepath.Join(root, "perldoop.toml")
	if err := os.WriteFile(want, []byte("out = \"gen\"\ncatalog = \"cat.db\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	path, err = FindSettings(nested)
	if err != nil {
		t.Fatalf("FindSettings: %v", err)
	}
	if path != want {
		t.Fatalf("FindSettings = %q, want %q", path, want)
	}

	s, err := LoadSettings(path)
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if got := s.CatalogPath(); got != filepath.Join(root, "cat.db") {
		t.Errorf("CatalogPath = %q", got)
	}
	if got := s.OutPath(); got != filepath.Join(root, "gen") {
		t.Errorf("OutPath = %q", got)
	}
}
