package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Settings is the project configuration read from perldoop.yaml or
// perldoop.toml.
type Settings struct {
	// Out is the directory generated classes are written to.
	Out string `yaml:"out" toml:"out"`

	// Package is the Java package of generated classes. Empty means the
	// default package.
	Package string `yaml:"package,omitempty" toml:"package"`

	// RuntimePackage is imported by every generated class.
	RuntimePackage string `yaml:"runtime_package,omitempty" toml:"runtime_package"`

	// Catalog is the SQLite file holding exported package symbols.
	// Relative paths are resolved against the settings file.
	Catalog string `yaml:"catalog,omitempty" toml:"catalog"`

	// StrictStatements wraps side-effect-free expression statements in an
	// evaluation call so they stay valid target statements.
	StrictStatements bool `yaml:"strict_statements,omitempty" toml:"strict_statements"`

	// NullChecks guards numeric and string conversions of values that may
	// be undefined with a runtime check.
	NullChecks bool `yaml:"null_checks,omitempty" toml:"null_checks"`

	// Comments copies source comments into the generated class.
	Comments bool `yaml:"comments,omitempty" toml:"comments"`

	// Verbosity is the log level passed to commonlog (0 quiet .. 5 debug).
	Verbosity int `yaml:"verbosity,omitempty" toml:"verbosity"`

	// Color is one of auto, always, never.
	Color string `yaml:"color,omitempty" toml:"color"`

	// Dir is the directory containing the settings file (set at load time).
	Dir string `yaml:"-" toml:"-"`
}

// Color modes
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// SettingsFileNames are probed, in order, by FindSettings.
var SettingsFileNames = []string{"perldoop.yaml", "perldoop.yml", "perldoop.toml"}

// DefaultSettings returns the settings used when no file is found.
func DefaultSettings() *Settings {
	s := &Settings{}
	s.setDefaults()
	return s
}

// LoadSettings reads a perldoop.yaml or perldoop.toml file. The format is
// chosen by extension.
func LoadSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings %s: %w", path, err)
	}
	s, err := ParseSettings(data, path)
	if err != nil {
		return nil, err
	}
	dir, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("resolving directory: %w", err)
	}
	s.Dir = dir
	return s, nil
}

// ParseSettings parses settings content. The path selects the format and is
// used in error messages.
func ParseSettings(data []byte, path string) (*Settings, error) {
	var s Settings
	if strings.HasSuffix(path, ".toml") {
		if err := toml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	s.setDefaults()
	if err := s.validate(path); err != nil {
		return nil, err
	}
	return &s, nil
}

// FindSettings searches for a settings file starting from dir and walking up
// to parent directories. It returns "" and a nil error when none exists.
func FindSettings(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for {
		for _, name := range SettingsFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// CatalogPath returns the catalog location, resolved against Dir.
func (s *Settings) CatalogPath() string {
	if s.Catalog == "" || filepath.IsAbs(s.Catalog) || s.Dir == "" {
		return s.Catalog
	}
	return filepath.Join(s.Dir, s.Catalog)
}

// OutPath returns the output directory, resolved against Dir.
func (s *Settings) OutPath() string {
	if filepath.IsAbs(s.Out) || s.Dir == "" {
		return s.Out
	}
	return filepath.Join(s.Dir, s.Out)
}

func (s *Settings) validate(path string) error {
	switch s.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("%s: color must be auto, always or never, got %q", path, s.Color)
	}
	if s.Verbosity < 0 || s.Verbosity > 5 {
		return fmt.Errorf("%s: verbosity must be between 0 and 5, got %d", path, s.Verbosity)
	}
	for _, part := range strings.Split(s.Package, ".") {
		if s.Package == "" {
			break
		}
		if part == "" || JavaKeywords[part] {
			return fmt.Errorf("%s: invalid package name %q", path, s.Package)
		}
	}
	return nil
}

func (s *Settings) setDefaults() {
	if s.Out == "" {
		s.Out = "."
	}
	if s.RuntimePackage == "" {
		s.RuntimePackage = RuntimePkg
	}
	if s.Color == "" {
		s.Color = ColorAuto
	}
}
