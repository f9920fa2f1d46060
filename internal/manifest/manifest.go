package manifest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Test harness kinds. A test suite exposes exactly one membership interface:
// module-based (like a library) or main-file based (like an executable).
const (
	HarnessModule = "module"
	HarnessMain   = "main"
)

var (
	// ErrPackageSectionMissing indicates that [package] is missing.
	ErrPackageSectionMissing = errors.New("missing [package]")
	// ErrPackageNameMissing indicates that [package].name is missing or blank.
	ErrPackageNameMissing = errors.New("missing [package].name")
)

// BuildInfo is the settings block shared by every target stanza.
type BuildInfo struct {
	Src      []string `toml:"src"`
	Dialect  string   `toml:"dialect"`
	Features []string `toml:"features"`
	Modules  []string `toml:"modules"`
}

// Library describes the [lib] target.
type Library struct {
	BuildInfo
	Exposed []string `toml:"exposed"`
}

// Executable describes a [[bin]] target.
type Executable struct {
	BuildInfo
	Name string `toml:"name"`
	Main string `toml:"main"`
}

// Benchmark describes a [[bench]] target.
type Benchmark struct {
	BuildInfo
	Name string `toml:"name"`
	Main string `toml:"main"`
}

// Test describes a [[test]] target. Harness selects the membership
// interface: "module" matches via Modules, "main" via Main.
type Test struct {
	BuildInfo
	Name    string `toml:"name"`
	Harness string `toml:"harness"`
	Main    string `toml:"main"`
}

// Package is the [package] section.
type Package struct {
	Name string `toml:"name"`
}

// Manifest is a fully decoded flint.toml. TOML has no conditional sections,
// so a decoded manifest needs no flattening before stanza extraction.
type Manifest struct {
	Package Package      `toml:"package"`
	Lib     *Library     `toml:"lib"`
	Bins    []Executable `toml:"bin"`
	Tests   []Test       `toml:"test"`
	Benches []Benchmark  `toml:"bench"`
}

// IsManifestName reports whether a directory entry name follows the project
// manifest naming convention: "flint.toml" itself or any "<name>.flint.toml".
func IsManifestName(name string) bool {
	return name == "flint.toml" || strings.HasSuffix(name, ".flint.toml")
}

// Load reads and parses a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return Parse(path, data)
}

// Parse decodes manifest text, validating the parts resolution depends on.
// Resolution treats any returned error as "this candidate does not parse"
// and skips the candidate; read errors are the caller's problem.
func Parse(path string, data []byte) (*Manifest, error) {
	var m Manifest
	meta, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("package") {
		return nil, fmt.Errorf("%s: %w", path, ErrPackageSectionMissing)
	}
	if !meta.IsDefined("package", "name") || strings.TrimSpace(m.Package.Name) == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrPackageNameMissing)
	}
	for i, bin := range m.Bins {
		if strings.TrimSpace(bin.Main) == "" {
			return nil, fmt.Errorf("%s: [[bin]] %q (#%d): missing main", path, bin.Name, i)
		}
	}
	for i, bench := range m.Benches {
		if strings.TrimSpace(bench.Main) == "" {
			return nil, fmt.Errorf("%s: [[bench]] %q (#%d): missing main", path, bench.Name, i)
		}
	}
	for i, test := range m.Tests {
		switch test.Harness {
		case HarnessModule:
			if strings.TrimSpace(test.Main) != "" {
				return nil, fmt.Errorf("%s: [[test]] %q (#%d): main is not allowed with harness = %q", path, test.Name, i, HarnessModule)
			}
		case HarnessMain:
			if strings.TrimSpace(test.Main) == "" {
				return nil, fmt.Errorf("%s: [[test]] %q (#%d): missing main for harness = %q", path, test.Name, i, HarnessMain)
			}
		default:
			return nil, fmt.Errorf("%s: [[test]] %q (#%d): invalid harness %q (expected %s|%s)", path, test.Name, i, test.Harness, HarnessModule, HarnessMain)
		}
	}
	return &m, nil
}
