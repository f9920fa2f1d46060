package project

import (
	"path/filepath"
	"strings"

	"flintcfg/internal/manifest"
)

// TargetKind identifies which kind of build target a stanza came from.
type TargetKind uint8

const (
	TargetLib TargetKind = iota
	TargetBin
	TargetTest
	TargetBench
)

func (k TargetKind) String() string {
	switch k {
	case TargetLib:
		return "lib"
	case TargetBin:
		return "bin"
	case TargetTest:
		return "test"
	case TargetBench:
		return "bench"
	default:
		return "unknown"
	}
}

// Stanza is one build target extracted from a manifest, reduced to plain
// data: the target's BuildInfo plus the membership fields Match consults.
// Modules holds canonical member module path-forms (exposed plus other
// modules for a library, other modules for bin/bench, declared test modules
// for a module-harness test). Main is the declared main-file path for
// bin/bench stanzas and for main-harness tests, empty otherwise.
type Stanza struct {
	Kind         TargetKind
	Target       string
	ManifestPath string
	Info         manifest.BuildInfo
	Modules      []string
	Main         string
}

// ExtractStanzas turns a decoded manifest into its ordered stanza list: at
// most one library stanza, then executables, tests and benchmarks, each
// group in declaration order.
func ExtractStanzas(m *manifest.Manifest) []Stanza {
	var stanzas []Stanza
	if m.Lib != nil {
		stanzas = append(stanzas, Stanza{
			Kind:    TargetLib,
			Target:  m.Package.Name,
			Info:    m.Lib.BuildInfo,
			Modules: modulePathForms(m.Lib.Exposed, m.Lib.Modules),
		})
	}
	for _, bin := range m.Bins {
		stanzas = append(stanzas, Stanza{
			Kind:    TargetBin,
			Target:  bin.Name,
			Info:    bin.BuildInfo,
			Modules: modulePathForms(bin.Modules),
			Main:    cleanMemberPath(bin.Main),
		})
	}
	for _, test := range m.Tests {
		st := Stanza{
			Kind:   TargetTest,
			Target: test.Name,
			Info:   test.BuildInfo,
		}
		// a test exposes exactly one membership interface
		if test.Harness == manifest.HarnessMain {
			st.Main = cleanMemberPath(test.Main)
		} else {
			st.Modules = modulePathForms(test.Modules)
		}
		stanzas = append(stanzas, st)
	}
	for _, bench := range m.Benches {
		stanzas = append(stanzas, Stanza{
			Kind:    TargetBench,
			Target:  bench.Name,
			Info:    bench.BuildInfo,
			Modules: modulePathForms(bench.Modules),
			Main:    cleanMemberPath(bench.Main),
		})
	}
	return stanzas
}

// Match reports whether rel, a slash path relative to the stanza's manifest
// directory, belongs to the stanza. Source roots are tried independently and
// the first hit wins; matching is purely lexical.
func Match(st Stanza, rel string) bool {
	roots := st.Info.Src
	if len(roots) == 0 {
		roots = []string{"."}
	}
	for _, root := range roots {
		under, ok := Relativize(root, rel)
		if !ok || under == "" {
			continue
		}
		if st.Main != "" && EqualPaths(under, st.Main) {
			return true
		}
		stripped := StripExt(under)
		for _, mod := range st.Modules {
			if EqualPaths(stripped, mod) {
				return true
			}
		}
	}
	return false
}

func modulePathForms(lists ...[]string) []string {
	var forms []string
	for _, names := range lists {
		for _, name := range names {
			form, err := ModulePathForm(name)
			if err != nil {
				continue
			}
			forms = append(forms, form)
		}
	}
	return forms
}

func cleanMemberPath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	return filepath.ToSlash(filepath.Clean(filepath.FromSlash(p)))
}
