package project

import (
	"path/filepath"
	"reflect"
	"testing"
)

const widgetsManifest = `[package]
name = "widgets"

[lib]
src = ["src"]
dialect = "flint-2025"
features = ["string-interpolation"]
exposed = ["widgets", "widgets/render"]

[[bin]]
name = "widgetc"
src = ["app"]
main = "main.fl"

[[test]]
name = "render"
harness = "module"
src = ["src", "test"]
modules = ["widgets/render"]
`

func TestResolveStanzaLibrary(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "flint.toml"), widgetsManifest)
	file := filepath.Join(root, "src", "widgets", "render.fl")
	writeFile(t, file, "")

	st, ok, err := ResolveStanza(file)
	if err != nil {
		t.Fatalf("ResolveStanza returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected a stanza")
	}
	// the file also matches the render test; the library stanza comes first
	if st.Kind != TargetLib {
		t.Fatalf("stanza kind = %s, want lib", st.Kind)
	}
	if st.Info.Dialect != "flint-2025" {
		t.Fatalf("stanza dialect = %q, want flint-2025", st.Info.Dialect)
	}
	if st.ManifestPath != filepath.Join(root, "flint.toml") {
		t.Fatalf("stanza manifest = %q", st.ManifestPath)
	}
}

func TestResolveStanzaWrongRoot(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "flint.toml"), widgetsManifest)
	file := filepath.Join(root, "src2", "widgets", "render.fl")
	writeFile(t, file, "")

	_, ok, err := ResolveStanza(file)
	if err != nil {
		t.Fatalf("ResolveStanza returned error: %v", err)
	}
	if ok {
		t.Fatalf("src2 is not a declared source root; expected no stanza")
	}
}

func TestResolveStanzaNoManifest(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "src", "widgets", "render.fl")
	writeFile(t, file, "")

	_, ok, err := ResolveStanza(file)
	if err != nil {
		t.Fatalf("ResolveStanza returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected no stanza without a manifest")
	}
}

func TestResolveStanzaSkipsUnparseableCandidate(t *testing.T) {
	root := t.TempDir()
	// listing order is lexicographic: the broken candidate comes first
	writeFile(t, filepath.Join(root, "broken.flint.toml"), "not toml [[[")
	writeFile(t, filepath.Join(root, "flint.toml"), widgetsManifest)
	file := filepath.Join(root, "src", "widgets", "render.fl")
	writeFile(t, file, "")

	st, ok, err := ResolveStanza(file)
	if err != nil {
		t.Fatalf("ResolveStanza returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected the parse failure to be skipped, not fatal")
	}
	if st.ManifestPath != filepath.Join(root, "flint.toml") {
		t.Fatalf("stanza came from %q, want the parseable candidate", st.ManifestPath)
	}
}

func TestResolveStanzaAllCandidatesUnparseable(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "flint.toml"), "still not toml = = =")
	file := filepath.Join(root, "src", "a.fl")
	writeFile(t, file, "")

	_, ok, err := ResolveStanza(file)
	if err != nil {
		t.Fatalf("ResolveStanza returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected no stanza when every candidate fails to parse")
	}
}

func TestResolveStanzaManifestListingOrder(t *testing.T) {
	root := t.TempDir()
	// both manifests claim the same file; listing order decides
	writeFile(t, filepath.Join(root, "a.flint.toml"), `[package]
name = "first"

[lib]
src = ["src"]
exposed = ["shared"]
`)
	writeFile(t, filepath.Join(root, "b.flint.toml"), `[package]
name = "second"

[lib]
src = ["src"]
exposed = ["shared"]
`)
	file := filepath.Join(root, "src", "shared.fl")
	writeFile(t, file, "")

	st, ok, err := ResolveStanza(file)
	if err != nil {
		t.Fatalf("ResolveStanza returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected a stanza")
	}
	if st.Target != "first" {
		t.Fatalf("stanza target = %q, want the first candidate's", st.Target)
	}
}

func TestResolveStanzaIdempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "flint.toml"), widgetsManifest)
	file := filepath.Join(root, "app", "main.fl")
	writeFile(t, file, "")

	first, ok1, err1 := ResolveStanza(file)
	second, ok2, err2 := ResolveStanza(file)
	if err1 != nil || err2 != nil {
		t.Fatalf("ResolveStanza errors: %v, %v", err1, err2)
	}
	if ok1 != ok2 || !reflect.DeepEqual(first, second) {
		t.Fatalf("resolution is not idempotent: %#v vs %#v", first, second)
	}
}
