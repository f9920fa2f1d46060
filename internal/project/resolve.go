package project

import (
	"os"

	"flintcfg/internal/manifest"
)

// ResolveLocation tries every candidate manifest in listing order and
// returns the first stanza that claims the located file. A candidate that
// fails to parse is skipped, never surfaced; a candidate that cannot be
// read is an I/O failure and propagates. Matching runs against the relative
// path fixed by the search, so nothing here re-walks the filesystem.
func ResolveLocation(loc Location) (Stanza, bool, error) {
	for _, path := range loc.Manifests {
		data, err := os.ReadFile(path)
		if err != nil {
			return Stanza{}, false, err
		}
		m, err := manifest.Parse(path, data)
		if err != nil {
			continue
		}
		for _, st := range ExtractStanzas(m) {
			if Match(st, loc.Rel) {
				st.ManifestPath = path
				return st, true, nil
			}
		}
	}
	return Stanza{}, false, nil
}

// ResolveStanza finds the build target that owns the given source file. The
// boolean is false both when no enclosing directory carries a manifest and
// when no stanza of any candidate manifest matches; callers fall back to
// default parse settings in either case. Filesystem errors other than "not
// found" propagate.
func ResolveStanza(file string) (Stanza, bool, error) {
	loc, ok, err := Locate(file)
	if err != nil || !ok {
		return Stanza{}, false, err
	}
	return ResolveLocation(loc)
}
