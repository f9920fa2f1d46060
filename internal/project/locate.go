package project

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"flintcfg/internal/manifest"
)

// Location is the result of an upward manifest search: every manifest
// candidate found in a single directory, in listing order, plus the path of
// the original file relative to that directory. Rel is fixed by the
// directory where manifests were first found; the search never continues
// past it.
type Location struct {
	Dir       string
	Manifests []string
	Rel       string
}

// FindManifests walks up from startDir looking for project manifests,
// accumulating the relative path as it climbs. rel is the already-known
// trailing segment (typically the source file's basename). The boolean is
// false when the filesystem root is reached without a hit. One directory
// listing per ancestor; listing failures are fatal.
func FindManifests(startDir, rel string) (Location, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return Location{}, false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return Location{}, false, fmt.Errorf("failed to list %q: %w", dir, err)
		}
		var found []string
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if manifest.IsManifestName(entry.Name()) {
				found = append(found, filepath.Join(dir, entry.Name()))
			}
		}
		if len(found) > 0 {
			return Location{Dir: dir, Manifests: found, Rel: rel}, true, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		rel = path.Join(filepath.Base(dir), rel)
		dir = parent
	}
	return Location{}, false, nil
}

// Locate canonicalizes a source file path and runs the manifest search from
// its containing directory.
func Locate(file string) (Location, bool, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return Location{}, false, fmt.Errorf("failed to resolve %q: %w", file, err)
	}
	abs = filepath.Clean(abs)
	return FindManifests(filepath.Dir(abs), filepath.Base(abs))
}
