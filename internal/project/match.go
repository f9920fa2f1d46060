package project

import (
	"errors"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// SourceExt is the Flint source file extension.
const SourceExt = ".fl"

// Relativize returns path relative to root, purely lexically. The boolean is
// false when path does not lie under root after cleaning; that is the
// "no relation" case, not an error. Both arguments are slash paths relative
// to the same manifest directory.
func Relativize(root, path string) (string, bool) {
	root = cleanSlash(root)
	path = cleanSlash(path)
	if root == "." {
		return path, true
	}
	if path == root {
		return "", true
	}
	if strings.HasPrefix(path, root+"/") {
		return path[len(root)+1:], true
	}
	return "", false
}

// EqualPaths compares two path strings under the target filesystem's
// semantics: separators normalized to '/', unicode normalized to NFC
// (mac filesystems hand back decomposed names), case-insensitive on Windows.
func EqualPaths(a, b string) bool {
	a = norm.NFC.String(cleanSlash(a))
	b = norm.NFC.String(cleanSlash(b))
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}

// StripExt removes the final extension from a path, if any.
func StripExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// ModulePathForm canonicalizes a declared module name to its path form
// "a/b": the source extension is stripped, separators become '/', and empty,
// "." or ".." segments are rejected.
func ModulePathForm(name string) (string, error) {
	name = strings.TrimSuffix(name, SourceExt)
	for name != "" && (name[0] == '/' || name[0] == '\\') {
		name = name[1:]
	}
	segs := strings.FieldsFunc(name, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	if len(segs) == 0 {
		return "", errors.New("invalid module path")
	}
	rebuilt := strings.Join(segs, "/")
	if len(rebuilt) != len(name) {
		// FieldsFunc swallowed an empty segment, e.g. "a//b"
		return "", errors.New("invalid module path")
	}
	for _, seg := range segs {
		if seg == "." || seg == ".." {
			return "", errors.New("invalid module path")
		}
	}
	return rebuilt, nil
}

func cleanSlash(p string) string {
	return filepath.ToSlash(filepath.Clean(filepath.FromSlash(strings.TrimSpace(p))))
}
