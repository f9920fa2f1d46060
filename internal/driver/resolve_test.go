package driver

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"flintcfg/internal/dialect"
)

const projectManifest = `[package]
name = "widgets"

[lib]
src = ["src"]
dialect = "flint-2025"
features = ["string-interpolation", "no-pipe-operators"]
exposed = ["widgets/render"]

[[bin]]
name = "widgetc"
src = ["app"]
main = "main.fl"
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func setupProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "flint.toml"), projectManifest)
	writeFile(t, filepath.Join(root, "src", "widgets", "render.fl"), "")
	writeFile(t, filepath.Join(root, "app", "main.fl"), "")
	writeFile(t, filepath.Join(root, "scratch", "loose.fl"), "")
	return root
}

func TestCollectSourceFiles(t *testing.T) {
	root := setupProject(t)
	writeFile(t, filepath.Join(root, "README.md"), "")

	files, err := CollectSourceFiles(context.Background(), []string{root, filepath.Join(root, "app", "main.fl")})
	if err != nil {
		t.Fatalf("CollectSourceFiles returned error: %v", err)
	}
	want := []string{
		filepath.Join(root, "app", "main.fl"),
		filepath.Join(root, "scratch", "loose.fl"),
		filepath.Join(root, "src", "widgets", "render.fl"),
	}
	if !reflect.DeepEqual(files, want) {
		t.Fatalf("files = %v, want %v", files, want)
	}
}

func TestResolvePaths(t *testing.T) {
	root := setupProject(t)

	results, err := ResolvePaths(context.Background(), []string{root}, ResolveOptions{NoCache: true})
	if err != nil {
		t.Fatalf("ResolvePaths returned error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	byPath := make(map[string]ResolveResult, len(results))
	for _, res := range results {
		if res.Err != nil {
			t.Fatalf("%s: unexpected error: %v", res.Path, res.Err)
		}
		byPath[res.Path] = res
	}

	lib := byPath[filepath.Join(root, "src", "widgets", "render.fl")]
	if !lib.Found || lib.Kind != "lib" || lib.Target != "widgets" {
		t.Fatalf("lib result = %+v", lib)
	}
	if lib.Config.Dialect != dialect.Flint2025 {
		t.Fatalf("lib dialect = %s", lib.Config.Dialect)
	}
	// 2025 defaults minus pipes, plus string-interp
	wantTokens := []string{"pattern-guards", "named-args", "trailing-commas", "string-interp"}
	if !reflect.DeepEqual(lib.Config.Tokens(), wantTokens) {
		t.Fatalf("lib tokens = %v, want %v", lib.Config.Tokens(), wantTokens)
	}

	bin := byPath[filepath.Join(root, "app", "main.fl")]
	if !bin.Found || bin.Kind != "bin" || bin.Target != "widgetc" {
		t.Fatalf("bin result = %+v", bin)
	}

	loose := byPath[filepath.Join(root, "scratch", "loose.fl")]
	if loose.Found {
		t.Fatalf("loose file should not match any stanza: %+v", loose)
	}
	if loose.Config.Dialect != dialect.DefaultDialect || len(loose.Config.Flags) != 0 {
		t.Fatalf("loose config = %+v, want conservative defaults", loose.Config)
	}
}

func TestResolvePathsUnknownDialect(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "flint.toml"), `[package]
name = "p"

[lib]
src = ["src"]
dialect = "haskell98"
exposed = ["a"]
`)
	file := filepath.Join(root, "src", "a.fl")
	writeFile(t, file, "")

	results, err := ResolvePaths(context.Background(), []string{file}, ResolveOptions{NoCache: true})
	if err != nil {
		t.Fatalf("ResolvePaths returned error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if !errors.Is(results[0].Err, dialect.ErrUnknownDialect) {
		t.Fatalf("result error = %v, want ErrUnknownDialect", results[0].Err)
	}
}

func TestResolvePathsNoSources(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "README.md"), "")

	if _, err := ResolvePaths(context.Background(), []string{root}, ResolveOptions{NoCache: true}); err == nil {
		t.Fatalf("expected an error when no source files are found")
	}
}

type memorySink struct {
	mu     sync.Mutex
	events []Event
}

func (s *memorySink) OnEvent(evt Event) {
	s.mu.Lock()
	s.events = append(s.events, evt)
	s.mu.Unlock()
}

func TestResolvePathsProgressEvents(t *testing.T) {
	root := setupProject(t)
	sink := &memorySink{}

	_, err := ResolvePaths(context.Background(), []string{root}, ResolveOptions{NoCache: true, Progress: sink})
	if err != nil {
		t.Fatalf("ResolvePaths returned error: %v", err)
	}

	counts := make(map[Status]int)
	for _, evt := range sink.events {
		counts[evt.Status]++
	}
	if counts[StatusQueued] != 3 || counts[StatusResolving] != 3 || counts[StatusDone] != 3 {
		t.Fatalf("event counts = %v, want 3 of queued/resolving/done", counts)
	}
	if counts[StatusError] != 0 {
		t.Fatalf("unexpected error events: %v", sink.events)
	}
}

func TestResolvePathsCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	root := setupProject(t)
	file := filepath.Join(root, "src", "widgets", "render.fl")

	first, err := ResolvePaths(context.Background(), []string{file}, ResolveOptions{})
	if err != nil {
		t.Fatalf("first ResolvePaths returned error: %v", err)
	}
	second, err := ResolvePaths(context.Background(), []string{file}, ResolveOptions{})
	if err != nil {
		t.Fatalf("second ResolvePaths returned error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("cached result differs:\nfirst:  %+v\nsecond: %+v", first, second)
	}

	// editing the manifest must invalidate the cached entry
	writeFile(t, filepath.Join(root, "flint.toml"), `[package]
name = "widgets"

[lib]
src = ["src"]
dialect = "flint-2021"
exposed = ["widgets/render"]
`)
	third, err := ResolvePaths(context.Background(), []string{file}, ResolveOptions{})
	if err != nil {
		t.Fatalf("third ResolvePaths returned error: %v", err)
	}
	if third[0].Config.Dialect != dialect.Flint2021 {
		t.Fatalf("dialect after manifest edit = %s, want flint-2021", third[0].Config.Dialect)
	}
}

func TestDiskCacheRoundTrip(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	cache, err := OpenDiskCache("flintcfg-test")
	if err != nil {
		t.Fatalf("OpenDiskCache returned error: %v", err)
	}

	key := Digest{1, 2, 3}
	payload := &resolvePayload{
		Schema:       diskCacheSchemaVersion,
		Found:        true,
		Manifest:     "/p/flint.toml",
		Target:       "widgets",
		Kind:         "lib",
		Dialect:      uint8(dialect.Flint2025),
		FlagFeatures: []uint8{uint8(dialect.Pipes), uint8(dialect.FeatureUnknown)},
		FlagNames:    []string{"", "zap"},
	}
	if err := cache.Put(key, payload); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	var got resolvePayload
	ok, err := cache.Get(key, &got)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if !ok {
		t.Fatalf("expected a cache hit")
	}
	if !reflect.DeepEqual(&got, payload) {
		t.Fatalf("payload round trip mismatch: %+v vs %+v", got, payload)
	}

	res := payloadToResult("a.fl", &got)
	if !reflect.DeepEqual(res.Config.Tokens(), []string{"pipes", "zap"}) {
		t.Fatalf("tokens from payload = %v", res.Config.Tokens())
	}

	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll returned error: %v", err)
	}
	ok, err = cache.Get(key, &got)
	if err != nil {
		t.Fatalf("Get after DropAll returned error: %v", err)
	}
	if ok {
		t.Fatalf("expected a miss after DropAll")
	}
}
