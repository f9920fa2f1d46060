package driver

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"fortio.org/safecast"
	"golang.org/x/sync/errgroup"

	"flintcfg/internal/dialect"
	"flintcfg/internal/observ"
	"flintcfg/internal/project"
)

// ResolveOptions configures a batch resolution.
type ResolveOptions struct {
	// Jobs caps the number of files resolved concurrently; 0 means NumCPU.
	Jobs uint
	// NoCache bypasses the on-disk result cache.
	NoCache bool
	// Progress receives per-file events when non-nil.
	Progress Sink
	// Timer records phase timings when non-nil.
	Timer *observ.Timer
}

// ResolveResult captures the resolution outcome for a single file. Found is
// false when no enclosing manifest claims the file; Config then carries the
// conservative default (default dialect, no flags).
type ResolveResult struct {
	Path     string
	Found    bool
	Manifest string
	Target   string
	Kind     string
	Config   dialect.Config
	Err      error
}

// ResolvePaths resolves the parse configuration for the given files or
// directories (recursively collecting .fl files). Per-file failures are
// recorded in the result, not returned; only argument-level failures and
// context cancellation abort the batch. Results come back in file order.
func ResolvePaths(ctx context.Context, paths []string, opts ResolveOptions) ([]ResolveResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var collectPhase int
	if opts.Timer != nil {
		collectPhase = opts.Timer.Begin("collect")
	}
	files, err := CollectSourceFiles(ctx, paths)
	if opts.Timer != nil {
		opts.Timer.End(collectPhase, "")
	}
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("resolve: no source files found")
	}

	var cache *DiskCache
	if !opts.NoCache {
		// a broken cache dir degrades to uncached resolution
		if c, cacheErr := OpenDiskCache("flintcfg"); cacheErr == nil {
			cache = c
		}
	}

	workers, convErr := safecast.Conv[int](opts.Jobs)
	if convErr != nil || workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(files) {
		workers = len(files)
	}

	emit := func(file string, status Status) {
		if opts.Progress != nil {
			opts.Progress.OnEvent(Event{File: file, Status: status})
		}
	}

	var resolvePhase int
	if opts.Timer != nil {
		resolvePhase = opts.Timer.Begin("resolve")
	}

	for _, file := range files {
		emit(file, StatusQueued)
	}

	results := make([]ResolveResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			emit(file, StatusResolving)
			results[i] = resolveOne(file, cache)
			if results[i].Err != nil {
				emit(file, StatusError)
			} else {
				emit(file, StatusDone)
			}
			return nil
		})
	}
	waitErr := g.Wait()
	if opts.Timer != nil {
		opts.Timer.End(resolvePhase, "")
	}
	if waitErr != nil {
		return results, waitErr
	}
	return results, nil
}

// resolveOne answers "what dialect/flags apply to this file" for a single
// source file: locate the enclosing manifests, consult the cache, then match
// stanzas and translate the winning BuildInfo.
func resolveOne(file string, cache *DiskCache) ResolveResult {
	res := ResolveResult{Path: file}

	loc, ok, err := project.Locate(file)
	if err != nil {
		res.Err = err
		return res
	}
	if !ok {
		res.Config = dialect.DefaultConfig()
		return res
	}

	key, digest, err := cacheKey(file, loc)
	if err != nil {
		res.Err = err
		return res
	}
	if payload, hit := cacheGet(cache, key, digest); hit {
		return payloadToResult(file, payload)
	}

	st, matched, err := project.ResolveLocation(loc)
	if err != nil {
		res.Err = err
		return res
	}
	if !matched {
		res.Config = dialect.DefaultConfig()
		cachePut(cache, key, resultToPayload(res, digest))
		return res
	}

	cfg, err := dialect.ConfigFor(st.Info)
	if err != nil {
		// unknown dialect: surfaced, never silently defaulted
		res.Err = err
		return res
	}
	res.Found = true
	res.Manifest = st.ManifestPath
	res.Target = st.Target
	res.Kind = st.Kind.String()
	res.Config = cfg
	cachePut(cache, key, resultToPayload(res, digest))
	return res
}

// CollectSourceFiles expands files and directories (recursively) into the
// sorted, deduplicated list of .fl files a batch will resolve.
func CollectSourceFiles(ctx context.Context, paths []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	addFile := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if info.IsDir() {
			err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				if d.IsDir() {
					return nil
				}
				if filepath.Ext(path) == project.SourceExt {
					addFile(path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
			continue
		}

		if filepath.Ext(p) == project.SourceExt {
			addFile(p)
		}
	}

	sort.Strings(files)
	return files, nil
}
