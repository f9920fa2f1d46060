package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"flintcfg/internal/dialect"
	"flintcfg/internal/project"
)

// Current schema version - increment when resolvePayload format changes
const diskCacheSchemaVersion uint16 = 1

// Digest is a SHA-256 content hash.
type Digest [sha256.Size]byte

// DiskCache stores resolved configurations on disk, keyed by the canonical
// source path and validated against the manifest set's content digest.
// Resolution itself stays pure; the cache only skips re-parsing manifests
// whose bytes have not changed. Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// resolvePayload is the serialized form of a ResolveResult. Flags are the
// enabled set only, so no polarity is stored; FlagNames carries the literal
// spelling for opaque flags and is empty for known features.
type resolvePayload struct {
	Schema uint16

	Found    bool
	Manifest string
	Target   string
	Kind     string

	Dialect      uint8
	FlagFeatures []uint8
	FlagNames    []string

	// Digest of the candidate manifests plus the relative path, for
	// invalidation when any manifest changes on disk.
	ManifestDigest Digest
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "resolve", hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key Digest, payload *resolvePayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(f.Name())
	}()

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(payload); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// atomic replace
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload from the disk cache.
func (c *DiskCache) Get(key Digest, out *resolvePayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := c.pathFor(key)
	f, err := os.Open(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() {
		_ = f.Close()
	}()
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(out); err != nil {
		return false, err
	}
	return true, nil
}

// DropAll invalidates the cache, useful after schema changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}

// cacheKey derives the cache key from the canonical source path and the
// validation digest from the located manifests' bytes plus the relative
// path the matcher will see. Manifest read failures are fatal here: the
// resolver would hit the same error.
func cacheKey(file string, loc project.Location) (Digest, Digest, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return Digest{}, Digest{}, fmt.Errorf("failed to resolve %q: %w", file, err)
	}
	key := Digest(sha256.Sum256([]byte(filepath.Clean(abs))))

	h := sha256.New()
	h.Write([]byte(loc.Rel))
	for _, m := range loc.Manifests {
		data, err := os.ReadFile(m)
		if err != nil {
			return Digest{}, Digest{}, err
		}
		h.Write([]byte(m))
		h.Write(data)
	}
	var digest Digest
	h.Sum(digest[:0])
	return key, digest, nil
}

func cacheGet(c *DiskCache, key, digest Digest) (*resolvePayload, bool) {
	if c == nil {
		return nil, false
	}
	var payload resolvePayload
	ok, err := c.Get(key, &payload)
	if err != nil || !ok {
		return nil, false
	}
	if payload.Schema != diskCacheSchemaVersion || payload.ManifestDigest != digest {
		return nil, false
	}
	return &payload, true
}

func cachePut(c *DiskCache, key Digest, payload *resolvePayload) {
	if c == nil || payload == nil {
		return
	}
	// best effort: a failed write only costs the next run a re-parse
	_ = c.Put(key, payload)
}

func resultToPayload(res ResolveResult, digest Digest) *resolvePayload {
	payload := &resolvePayload{
		Schema:         diskCacheSchemaVersion,
		Found:          res.Found,
		Manifest:       res.Manifest,
		Target:         res.Target,
		Kind:           res.Kind,
		Dialect:        uint8(res.Config.Dialect),
		ManifestDigest: digest,
	}
	payload.FlagFeatures = make([]uint8, len(res.Config.Flags))
	payload.FlagNames = make([]string, len(res.Config.Flags))
	for i, fl := range res.Config.Flags {
		payload.FlagFeatures[i] = uint8(fl.Feature)
		payload.FlagNames[i] = fl.Name
	}
	return payload
}

func payloadToResult(file string, payload *resolvePayload) ResolveResult {
	res := ResolveResult{
		Path:     file,
		Found:    payload.Found,
		Manifest: payload.Manifest,
		Target:   payload.Target,
		Kind:     payload.Kind,
	}
	res.Config.Dialect = dialect.Dialect(payload.Dialect)
	if len(payload.FlagFeatures) > 0 {
		res.Config.Flags = make([]dialect.Flag, len(payload.FlagFeatures))
		for i, feat := range payload.FlagFeatures {
			res.Config.Flags[i] = dialect.Flag{
				Feature: dialect.Feature(feat),
				Name:    payload.FlagNames[i],
				Enabled: true,
			}
		}
	}
	return res
}
