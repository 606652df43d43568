package driver

import (
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"strait/internal/emit"
	"strait/internal/ir"
	"strait/internal/project"
)

// cacheSchemaVersion keys every payload; bump it when cachePayload or the
// emitted text format changes and stale entries simply stop matching.
const cacheSchemaVersion uint16 = 1

// DiskCache stores rendered module text keyed by aggregate content hashes.
// A nil *DiskCache is valid and caches nothing. Thread-safe.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// cachePayload is one module's cached render. The support contributions
// travel with the text so a cache hit can replay them without re-rendering.
type cachePayload struct {
	Schema       uint16
	RelPath      string
	OutPath      string
	Text         string
	UnionArities []int
	NeedsTypeOf  bool
}

// OpenDiskCache opens the cache at its standard location, honoring
// XDG_CACHE_HOME.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt opens (creating if needed) a cache rooted at dir.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key project.Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "mods", hexKey+".mp")
}

// put serializes a payload, writing through a temp file and renaming for
// atomicity.
func (c *DiskCache) put(key project.Digest, payload *cachePayload) error {
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
	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(payload); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return err
	}
	return os.Rename(f.Name(), p)
}

// get reads a payload. A missing entry is a miss, not an error.
func (c *DiskCache) get(key project.Digest, out *cachePayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer func() { _ = f.Close() }()
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(out); err != nil {
		return false, err
	}
	return true, nil
}

// DropAll wipes the cache, useful after format changes.
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

// lookupCache tries a module's key against the cache. Decode failures and
// schema mismatches degrade to a miss; the entry is rewritten on the next
// clean render.
func lookupCache(c *DiskCache, key project.Digest, mod *ir.Module) (emit.RenderedModule, bool) {
	if c == nil {
		return emit.RenderedModule{}, false
	}
	var payload cachePayload
	ok, err := c.get(key, &payload)
	if err != nil || !ok {
		return emit.RenderedModule{}, false
	}
	if payload.Schema != cacheSchemaVersion || payload.RelPath != mod.RelPath {
		return emit.RenderedModule{}, false
	}
	return emit.RenderedModule{
		Path:         payload.OutPath,
		Text:         payload.Text,
		UnionArities: payload.UnionArities,
		NeedsTypeOf:  payload.NeedsTypeOf,
	}, true
}

// storeCache records a clean render. Write failures are swallowed; the
// cache is an accelerator, never a correctness dependency.
func storeCache(c *DiskCache, key project.Digest, r emit.RenderedModule) {
	if c == nil {
		return
	}
	_ = c.put(key, &cachePayload{
		Schema:       cacheSchemaVersion,
		RelPath:      strings.TrimSuffix(r.Path, ".cs"),
		OutPath:      r.Path,
		Text:         r.Text,
		UnionArities: r.UnionArities,
		NeedsTypeOf:  r.NeedsTypeOf,
	})
}
