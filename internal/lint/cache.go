package lint

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"valed/internal/vale"
)

// Increment when the payload format changes.
const cacheSchemaVersion uint16 = 1

// Cache persists parsed per-root lint results so a repeated CLI run over an
// unchanged tree reuses findings instead of re-invoking vale. Entries are
// keyed by a digest over the root's file list and contents; any edit
// invalidates the root. The editor-driven batch path never reads the cache,
// its runs must stay authoritative.
type Cache struct {
	mu  sync.Mutex
	dir string
}

type cachePayload struct {
	Schema uint16
	Digest string
	Result map[string][]vale.Finding
}

// OpenCache initializes a cache under the standard user cache location.
func OpenCache(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app, "lint")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// OpenCacheDir initializes a cache rooted at an explicit directory.
func OpenCacheDir(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// Lookup returns the cached result for root when its digest still matches.
func (c *Cache) Lookup(root, digest string) (vale.Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.entryPath(root))
	if err != nil {
		return nil, false
	}
	var payload cachePayload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return nil, false
	}
	if payload.Schema != cacheSchemaVersion || payload.Digest != digest {
		return nil, false
	}
	return vale.Result(payload.Result), true
}

// Save stores the result for root under digest. Best effort: the caller
// treats failures as log-worthy, not fatal.
func (c *Cache) Save(root, digest string, res vale.Result) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := msgpack.Marshal(cachePayload{
		Schema: cacheSchemaVersion,
		Digest: digest,
		Result: res,
	})
	if err != nil {
		return err
	}
	tmp := c.entryPath(root) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, c.entryPath(root))
}

func (c *Cache) entryPath(root string) string {
	sum := sha256.Sum256([]byte(root))
	return filepath.Join(c.dir, hex.EncodeToString(sum[:])+".msgpack")
}

// GroupDigest hashes a group's file list and contents. Paths participate in
// the digest so renames invalidate as reliably as edits.
func GroupDigest(files []string) (string, error) {
	h := sha256.New()
	for _, file := range files {
		io.WriteString(h, file)
		h.Write([]byte{0})
		f, err := os.Open(file)
		if err != nil {
			// A file deleted mid-run still changes the digest.
			if errors.Is(err, fs.ErrNotExist) {
				io.WriteString(h, "missing")
				h.Write([]byte{0})
				continue
			}
			return "", err
		}
		if _, err := io.Copy(h, f); err != nil {
			f.Close()
			return "", err
		}
		f.Close()
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
