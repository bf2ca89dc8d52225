// Package cache keeps emitted LLVM IR keyed by a hash of the source and the
// options it was lowered with.
package cache

import (
	"crypto/md5"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

type Cache struct {
	Dir string
}

// DefaultDir is the per-user cache directory.
func DefaultDir() (string, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return "", errors.Wrap(err, "locating user cache dir")
	}
	return filepath.Join(base, "flatb"), nil
}

// Open creates dir if needed. An empty dir selects DefaultDir.
func Open(dir string) (*Cache, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "creating cache dir")
	}
	return &Cache{Dir: dir}, nil
}

// Key hashes the source together with every option that changes the
// emitted IR.
func Key(source []byte, opts ...string) string {
	h := md5.New()
	h.Write(source)
	for _, o := range opts {
		io.WriteString(h, "\x00")
		io.WriteString(h, o)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.Dir, key+".ll")
}

// Lookup returns the path of the cached IR for key.
func (c *Cache) Lookup(key string) (string, bool) {
	p := c.path(key)
	info, err := os.Stat(p)
	if err != nil || info.Size() == 0 {
		return "", false
	}
	return p, true
}

// Store writes ir under key. The file is renamed into place so concurrent
// builds never observe a partial file.
func (c *Cache) Store(key string, ir []byte) (string, error) {
	tmp, err := os.CreateTemp(c.Dir, key+".*.tmp")
	if err != nil {
		return "", errors.Wrap(err, "caching IR")
	}
	if _, err := tmp.Write(ir); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", errors.Wrap(err, "caching IR")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", errors.Wrap(err, "caching IR")
	}
	p := c.path(key)
	if err := os.Rename(tmp.Name(), p); err != nil {
		os.Remove(tmp.Name())
		return "", errors.Wrap(err, "caching IR")
	}
	return p, nil
}

// Clean removes every cached file and reports how many were deleted.
func (c *Cache) Clean() (int, error) {
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		return 0, errors.Wrap(err, "reading cache dir")
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".ll") {
			continue
		}
		if err := os.Remove(filepath.Join(c.Dir, e.Name())); err != nil {
			return n, errors.Wrap(err, "cleaning cache")
		}
		n++
	}
	return n, nil
}
