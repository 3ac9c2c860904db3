// Package filesystem provides the on-disk cache for exported backup files.
package filesystem

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/medkit-app/medkit/internal/config"
)

// Cache is a flat directory of named files. Names must not contain path separators.
type Cache struct {
	dir string
}

// NewCache returns a cache rooted at dir, or at the configured cache directory when dir is empty.
func NewCache(dir string) *Cache {
	if dir == "" {
		dir = config.GetCacheDir()
	}
	return &Cache{dir: dir}
}

func (c *Cache) Dir() string {
	return c.dir
}

// Path returns the absolute location of name inside the cache.
func (c *Cache) Path(name string) string {
	return filepath.Join(c.dir, name)
}

// Save writes content atomically and returns the file path and its SHA-256 hash.
func (c *Cache) Save(name string, content []byte) (string, string, error) {
	if err := validName(name); err != nil {
		return "", "", err
	}
	if err := os.MkdirAll(c.dir, 0o750); err != nil {
		return "", "", err
	}

	tmp, err := os.CreateTemp(c.dir, "."+name+".*.tmp")
	if err != nil {
		return "", "", err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return "", "", err
	}
	if err := tmp.Close(); err != nil {
		return "", "", err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return "", "", err
	}

	path := c.Path(name)
	if err := os.Rename(tmpName, path); err != nil {
		return "", "", err
	}

	return path, CalculateHash(content), nil
}

// Read returns the raw bytes of name.
func (c *Cache) Read(name string) ([]byte, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	//nolint:gosec // G304: name is validated and joined under the cache directory
	return os.ReadFile(c.Path(name))
}

// Exists reports whether name is present in the cache.
func (c *Cache) Exists(name string) bool {
	_, err := os.Stat(c.Path(name))
	return err == nil
}

// Verify ensures name exists and its SHA-256 hash matches expectedHash.
func (c *Cache) Verify(name, expectedHash string) (bool, error) {
	if !c.Exists(name) {
		return false, nil
	}

	content, err := c.Read(name)
	if err != nil {
		return false, err
	}

	return CalculateHash(content) == expectedHash, nil
}

// Delete removes name if it exists.
func (c *Cache) Delete(name string) error {
	if err := validName(name); err != nil {
		return err
	}
	err := os.Remove(c.Path(name))
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// Touch sets the modification time of name to now so PurgeOlderThan keeps it.
func (c *Cache) Touch(name string) error {
	if err := validName(name); err != nil {
		return err
	}
	now := time.Now()
	return os.Chtimes(c.Path(name), now, now)
}

// WalkFunc explores each entry in the cache directory.
type WalkFunc func(path string, d fs.DirEntry) error

// Walk iterates over the regular files in the cache directory.
func (c *Cache) Walk(fn WalkFunc) error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := fn(filepath.Join(c.dir, entry.Name()), entry); err != nil {
			return err
		}
	}

	return nil
}

// PurgeOlderThan removes files last modified before cutoff and returns how many were removed.
func (c *Cache) PurgeOlderThan(cutoff time.Time) (int, error) {
	count := 0
	err := c.Walk(func(path string, d fs.DirEntry) error {
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !info.ModTime().Before(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return err
		}
		count++
		return nil
	})
	return count, err
}

// CalculateHash returns the lowercase hex SHA-256 of content.
func CalculateHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid cache file name %q", name)
	}
	return nil
}
