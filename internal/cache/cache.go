// Package cache stores extracted page text so re-running a batch does
// not pay the OCR cost twice. Entries are keyed by a fingerprint of the
// source file, so an edited or re-scanned file never hits a stale entry.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"
)

// Cache defines the interface for page-text caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// SourceKey derives a cache key from a source file's path, size and
// modification time. Any change to the file invalidates the key.
func SourceKey(source string) (string, error) {
	info, err := os.Stat(source)
	if err != nil {
		return "", fmt.Errorf("stat %s: %w", source, err)
	}
	raw := fmt.Sprintf("%s|%d|%d", source, info.Size(), info.ModTime().UnixNano())
	sum := sha256.Sum256([]byte(raw))
	return "mailroom:v1:" + hex.EncodeToString(sum[:]), nil
}
