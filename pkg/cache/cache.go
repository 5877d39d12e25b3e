// Package cache stores fetched block-type templates.
//
// Templates are fetched from disk or from a remote template server every
// time a block is placed or imported. A [Cache] sits in front of those
// fetches so that repeated placements of the same type do not hit the
// network. Three backends are provided:
//
//   - [FileCache]: one JSON file per entry under the user cache directory
//   - [RedisCache]: shared cache for several editor servers
//   - [NullCache]: caching disabled
//
// Keys are produced by a [Keyer] so that templates from different sources
// never collide.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is a byte-oriented key/value store with optional expiry.
type Cache interface {
	// Get returns the cached value for key. The bool reports a hit; a miss
	// is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A ttl of 0 means no expiry.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// TemplateKey returns the key of the template for blockType fetched
	// from source (a directory, URL or "embedded").
	TemplateKey(source, blockType string) string
}

// DefaultKeyer hashes the source so arbitrary URLs and paths produce
// fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// TemplateKey implements [Keyer].
func (DefaultKeyer) TemplateKey(source, blockType string) string {
	return hashKey("template", source, blockType)
}

// hashKey returns prefix followed by the hex SHA-256 of the parts. Parts
// are NUL-separated so ("ab", "c") and ("a", "bc") differ.
func hashKey(prefix string, parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	return prefix + ":" + hex.EncodeToString(h.Sum(nil))
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// ScopedKeyer prefixes every key of an inner [Keyer]. Editor deployments
// that share one redis instance use distinct prefixes.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or the [DefaultKeyer] when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) ScopedKeyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return ScopedKeyer{inner: inner, prefix: prefix}
}

func (k ScopedKeyer) TemplateKey(source, blockType string) string {
	return k.prefix + k.inner.TemplateKey(source, blockType)
}
