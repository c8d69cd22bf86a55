// Package blob stores item photos and returns the URLs they are served at.
package blob

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a key has no stored object.
var ErrNotFound = errors.New("blob not found")

// Storage is where processed photos go.
type Storage interface {
	// Put stores data under key and returns its public URL.
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// Delete removes the object under key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}

// NewKey returns a fresh object key for a photo uploaded at t.
func NewKey(t time.Time) string {
	t = t.UTC()
	return fmt.Sprintf("items/%04d/%02d/%s.jpg", t.Year(), int(t.Month()), uuid.New())
}

// KeyFromURL recovers the key from a URL returned by a Storage whose
// URLs are prefix+key.
func KeyFromURL(prefix, url string) (string, bool) {
	prefix = strings.TrimSuffix(prefix, "/") + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

// ValidKey reports whether key looks like a key made by NewKey. Keys come
// from request paths, so anything else is rejected.
func ValidKey(key string) bool {
	if key == "" || strings.Contains(key, "..") || strings.HasPrefix(key, "/") {
		return false
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '/', r == '-', r == '.', r == '_':
		default:
			return false
		}
	}
	return true
}

func joinURL(prefix, key string) string {
	return strings.TrimSuffix(prefix, "/") + "/" + key
}
