package object

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrNotFound is returned by Open when no object exists under the key.
	ErrNotFound = errors.New("object not found")
	// ErrInvalidKey rejects empty keys and traversal segments.
	ErrInvalidKey = errors.New("invalid storage key")
)

// ObjectStore defines the contract for saving and retrieving rendered reports.
type ObjectStore interface {
	SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}

// CleanKey normalizes a slash separated key. Empty segments collapse,
// backslashes become underscores, and "." or ".." segments are rejected
// rather than resolved.
func CleanKey(key string) (string, error) {
	parts := make([]string, 0, 4)
	for _, seg := range strings.Split(strings.TrimSpace(key), "/") {
		seg = strings.TrimSpace(seg)
		switch {
		case seg == "":
			continue
		case seg == ".", strings.Contains(seg, ".."):
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
		parts = append(parts, strings.ReplaceAll(seg, `\`, "_"))
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	return strings.Join(parts, "/"), nil
}

// ContentTypeFor guesses a report content type from the key extension.
func ContentTypeFor(key string) string {
	switch {
	case strings.HasSuffix(key, ".html"):
		return "text/html; charset=utf-8"
	case strings.HasSuffix(key, ".json"):
		return "application/json"
	case strings.HasSuffix(key, ".yaml"), strings.HasSuffix(key, ".yml"):
		return "application/yaml"
	default:
		return "application/octet-stream"
	}
}
