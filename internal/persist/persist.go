// Package persist loads plan files from, and saves them to, where they live:
// a file on local disk or a file in a GitHub repository.
package persist

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var (
	// ErrNotFound is returned by Load when the plan file does not exist.
	ErrNotFound = errors.New("plan file not found")

	// ErrConflict is returned by Save when the stored plan changed since it
	// was last loaded. Nothing is written.
	ErrConflict = errors.New("save conflict: plan changed remotely")
)

// Content is a loaded plan file.
type Content struct {
	Text string

	// Revision identifies the stored version: the blob sha on GitHub, a
	// content hash on disk.
	Revision string
}

// Source loads the current plan text.
type Source interface {
	Load(ctx context.Context) (Content, error)
}

// Sink writes a full plan text.
type Sink interface {
	Save(ctx context.Context, text string) error
}

// Store is a Source and Sink for the same location.
type Store interface {
	Source
	Sink

	// Name describes the location for logs and metrics labels.
	Name() string
}

// Revision returns the content hash used as the revision of local files.
func Revision(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:8])
}
