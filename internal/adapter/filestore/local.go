// Package filestore persists raw upload bytes on local disk.
//
// It implements the durable store writer contract: collision-resistant
// names, idempotent namespace creation, and whole-file writes via a
// temp-then-rename strategy so a failed write never leaves a
// locator-reachable artifact.
package filestore

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/greenboard/eco-intake/pkg/namex"
)

// Local stores files under a single root directory. The returned locator is
// the path relative to Dir, usable by a static file server mounted on it.
type Local struct {
	Dir string

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewLocal constructs a Local store rooted at dir.
func NewLocal(dir string) *Local {
	return &Local{
		Dir:     dir,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0), //nolint:gosec // Name entropy, not security sensitive.
	}
}

// Save writes data under a freshly generated name and returns its locator.
// The target directory is created if absent; concurrent creation is fine.
func (l *Local) Save(_ context.Context, data []byte, suggestedName string) (string, error) {
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return "", fmt.Errorf("op=filestore.ensure_dir: %w", err)
	}
	name := l.newName(suggestedName)
	dst := filepath.Join(l.Dir, name)

	tmp, err := os.CreateTemp(l.Dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("op=filestore.temp: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("op=filestore.write: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("op=filestore.sync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("op=filestore.close: %w", err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("op=filestore.rename: %w", err)
	}
	return name, nil
}

// newName combines a monotonic ULID (millisecond timestamp plus entropy,
// strictly increasing within one process) with the sanitized client name.
func (l *Local) newName(suggested string) string {
	l.mu.Lock()
	id, err := ulid.New(ulid.Timestamp(time.Now()), l.entropy)
	l.mu.Unlock()
	if err != nil {
		// Entropy exhaustion within one millisecond; nanosecond fallback.
		return fmt.Sprintf("%d_%s", time.Now().UnixNano(), namex.SanitizeFilename(suggested))
	}
	return id.String() + "_" + namex.SanitizeFilename(suggested)
}

// Resolve returns the absolute path for a locator previously returned by Save.
func (l *Local) Resolve(locator string) string {
	return filepath.Join(l.Dir, filepath.Base(locator))
}
