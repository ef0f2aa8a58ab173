package filestore

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// LocatorChecker reports whether any submission references a locator.
type LocatorChecker interface {
	LocatorExists(ctx context.Context, locator string) (bool, error)
}

// Sweeper removes orphaned files: storage writes whose intake failed before
// the submission record was committed. Files younger than the grace period
// are skipped so in-flight intakes are never raced.
type Sweeper struct {
	Store       *Local
	Refs        LocatorChecker
	GracePeriod time.Duration
}

// NewSweeper constructs a Sweeper. A non-positive grace period defaults to 1h.
func NewSweeper(store *Local, refs LocatorChecker, grace time.Duration) *Sweeper {
	if grace <= 0 {
		grace = time.Hour
	}
	return &Sweeper{Store: store, Refs: refs, GracePeriod: grace}
}

// Sweep scans the storage root once and deletes unreferenced files.
func (s *Sweeper) Sweep(ctx context.Context) error {
	entries, err := os.ReadDir(s.Store.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	cutoff := time.Now().Add(-s.GracePeriod)
	var removed int
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		// Stale temp files are never locator-reachable; drop them outright.
		if strings.HasPrefix(e.Name(), ".tmp-") {
			if err := os.Remove(filepath.Join(s.Store.Dir, e.Name())); err == nil {
				removed++
			}
			continue
		}
		ok, err := s.Refs.LocatorExists(ctx, e.Name())
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if err := os.Remove(filepath.Join(s.Store.Dir, e.Name())); err != nil {
			slog.Warn("orphan removal failed", slog.String("locator", e.Name()), slog.Any("error", err))
			continue
		}
		removed++
	}
	if removed > 0 {
		slog.Info("orphan sweep completed", slog.Int("removed", removed))
	}
	return nil
}

// RunPeriodic sweeps on a fixed interval until the context is cancelled.
func (s *Sweeper) RunPeriodic(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	if err := s.Sweep(ctx); err != nil {
		slog.Error("initial orphan sweep failed", slog.Any("error", err))
	}
	for {
		select {
		case <-ctx.Done():
			slog.Info("orphan sweeper stopping")
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				slog.Error("periodic orphan sweep failed", slog.Any("error", err))
			}
		}
	}
}
