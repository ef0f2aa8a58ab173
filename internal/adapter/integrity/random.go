// Package integrity produces a bounded similarity score for submissions.
//
// The randomized scorer is an acknowledged stand-in for a real plagiarism
// engine. It sits behind domain.IntegrityScorer so a content-aware
// implementation can be swapped in without touching the intake pipeline.
package integrity

import (
	"math/rand"
	"sync"
	"time"

	"github.com/greenboard/eco-intake/internal/domain"
)

// RandomScorer returns uniform scores in [0, MaxIntegrityScore].
type RandomScorer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandomScorer seeds a scorer from the current time.
func NewRandomScorer() *RandomScorer {
	return &RandomScorer{rng: rand.New(rand.NewSource(time.Now().UnixNano()))} //nolint:gosec // Simulated score, not security sensitive.
}

// Score returns a uniform integer in [0, MaxIntegrityScore] inclusive.
func (s *RandomScorer) Score() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(domain.MaxIntegrityScore + 1)
}
