package integrity_test

import (
	"testing"

	"github.com/greenboard/eco-intake/internal/adapter/integrity"
	"github.com/greenboard/eco-intake/internal/domain"
)

func TestRandomScorer_Bounded(t *testing.T) {
	t.Parallel()
	s := integrity.NewRandomScorer()
	for i := 0; i < 10000; i++ {
		got := s.Score()
		if got < 0 || got > domain.MaxIntegrityScore {
			t.Fatalf("score %d out of [0,%d]", got, domain.MaxIntegrityScore)
		}
	}
}

func TestRandomScorer_CoversRange(t *testing.T) {
	t.Parallel()
	s := integrity.NewRandomScorer()
	seen := make(map[int]bool)
	for i := 0; i < 10000; i++ {
		seen[s.Score()] = true
	}
	// With 10k draws over 16 buckets every value should appear.
	for v := 0; v <= domain.MaxIntegrityScore; v++ {
		if !seen[v] {
			t.Fatalf("value %d never produced", v)
		}
	}
}
