package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/greenboard/eco-intake/internal/domain"
)

func TestComputeImpact_KnownValues(t *testing.T) {
	t.Parallel()
	cases := []struct {
		pages int
		water float64
		co2   float64
	}{
		{0, 0, 0},
		{1, 1.62, 0.009},
		{3, 4.86, 0.027},
		{10, 16.2, 0.09},
		{100, 162, 0.9},
	}
	for _, c := range cases {
		got := domain.ComputeImpact(c.pages)
		assert.Equal(t, c.pages, got.Pages)
		assert.Equal(t, c.water, got.WaterSavedL, "pages=%d", c.pages)
		assert.Equal(t, c.co2, got.CO2PreventedKg, "pages=%d", c.pages)
	}
}

func TestComputeImpact_Deterministic(t *testing.T) {
	t.Parallel()
	for p := 0; p <= 1000; p++ {
		a := domain.ComputeImpact(p)
		b := domain.ComputeImpact(p)
		if a != b {
			t.Fatalf("ComputeImpact(%d) not deterministic: %+v vs %+v", p, a, b)
		}
	}
}

func TestComputeImpact_Rounding(t *testing.T) {
	t.Parallel()
	// 7 * 1.62 = 11.34 exactly at 2 decimals; 7 * 0.009 = 0.063 at 3.
	got := domain.ComputeImpact(7)
	assert.Equal(t, 11.34, got.WaterSavedL)
	assert.Equal(t, 0.063, got.CO2PreventedKg)
}
