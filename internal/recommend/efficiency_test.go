package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEfficiency(t *testing.T) {
	tests := []struct {
		name              string
		price, distance   float64
		maxPrice, maxDist float64
		wPrice, wDistance float64
		expected          float64
	}{
		{
			name:  "least efficient candidate scores zero",
			price: 2000, distance: 3, maxPrice: 2000, maxDist: 3,
			wPrice: 0.5, wDistance: 0.5,
			expected: 0,
		},
		{
			name:  "least efficient candidate scores zero with skewed weights",
			price: 2000, distance: 3, maxPrice: 2000, maxDist: 3,
			wPrice: 0.9, wDistance: 0.1,
			expected: 0,
		},
		{
			name:  "best possible candidate scores full weight sum",
			price: 0, distance: 0, maxPrice: 2000, maxDist: 3,
			wPrice: 0.5, wDistance: 0.5,
			expected: 100,
		},
		{
			name:  "weights not summing to one are used as given",
			price: 0, distance: 0, maxPrice: 2000, maxDist: 3,
			wPrice: 0.7, wDistance: 0.6,
			expected: 130,
		},
		{
			name:  "cheap but far",
			price: 1000, distance: 1, maxPrice: 2000, maxDist: 1,
			wPrice: 0.5, wDistance: 0.5,
			expected: 25,
		},
		{
			name:  "expensive but close",
			price: 2000, distance: 0.5, maxPrice: 2000, maxDist: 1,
			wPrice: 0.5, wDistance: 0.5,
			expected: 25,
		},
		{
			name:  "price only weighting ignores distance",
			price: 500, distance: 10, maxPrice: 1000, maxDist: 10,
			wPrice: 1, wDistance: 0,
			expected: 50,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Efficiency(tt.price, tt.distance, tt.maxPrice, tt.maxDist, tt.wPrice, tt.wDistance)
			assert.InDelta(t, tt.expected, got, 1e-9)
		})
	}
}

func TestEfficiencyMonotonic(t *testing.T) {
	weights := []Preference{
		{WPrice: 0.5, WDistance: 0.5},
		{WPrice: 0.8, WDistance: 0.2},
		{WPrice: 0.2, WDistance: 0.8},
		{WPrice: 1, WDistance: 0},
		{WPrice: 0, WDistance: 1},
	}

	for _, w := range weights {
		base := Efficiency(1500, 2, 2000, 4, w.WPrice, w.WDistance)

		cheaper := Efficiency(1000, 2, 2000, 4, w.WPrice, w.WDistance)
		assert.GreaterOrEqual(t, cheaper, base, "lower price must not lower the score (weights %+v)", w)

		closer := Efficiency(1500, 1, 2000, 4, w.WPrice, w.WDistance)
		assert.GreaterOrEqual(t, closer, base, "lower distance must not lower the score (weights %+v)", w)
	}
}

func TestEfficiencySwapInvertsOrdering(t *testing.T) {
	// A is cheap and far, B is expensive and close. Swapping their attributes
	// must swap which one a price-leaning user prefers.
	w := Preference{WPrice: 0.7, WDistance: 0.3}

	a := Efficiency(1000, 4, 2000, 4, w.WPrice, w.WDistance)
	b := Efficiency(2000, 1, 2000, 4, w.WPrice, w.WDistance)
	assert.Greater(t, a, b)

	aSwapped := Efficiency(2000, 1, 2000, 4, w.WPrice, w.WDistance)
	bSwapped := Efficiency(1000, 4, 2000, 4, w.WPrice, w.WDistance)
	assert.Greater(t, bSwapped, aSwapped)
}
