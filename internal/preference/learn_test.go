package preference

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storeradar/radar-service/internal/recommend"
)

func repeat(t Type, n int) []Type {
	out := make([]Type, n)
	for i := range out {
		out[i] = t
	}
	return out
}

func TestLearn(t *testing.T) {
	old := recommend.DefaultPreference()

	tests := []struct {
		name     string
		recent   []Type
		expected float64
	}{
		// raw 0.8 -> 0.5*0.8 + 0.8*0.2
		{"all price", repeat(TypePrice, 10), 0.56},
		// raw 0.2 -> 0.5*0.8 + 0.2*0.2
		{"no price", repeat(TypeDistance, 10), 0.44},
		// raw 0.5 keeps the default
		{"half price", append(repeat(TypePrice, 5), repeat(TypeNeutral, 5)...), 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Learn(old, tt.recent, 0.2)
			assert.InDelta(t, tt.expected, got.WPrice, 1e-9)
			assert.InDelta(t, 1-tt.expected, got.WDistance, 1e-9)
		})
	}
}

func TestLearnWithoutHistoryKeepsWeights(t *testing.T) {
	old := recommend.Preference{WPrice: 0.7, WDistance: 0.4}
	assert.Equal(t, old, Learn(old, nil, 0.2))
}

func TestLearnConvergesWithinBounds(t *testing.T) {
	pref := recommend.DefaultPreference()
	for i := 0; i < 200; i++ {
		pref = Learn(pref, repeat(TypePrice, 10), 0.2)
	}
	assert.InDelta(t, 0.8, pref.WPrice, 1e-6)
	assert.InDelta(t, 0.2, pref.WDistance, 1e-6)
}
