package preference

import (
	"github.com/storeradar/radar-service/internal/recommend"
)

// Classify compares a selected store with the average of the candidates it was
// chosen from. A store cheaper than average by more than threshold is price
// focused, one closer by more than threshold is distance focused. Both or
// neither is neutral, as is a selection without a price or distance or an empty
// candidate list.
func Classify(selected recommend.ScoredStore, candidates []recommend.ScoredStore, threshold float64) Type {
	if len(candidates) == 0 {
		return TypeNeutral
	}
	if selected.Price == 0 || selected.DistanceKm == 0 {
		return TypeNeutral
	}

	var sumPrice, sumDist float64
	for _, c := range candidates {
		sumPrice += float64(c.Price)
		sumDist += c.DistanceKm
	}
	avgPrice := sumPrice / float64(len(candidates))
	avgDist := sumDist / float64(len(candidates))
	if avgPrice == 0 || avgDist == 0 {
		return TypeNeutral
	}

	priceLike := (avgPrice-float64(selected.Price))/avgPrice > threshold
	distLike := (avgDist-selected.DistanceKm)/avgDist > threshold

	switch {
	case priceLike && !distLike:
		return TypePrice
	case distLike && !priceLike:
		return TypeDistance
	default:
		return TypeNeutral
	}
}
