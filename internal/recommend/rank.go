package recommend

import (
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/storeradar/radar-service/internal/geo"
)

// Ranker scores filtered stores against the selected product's prices.
type Ranker struct {
	config Config
	logger zerolog.Logger
}

// NewRanker creates a new ranker.
func NewRanker(config Config) *Ranker {
	return &Ranker{
		config: config,
		logger: log.With().Str("component", "ranker").Logger(),
	}
}

// Rank joins filtered stores with prices, scores each candidate and sorts them
// best first. Stores without a price or without coordinates are not candidates.
// An empty result is valid and means the caller should fall back to plain display.
func (r *Ranker) Rank(filtered []Store, prices []PricePoint, pos UserPosition, pref Preference) []ScoredStore {
	priceByStore := make(map[string]PricePoint, len(prices))
	for _, p := range prices {
		if _, seen := priceByStore[p.StoreID]; !seen {
			priceByStore[p.StoreID] = p
		}
	}

	center := pos.Point()
	scored := make([]ScoredStore, 0, len(filtered))
	for _, s := range filtered {
		p, ok := priceByStore[s.StoreID]
		if !ok {
			continue
		}
		loc, ok := s.Location()
		if !ok {
			continue
		}
		scored = append(scored, ScoredStore{
			Store:      s,
			Price:      p.Price,
			InspectDay: p.InspectDay,
			DistanceKm: geo.Between(center, loc),
		})
	}

	if len(scored) == 0 {
		return []ScoredStore{}
	}

	maxPrice := r.priceNormalizer(prices, scored)
	maxDistance := distanceNormalizer(scored)

	for i := range scored {
		scored[i].Score = Efficiency(
			float64(scored[i].Price), scored[i].DistanceKm,
			maxPrice, maxDistance,
			pref.WPrice, pref.WDistance,
		)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score-scored[j].Score > scoreEpsilon
	})

	for i := range scored {
		scored[i].Rank = i
		scored[i].Tier = r.config.TierForRank(i)
	}

	r.logger.Debug().
		Int("candidates", len(scored)).
		Float64("max_price", maxPrice).
		Float64("max_distance", maxDistance).
		Str("top_store", scored[0].StoreID).
		Msg("Ranked candidate stores")

	return scored
}

// scoreEpsilon absorbs floating point noise from the distance math so that
// scores equal on paper keep their input order.
const scoreEpsilon = 1e-9

// priceNormalizer returns the maximum price according to the configured scope.
func (r *Ranker) priceNormalizer(prices []PricePoint, scored []ScoredStore) float64 {
	var highest int64
	if r.config.MaxPriceScope == MaxPriceCandidates {
		for _, s := range scored {
			if s.Price > highest {
				highest = s.Price
			}
		}
	} else {
		for _, p := range prices {
			if p.Price > highest {
				highest = p.Price
			}
		}
	}
	if highest <= 0 {
		return 1
	}
	return float64(highest)
}

// distanceNormalizer returns the maximum candidate distance. A single candidate, or candidates
// all at the user's position, normalize against 1 km.
func distanceNormalizer(scored []ScoredStore) float64 {
	if len(scored) <= 1 {
		return 1
	}
	highest := 0.0
	for _, s := range scored {
		if s.DistanceKm > highest {
			highest = s.DistanceKm
		}
	}
	if highest <= 0 {
		return 1
	}
	return highest
}

// Rank scores with the default configuration.
func Rank(filtered []Store, prices []PricePoint, pos UserPosition, pref Preference) []ScoredStore {
	return NewRanker(DefaultConfig()).Rank(filtered, prices, pos, pref)
}
