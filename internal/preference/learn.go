package preference

import (
	"github.com/storeradar/radar-service/internal/recommend"
)

const (
	minPriceWeight  = 0.2
	priceWeightSpan = 0.6
)

// Learn blends the old weights with an estimate from recent selection types.
//
// The estimate maps the share of price focused selections onto [0.2, 0.8] and is
// mixed in with weight alpha. The distance weight is the complement of the
// price weight. No recent selections leaves the weights unchanged.
func Learn(old recommend.Preference, recent []Type, alpha float64) recommend.Preference {
	if len(recent) == 0 {
		return old
	}
	var price int
	for _, t := range recent {
		if t == TypePrice {
			price++
		}
	}
	ratio := float64(price) / float64(len(recent))
	raw := minPriceWeight + ratio*priceWeightSpan
	wPrice := old.WPrice*(1-alpha) + raw*alpha
	return recommend.Preference{WPrice: wPrice, WDistance: 1 - wPrice}
}
