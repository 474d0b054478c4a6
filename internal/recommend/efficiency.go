package recommend

// Efficiency combines normalized price and distance into a ranking score.
//
// Each value is divided by the candidate set's maximum and inverted, so the
// cheapest/closest candidates approach 1 and the most expensive/farthest reach 0.
// The weighted sum is scaled by 100. Higher is better. Both maxima must be positive.
func Efficiency(price, distance, maxPrice, maxDistance, wPrice, wDistance float64) float64 {
	priceEff := 1 - price/maxPrice
	distanceEff := 1 - distance/maxDistance
	return (wPrice*priceEff + wDistance*distanceEff) * 100
}
