package domain

import "math"

// FareRate holds the per-tier pricing components.
type FareRate struct {
	Base   float64
	PerKm  float64
	PerMin float64
}

var fareRates = map[RideTier]FareRate{
	RideTierEconomy: {Base: 5.00, PerKm: 1.50, PerMin: 0.25},
	RideTierPremium: {Base: 8.00, PerKm: 2.50, PerMin: 0.40},
	RideTierLuxury:  {Base: 15.00, PerKm: 4.00, PerMin: 0.60},
}

// RateForTier returns the rate table entry for a tier.
func RateForTier(tier RideTier) (FareRate, bool) {
	rate, ok := fareRates[tier]
	return rate, ok
}

// ComputeFare calculates the fare for a finished trip.
//
// baseFare is the pre-surge subtotal, totalFare the surge-multiplied total;
// both are rounded half-up to two decimal places. The surge multiplier is
// applied to the unrounded subtotal so the total does not accumulate a
// rounding error.
func ComputeFare(tier RideTier, distanceKm float64, durationSec int64, surge float64) (baseFare, totalFare float64, ok bool) {
	rate, ok := RateForTier(tier)
	if !ok {
		return 0, 0, false
	}
	if surge < 1.0 {
		surge = 1.0
	}

	subtotal := rate.Base + distanceKm*rate.PerKm + (float64(durationSec)/60.0)*rate.PerMin
	return roundHalfUp(subtotal), roundHalfUp(subtotal * surge), true
}

// roundHalfUp rounds to two decimal places, ties away from zero toward +inf.
func roundHalfUp(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
