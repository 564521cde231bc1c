// Package pricing provides closed-form European put pricing and the
// delta-targeted strike solver used by the backtest engine.
package pricing

import "math"

// PutPrice calculates the price of a European put using the
// Black-Scholes model.
//
// Parameters:
//   - spot: spot price of the underlying asset
//   - strike: strike price of the option
//   - t: time to expiry in years
//   - r: risk-free interest rate (annual)
//   - sigma: volatility of the underlying asset (annual, as a decimal)
//
// At expiry (t <= 0) the price collapses to intrinsic value. With zero
// or negative volatility it collapses to the discounted intrinsic
// value. The result is never negative.
func PutPrice(spot, strike, t, r, sigma float64) float64 {
	if t <= 0 {
		return math.Max(strike-spot, 0)
	}
	if sigma <= 0 {
		return math.Max(strike*math.Exp(-r*t)-spot, 0)
	}

	d1 := (math.Log(spot/strike) + (r+0.5*sigma*sigma)*t) / (sigma * math.Sqrt(t))
	d2 := d1 - sigma*math.Sqrt(t)

	return strike*math.Exp(-r*t)*normCDF(-d2) - spot*normCDF(-d1)
}

// PutDelta calculates the Black-Scholes delta of a European put,
// always in [-1, 0]. The degenerate cases mirror PutPrice: at expiry or
// with non-positive volatility the delta is the intrinsic step, -1 when
// the put is in the money and 0 otherwise.
func PutDelta(spot, strike, t, r, sigma float64) float64 {
	if t <= 0 || sigma <= 0 {
		if spot < strike {
			return -1
		}
		return 0
	}

	d1 := (math.Log(spot/strike) + (r+0.5*sigma*sigma)*t) / (sigma * math.Sqrt(t))
	return normCDF(d1) - 1
}

// normCDF computes the cumulative distribution function of the standard
// normal distribution using the error function.
func normCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}
