package pricing

// solverIterations is a fixed bisection count rather than a convergence
// tolerance, so repeated runs produce bit-identical strikes regardless
// of the floating-point environment. 48 halvings of the initial bracket
// reach well below sub-cent resolution for any realistic spot.
const solverIterations = 48

// SolveStrikeForDelta searches for the strike whose put delta magnitude
// matches targetAbsDelta, bisecting over strike in (0.01*spot, 2*spot].
// Put delta magnitude shrinks monotonically as the strike moves below
// spot, so the bracket halves without derivative information.
//
// The result is the midpoint of the final bracket and must be treated
// as an approximation, not an exact root.
func SolveStrikeForDelta(spot, t, r, sigma, targetAbsDelta float64) float64 {
	lo := 0.01 * spot
	hi := 2.0 * spot

	for i := 0; i < solverIterations; i++ {
		mid := (lo + hi) / 2
		absDelta := -PutDelta(spot, mid, t, r, sigma)
		if absDelta > targetAbsDelta {
			hi = mid // strike too high, delta too deep
		} else {
			lo = mid
		}
	}

	return (lo + hi) / 2
}
