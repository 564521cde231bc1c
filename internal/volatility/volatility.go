// Package volatility derives the annualized volatility proxy and its
// normalized rank from raw daily price series.
package volatility

import (
	"math"
	"sync"

	"csp-backtester/internal/models"
	"csp-backtester/internal/performance"
)

const (
	// tradingYearDays annualizes daily return volatility.
	tradingYearDays = 252.0

	// minVolProxy floors the proxy so degenerate flat series still
	// price options instead of collapsing to zero volatility.
	minVolProxy = 0.05
)

// Annotate fills VolProxy, VolRank and Tradable on every point of the
// series in place. A point is tradable only once both the trailing
// return window and the rank lookback window are fully populated;
// earlier dates carry no defined signal and must be skipped by entry
// evaluation.
func Annotate(series *models.PriceSeries, trailingWindowDays, rankLookbackDays int) {
	pts := series.Points
	n := len(pts)
	if n == 0 {
		return
	}

	logReturns := make([]float64, n)
	for i := 1; i < n; i++ {
		if pts[i-1].Close > 0 && pts[i].Close > 0 {
			logReturns[i] = math.Log(pts[i].Close / pts[i-1].Close)
		}
	}

	proxies := make([]float64, n)
	proxyDefined := make([]bool, n)

	for i := range pts {
		pts[i].Tradable = false

		// Need trailingWindowDays returns, the first of which uses the
		// close at i-trailingWindowDays.
		if i < trailingWindowDays {
			continue
		}
		window := logReturns[i-trailingWindowDays+1 : i+1]
		proxy := annualizedStdDev(window)
		if proxy < minVolProxy {
			proxy = minVolProxy
		}
		proxies[i] = proxy
		proxyDefined[i] = true
		pts[i].VolProxy = proxy
	}

	for i := range pts {
		if !proxyDefined[i] {
			continue
		}
		// The rank window is the trailing rankLookbackDays proxies
		// ending at i, all of which must be defined.
		start := i - rankLookbackDays + 1
		if start < 0 || !proxyDefined[start] {
			continue
		}
		pts[i].VolRank = rank(proxies[start:i+1], proxies[i])
		pts[i].Tradable = true
	}
}

// AnnotateAll annotates every series concurrently. Each instrument's
// derived signals depend only on its own history, so the work fans out
// safely across the pool.
func AnnotateAll(series []*models.PriceSeries, trailingWindowDays, rankLookbackDays int) {
	pool := performance.NewWorkerPool(0)
	pool.Start()
	defer pool.Stop()

	var wg sync.WaitGroup
	for _, s := range series {
		s := s
		wg.Add(1)
		task := func() {
			defer wg.Done()
			Annotate(s, trailingWindowDays, rankLookbackDays)
		}
		if !pool.Submit(task) {
			// Queue full; annotate inline rather than dropping the series.
			task()
		}
	}
	wg.Wait()
}

// annualizedStdDev computes the sample standard deviation of the given
// daily log-returns, scaled by the square root of the trading year.
func annualizedStdDev(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns) - 1)

	return math.Sqrt(variance) * math.Sqrt(tradingYearDays)
}

// rank scales value to [0, 1] within the window's min/max range. A flat
// window ranks as 0.
func rank(window []float64, value float64) float64 {
	lo, hi := window[0], window[0]
	for _, v := range window {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		return 0
	}
	return (value - lo) / (hi - lo)
}
