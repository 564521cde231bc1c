package data

import (
	"math"
	"math/rand"
	"time"

	"csp-backtester/internal/models"
)

// SyntheticConfig controls the generated random-walk series.
type SyntheticConfig struct {
	Instrument string
	StartDate  time.Time
	Days       int     // weekday count
	StartPrice float64
	AnnualVol  float64
	Drift      float64 // annual drift
	Seed       int64
}

// GenerateSeries produces a deterministic geometric-random-walk daily
// close series on a weekday-only calendar. The same seed always yields
// the same series, so synthetic runs are reproducible.
func GenerateSeries(cfg SyntheticConfig) *models.PriceSeries {
	rng := rand.New(rand.NewSource(cfg.Seed))

	dailyVol := cfg.AnnualVol / math.Sqrt(252)
	dailyDrift := cfg.Drift / 252

	price := cfg.StartPrice
	cur := cfg.StartDate
	points := make([]models.PricePoint, 0, cfg.Days)

	for len(points) < cfg.Days {
		if cur.Weekday() != time.Saturday && cur.Weekday() != time.Sunday {
			points = append(points, models.PricePoint{Date: cur, Close: price})
			price *= math.Exp(dailyDrift - 0.5*dailyVol*dailyVol + dailyVol*rng.NormFloat64())
		}
		cur = cur.AddDate(0, 0, 1)
	}

	return &models.PriceSeries{Instrument: cfg.Instrument, Points: points}
}

// GenerateUniverse produces a set of independent synthetic instruments,
// one per name, each seeded from the base seed plus its index.
func GenerateUniverse(names []string, startDate time.Time, days int, seed int64) []*models.PriceSeries {
	out := make([]*models.PriceSeries, 0, len(names))
	for i, name := range names {
		out = append(out, GenerateSeries(SyntheticConfig{
			Instrument: name,
			StartDate:  startDate,
			Days:       days,
			StartPrice: 50 + 25*float64(i%7),
			AnnualVol:  0.18 + 0.04*float64(i%5),
			Drift:      0.05,
			Seed:       seed + int64(i),
		}))
	}
	return out
}
