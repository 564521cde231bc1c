package backtest

import (
	"sort"
	"time"

	"csp-backtester/internal/models"
)

// buildCalendar returns the sorted union of every instrument's price
// dates, the shared business-day calendar the driver steps through.
func buildCalendar(series []*models.PriceSeries) []time.Time {
	seen := make(map[time.Time]struct{})
	for _, s := range series {
		for i := range s.Points {
			seen[s.Points[i].Date] = struct{}{}
		}
	}

	out := make([]time.Time, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// instrumentData wraps a series with date-indexed lookup so the daily
// step avoids rescanning the slice.
type instrumentData struct {
	series *models.PriceSeries
	index  map[time.Time]int
}

func newInstrumentData(s *models.PriceSeries) *instrumentData {
	idx := make(map[time.Time]int, len(s.Points))
	for i := range s.Points {
		idx[s.Points[i].Date] = i
	}
	return &instrumentData{series: s, index: idx}
}

// pointOn returns the annotated point at exactly the given date.
func (d *instrumentData) pointOn(date time.Time) (models.PricePoint, bool) {
	i, ok := d.index[date]
	if !ok {
		return models.PricePoint{}, false
	}
	return d.series.Points[i], true
}

// closeAtOrBefore returns the last known close at or before the date.
func (d *instrumentData) closeAtOrBefore(date time.Time) (float64, bool) {
	if i, ok := d.index[date]; ok {
		return d.series.Points[i].Close, true
	}
	return d.series.CloseAtOrBefore(date)
}
