// Package models defines the shared data types for the backtesting engine.
package models

import "time"

// PricePoint is a single daily observation for an instrument, together
// with the derived volatility signals once Annotate has run.
type PricePoint struct {
	Date  time.Time
	Close float64

	// Derived fields. Valid only when Tradable is true; dates without
	// enough trailing history carry no defined signal.
	VolProxy float64
	VolRank  float64
	Tradable bool
}

// PriceSeries is an ordered-by-date sequence of daily closes for one
// instrument.
type PriceSeries struct {
	Instrument string
	Points     []PricePoint
}

// CloseOn returns the closing price at the given date and true if the
// exact date is present in the series.
func (s *PriceSeries) CloseOn(date time.Time) (float64, bool) {
	for i := range s.Points {
		if s.Points[i].Date.Equal(date) {
			return s.Points[i].Close, true
		}
	}
	return 0, false
}

// CloseAtOrBefore returns the most recent closing price at or before the
// given date, or false if no price has been observed by then.
func (s *PriceSeries) CloseAtOrBefore(date time.Time) (float64, bool) {
	found := false
	price := 0.0
	for i := range s.Points {
		if s.Points[i].Date.After(date) {
			break
		}
		price = s.Points[i].Close
		found = true
	}
	return price, found
}
