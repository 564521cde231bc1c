// Package report derives equity and utilization paths plus summary
// statistics from a completed simulation.
package report

import (
	"math"
	"time"

	"csp-backtester/internal/backtest"
	"csp-backtester/internal/models"
)

// Report is the reporter's full output for one run.
type Report struct {
	Equity      []models.EquityPoint
	Utilization []models.UtilizationPoint
	Summary     models.Summary
}

// balanceEvent is the end-of-day account state extracted from the
// journal, one per date that saw activity.
type balanceEvent struct {
	date     time.Time
	cash     float64
	reserved float64
}

// Build reconstructs the daily paths and computes summary statistics
// from the run's journal and trade list. Equity is the cash balance
// only; open option liabilities are not marked to market by design.
func Build(res *backtest.Result) *Report {
	events := scanJournal(res.Journal)
	cashPath, reservedPath := forwardFill(res.Calendar, events, res.StartingCash)

	equity := make([]models.EquityPoint, len(res.Calendar))
	utilization := make([]models.UtilizationPoint, len(res.Calendar))
	for i, d := range res.Calendar {
		equity[i] = models.EquityPoint{Date: d, Equity: cashPath[i]}
		utilization[i] = models.UtilizationPoint{Date: d, Utilization: utilizationOf(reservedPath[i], cashPath[i])}
	}

	return &Report{
		Equity:      equity,
		Utilization: utilization,
		Summary:     summarize(res, equity, utilization),
	}
}

// scanJournal folds the date-ordered journal into one balance event per
// date, keeping the last entry's running balances for each day.
func scanJournal(journal []models.JournalEntry) []balanceEvent {
	var events []balanceEvent
	for _, e := range journal {
		if n := len(events); n > 0 && events[n-1].date.Equal(e.Date) {
			events[n-1].cash = e.Cash
			events[n-1].reserved = e.Reserved
			continue
		}
		events = append(events, balanceEvent{date: e.Date, cash: e.Cash, reserved: e.Reserved})
	}
	return events
}

// forwardFill merges the sparse events onto the dense calendar,
// carrying the last known balances forward and seeding with the
// starting cash and zero reserved before any entry exists.
func forwardFill(calendar []time.Time, events []balanceEvent, startingCash float64) (cash, reserved []float64) {
	cash = make([]float64, len(calendar))
	reserved = make([]float64, len(calendar))

	curCash, curReserved := startingCash, 0.0
	j := 0
	for i, d := range calendar {
		for j < len(events) && !events[j].date.After(d) {
			curCash = events[j].cash
			curReserved = events[j].reserved
			j++
		}
		cash[i] = curCash
		reserved[i] = curReserved
	}
	return cash, reserved
}

// utilizationOf clamps reserved/cash to [0, 1], treating zero or
// non-finite cash as fully idle.
func utilizationOf(reserved, cash float64) float64 {
	if cash <= 0 || math.IsNaN(cash) || math.IsInf(cash, 0) {
		return 0
	}
	u := reserved / cash
	if u < 0 {
		return 0
	}
	if u > 1 {
		return 1
	}
	return u
}

func summarize(res *backtest.Result, equity []models.EquityPoint, utilization []models.UtilizationPoint) models.Summary {
	s := models.Summary{
		StartingCash: res.StartingCash,
		TradeCount:   len(res.Trades),
	}

	if n := len(equity); n > 0 {
		s.EndingCash = equity[n-1].Equity
	} else {
		s.EndingCash = res.StartingCash
	}

	wins := 0
	for _, t := range res.Trades {
		s.TotalPnL += t.PnL
		if t.PnL > 0 {
			wins++
		}
	}
	if s.TradeCount > 0 {
		s.WinRate = float64(wins) / float64(s.TradeCount)
		s.MeanPnLPerTrade = s.TotalPnL / float64(s.TradeCount)
	}

	if len(utilization) > 0 {
		total := 0.0
		for _, u := range utilization {
			total += u.Utilization
		}
		s.MeanUtilization = total / float64(len(utilization))
	}

	s.MaxDrawdown = maxDrawdown(equity)
	s.AnnualizedReturn = annualizedReturn(equity, res.StartingCash)

	return s
}

// maxDrawdown returns the largest peak-to-trough decline of the equity
// path as a fraction of the peak.
func maxDrawdown(equity []models.EquityPoint) float64 {
	peak, maxDD := 0.0, 0.0
	for _, p := range equity {
		if p.Equity > peak {
			peak = p.Equity
		}
		if peak > 0 {
			dd := (peak - p.Equity) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// annualizedReturn converts the full-path return into a yearly rate
// based on the calendar span.
func annualizedReturn(equity []models.EquityPoint, startingCash float64) float64 {
	if len(equity) < 2 || startingCash <= 0 {
		return 0
	}
	days := equity[len(equity)-1].Date.Sub(equity[0].Date).Hours() / 24
	if days <= 0 {
		return 0
	}
	years := days / 365
	ending := equity[len(equity)-1].Equity
	if ending <= 0 {
		return -1
	}
	return math.Pow(ending/startingCash, 1/years) - 1
}
