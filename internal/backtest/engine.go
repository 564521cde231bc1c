// Package backtest implements the daily cash-secured put simulation
// driver.
package backtest

import (
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"csp-backtester/internal/config"
	"csp-backtester/internal/ledger"
	"csp-backtester/internal/models"
	"csp-backtester/internal/pricing"
	"csp-backtester/internal/volatility"
)

// Engine runs cash-secured put simulations. It owns the simulation
// state for the duration of a run; nothing is shared across runs, so
// independent engines may run concurrently.
type Engine struct {
	cfg    config.EngineConfig
	logger zerolog.Logger
}

// NewEngine creates a backtest engine with the given parameters.
func NewEngine(cfg config.EngineConfig, logger zerolog.Logger) *Engine {
	return &Engine{cfg: cfg, logger: logger}
}

// Result holds everything a simulation run produced. The journal is the
// source of truth for account state; the reporter derives the equity
// and utilization paths from it.
type Result struct {
	StartingCash  float64
	Calendar      []time.Time
	Journal       []models.JournalEntry
	Trades        []models.TradeRecord
	OpenPositions []models.OpenPosition // still open at simulation end
}

// simContext is the per-run state machine: one ledger, one open
// position at most per instrument, and the accumulating trade list.
// It is owned exclusively by the driver; the daily step is the only
// writer.
type simContext struct {
	ledger *ledger.Ledger
	open   map[string]*models.OpenPosition
	trades []models.TradeRecord
}

// Run simulates the full calendar over the given price series and
// returns the journal and trade records. Per-instrument anomalies
// (missing prices, insufficient history) degrade to "no trade today";
// no condition aborts the run.
func (e *Engine) Run(series []*models.PriceSeries) (*Result, error) {
	if len(series) == 0 {
		return nil, fmt.Errorf("no price series supplied")
	}

	volatility.AnnotateAll(series, e.cfg.TrailingVolWindow, e.cfg.RankLookbackDays)

	calendar := buildCalendar(series)
	if len(calendar) == 0 {
		return nil, fmt.Errorf("price series contain no dates")
	}

	// Fixed instrument order keeps runs reproducible.
	instruments := make([]string, 0, len(series))
	bySymbol := make(map[string]*instrumentData, len(series))
	for _, s := range series {
		instruments = append(instruments, s.Instrument)
		bySymbol[s.Instrument] = newInstrumentData(s)
	}
	sort.Strings(instruments)

	sim := &simContext{
		ledger: ledger.New(e.cfg.StartingCash),
		open:   make(map[string]*models.OpenPosition),
	}

	e.logger.Info().
		Int("instruments", len(instruments)).
		Int("days", len(calendar)).
		Float64("starting_cash", e.cfg.StartingCash).
		Msg("simulation started")

	for _, day := range calendar {
		// Expiry strictly before entry so collateral freed today is
		// available for positions opened today.
		e.expiryPass(sim, bySymbol, instruments, day)
		e.entryPass(sim, bySymbol, instruments, day)
	}

	openPositions := make([]models.OpenPosition, 0, len(sim.open))
	for _, sym := range instruments {
		if pos, ok := sim.open[sym]; ok {
			openPositions = append(openPositions, *pos)
		}
	}

	e.logger.Info().
		Int("trades", len(sim.trades)).
		Int("still_open", len(openPositions)).
		Float64("ending_cash", sim.ledger.Cash()).
		Msg("simulation finished")

	return &Result{
		StartingCash:  e.cfg.StartingCash,
		Calendar:      calendar,
		Journal:       sim.ledger.Journal(),
		Trades:        sim.trades,
		OpenPositions: openPositions,
	}, nil
}

// expiryPass settles every open position whose expiry has been reached.
func (e *Engine) expiryPass(sim *simContext, bySymbol map[string]*instrumentData, instruments []string, day time.Time) {
	for _, sym := range instruments {
		pos, ok := sim.open[sym]
		if !ok || pos.ExpiryDate.After(day) {
			continue
		}

		inst := bySymbol[sym]
		settlePrice, ok := inst.closeAtOrBefore(day)
		if !ok {
			// No price ever observed by now; the spot at open is the
			// last resort.
			settlePrice = pos.SpotAtOpen
		}

		settleValue := maxf(pos.Strike-settlePrice, 0)
		pnl := (pos.EntryCredit - settleValue) * e.cfg.ContractMultiplier

		sim.ledger.Release(pos.Collateral(e.cfg.ContractMultiplier), day,
			fmt.Sprintf("release collateral %s", sym))
		if settleValue > 0 {
			sim.ledger.Debit(settleValue*e.cfg.ContractMultiplier, day,
				fmt.Sprintf("settle put %s @ %.2f", sym, settlePrice))
		}

		sim.trades = append(sim.trades, models.TradeRecord{
			Instrument:   sym,
			OpenDate:     pos.OpenDate,
			ExpiryDate:   pos.ExpiryDate,
			SpotAtOpen:   pos.SpotAtOpen,
			SpotAtExpiry: settlePrice,
			Strike:       pos.Strike,
			EntryCredit:  pos.EntryCredit,
			FinishedITM:  settlePrice < pos.Strike,
			PnL:          pnl,
		})
		delete(sim.open, sym)

		e.logger.Debug().
			Str("instrument", sym).
			Time("expiry", pos.ExpiryDate).
			Float64("settle_price", settlePrice).
			Float64("pnl", pnl).
			Msg("position expired")
	}
}

// entryPass evaluates every instrument without a position against the
// entry criteria and opens new positions while cash allows.
func (e *Engine) entryPass(sim *simContext, bySymbol map[string]*instrumentData, instruments []string, day time.Time) {
	for _, sym := range instruments {
		if _, ok := sim.open[sym]; ok {
			continue
		}

		inst := bySymbol[sym]
		pt, ok := inst.pointOn(day)
		if !ok || !pt.Tradable {
			continue
		}
		if pt.VolRank < e.cfg.MinVolRank {
			continue
		}

		spot := pt.Close
		t := float64(e.cfg.TargetDTE) / 365.0
		strike := pricing.SolveStrikeForDelta(spot, t, e.cfg.RiskFreeRate, pt.VolProxy, e.cfg.TargetAbsDelta)
		premium := pricing.PutPrice(spot, strike, t, e.cfg.RiskFreeRate, pt.VolProxy)

		yield := premium / strike * (30.0 / float64(e.cfg.TargetDTE))
		if yield < e.cfg.MinYieldPer30Days {
			continue
		}

		// Free cash only; collateral already reserved for other open
		// positions cannot secure a new one.
		collateral := strike * e.cfg.ContractMultiplier
		freeCash := sim.ledger.Cash() - sim.ledger.Reserved()
		if freeCash < collateral {
			e.logger.Debug().
				Str("instrument", sym).
				Float64("collateral", collateral).
				Float64("free_cash", freeCash).
				Msg("entry skipped, insufficient cash")
			continue
		}

		sim.ledger.Credit(premium*e.cfg.ContractMultiplier, day,
			fmt.Sprintf("premium %s strike %.2f", sym, strike))
		sim.ledger.Reserve(collateral, day,
			fmt.Sprintf("reserve collateral %s", sym))

		sim.open[sym] = &models.OpenPosition{
			Instrument:  sym,
			OpenDate:    day,
			ExpiryDate:  day.AddDate(0, 0, e.cfg.TargetDTE),
			Strike:      strike,
			EntryCredit: premium,
			SpotAtOpen:  spot,
		}

		e.logger.Debug().
			Str("instrument", sym).
			Float64("strike", strike).
			Float64("premium", premium).
			Float64("vol_rank", pt.VolRank).
			Msg("position opened")
	}
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
