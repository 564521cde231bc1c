package models

import "time"

// OpenPosition is a live cash-secured put. At most one exists per
// instrument at any simulated date.
type OpenPosition struct {
	Instrument  string
	OpenDate    time.Time
	ExpiryDate  time.Time
	Strike      float64
	EntryCredit float64 // premium received per unit
	SpotAtOpen  float64
}

// Collateral returns the cash reserved against this position.
func (p *OpenPosition) Collateral(multiplier float64) float64 {
	return p.Strike * multiplier
}

// TradeRecord is produced when a position reaches expiry and settles.
type TradeRecord struct {
	Instrument   string    `csv:"instrument"`
	OpenDate     time.Time `csv:"open_date"`
	ExpiryDate   time.Time `csv:"expiry_date"`
	SpotAtOpen   float64   `csv:"spot_at_open"`
	SpotAtExpiry float64   `csv:"spot_at_expiry"`
	Strike       float64   `csv:"strike"`
	EntryCredit  float64   `csv:"entry_credit"`
	FinishedITM  bool      `csv:"finished_itm"`
	PnL          float64   `csv:"pnl"`
}

// EquityPoint is one day of the reconstructed equity path.
type EquityPoint struct {
	Date   time.Time `csv:"date"`
	Equity float64   `csv:"equity"`
}

// UtilizationPoint is one day of the collateral-utilization path.
type UtilizationPoint struct {
	Date        time.Time `csv:"date"`
	Utilization float64   `csv:"utilization"`
}

// Summary holds the statistics computed once from the completed trade
// list and the full utilization path.
type Summary struct {
	StartingCash    float64
	EndingCash      float64
	TradeCount      int
	WinRate         float64
	MeanPnLPerTrade float64
	TotalPnL        float64
	MeanUtilization float64

	// Extra figures derived from the equity path.
	MaxDrawdown      float64
	AnnualizedReturn float64
}
