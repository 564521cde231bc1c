// Package ledger maintains the append-only cashflow and collateral
// journal backing a simulation run.
//
// The ledger is a pure data structure: it records whatever it is told
// and never validates against available cash. Sufficiency checks belong
// to the backtest driver, which is the ledger's sole writer.
package ledger

import (
	"time"

	"csp-backtester/internal/models"
)

// Ledger tracks cash and reserved collateral through an append-only
// journal. Balances never change retroactively; folding the journal
// from the start always reproduces the current state.
type Ledger struct {
	startingCash float64
	cash         float64
	reserved     float64
	journal      []models.JournalEntry
}

// New creates a ledger seeded with the starting cash balance.
func New(startingCash float64) *Ledger {
	return &Ledger{
		startingCash: startingCash,
		cash:         startingCash,
	}
}

// Reserve sets aside collateral. Cash is unchanged.
func (l *Ledger) Reserve(amount float64, date time.Time, note string) {
	l.reserved += amount
	l.append(models.EntryReserve, date, amount, note)
}

// Release frees previously reserved collateral. Cash is unchanged.
func (l *Ledger) Release(amount float64, date time.Time, note string) {
	l.reserved -= amount
	l.append(models.EntryRelease, date, -amount, note)
}

// Credit increases cash.
func (l *Ledger) Credit(amount float64, date time.Time, note string) {
	l.cash += amount
	l.append(models.EntryCredit, date, amount, note)
}

// Debit decreases cash.
func (l *Ledger) Debit(amount float64, date time.Time, note string) {
	l.cash -= amount
	l.append(models.EntryDebit, date, -amount, note)
}

func (l *Ledger) append(kind models.EntryKind, date time.Time, amount float64, note string) {
	l.journal = append(l.journal, models.JournalEntry{
		Kind:     kind,
		Date:     date,
		Amount:   amount,
		Cash:     l.cash,
		Reserved: l.reserved,
		Note:     note,
	})
}

// Cash returns the current cash balance.
func (l *Ledger) Cash() float64 { return l.cash }

// Reserved returns the current reserved collateral.
func (l *Ledger) Reserved() float64 { return l.reserved }

// StartingCash returns the balance the ledger was seeded with.
func (l *Ledger) StartingCash() float64 { return l.startingCash }

// Journal returns a copy of the journal so callers cannot mutate the
// ledger's history.
func (l *Ledger) Journal() []models.JournalEntry {
	out := make([]models.JournalEntry, len(l.journal))
	copy(out, l.journal)
	return out
}

// FoldBalances replays the journal from the starting balances and
// returns the resulting cash and reserved amounts. Used by invariant
// checks; the live balances must always match the fold.
func FoldBalances(startingCash float64, journal []models.JournalEntry) (cash, reserved float64) {
	cash = startingCash
	for _, e := range journal {
		switch e.Kind {
		case models.EntryReserve, models.EntryRelease:
			reserved += e.Amount
		case models.EntryCredit, models.EntryDebit:
			cash += e.Amount
		}
	}
	return cash, reserved
}
