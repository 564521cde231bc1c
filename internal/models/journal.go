package models

import "time"

// EntryKind classifies a journal entry.
type EntryKind string

const (
	EntryReserve EntryKind = "reserve" // collateral set aside, cash unchanged
	EntryRelease EntryKind = "release" // collateral freed, cash unchanged
	EntryCredit  EntryKind = "credit"  // cash increased
	EntryDebit   EntryKind = "debit"   // cash decreased
)

// JournalEntry is an immutable record of a single cash or collateral
// change. The journal is the source of truth for account state; cash and
// reserved balances are always derivable by folding it from the start.
type JournalEntry struct {
	Kind     EntryKind `csv:"kind"`
	Date     time.Time `csv:"date"`
	Amount   float64   `csv:"amount"`
	Cash     float64   `csv:"cash"`     // balance after this entry
	Reserved float64   `csv:"reserved"` // balance after this entry
	Note     string    `csv:"note"`
}
