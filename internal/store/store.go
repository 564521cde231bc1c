// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"csp-backtester/internal/models"
)

// RunRecord identifies one persisted simulation run.
type RunRecord struct {
	ID           int64
	CreatedAt    time.Time
	Label        string
	StartingCash float64
	EndingCash   float64
	TradeCount   int
	TotalPnL     float64
	WinRate      float64
}

// ResultStore defines the interface for persisting simulation results.
type ResultStore interface {
	SaveRun(ctx context.Context, label string, summary models.Summary,
		trades []models.TradeRecord, journal []models.JournalEntry,
		equity []models.EquityPoint) (int64, error)
	ListRuns(ctx context.Context) ([]RunRecord, error)
	GetTrades(ctx context.Context, runID int64) ([]models.TradeRecord, error)
	GetJournal(ctx context.Context, runID int64) ([]models.JournalEntry, error)
	GetEquity(ctx context.Context, runID int64) ([]models.EquityPoint, error)
	Close() error
}
