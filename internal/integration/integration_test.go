// Package integration provides end-to-end tests for the full backtest
// pipeline: synthetic data generation, CSV load, simulation, reporting
// and persistence.
package integration

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"csp-backtester/internal/backtest"
	"csp-backtester/internal/config"
	"csp-backtester/internal/data"
	"csp-backtester/internal/ledger"
	"csp-backtester/internal/report"
	"csp-backtester/internal/store"
)

// TestEndToEndPipeline drives the whole system the way the run command
// does: generate a universe, round-trip it through CSV, simulate, build
// the report, write outputs and persist the run, then read it back.
func TestEndToEndPipeline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	root := t.TempDir()
	priceDir := filepath.Join(root, "prices")
	outDir := filepath.Join(root, "out")
	dbPath := filepath.Join(root, "runs.db")

	start := time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)
	universe := data.GenerateUniverse([]string{"AAA", "BBB", "CCC"}, start, 500, 42)
	for _, s := range universe {
		if err := data.WriteSeriesFile(filepath.Join(priceDir, s.Instrument+".csv"), s); err != nil {
			t.Fatalf("write series: %v", err)
		}
	}

	series, err := data.LoadSeriesDir(priceDir)
	if err != nil {
		t.Fatalf("load series: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("loaded %d series, want 3", len(series))
	}

	cfg := config.DefaultEngineConfig()
	cfg.MinVolRank = 0.2
	cfg.MinYieldPer30Days = 0

	engine := backtest.NewEngine(cfg, zerolog.Nop())
	res, err := engine.Run(series)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Trades) == 0 {
		t.Fatal("expected trades over 500 days")
	}

	rep := report.Build(res)
	if len(rep.Equity) != len(res.Calendar) || len(rep.Utilization) != len(res.Calendar) {
		t.Fatalf("report paths do not cover the calendar")
	}

	// The journal must reproduce the reported ending cash.
	cash, _ := ledger.FoldBalances(res.StartingCash, res.Journal)
	if math.Abs(cash-rep.Summary.EndingCash) > 1e-6 {
		t.Errorf("folded cash %v != summary ending cash %v", cash, rep.Summary.EndingCash)
	}

	// Realized PnL and premium held as open credit fully explain the
	// cash change.
	openCredit := 0.0
	for _, p := range res.OpenPositions {
		openCredit += p.EntryCredit * cfg.ContractMultiplier
	}
	wantCash := res.StartingCash + rep.Summary.TotalPnL + openCredit
	if math.Abs(cash-wantCash) > 1e-6 {
		t.Errorf("cash %v not explained by pnl+open credit %v", cash, wantCash)
	}

	for _, name := range []struct {
		file  string
		write func() error
	}{
		{"trades.csv", func() error { return data.WriteTrades(filepath.Join(outDir, "trades.csv"), res.Trades) }},
		{"equity.csv", func() error { return data.WriteEquity(filepath.Join(outDir, "equity.csv"), rep.Equity) }},
		{"utilization.csv", func() error { return data.WriteUtilization(filepath.Join(outDir, "utilization.csv"), rep.Utilization) }},
		{"journal.csv", func() error { return data.WriteJournal(filepath.Join(outDir, "journal.csv"), res.Journal) }},
	} {
		if err := name.write(); err != nil {
			t.Fatalf("write %s: %v", name.file, err)
		}
		if _, err := os.Stat(filepath.Join(outDir, name.file)); err != nil {
			t.Errorf("%s not written: %v", name.file, err)
		}
	}

	st, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer st.Close()

	runID, err := st.SaveRun(ctx, "integration", rep.Summary, res.Trades, res.Journal, rep.Equity)
	if err != nil {
		t.Fatalf("save run: %v", err)
	}

	runs, err := st.ListRuns(ctx)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != runID || runs[0].TradeCount != len(res.Trades) {
		t.Fatalf("run listing = %+v", runs)
	}

	gotTrades, err := st.GetTrades(ctx, runID)
	if err != nil {
		t.Fatalf("get trades: %v", err)
	}
	if len(gotTrades) != len(res.Trades) {
		t.Fatalf("persisted %d trades, want %d", len(gotTrades), len(res.Trades))
	}
	for i := range gotTrades {
		if gotTrades[i].Instrument != res.Trades[i].Instrument ||
			math.Abs(gotTrades[i].PnL-res.Trades[i].PnL) > 1e-9 {
			t.Errorf("trade %d round-trip mismatch: %+v vs %+v", i, gotTrades[i], res.Trades[i])
		}
	}

	gotJournal, err := st.GetJournal(ctx, runID)
	if err != nil {
		t.Fatalf("get journal: %v", err)
	}
	if len(gotJournal) != len(res.Journal) {
		t.Fatalf("persisted %d journal entries, want %d", len(gotJournal), len(res.Journal))
	}
}
