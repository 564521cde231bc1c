package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "csp-backtester/internal/errors"
	"csp-backtester/internal/models"
)

// SQLiteStore implements ResultStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based result store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return s, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		created_at DATETIME NOT NULL,
		label TEXT,
		starting_cash REAL NOT NULL,
		ending_cash REAL NOT NULL,
		trade_count INTEGER NOT NULL,
		total_pnl REAL NOT NULL,
		win_rate REAL NOT NULL,
		mean_utilization REAL NOT NULL,
		max_drawdown REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trades (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		instrument TEXT NOT NULL,
		open_date DATETIME NOT NULL,
		expiry_date DATETIME NOT NULL,
		spot_at_open REAL NOT NULL,
		spot_at_expiry REAL NOT NULL,
		strike REAL NOT NULL,
		entry_credit REAL NOT NULL,
		finished_itm INTEGER NOT NULL,
		pnl REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id);

	CREATE TABLE IF NOT EXISTS journal (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		seq INTEGER NOT NULL,
		kind TEXT NOT NULL,
		date DATETIME NOT NULL,
		amount REAL NOT NULL,
		cash REAL NOT NULL,
		reserved REAL NOT NULL,
		note TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_journal_run ON journal(run_id, seq);

	CREATE TABLE IF NOT EXISTS equity (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id),
		date DATETIME NOT NULL,
		equity REAL NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_equity_run ON equity(run_id, date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveRun persists a complete run atomically and returns its id.
func (s *SQLiteStore) SaveRun(ctx context.Context, label string, summary models.Summary,
	trades []models.TradeRecord, journal []models.JournalEntry,
	equity []models.EquityPoint) (int64, error) {

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, apperrors.NewStoreError("save_run", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO runs (created_at, label, starting_cash, ending_cash,
			trade_count, total_pnl, win_rate, mean_utilization, max_drawdown)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC(), label, summary.StartingCash, summary.EndingCash,
		summary.TradeCount, summary.TotalPnL, summary.WinRate,
		summary.MeanUtilization, summary.MaxDrawdown)
	if err != nil {
		return 0, apperrors.NewStoreError("save_run", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return 0, apperrors.NewStoreError("save_run", err)
	}

	for _, t := range trades {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO trades (run_id, instrument, open_date, expiry_date,
				spot_at_open, spot_at_expiry, strike, entry_credit, finished_itm, pnl)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, t.Instrument, t.OpenDate, t.ExpiryDate, t.SpotAtOpen,
			t.SpotAtExpiry, t.Strike, t.EntryCredit, t.FinishedITM, t.PnL); err != nil {
			return 0, apperrors.NewStoreError("save_trades", err)
		}
	}

	for i, e := range journal {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO journal (run_id, seq, kind, date, amount, cash, reserved, note)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, i, string(e.Kind), e.Date, e.Amount, e.Cash, e.Reserved, e.Note); err != nil {
			return 0, apperrors.NewStoreError("save_journal", err)
		}
	}

	for _, p := range equity {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO equity (run_id, date, equity) VALUES (?, ?, ?)`,
			runID, p.Date, p.Equity); err != nil {
			return 0, apperrors.NewStoreError("save_equity", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, apperrors.NewStoreError("save_run", err)
	}
	return runID, nil
}

// ListRuns returns all persisted runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, label, starting_cash, ending_cash,
			trade_count, total_pnl, win_rate
		FROM runs ORDER BY created_at DESC`)
	if err != nil {
		return nil, apperrors.NewStoreError("list_runs", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.Label, &r.StartingCash,
			&r.EndingCash, &r.TradeCount, &r.TotalPnL, &r.WinRate); err != nil {
			return nil, apperrors.NewStoreError("list_runs", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetTrades returns the trade list for a run.
func (s *SQLiteStore) GetTrades(ctx context.Context, runID int64) ([]models.TradeRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT instrument, open_date, expiry_date, spot_at_open,
			spot_at_expiry, strike, entry_credit, finished_itm, pnl
		FROM trades WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, apperrors.NewStoreError("get_trades", err)
	}
	defer rows.Close()

	var out []models.TradeRecord
	for rows.Next() {
		var t models.TradeRecord
		if err := rows.Scan(&t.Instrument, &t.OpenDate, &t.ExpiryDate,
			&t.SpotAtOpen, &t.SpotAtExpiry, &t.Strike, &t.EntryCredit,
			&t.FinishedITM, &t.PnL); err != nil {
			return nil, apperrors.NewStoreError("get_trades", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetJournal returns the journal for a run in append order.
func (s *SQLiteStore) GetJournal(ctx context.Context, runID int64) ([]models.JournalEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, date, amount, cash, reserved, note
		FROM journal WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, apperrors.NewStoreError("get_journal", err)
	}
	defer rows.Close()

	var out []models.JournalEntry
	for rows.Next() {
		var e models.JournalEntry
		var kind string
		if err := rows.Scan(&kind, &e.Date, &e.Amount, &e.Cash, &e.Reserved, &e.Note); err != nil {
			return nil, apperrors.NewStoreError("get_journal", err)
		}
		e.Kind = models.EntryKind(kind)
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetEquity returns the equity path for a run.
func (s *SQLiteStore) GetEquity(ctx context.Context, runID int64) ([]models.EquityPoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, equity FROM equity WHERE run_id = ? ORDER BY date`, runID)
	if err != nil {
		return nil, apperrors.NewStoreError("get_equity", err)
	}
	defer rows.Close()

	var out []models.EquityPoint
	for rows.Next() {
		var p models.EquityPoint
		if err := rows.Scan(&p.Date, &p.Equity); err != nil {
			return nil, apperrors.NewStoreError("get_equity", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
