package cli

import (
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"csp-backtester/internal/backtest"
	"csp-backtester/internal/data"
	"csp-backtester/internal/models"
	"csp-backtester/internal/report"
	"csp-backtester/internal/store"
	"csp-backtester/pkg/utils"
)

// newRunCmd creates the run command: load prices, simulate, report.
func newRunCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a backtest over the configured price directory",
		Long: `Loads every instrument CSV from the price directory, runs the
cash-secured put simulation across the shared calendar, writes trade,
equity, utilization and journal CSVs to the output directory, and
prints summary statistics.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			priceDir, _ := cmd.Flags().GetString("prices")
			if priceDir == "" {
				priceDir = app.Config.Data.PriceDir
			}
			outDir, _ := cmd.Flags().GetString("out")
			if outDir == "" {
				outDir = app.Config.Data.OutputDir
			}
			dbPath, _ := cmd.Flags().GetString("db")
			if dbPath == "" {
				dbPath = app.Config.Data.DBPath
			}
			label, _ := cmd.Flags().GetString("label")

			series, err := data.LoadSeriesDir(priceDir)
			if err != nil {
				return err
			}
			app.Logger.Info().Int("instruments", len(series)).Str("dir", priceDir).Msg("price series loaded")

			engine := backtest.NewEngine(app.Config.Engine, app.Logger)
			res, err := engine.Run(series)
			if err != nil {
				return err
			}

			rep := report.Build(res)

			if err := writeOutputs(outDir, res, rep); err != nil {
				return err
			}

			if dbPath != "" {
				runID, err := saveRun(cmd, dbPath, label, res, rep)
				if err != nil {
					return err
				}
				app.Logger.Info().Int64("run_id", runID).Str("db", dbPath).Msg("run persisted")
			}

			return printSummary(output, rep, res)
		},
	}

	cmd.Flags().String("prices", "", "price CSV directory (overrides config)")
	cmd.Flags().String("out", "", "output directory (overrides config)")
	cmd.Flags().String("db", "", "sqlite path to persist the run (overrides config)")
	cmd.Flags().String("label", "", "label for the persisted run")

	return cmd
}

func writeOutputs(outDir string, res *backtest.Result, rep *report.Report) error {
	if err := data.WriteTrades(filepath.Join(outDir, "trades.csv"), res.Trades); err != nil {
		return err
	}
	if err := data.WriteEquity(filepath.Join(outDir, "equity.csv"), rep.Equity); err != nil {
		return err
	}
	if err := data.WriteUtilization(filepath.Join(outDir, "utilization.csv"), rep.Utilization); err != nil {
		return err
	}
	return data.WriteJournal(filepath.Join(outDir, "journal.csv"), res.Journal)
}

func saveRun(cmd *cobra.Command, dbPath, label string, res *backtest.Result, rep *report.Report) (int64, error) {
	st, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return 0, err
	}
	defer st.Close()

	return st.SaveRun(cmd.Context(), label, rep.Summary, res.Trades, res.Journal, rep.Equity)
}

func printSummary(output *Output, rep *report.Report, res *backtest.Result) error {
	if output.IsJSON() {
		return output.JSON(map[string]interface{}{
			"summary":        rep.Summary,
			"trades":         res.Trades,
			"open_positions": res.OpenPositions,
		})
	}

	s := rep.Summary
	output.Bold("Backtest Summary")
	output.Printf("  Starting Cash:    %s\n", utils.FormatCurrency(s.StartingCash))
	output.Printf("  Ending Cash:      %s\n", utils.FormatCurrency(s.EndingCash))
	output.Printf("  Total PnL:        %s\n", utils.FormatCurrency(s.TotalPnL))
	output.Printf("  Trades:           %d\n", s.TradeCount)
	output.Printf("  Win Rate:         %s\n", utils.FormatPercent(s.WinRate*100))
	output.Printf("  Mean PnL/Trade:   %s\n", utils.FormatCurrency(s.MeanPnLPerTrade))
	output.Printf("  Mean Utilization: %s\n", utils.FormatPercent(s.MeanUtilization*100))
	output.Printf("  Max Drawdown:     %s\n", utils.FormatPercent(s.MaxDrawdown*100))
	output.Printf("  Annualized:       %s\n", utils.FormatPercent(s.AnnualizedReturn*100))
	if len(res.OpenPositions) > 0 {
		output.Println()
		output.Dim("%d position(s) still open at simulation end", len(res.OpenPositions))
	}
	return nil
}

// newRunsCmd lists persisted runs from the result store.
func newRunsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List persisted backtest runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			dbPath, _ := cmd.Flags().GetString("db")
			if dbPath == "" {
				dbPath = app.Config.Data.DBPath
			}
			if dbPath == "" {
				output.Error("no database configured; set data.db_path or pass --db")
				return nil
			}

			st, err := store.NewSQLiteStore(dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.ListRuns(cmd.Context())
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(runs)
			}

			if len(runs) == 0 {
				output.Dim("no runs recorded")
				return nil
			}
			output.Bold("%-5s %-20s %-16s %12s %8s %8s", "ID", "Created", "Label", "PnL", "Trades", "Win%")
			for _, r := range runs {
				output.Printf("%-5d %-20s %-16s %12s %8d %7.1f%%\n",
					r.ID, r.CreatedAt.Format("2006-01-02 15:04"), r.Label,
					utils.FormatCurrency(r.TotalPnL), r.TradeCount, r.WinRate*100)
			}
			return nil
		},
	}

	cmd.Flags().String("db", "", "sqlite path (overrides config)")
	return cmd
}

// newSynthCmd generates a synthetic price universe for demo runs.
func newSynthCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Generate synthetic price CSVs into the price directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			dir, _ := cmd.Flags().GetString("prices")
			if dir == "" {
				dir = app.Config.Data.PriceDir
			}
			days, _ := cmd.Flags().GetInt("days")
			seed, _ := cmd.Flags().GetInt64("seed")
			names, _ := cmd.Flags().GetStringSlice("instruments")

			universe := data.GenerateUniverse(names, synthStartDate, days, seed)
			for _, s := range universe {
				if err := writeSeries(dir, s); err != nil {
					return err
				}
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"instruments": names, "days": days, "dir": dir})
			}
			output.Success("wrote %d synthetic series (%d days each) to %s", len(universe), days, dir)
			return nil
		},
	}

	cmd.Flags().String("prices", "", "target directory (overrides config)")
	cmd.Flags().Int("days", 600, "number of weekdays to generate")
	cmd.Flags().Int64("seed", 42, "random seed")
	cmd.Flags().StringSlice("instruments", []string{"AAA", "BBB", "CCC"}, "instrument names")
	return cmd
}

// Fixed anchor so the same flags always regenerate the same files.
var synthStartDate = time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)

func writeSeries(dir string, s *models.PriceSeries) error {
	return data.WriteSeriesFile(filepath.Join(dir, s.Instrument+".csv"), s)
}
