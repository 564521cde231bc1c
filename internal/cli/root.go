package cli

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"csp-backtester/internal/config"
	"csp-backtester/internal/logging"
)

// Version information
const Version = "0.1.0"

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	rootCmd := &cobra.Command{
		Use:   "cspbt",
		Short: "Cash-secured put backtester",
		Long: `cspbt simulates selling out-of-the-money puts against fully
reserved cash collateral over historical daily price series, and
reports the realized trades, equity path and collateral utilization.

Use 'cspbt help <command>' for more information about a command.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/csp-backtester)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
	rootCmd.AddCommand(newRunCmd(app))
	rootCmd.AddCommand(newRunsCmd(app))
	rootCmd.AddCommand(newSynthCmd(app))

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"version": Version})
			} else {
				output.Printf("cspbt v%s\n", Version)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration directory path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": config.DefaultConfigDir()})
			} else {
				output.Println(config.DefaultConfigDir())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration files",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	e := cfg.Engine
	output.Bold("Engine Configuration")
	output.Printf("  Starting Cash:      %.2f\n", e.StartingCash)
	output.Printf("  Risk-Free Rate:     %.2f%%\n", e.RiskFreeRate*100)
	output.Printf("  Target |Delta|:     %.2f\n", e.TargetAbsDelta)
	output.Printf("  Target DTE:         %d\n", e.TargetDTE)
	output.Printf("  Min Vol Rank:       %.2f\n", e.MinVolRank)
	output.Printf("  Min Yield / 30d:    %.2f%%\n", e.MinYieldPer30Days*100)
	output.Printf("  Trailing Vol Win:   %d\n", e.TrailingVolWindow)
	output.Printf("  Rank Lookback:      %d\n", e.RankLookbackDays)
	output.Printf("  Contract Multiple:  %.0f\n", e.ContractMultiplier)
	output.Println()

	output.Bold("Data")
	output.Printf("  Price Dir:   %s\n", cfg.Data.PriceDir)
	output.Printf("  Output Dir:  %s\n", cfg.Data.OutputDir)
	output.Printf("  DB Path:     %s\n", cfg.Data.DBPath)

	return nil
}
