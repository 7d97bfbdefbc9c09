package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mkessler/ttr/internal/config"
	"github.com/mkessler/ttr/internal/trello"
)

var (
	verbose bool
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "ttr",
	Short: "Trello Time Reporter – log and report time on Trello cards",
	Long: `ttr logs time entries against Trello cards through the card's Power-Up
storage and generates filtered, aggregated reports and exports from it.
Credentials come from TRELLO_API_KEY / TRELLO_API_TOKEN (~/.ttr/.env or
the environment); everything else lives in ~/.ttr/config.json.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		cfg.OutputPaths = []string{"stderr"}
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(boardsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(entriesCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
}

// newClient builds an authenticated API client plus the loaded config.
func newClient() (*trello.Client, config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, config.Config{}, err
	}
	creds, err := config.LoadCredentials()
	if err != nil {
		return nil, config.Config{}, err
	}
	return trello.NewClient(creds.Key, creds.Token), cfg, nil
}

// resolveBoard returns the board from args or the configured default.
func resolveBoard(args []string, cfg config.Config) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if cfg.DefaultBoard != "" {
		return cfg.DefaultBoard, nil
	}
	return "", fmt.Errorf("no board given and no default_board configured (run 'ttr boards' to list yours)")
}
