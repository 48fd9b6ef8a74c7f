// Package cmd provides CLI commands for assoc-ledger.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/progmawarid-dot/association-najah-ass/pkg/config"
	"github.com/progmawarid-dot/association-najah-ass/pkg/db"
	"github.com/progmawarid-dot/association-najah-ass/pkg/ledger"
	"github.com/progmawarid-dot/association-najah-ass/pkg/pathutil"
	"github.com/progmawarid-dot/association-najah-ass/pkg/seed"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	debug   bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "assoc-ledger",
	Short: "Bookkeeping for associations",
	Long: `assoc-ledger keeps the books of small associations: income and
expense transactions, cash and bank registers, checkbooks and the daily
operations journal.

Example:
  assoc-ledger init --name "Association Najah" --year 2025
  assoc-ledger balance --association 1
  assoc-ledger journal --association 1 --year 2025
  assoc-ledger serve`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logLevel := slog.LevelInfo
		if debug {
			logLevel = slog.LevelDebug
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(journalCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(checkbookCmd)
	rootCmd.AddCommand(statsCmd)
}

// app bundles what the subcommands need.
type app struct {
	cfg          *config.Config
	pathResolver *pathutil.PathResolver
	conn         *db.Connection
	ledger       *ledger.Ledger
}

// openApp loads the configuration, opens the store and builds the ledger.
// Callers must Close the returned connection.
func openApp() *app {
	slog.Debug("Loading configuration")

	cfg, err := config.Load(cfgFile)
	exitOnError(err, "failed to load configuration")

	if err := cfg.Validate([]string{"ledger", "dataDir"}); err != nil {
		exitOnError(err, "invalid configuration")
	}
	if cfg.Debug && !debug {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	pathResolver := pathutil.New(pathutil.Config{
		DataDir:      cfg.Ledger.DataDir,
		DatabasePath: cfg.Ledger.DBPath,
		ExportsDir:   cfg.Ledger.ExportsDir,
	})

	defaults, err := seed.Load(cfg.Ledger.SeedFile)
	exitOnError(err, "failed to load seed file")

	dbPath := pathResolver.GetDatabasePath()
	slog.Debug("Opening database", "path", dbPath)

	conn, err := db.Open(dbPath)
	exitOnError(err, "failed to open database")

	opts := ledger.DefaultOptions()
	opts.Logger = slog.Default()
	opts.MirrorBank = cfg.Ledger.MirrorBank
	opts.Seed = defaults

	return &app{
		cfg:          cfg,
		pathResolver: pathResolver,
		conn:         conn,
		ledger:       ledger.New(conn, opts),
	}
}

// Helper function to handle errors and exit.
func exitOnError(err error, msg string) {
	if err != nil {
		slog.Error(msg, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}
