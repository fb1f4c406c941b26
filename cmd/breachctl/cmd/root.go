// Package cmd contains the CLI commands for breachwatch.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/breachwatch/internal/storage"
)

var (
	// Used for flags
	verbose bool
	dbPath  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "breachctl",
	Short: "BreachWatch - Email breach monitoring",
	Long: `BreachWatch monitors email addresses against a breach intelligence
provider and reports newly detected exposures.

Examples:
  # Check a single address right now
  breachctl check alice@example.com

  # Add an address to the watch list
  breachctl watch add --owner ops alice@example.com

  # Run a full batch over all watched addresses
  breachctl run

  # Mint an API token for an owner
  breachctl token --owner ops`,
	// Run when no subcommand is specified
	Run: func(cmd *cobra.Command, args []string) {
		// Show help by default
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "data/breachwatch.db", "database path")
}

// openDatabase opens and migrates the SQLite database shared with the server.
func openDatabase(path string) (storage.Storage, error) {
	store := storage.NewSQLiteStorage(path)
	if err := store.Open(); err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return store, nil
}

// PrintError prints an error message and exits if fatal is true.
func PrintError(msg string, fatal bool) {
	fmt.Fprintln(os.Stderr, "Error:", msg)
	if fatal {
		os.Exit(1)
	}
}
