package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/breachwatch/internal/monitor"
	"github.com/good-yellow-bee/breachwatch/internal/provider"
)

var runBaseURL string

// runCmd runs a full batch over all watched addresses.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a batch check over all watched addresses",
	Long: `Check every watched address against the breach provider, one at a
time, and persist the results. Detected transitions are recorded as
events; notification delivery is the server's job, so this command
updates state only.

Addresses are paced at the provider's rate limit, so a large watch
list takes at least one second per address. Ctrl-C stops cleanly
between addresses.

Example:
  breachctl run --db data/breachwatch.db`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openDatabase(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		client := provider.NewClient(provider.Config{
			BaseURL: runBaseURL,
			APIKey:  os.Getenv("BREACHWATCH_API_KEY"),
		})

		checker := monitor.NewChecker(client, store.Addresses(), store.Events(), nil)
		runner := monitor.NewRunner(checker, store.Addresses(), verbose)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			fmt.Fprintln(os.Stderr, "stopping after current address...")
			cancel()
		}()

		summary, err := runner.RunAll(ctx)
		if err != nil {
			return fmt.Errorf("batch run: %w", err)
		}

		fmt.Printf("\nChecked:      %d\n", summary.Checked)
		fmt.Printf("New breaches: %d\n", summary.NewBreaches)
		fmt.Printf("Errors:       %d\n", summary.ErrorCount())
		fmt.Printf("Duration:     %s\n", summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond))

		if len(summary.Errors) > 0 {
			fmt.Println("\nFailed addresses:")
			for _, e := range summary.Errors {
				fmt.Printf("  %s (%s): %s\n", e.Email, e.Kind, e.Err)
			}
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runBaseURL, "base-url", "", "provider API base URL (default: production)")
	rootCmd.AddCommand(runCmd)
}
