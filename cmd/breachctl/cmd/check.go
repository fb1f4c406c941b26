package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/breachwatch/internal/models"
	"github.com/good-yellow-bee/breachwatch/internal/normalize"
	"github.com/good-yellow-bee/breachwatch/internal/provider"
	"github.com/good-yellow-bee/breachwatch/internal/risk"
)

var (
	checkBaseURL string
	checkSummary bool
)

// checkCmd runs a one-off provider check without touching the database.
var checkCmd = &cobra.Command{
	Use:   "check <email>",
	Short: "Check an email address against the breach provider",
	Long: `Check a single email address against the breach intelligence
provider and print the exposures found. Nothing is stored; use
"breachctl watch add" to monitor the address continuously.

The provider API key is read from BREACHWATCH_API_KEY if set.

Example:
  breachctl check alice@example.com
  breachctl check --summary alice@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		email := models.NormalizeEmail(args[0])
		if email == "" {
			return fmt.Errorf("email is required")
		}

		client := provider.NewClient(provider.Config{
			BaseURL: checkBaseURL,
			APIKey:  os.Getenv("BREACHWATCH_API_KEY"),
		})

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if checkSummary {
			return runSummaryCheck(ctx, client, email)
		}

		resp, err := client.BreachAnalytics(ctx, email)
		if err != nil {
			if provider.IsNotFound(err) {
				fmt.Printf("%s: no known exposures\n", email)
				return nil
			}
			return fmt.Errorf("check %s: %w", email, err)
		}

		normalizer := normalize.New(nil)
		records := normalizer.Records(resp.ExposedBreaches.Details, resp.Metrics)
		score := risk.Score(records, resp.Metrics)
		band := models.BandForScore(score)

		fmt.Printf("\n%s: %d exposure(s), risk score %d (%s)\n\n", email, len(records), score, band)

		if len(records) == 0 {
			return nil
		}

		fmt.Printf("%-30s  %-12s  %-14s  %s\n", "BREACH", "DATE", "PASSWORD RISK", "EXPOSED DATA")
		fmt.Println(strings.Repeat("-", 100))
		for _, rec := range records {
			date := rec.Date
			if date == "" {
				date = "unknown"
			}
			fmt.Printf("%-30s  %-12s  %-14s  %s\n",
				rec.Name, date, rec.PasswordRisk, strings.Join(rec.ExposedData, ", "))
		}
		fmt.Println()
		return nil
	},
}

// runSummaryCheck hits the cheaper summary endpoint and prints breach names
// only.
func runSummaryCheck(ctx context.Context, client *provider.Client, email string) error {
	resp, err := client.CheckEmail(ctx, email)
	if err != nil {
		if provider.IsNotFound(err) {
			fmt.Printf("%s: no known exposures\n", email)
			return nil
		}
		return fmt.Errorf("check %s: %w", email, err)
	}

	names := resp.BreachNames()
	fmt.Printf("%s: %d exposure(s)\n", email, len(names))
	for _, name := range names {
		fmt.Printf("  %s\n", name)
	}
	return nil
}

func init() {
	checkCmd.Flags().StringVar(&checkBaseURL, "base-url", "", "provider API base URL (default: production)")
	checkCmd.Flags().BoolVar(&checkSummary, "summary", false, "breach names only via the summary endpoint")
	rootCmd.AddCommand(checkCmd)
}
