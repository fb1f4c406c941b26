package cmd

import (
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/good-yellow-bee/breachwatch/internal/api/auth"
)

var (
	tokenOwner string
	tokenTTL   time.Duration
)

// tokenCmd mints an API token for an owner.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an API token",
	Long: `Mint a JWT for calling the BreachWatch REST API.

There is no login endpoint; tokens are minted out-of-band with the same
secret the server reads from BREACHWATCH_JWT_SECRET. If the variable is
not set the secret is prompted for without echo.

Example:
  breachctl token --owner ops --ttl 720h`,
	RunE: func(cmd *cobra.Command, args []string) error {
		owner := strings.TrimSpace(tokenOwner)
		if owner == "" {
			return fmt.Errorf("--owner is required")
		}

		secret := os.Getenv("BREACHWATCH_JWT_SECRET")
		if secret == "" {
			fmt.Fprint(os.Stderr, "JWT secret: ")
			raw, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return fmt.Errorf("read secret: %w", err)
			}
			secret = strings.TrimSpace(string(raw))
		}
		if secret == "" {
			return fmt.Errorf("JWT secret is required")
		}

		svc := auth.NewJWTService([]byte(secret), tokenTTL)
		token, err := svc.GenerateToken(owner)
		if err != nil {
			return fmt.Errorf("generate token: %w", err)
		}

		fmt.Println(token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenOwner, "owner", "", "owner ID the token is scoped to")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	tokenCmd.MarkFlagRequired("owner")
	rootCmd.AddCommand(tokenCmd)
}
