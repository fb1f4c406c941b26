package cmd

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/good-yellow-bee/breachwatch/internal/models"
)

var (
	watchOwner    string
	watchIdentity bool
)

// watchCmd represents the watch command group
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Manage the watch list",
	Long: `Commands for managing monitored email addresses.

These commands operate directly on the database file and are intended
for operators; end users manage their addresses through the REST API.

Examples:
  # Add an address to the watch list
  breachctl watch add --owner ops alice@example.com

  # Mark an owner's primary account address (cannot be removed later)
  breachctl watch add --owner ops --identity ops@example.com

  # List watched addresses
  breachctl watch list

  # Stop monitoring an address
  breachctl watch rm --owner ops alice@example.com`,
}

// watchAddCmd adds an address to the watch list
var watchAddCmd = &cobra.Command{
	Use:   "add <email>",
	Short: "Add an address to the watch list",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if watchOwner == "" {
			return fmt.Errorf("--owner is required")
		}

		email := models.NormalizeEmail(args[0])
		if _, err := mail.ParseAddress(email); err != nil {
			return fmt.Errorf("invalid email address %q", args[0])
		}

		store, err := openDatabase(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		now := time.Now().UTC()
		addr := &models.MonitoredAddress{
			ID:         uuid.New().String(),
			OwnerID:    watchOwner,
			Email:      email,
			Status:     models.StatusSafe,
			IsIdentity: watchIdentity,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		if err := store.Addresses().Create(context.Background(), addr); err != nil {
			return fmt.Errorf("add %s: %w", email, err)
		}

		fmt.Printf("Watching %s (owner %s)\n", email, watchOwner)
		return nil
	},
}

// watchListCmd lists watched addresses
var watchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List watched addresses",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openDatabase(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		var addrs []*models.MonitoredAddress
		if watchOwner != "" {
			addrs, err = store.Addresses().ListByOwner(ctx, watchOwner)
		} else {
			addrs, err = store.Addresses().ListAll(ctx)
		}
		if err != nil {
			return fmt.Errorf("list addresses: %w", err)
		}

		if len(addrs) == 0 {
			fmt.Println("No addresses watched.")
			return nil
		}

		fmt.Printf("\n%-30s  %-12s  %-9s  %-8s  %s\n",
			"EMAIL", "OWNER", "STATUS", "BREACHES", "LAST CHECKED")
		fmt.Println(strings.Repeat("-", 90))

		for _, a := range addrs {
			lastChecked := "never"
			if a.LastCheckedAt != nil {
				lastChecked = a.LastCheckedAt.Format("2006-01-02 15:04:05")
			}
			email := a.Email
			if a.IsIdentity {
				email += " *"
			}
			fmt.Printf("%-30s  %-12s  %-9s  %-8d  %s\n",
				email, a.OwnerID, a.Status, a.BreachCount, lastChecked)
		}
		fmt.Printf("\nTotal: %d address(es), * = account identity\n", len(addrs))

		return nil
	},
}

// watchRmCmd removes an address from the watch list
var watchRmCmd = &cobra.Command{
	Use:   "rm <email>",
	Short: "Stop monitoring an address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if watchOwner == "" {
			return fmt.Errorf("--owner is required")
		}

		email := models.NormalizeEmail(args[0])

		store, err := openDatabase(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		ctx := context.Background()
		addr, err := store.Addresses().GetByOwnerAndEmail(ctx, watchOwner, email)
		if err != nil {
			return fmt.Errorf("find %s: %w", email, err)
		}

		if err := store.Addresses().Delete(ctx, addr.ID); err != nil {
			return fmt.Errorf("remove %s: %w", email, err)
		}

		fmt.Printf("Stopped watching %s\n", email)
		return nil
	},
}

func init() {
	watchCmd.PersistentFlags().StringVar(&watchOwner, "owner", "", "owner ID")
	watchAddCmd.Flags().BoolVar(&watchIdentity, "identity", false, "mark as the owner's account address")

	watchCmd.AddCommand(watchAddCmd)
	watchCmd.AddCommand(watchListCmd)
	watchCmd.AddCommand(watchRmCmd)
	rootCmd.AddCommand(watchCmd)
}
