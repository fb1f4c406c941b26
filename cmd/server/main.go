package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/good-yellow-bee/breachwatch/internal/api"
	"github.com/good-yellow-bee/breachwatch/internal/api/health"
	"github.com/good-yellow-bee/breachwatch/internal/metrics"
	"github.com/good-yellow-bee/breachwatch/internal/monitor"
	"github.com/good-yellow-bee/breachwatch/internal/notifier"
	"github.com/good-yellow-bee/breachwatch/internal/provider"
	"github.com/good-yellow-bee/breachwatch/internal/scheduler"
	"github.com/good-yellow-bee/breachwatch/internal/storage"
	"github.com/good-yellow-bee/breachwatch/pkg/config"
)

var (
	configFile string
	httpAddr   string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "breachwatch-server",
	Short: "BreachWatch Server - Email breach monitoring service",
	Long: `BreachWatch Server monitors email addresses against a breach
intelligence provider, persists exposure state, and notifies on newly
detected breaches.`,
	RunE: runServer,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("breachwatch-server %s\n", config.Version)
		fmt.Printf("  commit: %s\n", config.Commit)
		fmt.Printf("  built:  %s\n", config.BuildTime)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (optional)")
	rootCmd.PersistentFlags().StringVarP(&httpAddr, "address", "a", "", "HTTP listen address")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	var cfg *Config

	if configFile != "" {
		var err error
		cfg, err = LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
	} else {
		cfg = DefaultConfig()
	}

	// Override with CLI flags
	if httpAddr != "" {
		cfg.Server.HTTPAddress = httpAddr
	}
	cfg.Verbose = verbose

	// Secrets come from the environment, never from the config file
	jwtSecret := os.Getenv("BREACHWATCH_JWT_SECRET")
	if jwtSecret == "" {
		return fmt.Errorf("BREACHWATCH_JWT_SECRET environment variable is required")
	}

	// Auto-create data directory
	dbDir := filepath.Dir(cfg.Database.Path)
	if err := os.MkdirAll(dbDir, 0750); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	// Initialize storage
	store := storage.NewSQLiteStorage(cfg.Database.Path)
	if err := store.Open(); err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer store.Close()

	if err := store.Migrate(); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	log.Printf("database initialized at %s", cfg.Database.Path)

	// Provider client: one per process, shared by the scheduler and
	// on-demand API checks, so the account-wide pacing holds.
	client := provider.NewClient(provider.Config{
		BaseURL:   cfg.Provider.BaseURL,
		APIKey:    os.Getenv("BREACHWATCH_API_KEY"),
		UserAgent: cfg.Provider.UserAgent,
	})

	dispatcher, err := buildDispatcher(cfg)
	if err != nil {
		return fmt.Errorf("configure notifications: %w", err)
	}
	defer dispatcher.Close()

	checker := monitor.NewChecker(client, store.Addresses(), store.Events(), dispatcher)
	runner := monitor.NewRunner(checker, store.Addresses(), cfg.Verbose)
	sched := scheduler.New(runner, scheduler.Options{
		Interval:   cfg.Monitor.Interval,
		RunOnStart: cfg.Monitor.RunOnStart,
	})

	apiServer, err := api.New(&api.Config{
		Address:           cfg.Server.HTTPAddress,
		JWTSecret:         []byte(jwtSecret),
		TokenTTL:          cfg.API.TokenTTL,
		RateLimitPerIP:    cfg.API.RateLimitPerIP,
		RateLimitPerOwner: cfg.API.RateLimitPerOwner,
		RequestTimeout:    cfg.API.RequestTimeout,
		Verbose:           cfg.Verbose,
	}, store, checker, sched)
	if err != nil {
		return fmt.Errorf("create API server: %w", err)
	}
	apiServer.RegisterHealthChecker(health.NewDatabaseChecker(store.DB()))

	// Setup signal handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("received signal %v, shutting down...", sig)
		cancel()
	}()

	log.Printf("starting breachwatch-server %s", config.Version)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return apiServer.Run(gctx)
	})

	g.Go(func() error {
		err := sched.Run(gctx)
		if err == context.Canceled {
			return nil
		}
		return err
	})

	if cfg.Server.MetricsAddress != "" {
		metricsServer := metrics.NewServer(cfg.Server.MetricsAddress)
		g.Go(metricsServer.Start)
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			return metricsServer.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("run server: %w", err)
	}

	log.Printf("server stopped")
	return nil
}

// buildDispatcher wires the configured notification channels.
func buildDispatcher(cfg *Config) (*notifier.Dispatcher, error) {
	dispatcher := notifier.NewDispatcherWithRateLimit(notifier.RateLimitConfig{
		MaxPerWindow: cfg.Notifications.MaxPerMinute,
		Window:       time.Minute,
		Enabled:      true,
	})

	if cfg.Notifications.Email.Enabled {
		email, err := notifier.NewEmailNotifier(notifier.EmailConfig{
			Host:     cfg.Notifications.Email.Host,
			Port:     cfg.Notifications.Email.Port,
			Username: cfg.Notifications.Email.Username,
			Password: os.Getenv("BREACHWATCH_SMTP_PASSWORD"),
			From:     cfg.Notifications.Email.From,
			CopyTo:   cfg.Notifications.Email.CopyTo,
		})
		if err != nil {
			return nil, err
		}
		dispatcher.Register(email)
	}

	if cfg.Notifications.Webhook.Enabled {
		webhook, err := notifier.NewWebhookNotifier(notifier.WebhookConfig{
			URL: cfg.Notifications.Webhook.URL,
		})
		if err != nil {
			return nil, err
		}
		dispatcher.Register(webhook)
	}

	return dispatcher, nil
}
