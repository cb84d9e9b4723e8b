package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"ethicalpulse/dashboard/internal/app"
	"ethicalpulse/dashboard/internal/config"
	"ethicalpulse/dashboard/internal/logging"
)

// storeFlags override the store and seed settings read from the environment.
type storeFlags struct {
	driver   string
	dsn      string
	seedFile string
	noSeed   bool
	dev      bool
}

func (f *storeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.driver, "store-driver", "", "Store driver: memory, sqlite or postgres")
	cmd.Flags().StringVar(&f.dsn, "store-dsn", "", "Store connection string")
	cmd.Flags().StringVar(&f.seedFile, "seed-file", "", "YAML fixtures used instead of the embedded seed data")
	cmd.Flags().BoolVar(&f.noSeed, "no-seed", false, "Do not load seed data into an empty store")
	cmd.Flags().BoolVar(&f.dev, "dev", false, "Human readable debug logging")
}

func (f *storeFlags) apply(cfg *config.Config) {
	if f.driver != "" {
		cfg.Store.Driver = f.driver
	}
	if f.dsn != "" {
		cfg.Store.DSN = f.dsn
	}
	if f.seedFile != "" {
		cfg.Seed.File = f.seedFile
	}
	if f.noSeed {
		cfg.Seed.Enabled = false
	}
	if f.dev {
		cfg.Log.DevMode = true
	}
}

// load reads the environment, applies flag overrides and builds the logger.
func (f *storeFlags) load() (config.Config, logr.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return cfg, logr.Discard(), err
	}
	f.apply(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, logr.Discard(), err
	}
	log, err := logging.New(cfg.Log.DevMode)
	return cfg, log, err
}

func NewServeCmd() *cobra.Command {
	var (
		flags storeFlags
		addr  string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the dashboard HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := flags.load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Serve(ctx)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (defaults to DASHBOARD_ADDR)")
	return cmd
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
