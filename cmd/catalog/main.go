package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/siherrmann/catalog"
	"github.com/siherrmann/catalog/config"
	"github.com/siherrmann/catalog/helper"
	"github.com/spf13/cobra"
)

var (
	cfg        *config.Config
	configFile string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	rootCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Academic catalog with tiered search",
		Long:  "Catalog stores concepts, skills, courses, tracks, departments and majors in PostgreSQL and serves exact, full-text and trigram search over them.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(configFile)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./catalog.yaml)")

	rootCmd.AddCommand(
		serveCmd(),
		seedCmd(),
		searchCmd(),
	)

	rootCmd.SetContext(ctx)

	err := rootCmd.Execute()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	return helper.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
}

// openCatalog connects using the CATALOG_DB_* environment.
func openCatalog(logger *slog.Logger) (*catalog.Catalog, error) {
	dbConfig, err := helper.NewDatabaseConfiguration()
	if err != nil {
		return nil, fmt.Errorf("database configuration: %w", err)
	}

	c, err := catalog.NewCatalog(dbConfig, cfg.SearchConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	return c, nil
}
