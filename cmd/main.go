package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raohuzaifa081-blip/webotixscrm/internal/app"
	"github.com/raohuzaifa081-blip/webotixscrm/internal/platform/logger"
)

var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "webotixs",
	Short:         "Webotixs agency CRM backend",
	Version:       app.Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema and exit",
	RunE:  runMigrate,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the demo accounts and project if missing",
	Long: `Apply the seed fixture (the embedded default, or seed.file) and exit.

Users are matched by email and projects by client and name, so running
seed repeatedly is safe.`,
	RunE: runSeed,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "path to a YAML config file")
	rootCmd.AddCommand(serveCmd, migrateCmd, seedCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer application.Close()

	if err := application.Start(ctx); err != nil {
		return err
	}
	return application.Run(ctx)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return err
	}
	cfg.DB.AutoMigrate = true

	log, err := logger.NewWithOptions(cfg.LoggerOptions())
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	gdb, err := app.OpenDatabase(log, cfg)
	if err != nil {
		return err
	}
	sqlDB, err := gdb.DB()
	if err == nil {
		defer sqlDB.Close()
	}
	log.Info("Schema migrated", "driver", cfg.DB.Driver)
	return nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return err
	}
	cfg.Seed.Enabled = false

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	application, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer application.Close()

	res, err := application.Seed(ctx)
	if err != nil {
		return err
	}
	application.Log.Info("Seed applied", "users_created", res.UsersCreated, "projects_created", res.ProjectsCreated)
	return nil
}
