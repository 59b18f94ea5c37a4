// Package main implements the chefbook CLI: recipes, meal plans, shopping list,
// cooking diary and the chef assistant from a terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"chefbook/internal/app"
	"chefbook/internal/config"
	"chefbook/internal/logging"
)

var (
	// configPath points at an optional YAML config file
	configPath string
	// version information
	version = "dev"

	application *app.App

	// openApp builds the App for a command run. Tests replace it.
	openApp = func(cfg *config.Config, logger *zap.Logger) (*app.App, error) {
		return app.NewApp(cfg, logger)
	}
)

var (
	// errStorage is returned when a store operation reported failure. The cause has
	// already been logged.
	errStorage = errors.New("penyimpanan gagal, lihat log untuk detail")
	// errPlanFailed covers every reason the planner produced no plan.
	errPlanFailed = errors.New("chef AI gagal membuat rencana, pastikan API key sudah benar di pengaturan")
	errEmptyKey   = errors.New("API key tidak boleh kosong")
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := execute(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "chefbook",
	Short: "Personal cooking companion",
	Long: `chefbook browses TheMealDB recipes, keeps a shopping list and a cooking diary,
generates weekly meal plans and answers cooking questions with Gemini.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "chefbook.yaml", "path to config file")
}

func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return err
	}
	application, err = openApp(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize app: %w", err)
	}
	return nil
}

// execute runs the command line and releases the App whether or not the
// command succeeded.
func execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if closeErr := teardown(); err == nil {
		err = closeErr
	}
	return err
}

func teardown() error {
	if application == nil {
		return nil
	}
	_ = application.Logger.Sync()
	err := application.Close()
	application = nil
	return err
}

// check converts a store success flag into an error.
func check(ok bool) error {
	if !ok {
		return errStorage
	}
	return nil
}
