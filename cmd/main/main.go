package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"spareparts/catalog/internal/config"
	"spareparts/catalog/internal/container"
	"spareparts/catalog/internal/service"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:           "catalog",
	Short:         "Build and maintain the spare-parts catalog file",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var buildCmd = &cobra.Command{
	Use:   "build [batch files...]",
	Short: "Append batches to the catalog, save it and publish the result",
	Long: `Runs the given batch files in order, or every *.yaml file in
catalog.batches_dir when none are given. The catalog file is only written
when every batch succeeds.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd.Context(), func(ctx context.Context, app *container.Container) error {
			report, err := app.Build(ctx, args)
			if errors.Is(err, service.ErrPublish) {
				log.Warnf("⚠️ Catalog %s saved with %d parts, but publishing failed", report.Path, report.TotalParts)
			}
			return err
		})
	},
}

var recountCmd = &cobra.Command{
	Use:   "recount",
	Short: "Recompute totalParts and save the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd.Context(), func(ctx context.Context, app *container.Container) error {
			_, _, err := app.Service.Recount(ctx)
			return err
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the part count of every subcategory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withContainer(cmd.Context(), func(ctx context.Context, app *container.Container) error {
			_, _, err := app.Service.Stats(ctx)
			return err
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./config.yaml)")
	rootCmd.AddCommand(buildCmd, recountCmd, statsCmd)
}

func withContainer(ctx context.Context, fn func(context.Context, *container.Container) error) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if err := setupLogging(cfg.Log); err != nil {
		return err
	}
	log.Debug("Configuration loaded successfully")

	app, err := container.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	return fn(ctx, app)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		log.Fatalf("❌ %v", err)
	}
}
