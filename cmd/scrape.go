package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okian/hiscores/pkg/logger"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Run a single scrape cycle and exit",
	Long:  "Reads every configured roster, scrapes each profile once, writes the snapshot and exits non-zero if the cycle failed.",
	Args:  cobra.NoArgs,
	RunE:  runScrape,
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, log, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	svc := newService(cfg, log)
	records, err := svc.RunCycle(ctx)
	if err != nil {
		return err
	}
	log.Info(context.WithoutCancel(ctx), "scrape complete",
		logger.Int("records", len(records)),
		logger.String("snapshot", cfg.SnapshotPath),
	)
	return nil
}
