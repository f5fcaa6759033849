package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/medregistry/provider-cli/internal/enrich"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Enrich validated providers with external signals",
	Long: `Run registry, maps and website lookups for every validated provider
and persist the combined confidence. Providers already present in the
enriched store are skipped unless --force is set. Each provider is
persisted as it completes, so an interrupted batch loses no finished work.

Examples:
  providerctl enrich
  providerctl enrich --workers 10 --force`,
	RunE: runEnrich,
}

func init() {
	f := enrichCmd.Flags()
	f.Int("workers", 0, "worker pool size (0=use config default)")
	f.Bool("force", false, "re-enrich providers already in the enriched store")

	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	workers, _ := cmd.Flags().GetInt("workers")
	force, _ := cmd.Flags().GetBool("force")
	if workers <= 0 {
		workers = cfg.Enrich.Workers
	}

	st := openStores(ctx, cfg)
	defer st.close()

	batch := enrich.NewBatch(buildEnricher(cfg), st.validated, st.enriched, st.audit, workers)
	n, err := batch.Run(ctx, force)
	if err != nil {
		return err
	}

	zap.L().Info("enrichment batch complete", zap.Int("providers", n))
	return nil
}
