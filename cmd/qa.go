package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/medregistry/provider-cli/internal/model"
	"github.com/medregistry/provider-cli/internal/qa"
)

var qaCmd = &cobra.Command{
	Use:   "qa",
	Short: "Classify enriched providers into final statuses",
	Long: `Run the verification classifier over every enriched provider and
persist the QA results. Every provider is written with an explicit status
and issues list; business-level rejection still exits 0.`,
	RunE: runQA,
}

func init() {
	rootCmd.AddCommand(qaCmd)
}

func runQA(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	st := openStores(ctx, cfg)
	defer st.close()

	enriched, err := st.enriched.Load()
	if err != nil {
		return err
	}

	classifier := qa.NewClassifier(cfg.QA)
	results := make(map[string]model.ProviderRecord, len(enriched))
	for providerID, rec := range enriched {
		classifier.Classify(&rec)
		results[providerID] = rec

		if st.audit != nil {
			_ = st.audit.Record(ctx, providerID, "qa", string(rec.Status), rec.CombinedConfidence)
		}
	}

	if err := st.qa.PutAll(results); err != nil {
		return err
	}

	zap.L().Info("qa complete", zap.Int("providers", len(results)))
	return nil
}
