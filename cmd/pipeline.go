package main

import (
	"encoding/csv"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/medregistry/provider-cli/internal/extract"
	"github.com/medregistry/provider-cli/internal/qa"
	"github.com/medregistry/provider-cli/internal/validate"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run the full extract, validate, enrich and QA pipeline",
	Long: `Run every stage end to end for a single provider or a CSV batch.

With --provider, the submitted and extracted JSON files feed one provider
through all stages and the final record is printed. With --csv, each row is
one provider (a provider_id column keys the row, otherwise the row number
is used) and extracted fields are read per provider from --extracted.

Examples:
  providerctl pipeline --provider P001 --submitted form.json --extracted license.json
  providerctl pipeline --csv providers.csv --extracted extracted.json --workers 8`,
	RunE: runPipeline,
}

func init() {
	f := pipelineCmd.Flags()
	f.String("provider", "", "single provider id")
	f.String("submitted", "", "path to submitted-data JSON field map (single provider)")
	f.String("csv", "", "path to a CSV of submitted provider rows")
	f.String("extracted", "", "path to extracted-data JSON or YAML (flat map or provider_id keyed)")
	f.Int("workers", 0, "enrichment worker pool size (0=use config default)")
	pipelineCmd.MarkFlagsOneRequired("provider", "csv")
	pipelineCmd.MarkFlagsMutuallyExclusive("provider", "csv")

	rootCmd.AddCommand(pipelineCmd)
}

func runPipeline(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	providerID, _ := cmd.Flags().GetString("provider")
	submittedPath, _ := cmd.Flags().GetString("submitted")
	csvPath, _ := cmd.Flags().GetString("csv")
	extractedPath, _ := cmd.Flags().GetString("extracted")
	workers, _ := cmd.Flags().GetInt("workers")
	if workers <= 0 {
		workers = cfg.Enrich.Workers
	}

	// Assemble the submitted field map per provider.
	submitted := map[string]map[string]any{}
	if csvPath != "" {
		rows, err := readProviderCSV(csvPath)
		if err != nil {
			return err
		}
		submitted = rows
	} else {
		fields, err := loadFieldMap(submittedPath)
		if err != nil {
			return err
		}
		submitted[providerID] = fields
	}

	source := extract.NewFileSource(extractedPath)

	st := openStores(ctx, cfg)
	defer st.close()

	validator := validate.New(cfg.Validate)
	enricher := buildEnricher(cfg)
	classifier := qa.NewClassifier(cfg.QA)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for id, fields := range submitted {
		id, fields := id, fields
		g.Go(func() error {
			extracted, err := source.Fields(gctx, id)
			if err != nil {
				return err
			}

			rec := validator.Run(id, fields, extracted)
			if err := st.validated.Put(id, *rec); err != nil {
				return err
			}

			enricher.Enrich(gctx, rec)
			if err := st.enriched.Put(id, *rec); err != nil {
				return err
			}

			classifier.Classify(rec)
			if err := st.qa.Put(id, *rec); err != nil {
				return err
			}

			if st.audit != nil {
				_ = st.audit.Record(gctx, id, "pipeline", string(rec.Status), rec.CombinedConfidence)
			}

			if providerID != "" {
				return printRecord(rec)
			}
			zap.L().Info("pipeline complete for provider",
				zap.String("provider_id", id),
				zap.String("status", string(rec.Status)),
			)
			return nil
		})
	}

	return g.Wait()
}

// readProviderCSV loads a CSV of submitted rows into per-provider field
// maps. The provider_id column keys each row; rows without one fall back to
// their position.
func readProviderCSV(path string) (map[string]map[string]any, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "cmd: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return nil, eris.Wrapf(err, "cmd: read csv header %s", path)
	}

	rows := map[string]map[string]any{}
	for i := 0; ; i++ {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrapf(err, "cmd: read csv row %s", path)
		}

		fields := make(map[string]any, len(header))
		for j, col := range header {
			if j < len(record) {
				fields[col] = record[j]
			}
		}

		id, _ := fields["provider_id"].(string)
		if id == "" {
			id = "row-" + strconv.Itoa(i+1)
		}
		delete(fields, "provider_id")
		rows[id] = fields
	}
	return rows, nil
}
