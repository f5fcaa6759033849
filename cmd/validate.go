package main

import (
	"github.com/spf13/cobra"

	"github.com/medregistry/provider-cli/internal/validate"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run the validation stage for one provider",
	Long: `Normalize, score and flag one provider's fields from submitted and
extracted sources, persist the validated record, and print it.

A provider whose computed status is NEEDS_REVIEW or FAIL still exits 0;
only unreadable input files are a process error.

Examples:
  providerctl validate --provider P001 --submitted form.json --extracted license.json
  providerctl validate --provider P002 --submitted form.json`,
	RunE: runValidate,
}

func init() {
	f := validateCmd.Flags()
	f.String("provider", "", "provider id (required)")
	f.String("submitted", "", "path to submitted-data JSON field map")
	f.String("extracted", "", "path to extracted-data JSON field map")
	_ = validateCmd.MarkFlagRequired("provider")

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	providerID, _ := cmd.Flags().GetString("provider")
	submittedPath, _ := cmd.Flags().GetString("submitted")
	extractedPath, _ := cmd.Flags().GetString("extracted")

	submitted, err := loadFieldMap(submittedPath)
	if err != nil {
		return err
	}
	extracted, err := loadFieldMap(extractedPath)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	st := openStores(ctx, cfg)
	defer st.close()

	rec := validate.New(cfg.Validate).Run(providerID, submitted, extracted)
	if err := st.validated.Put(providerID, *rec); err != nil {
		return err
	}
	if st.audit != nil {
		_ = st.audit.Record(ctx, providerID, "validate", string(rec.ValidationStatus), rec.OverallConfidence)
	}

	return printRecord(rec)
}
