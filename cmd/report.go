package main

import (
	"github.com/spf13/cobra"

	"github.com/medregistry/provider-cli/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export the provider directory from QA results",
	Long: `Write the directory CSVs (all, verified-only, failed-or-review) and
the Excel summary workbook from the QA store into the output directory.`,
	RunE: runReport,
}

func init() {
	f := reportCmd.Flags()
	f.String("output", "", "output directory (overrides config)")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	st := openStores(ctx, cfg)
	defer st.close()

	records, err := st.qa.Load()
	if err != nil {
		return err
	}

	outputDir, _ := cmd.Flags().GetString("output")
	if outputDir == "" {
		outputDir = cfg.Report.OutputDir
	}

	return report.NewWriter(outputDir).Export(records)
}
