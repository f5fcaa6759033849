// Package report exports the provider directory from the QA store: CSV
// slices (all/verified/failed) and an Excel summary workbook.
package report

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/medregistry/provider-cli/internal/model"
)

// Output file names under the report output directory.
const (
	FileAll      = "providers_all.csv"
	FileVerified = "providers_verified.csv"
	FileFailed   = "providers_failed.csv"
	FileSummary  = "providers_summary.xlsx"
)

var csvHeader = []string{
	"provider_id",
	"name",
	"phone",
	"address",
	"npi",
	"final_status",
	"final_confidence",
}

// Writer exports directory files into one output directory.
type Writer struct {
	outputDir string
}

// NewWriter creates a Writer targeting the given directory.
func NewWriter(outputDir string) *Writer {
	return &Writer{outputDir: outputDir}
}

// Export writes all four directory files from the QA-stage records. Rows are
// ordered by provider id so repeated exports over the same data are
// identical.
func (w *Writer) Export(records map[string]model.ProviderRecord) error {
	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return eris.Wrapf(err, "report: create dir %s", w.outputDir)
	}

	ids := make([]string, 0, len(records))
	for id := range records {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var all, verified, failed [][]string
	for _, id := range ids {
		rec := records[id]
		row := csvRow(id, rec)
		all = append(all, row)
		if rec.Status == model.StatusVerified {
			verified = append(verified, row)
		} else {
			failed = append(failed, row)
		}
	}

	for _, out := range []struct {
		name string
		rows [][]string
	}{
		{FileAll, all},
		{FileVerified, verified},
		{FileFailed, failed},
	} {
		if err := w.writeCSV(out.name, out.rows); err != nil {
			return err
		}
	}

	if err := w.writeSummary(ids, records); err != nil {
		return err
	}

	zap.L().Info("directory export complete",
		zap.String("output_dir", w.outputDir),
		zap.Int("all", len(all)),
		zap.Int("verified", len(verified)),
		zap.Int("failed", len(failed)),
	)
	return nil
}

func csvRow(id string, rec model.ProviderRecord) []string {
	var name, phone, address, npi string
	if c := rec.Canonical; c != nil {
		name, phone, address, npi = c.Name, c.Phone, c.Address, c.NPI
	} else {
		name = rec.Normalized.Name
		phone = rec.Normalized.Phone
		address = rec.Normalized.Address
	}
	return []string{
		id,
		name,
		phone,
		address,
		npi,
		string(rec.Status),
		strconv.FormatFloat(rec.CombinedConfidence, 'f', 3, 64),
	}
}

func (w *Writer) writeCSV(name string, rows [][]string) error {
	path := filepath.Join(w.outputDir, name)
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "report: create %s", path)
	}
	defer f.Close() //nolint:errcheck

	cw := csv.NewWriter(f)
	if err := cw.Write(csvHeader); err != nil {
		return eris.Wrapf(err, "report: write header %s", path)
	}
	if err := cw.WriteAll(rows); err != nil {
		return eris.Wrapf(err, "report: write rows %s", path)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return eris.Wrapf(err, "report: flush %s", path)
	}
	return nil
}

// writeSummary builds the Excel workbook: a Providers sheet mirroring the
// full CSV plus issues and bucket, and a Summary sheet of status counts.
func (w *Writer) writeSummary(ids []string, records map[string]model.ProviderRecord) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	const providersSheet = "Providers"
	if err := f.SetSheetName("Sheet1", providersSheet); err != nil {
		return eris.Wrap(err, "report: rename sheet")
	}

	header := append(append([]string{}, csvHeader...), "confidence_bucket", "issues")
	for i, col := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(providersSheet, cell, col); err != nil {
			return eris.Wrap(err, "report: write sheet header")
		}
	}

	counts := map[model.FinalStatus]int{}
	for i, id := range ids {
		rec := records[id]
		counts[rec.Status]++

		row := csvRow(id, rec)
		values := make([]any, 0, len(row)+2)
		for _, v := range row {
			values = append(values, v)
		}
		values = append(values, rec.ConfidenceBucket, strings.Join(rec.Issues, ";"))

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(providersSheet, cell, &values); err != nil {
			return eris.Wrapf(err, "report: write row %s", id)
		}
	}

	const summarySheet = "Summary"
	if _, err := f.NewSheet(summarySheet); err != nil {
		return eris.Wrap(err, "report: create summary sheet")
	}
	statuses := []model.FinalStatus{
		model.StatusVerified,
		model.StatusNeedsReview,
		model.StatusFailQA,
		model.StatusRejected,
	}
	if err := f.SetSheetRow(summarySheet, "A1", &[]any{"status", "count"}); err != nil {
		return eris.Wrap(err, "report: write summary header")
	}
	for i, status := range statuses {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(summarySheet, cell, &[]any{string(status), counts[status]}); err != nil {
			return eris.Wrap(err, "report: write summary row")
		}
	}

	path := filepath.Join(w.outputDir, FileSummary)
	if err := f.SaveAs(path); err != nil {
		return eris.Wrapf(err, "report: save %s", path)
	}
	return nil
}
