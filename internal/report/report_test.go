package report

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/medregistry/provider-cli/internal/model"
)

func testRecords() map[string]model.ProviderRecord {
	return map[string]model.ProviderRecord{
		"P001": {
			ProviderID:         "P001",
			Canonical:          &model.Canonical{Name: "Anjali Mehta", Phone: "9876543210", NPI: "1427557893"},
			Status:             model.StatusVerified,
			CombinedConfidence: 0.91,
			ConfidenceBucket:   "HIGH",
		},
		"P002": {
			ProviderID:         "P002",
			Normalized:         model.Normalized{Name: "Rakesh Sharma"},
			Status:             model.StatusRejected,
			CombinedConfidence: 0.12,
			ConfidenceBucket:   "LOW",
			Issues:             []string{"low_combined_confidence"},
		},
		"P003": {
			ProviderID:         "P003",
			Canonical:          &model.Canonical{Name: "Emily Clark"},
			Status:             model.StatusNeedsReview,
			CombinedConfidence: 0.55,
			ConfidenceBucket:   "MEDIUM",
		},
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close() //nolint:errcheck

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestExportWritesAllFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, NewWriter(dir).Export(testRecords()))

	all := readCSV(t, filepath.Join(dir, FileAll))
	require.Len(t, all, 4) // header + 3 rows
	assert.Equal(t, csvHeader, all[0])
	// Rows sort by provider id.
	assert.Equal(t, "P001", all[1][0])
	assert.Equal(t, "P003", all[3][0])

	verified := readCSV(t, filepath.Join(dir, FileVerified))
	require.Len(t, verified, 2)
	assert.Equal(t, "P001", verified[1][0])
	assert.Equal(t, "VERIFIED", verified[1][5])
	assert.Equal(t, "0.910", verified[1][6])

	failed := readCSV(t, filepath.Join(dir, FileFailed))
	assert.Len(t, failed, 3)
}

func TestExportFallsBackToNormalized(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, NewWriter(dir).Export(testRecords()))

	all := readCSV(t, filepath.Join(dir, FileAll))
	// P002 has no canonical merge; the normalized name is used.
	assert.Equal(t, "Rakesh Sharma", all[2][1])
}

func TestExportSummaryWorkbook(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, NewWriter(dir).Export(testRecords()))

	wb, err := excelize.OpenFile(filepath.Join(dir, FileSummary))
	require.NoError(t, err)
	defer wb.Close() //nolint:errcheck

	rows, err := wb.GetRows("Providers")
	require.NoError(t, err)
	require.Len(t, rows, 4)

	summary, err := wb.GetRows("Summary")
	require.NoError(t, err)
	require.Len(t, summary, 5)
	assert.Equal(t, []string{"VERIFIED", "1"}, summary[1])
}

func TestExportEmptyStore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, NewWriter(dir).Export(map[string]model.ProviderRecord{}))

	all := readCSV(t, filepath.Join(dir, FileAll))
	assert.Len(t, all, 1)
}
