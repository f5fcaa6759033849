package enrich

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medregistry/provider-cli/internal/model"
	"github.com/medregistry/provider-cli/internal/store"
	"github.com/medregistry/provider-cli/pkg/places"
	"github.com/medregistry/provider-cli/pkg/registry"
	"github.com/medregistry/provider-cli/pkg/webscan"
)

func testBatch(t *testing.T) (*Batch, *store.Stage[model.ProviderRecord], *store.Stage[model.ProviderRecord]) {
	t.Helper()

	dir := t.TempDir()
	validated := store.NewStage[model.ProviderRecord](filepath.Join(dir, "validated.json"))
	enriched := store.NewStage[model.ProviderRecord](filepath.Join(dir, "enriched.json"))

	e := NewEnricher(testEnrichConfig(),
		&fakeRegistry{match: &registry.Match{Found: true, MatchScore: 0.9}},
		&fakePlaces{loc: &places.Location{Found: true, MatchScore: 0.8}},
		&fakeScanner{res: &webscan.Result{Reachable: true, TrustScore: 0.5}},
	)

	return NewBatch(e, validated, enriched, nil, 3), validated, enriched
}

func TestBatchEnrichesAllValidated(t *testing.T) {
	t.Parallel()

	batch, validated, enriched := testBatch(t)
	for _, id := range []string{"P001", "P002", "P003"} {
		require.NoError(t, validated.Put(id, *validatedRecord(id)))
	}

	n, err := batch.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	all, err := enriched.Load()
	require.NoError(t, err)
	require.Len(t, all, 3)
	for id, rec := range all {
		assert.Greater(t, rec.CombinedConfidence, 0.0, id)
		assert.Len(t, rec.ExternalSignals, 3, id)
	}
}

func TestBatchSkipsAlreadyEnriched(t *testing.T) {
	t.Parallel()

	batch, validated, enriched := testBatch(t)
	require.NoError(t, validated.Put("P001", *validatedRecord("P001")))
	require.NoError(t, validated.Put("P002", *validatedRecord("P002")))

	done := *validatedRecord("P001")
	done.CombinedConfidence = 0.123
	require.NoError(t, enriched.Put("P001", done))

	n, err := batch.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err := enriched.Load()
	require.NoError(t, err)
	// The pre-existing record was left untouched.
	assert.Equal(t, 0.123, all["P001"].CombinedConfidence)
	assert.NotEqual(t, 0.123, all["P002"].CombinedConfidence)
}

func TestBatchForceReEnriches(t *testing.T) {
	t.Parallel()

	batch, validated, enriched := testBatch(t)
	require.NoError(t, validated.Put("P001", *validatedRecord("P001")))

	stale := *validatedRecord("P001")
	stale.CombinedConfidence = 0.123
	require.NoError(t, enriched.Put("P001", stale))

	n, err := batch.Run(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	all, err := enriched.Load()
	require.NoError(t, err)
	assert.NotEqual(t, 0.123, all["P001"].CombinedConfidence)
}

func TestBatchPersistFailureNotCounted(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	validated := store.NewStage[model.ProviderRecord](filepath.Join(dir, "validated.json"))
	enriched := store.NewStage[model.ProviderRecord](filepath.Join(dir, "enriched.json"))

	// A non-finite match score cannot be encoded, so the store rejects the
	// record and the provider never persists.
	e := NewEnricher(testEnrichConfig(),
		&fakeRegistry{match: &registry.Match{Found: true, MatchScore: math.Inf(1)}},
		&fakePlaces{loc: &places.Location{Found: true, MatchScore: 0.8}},
		&fakeScanner{res: &webscan.Result{Reachable: true, TrustScore: 0.5}},
	)
	batch := NewBatch(e, validated, enriched, nil, 3)

	require.NoError(t, validated.Put("P001", *validatedRecord("P001")))

	n, err := batch.Run(context.Background(), false)
	require.Error(t, err)
	assert.Zero(t, n)
}

func TestBatchEmptyValidatedStore(t *testing.T) {
	t.Parallel()

	batch, _, _ := testBatch(t)
	n, err := batch.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Zero(t, n)
}
