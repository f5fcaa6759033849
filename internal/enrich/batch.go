package enrich

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/medregistry/provider-cli/internal/model"
	"github.com/medregistry/provider-cli/internal/store"
)

// Batch fans provider enrichment out over a bounded worker pool, persisting
// each result as it completes so an interrupted run loses no finished work.
type Batch struct {
	enricher  *Enricher
	validated *store.Stage[model.ProviderRecord]
	enriched  *store.Stage[model.ProviderRecord]
	audit     *store.AuditLog
	workers   int
}

// NewBatch builds a batch runner. audit may be nil.
func NewBatch(enricher *Enricher, validated, enriched *store.Stage[model.ProviderRecord], audit *store.AuditLog, workers int) *Batch {
	if workers <= 0 {
		workers = 6
	}
	return &Batch{
		enricher:  enricher,
		validated: validated,
		enriched:  enriched,
		audit:     audit,
		workers:   workers,
	}
}

// Run enriches every validated provider not yet present in the enriched
// store, or all of them when force is set. One provider's failure to persist
// aborts the batch (silent data loss is unacceptable); lookup failures do
// not, they degrade inside the Enricher. Returns the number of providers
// enriched and persisted, so the count stays truthful alongside an error.
func (b *Batch) Run(ctx context.Context, force bool) (int, error) {
	validated, err := b.validated.Load()
	if err != nil {
		return 0, err
	}
	already, err := b.enriched.Load()
	if err != nil {
		return 0, err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	var done atomic.Int64
	for providerID, rec := range validated {
		if _, ok := already[providerID]; ok && !force {
			zap.L().Debug("provider already enriched, skipping",
				zap.String("provider_id", providerID))
			continue
		}

		providerID, rec := providerID, rec
		g.Go(func() error {
			b.enricher.Enrich(ctx, &rec)

			if err := b.enriched.Put(providerID, rec); err != nil {
				return err
			}
			done.Add(1)
			if b.audit != nil {
				if err := b.audit.Record(ctx, providerID, "enrich", string(rec.ValidationStatus), rec.CombinedConfidence); err != nil {
					zap.L().Warn("audit write failed",
						zap.String("provider_id", providerID), zap.Error(err))
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return int(done.Load()), err
	}
	return int(done.Load()), nil
}
