// Package enrich runs the external-signal stage: concurrent registry, maps
// and website lookups per provider, joined into one combined confidence.
package enrich

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/medregistry/provider-cli/internal/config"
	"github.com/medregistry/provider-cli/internal/model"
	"github.com/medregistry/provider-cli/pkg/places"
	"github.com/medregistry/provider-cli/pkg/registry"
	"github.com/medregistry/provider-cli/pkg/webscan"
)

// websiteKeys are the raw payload keys probed for a scrapeable site URL.
var websiteKeys = []string{"website", "url", "clinic_website", "site", "hospital_website"}

// Enricher resolves one provider against the three external collaborators.
type Enricher struct {
	cfg      config.EnrichConfig
	registry registry.Client
	places   places.Client
	scanner  webscan.Scanner
}

// NewEnricher builds an Enricher over the given collaborator clients. Any
// client may be nil; a nil client behaves like a disabled source.
func NewEnricher(cfg config.EnrichConfig, reg registry.Client, pl places.Client, sc webscan.Scanner) *Enricher {
	return &Enricher{cfg: cfg, registry: reg, places: pl, scanner: sc}
}

// Enrich runs the three lookups concurrently, waits for all of them, and
// writes signals, combined confidence and the canonical merge onto the
// record. Collaborator failure degrades that source to not-found; Enrich
// itself never fails.
func (e *Enricher) Enrich(ctx context.Context, rec *model.ProviderRecord) {
	norm := rec.Normalized

	var (
		wg        sync.WaitGroup
		regMatch  *registry.Match
		placesLoc *places.Location
		scan      *webscan.Result
		signals   = make(map[string]model.ExternalSignal, 3)
		mu        sync.Mutex
	)

	record := func(source string, sig model.ExternalSignal) {
		mu.Lock()
		signals[source] = sig
		mu.Unlock()
	}

	if e.cfg.EnableRegistry && e.registry != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			callCtx, cancel := e.callContext(ctx)
			defer cancel()

			m, err := e.registry.BestMatch(callCtx, registry.Query{
				Name:           norm.Name,
				Specialization: strings.Join(norm.Specializations, ","),
				Address:        norm.Address,
				Phone:          norm.Phone,
				Number:         norm.Registration,
			})
			if err != nil {
				zap.L().Warn("registry lookup failed",
					zap.String("provider_id", rec.ProviderID), zap.Error(err))
				record(model.SourceRegistry, model.ExternalSignal{Error: err.Error()})
				return
			}
			regMatch = m
			record(model.SourceRegistry, model.ExternalSignal{
				Found:      m.Found,
				MatchScore: m.MatchScore,
				Evidence:   m,
			})
		}()
	}

	if e.cfg.EnableMaps && e.places != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			callCtx, cancel := e.callContext(ctx)
			defer cancel()

			loc, err := e.places.EnrichLocation(callCtx, norm.Name, norm.Address)
			if err != nil {
				zap.L().Warn("places lookup failed",
					zap.String("provider_id", rec.ProviderID), zap.Error(err))
				record(model.SourceMaps, model.ExternalSignal{Error: err.Error()})
				return
			}
			placesLoc = loc
			record(model.SourceMaps, model.ExternalSignal{
				Found:      loc.Found,
				MatchScore: loc.MatchScore,
				Evidence:   loc,
			})
		}()
	}

	if e.cfg.EnableWebsite && e.scanner != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			callCtx, cancel := e.callContext(ctx)
			defer cancel()

			siteURL := candidateWebsite(rec)
			if siteURL == "" {
				record(model.SourceWebsite, model.ExternalSignal{})
				return
			}

			res, err := e.scanner.Scrape(callCtx, siteURL, norm.Name, strings.Join(norm.Specializations, ","))
			if err != nil {
				zap.L().Warn("website scan failed",
					zap.String("provider_id", rec.ProviderID), zap.Error(err))
				record(model.SourceWebsite, model.ExternalSignal{Error: err.Error()})
				return
			}
			scan = res
			record(model.SourceWebsite, model.ExternalSignal{
				Found:      res.Reachable,
				MatchScore: res.TrustScore,
				Evidence:   res,
			})
		}()
	}

	// Join barrier: the combined score exists only once every source has
	// resolved or failed.
	wg.Wait()

	for _, source := range []string{model.SourceRegistry, model.SourceMaps, model.SourceWebsite} {
		if _, ok := signals[source]; !ok {
			signals[source] = model.ExternalSignal{}
		}
	}

	rec.ExternalSignals = signals
	rec.CombinedConfidence = e.combine(signals)
	rec.Canonical = mergeCanonical(rec, regMatch, placesLoc, scan)
	rec.Timestamp = time.Now().UTC()

	zap.L().Info("enrichment complete",
		zap.String("provider_id", rec.ProviderID),
		zap.Float64("combined_confidence", rec.CombinedConfidence),
	)
}

func (e *Enricher) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := time.Duration(e.cfg.CallTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 6 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

// combine blends per-source match scores by the configured weights, clamped
// at the boundary so no weight configuration can leak a value outside [0,1].
func (e *Enricher) combine(signals map[string]model.ExternalSignal) float64 {
	sum := e.cfg.RegistryWeight*signals[model.SourceRegistry].MatchScore +
		e.cfg.MapsWeight*signals[model.SourceMaps].MatchScore +
		e.cfg.WebsiteWeight*signals[model.SourceWebsite].MatchScore
	return round3(clamp01(sum))
}

// mergeCanonical assembles the best-available contact view: validated data
// first, then places, then website evidence.
func mergeCanonical(rec *model.ProviderRecord, reg *registry.Match, loc *places.Location, scan *webscan.Result) *model.Canonical {
	c := &model.Canonical{
		Name:    rec.Normalized.Name,
		Phone:   rec.Normalized.Phone,
		Email:   rec.Normalized.Email,
		Address: rec.Normalized.Address,
	}

	if c.Phone == "" && loc != nil {
		c.Phone = loc.Phone
	}
	if c.Phone == "" && scan != nil && len(scan.Phones) > 0 {
		c.Phone = scan.Phones[0]
	}

	if c.Email == "" && scan != nil && len(scan.Emails) > 0 {
		c.Email = scan.Emails[0]
	}

	if c.Address == "" && loc != nil {
		c.Address = loc.FormattedAddress
	}
	if c.Address == "" && scan != nil && len(scan.Addresses) > 0 {
		c.Address = scan.Addresses[0]
	}

	if reg != nil && reg.Found {
		c.NPI = reg.Number
	}
	return c
}

// candidateWebsite probes the raw payloads for a scrapeable URL.
func candidateWebsite(rec *model.ProviderRecord) string {
	for _, raw := range []map[string]any{rec.RawExtracted, rec.RawSubmitted} {
		for _, key := range websiteKeys {
			if v, ok := raw[key].(string); ok {
				if u := strings.TrimSpace(v); u != "" {
					return u
				}
			}
		}
	}
	return ""
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
