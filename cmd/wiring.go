package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/medregistry/provider-cli/internal/config"
	"github.com/medregistry/provider-cli/internal/enrich"
	"github.com/medregistry/provider-cli/internal/model"
	"github.com/medregistry/provider-cli/internal/resilience"
	"github.com/medregistry/provider-cli/internal/store"
	"github.com/medregistry/provider-cli/pkg/places"
	"github.com/medregistry/provider-cli/pkg/registry"
	"github.com/medregistry/provider-cli/pkg/webscan"
)

// stores bundles the three stage stores plus the audit log.
type stores struct {
	validated *store.Stage[model.ProviderRecord]
	enriched  *store.Stage[model.ProviderRecord]
	qa        *store.Stage[model.ProviderRecord]
	audit     *store.AuditLog
}

// openStores wires the stage stores from configuration. The audit log is
// best-effort: a failure to open it degrades to nil with a warning rather
// than blocking the pipeline.
func openStores(ctx context.Context, cfg *config.Config) *stores {
	s := &stores{
		validated: store.NewStage[model.ProviderRecord](filepath.Join(cfg.Store.DataDir, cfg.Store.ValidatedFile)),
		enriched:  store.NewStage[model.ProviderRecord](filepath.Join(cfg.Store.DataDir, cfg.Store.EnrichedFile)),
		qa:        store.NewStage[model.ProviderRecord](filepath.Join(cfg.Store.DataDir, cfg.Store.QAFile)),
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Store.AuditDB), 0o755); err == nil {
		audit, err := store.NewAuditLog(cfg.Store.AuditDB)
		if err == nil {
			if err := audit.Migrate(ctx); err == nil {
				s.audit = audit
			} else {
				audit.Close() //nolint:errcheck
			}
		}
	}
	if s.audit == nil {
		zap.L().Warn("audit log unavailable, continuing without it",
			zap.String("path", cfg.Store.AuditDB))
	}
	return s
}

func (s *stores) close() {
	if s.audit != nil {
		s.audit.Close() //nolint:errcheck
	}
}

// buildEnricher assembles the enricher over the configured collaborators.
func buildEnricher(cfg *config.Config) *enrich.Enricher {
	retryCfg := resilience.DefaultRetryConfig().WithMaxAttempts(cfg.Enrich.MaxRetries + 1)

	var reg registry.Client
	if cfg.Enrich.EnableRegistry {
		reg = registry.NewClient(
			registry.WithBaseURL(cfg.Registry.BaseURL),
			registry.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Registry.TimeoutSecs) * time.Second}),
			registry.WithRetry(retryCfg),
			registry.WithSyntheticFallback(cfg.Registry.EnableSynthetic),
		)
	}

	var pl places.Client
	if cfg.Enrich.EnableMaps {
		pl = places.NewClient(
			places.WithAPIKey(cfg.Places.Key),
			places.WithBaseURL(cfg.Places.BaseURL),
			places.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Places.TimeoutSecs) * time.Second}),
			places.WithRateLimit(cfg.Places.RateLimit),
			places.WithRetry(retryCfg),
		)
	}

	var sc webscan.Scanner
	if cfg.Enrich.EnableWebsite {
		sc = webscan.NewScanner(
			webscan.WithTimeout(time.Duration(cfg.Webscan.TimeoutSecs)*time.Second),
			webscan.WithMaxPages(cfg.Webscan.MaxPages),
		)
	}

	return enrich.NewEnricher(cfg.Enrich, reg, pl, sc)
}

// loadFieldMap reads one JSON field map. An empty path yields an empty map;
// an unreadable or unparsable file is a process error (non-zero exit).
func loadFieldMap(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "cmd: read %s", path)
	}
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, eris.Wrapf(err, "cmd: parse %s", path)
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// printRecord pretty-prints a record to stdout.
func printRecord(rec *model.ProviderRecord) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(rec)
}
