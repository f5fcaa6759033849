// Package qa runs the final verification classifier over enriched records.
package qa

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/medregistry/provider-cli/internal/config"
	"github.com/medregistry/provider-cli/internal/model"
	"github.com/medregistry/provider-cli/pkg/places"
	"github.com/medregistry/provider-cli/pkg/registry"
)

// Issue tokens attached by the hard-fail rule set.
const (
	IssueLicenseNotActive = "license_not_active"
	IssueLicenseExpired   = "license_expired"
	IssueMissingLicense   = "missing_license_number"
	IssueAddressMismatch  = "address_mismatch_registry_maps"
	IssueLowConfidence    = "low_combined_confidence"
)

// addressPrefixLen is the window for the registry/maps address consistency
// heuristic: the first characters of the registry address must appear in the
// maps-formatted address.
const addressPrefixLen = 10

// Classifier applies the verification state machine.
type Classifier struct {
	cfg config.QAConfig
}

// NewClassifier builds a Classifier from configuration.
func NewClassifier(cfg config.QAConfig) *Classifier {
	return &Classifier{cfg: cfg}
}

// Classify derives the final status for one enriched record, mutating it in
// place. Hard-fail rules dominate: a disqualifying fact must never be
// laundered into VERIFIED by a high blended score.
func (c *Classifier) Classify(rec *model.ProviderRecord) {
	issues := hardFailures(rec)

	var status model.FinalStatus
	switch {
	case len(issues) > 0:
		status = model.StatusFailQA
	case rec.CombinedConfidence >= c.cfg.VerifyThreshold && rec.ValidationStatus.IsPassClass():
		status = model.StatusVerified
	case rec.CombinedConfidence >= c.cfg.ReviewThreshold:
		status = model.StatusNeedsReview
	default:
		status = model.StatusRejected
		issues = append(issues, IssueLowConfidence)
	}

	rec.Status = status
	rec.Issues = issues
	rec.ConfidenceBucket = c.ConfidenceBucket(rec.CombinedConfidence)
	rec.Timestamp = time.Now().UTC()

	zap.L().Info("qa classification complete",
		zap.String("provider_id", rec.ProviderID),
		zap.String("status", string(status)),
		zap.Float64("combined_confidence", rec.CombinedConfidence),
		zap.Strings("issues", issues),
	)
}

// ConfidenceBucket labels the combined confidence band for reporting.
func (c *Classifier) ConfidenceBucket(combined float64) string {
	switch {
	case combined >= c.cfg.VerifyThreshold:
		return "HIGH"
	case combined >= c.cfg.ReviewThreshold:
		return "MEDIUM"
	}
	return "LOW"
}

// hardFailures collects the disqualifying facts that short-circuit to
// FAIL_QA regardless of confidence.
func hardFailures(rec *model.ProviderRecord) []string {
	var issues []string

	if lic := rec.License; lic != nil {
		// The raw status string decides, not the derived state: a SUSPENDED
		// license with missing dates resolves to INCOMPLETE yet must still
		// disqualify.
		if lic.Status != "" && !strings.EqualFold(lic.Status, "ACTIVE") {
			issues = append(issues, IssueLicenseNotActive)
		}
		if lic.State == model.LicenseExpired {
			issues = append(issues, IssueLicenseExpired)
		}
	}

	if rec.Normalized.Registration == "" {
		issues = append(issues, IssueMissingLicense)
	}

	if mismatch := addressMismatch(rec); mismatch {
		issues = append(issues, IssueAddressMismatch)
	}

	return issues
}

// addressMismatch checks registry-reported and maps-reported addresses for
// gross disagreement. Both must be present for the check to fire.
func addressMismatch(rec *model.ProviderRecord) bool {
	regSig, ok := rec.ExternalSignals[model.SourceRegistry]
	if !ok || !regSig.Found {
		return false
	}
	mapsSig, ok := rec.ExternalSignals[model.SourceMaps]
	if !ok || !mapsSig.Found {
		return false
	}

	regAddr := evidenceAddress(regSig.Evidence)
	mapsAddr := evidenceAddress(mapsSig.Evidence)
	if regAddr == "" || mapsAddr == "" {
		return false
	}

	prefix := strings.ToLower(regAddr)
	if len(prefix) > addressPrefixLen {
		prefix = prefix[:addressPrefixLen]
	}
	return !strings.Contains(strings.ToLower(mapsAddr), prefix)
}

// evidenceAddress pulls the address out of a signal's evidence payload. A
// record freshly produced by the enricher carries typed evidence; one loaded
// back from the store carries decoded JSON maps.
func evidenceAddress(evidence any) string {
	switch ev := evidence.(type) {
	case *registry.Match:
		return ev.Address
	case *places.Location:
		return ev.FormattedAddress
	case map[string]any:
		for _, key := range []string{"address", "formatted_address"} {
			if s, ok := ev[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}
