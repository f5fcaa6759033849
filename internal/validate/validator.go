package validate

import (
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/medregistry/provider-cli/internal/config"
	"github.com/medregistry/provider-cli/internal/model"
)

// overallWeights is the fixed field-weight table for the provider-level
// confidence roll-up. Weights sum to 1.0; fields outside the table still
// appear in field_confidence but do not move the scalar. The denominator is
// the fixed weight sum, never renormalized: a record with several missing
// core fields is structurally penalized rather than rescaled upward.
var overallWeights = map[string]float64{
	model.FieldName:           0.25,
	model.FieldPhone:          0.20,
	model.FieldEmail:          0.15,
	model.FieldAddress:        0.20,
	model.FieldRegistration:   0.10,
	model.FieldQualifications: 0.05,
}

// Validator runs the validation stage for a single provider.
type Validator struct {
	cfg            config.ValidateConfig
	format         *FormatScorer
	extractedFirst map[string]bool
}

// New builds a Validator from configuration.
func New(cfg config.ValidateConfig) *Validator {
	first := make(map[string]bool, len(cfg.ExtractedFirst))
	for _, f := range cfg.ExtractedFirst {
		first[f] = true
	}
	return &Validator{
		cfg:            cfg,
		format:         NewFormatScorer(cfg.DefaultRegion),
		extractedFirst: first,
	}
}

// Run normalizes, scores and flags one provider's fields and returns the
// validated record. It never fails: unusable input degrades to empty
// normalized forms which the scorers then penalize.
func (v *Validator) Run(providerID string, submitted, extracted map[string]any) *model.ProviderRecord {
	norm := v.normalize(submitted, extracted)

	formatConf := map[string]float64{
		model.FieldName:            v.format.Name(norm.Name),
		model.FieldPhone:           v.format.Phone(norm.Phone),
		model.FieldEmail:           v.format.Email(norm.Email),
		model.FieldAddress:         v.format.Address(norm.Address),
		model.FieldRegistration:    v.format.Registration(norm.Registration),
		model.FieldQualifications:  v.format.Presence(len(norm.Qualifications) > 0),
		model.FieldSpecializations: v.format.Presence(len(norm.Specializations) > 0),
		model.FieldExperienceYears: v.format.Presence(norm.ExperienceYears != nil),
	}

	sourceConf := make(map[string]float64, len(model.CanonicalFields))
	for _, field := range model.CanonicalFields {
		sourceConf[field] = SourceAgreement(field, submitted, extracted, norm.Value(field))
	}

	fieldConf := make(map[string]float64, len(model.CanonicalFields))
	flags := make(map[string][]string)
	var missing []string

	for _, field := range model.CanonicalFields {
		fmtScore := formatConf[field]
		srcScore := sourceConf[field]

		score := clamp01(v.cfg.SourceWeight*srcScore + v.cfg.FormatWeight*fmtScore)
		fieldConf[field] = round3(score)

		if score < 0.5 {
			fieldFlags := []string{model.FlagLowConfidence}
			if fmtScore == 0 {
				fieldFlags = append(fieldFlags, model.FlagFormatInvalid)
			}
			if srcScore == 0 {
				fieldFlags = append(fieldFlags, model.FlagSourceMissing)
			}
			flags[field] = fieldFlags
			if fmtScore == 0 && srcScore == 0 {
				missing = append(missing, field)
			}
		}
	}

	overall := overallConfidence(fieldConf)

	rec := &model.ProviderRecord{
		ProviderID:        providerID,
		Timestamp:         time.Now().UTC(),
		RawSubmitted:      submitted,
		RawExtracted:      extracted,
		Normalized:        norm,
		FormatConfidence:  formatConf,
		SourceConfidence:  sourceConf,
		FieldConfidence:   fieldConf,
		ValidationFlags:   flags,
		MissingFields:     missing,
		OverallConfidence: overall,
	}

	if lic := LicenseFromExtracted(extracted); lic != nil {
		CheckLicense(lic, time.Now().UTC())
		rec.License = lic
	}

	rec.ValidationStatus = v.status(overall, missing)

	zap.L().Info("validation complete",
		zap.String("provider_id", providerID),
		zap.Float64("overall_confidence", overall),
		zap.String("status", string(rec.ValidationStatus)),
		zap.Strings("missing_fields", missing),
	)

	return rec
}

// normalize selects a raw value per canonical field by priority order and
// applies the field-specific normalizer. Extracted-first fields are listed
// in configuration; everything else prefers submitted data.
func (v *Validator) normalize(submitted, extracted map[string]any) model.Normalized {
	pick := func(field string) any {
		if v.extractedFirst[field] {
			if val := probe(extracted, field); val != nil {
				return val
			}
			return probe(submitted, field)
		}
		if val := probe(submitted, field); val != nil {
			return val
		}
		return probe(extracted, field)
	}

	norm := model.Normalized{
		Name:           NormalizeName(rawString(pick(model.FieldName))),
		Phone:          NormalizePhone(rawString(pick(model.FieldPhone))),
		Email:          NormalizeEmail(rawString(pick(model.FieldEmail))),
		Address:        NormalizeAddress(rawString(pick(model.FieldAddress))),
		Qualifications: NormalizeQualifications(rawString(pick(model.FieldQualifications))),
		Registration:   NormalizeRegistration(rawString(pick(model.FieldRegistration))),
	}

	// Specializations arriving as an actual list pass through untouched.
	switch specs := pick(model.FieldSpecializations).(type) {
	case []string:
		norm.Specializations = trimList(specs)
	case []any:
		parts := make([]string, 0, len(specs))
		for _, s := range specs {
			parts = append(parts, rawString(s))
		}
		norm.Specializations = trimList(parts)
	default:
		norm.Specializations = NormalizeSpecializations(rawString(specs))
	}

	norm.ExperienceYears = ExtractExperienceYears(rawString(pick(model.FieldExperienceYears)))

	return norm
}

// status derives the validation-stage verdict from the overall confidence
// and the missing-field set.
func (v *Validator) status(overall float64, missing []string) model.ValidationStatus {
	switch {
	case overall < v.cfg.ReviewThreshold:
		return model.ValidationFail
	case overall < v.cfg.PassThreshold:
		return model.ValidationNeedsReview
	case len(missing) > 0:
		return model.ValidationPassWithGaps
	}
	return model.ValidationPass
}

// overallConfidence rolls per-field confidence into one scalar against the
// fixed weight table.
func overallConfidence(fieldConf map[string]float64) float64 {
	totalWeight := 0.0
	sum := 0.0
	for field, w := range overallWeights {
		totalWeight += w
		sum += fieldConf[field] * w
	}
	if totalWeight == 0 {
		return 0
	}
	return round3(clamp01(sum / totalWeight))
}

func trimList(parts []string) []string {
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
