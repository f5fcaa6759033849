// Package model defines the provider record shared by all pipeline stages.
package model

import (
	"strconv"
	"strings"
	"time"
)

// Canonical field names produced by normalization.
const (
	FieldName            = "name"
	FieldPhone           = "phone"
	FieldEmail           = "email"
	FieldAddress         = "address"
	FieldQualifications  = "qualifications"
	FieldRegistration    = "registration_number"
	FieldSpecializations = "specializations"
	FieldExperienceYears = "experience_years"
)

// CanonicalFields lists every canonical field in evaluation order.
var CanonicalFields = []string{
	FieldName,
	FieldPhone,
	FieldEmail,
	FieldAddress,
	FieldQualifications,
	FieldRegistration,
	FieldSpecializations,
	FieldExperienceYears,
}

// Validation flag tokens attached to low-confidence fields.
const (
	FlagLowConfidence = "low_confidence"
	FlagFormatInvalid = "format_invalid"
	FlagSourceMissing = "source_missing"
)

// Normalized holds the canonical representation of a provider's fields.
// Empty string / empty slice / nil pointer is the "absent" form; normalization
// never fails, it only degrades to the empty form.
type Normalized struct {
	Name            string   `json:"name"`
	Phone           string   `json:"phone"`
	Email           string   `json:"email"`
	Address         string   `json:"address"`
	Qualifications  []string `json:"qualifications"`
	Registration    string   `json:"registration_number"`
	Specializations []string `json:"specializations"`
	ExperienceYears *int     `json:"experience_years,omitempty"`
}

// Value returns the normalized value for a canonical field as a comparable
// string. List fields join on comma; an absent integer is the empty string.
func (n Normalized) Value(field string) string {
	switch field {
	case FieldName:
		return n.Name
	case FieldPhone:
		return n.Phone
	case FieldEmail:
		return n.Email
	case FieldAddress:
		return n.Address
	case FieldQualifications:
		return joinList(n.Qualifications)
	case FieldRegistration:
		return n.Registration
	case FieldSpecializations:
		return joinList(n.Specializations)
	case FieldExperienceYears:
		if n.ExperienceYears == nil {
			return ""
		}
		return strconv.Itoa(*n.ExperienceYears)
	}
	return ""
}

// License is the license/registration sub-record assembled from extracted
// document fields. Every component is optional.
type License struct {
	Number     string `json:"number,omitempty"`
	Status     string `json:"status,omitempty"`
	IssueDate  string `json:"issue_date,omitempty"`
	ExpiryDate string `json:"expiry_date,omitempty"`

	// State and IsExpired are derived by the license checker.
	State     LicenseState `json:"state,omitempty"`
	IsExpired *bool        `json:"is_expired,omitempty"`
}

// ExternalSignal is one external collaborator's contribution to the
// enrichment stage.
type ExternalSignal struct {
	Found      bool    `json:"found"`
	MatchScore float64 `json:"match_score"`
	Evidence   any     `json:"evidence,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// Canonical is the merged best-available contact view on the enriched
// record, preferring validated data, then places, then website evidence.
type Canonical struct {
	Name    string `json:"name"`
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
	NPI     string `json:"npi,omitempty"`
}

// ProviderRecord is the unit of work, keyed by provider id. It is created by
// the validation stage and mutated in place by enrichment and QA; re-running
// a stage overwrites the prior value for that provider id in that stage's
// store.
type ProviderRecord struct {
	ProviderID string    `json:"provider_id"`
	Timestamp  time.Time `json:"timestamp_utc"`

	RawSubmitted map[string]any `json:"raw_submitted,omitempty"`
	RawExtracted map[string]any `json:"raw_extracted,omitempty"`

	Normalized       Normalized          `json:"normalized"`
	FormatConfidence map[string]float64  `json:"format_confidence,omitempty"`
	SourceConfidence map[string]float64  `json:"source_confidence,omitempty"`
	FieldConfidence  map[string]float64  `json:"field_confidence,omitempty"`
	ValidationFlags  map[string][]string `json:"validation_flags,omitempty"`
	MissingFields    []string            `json:"missing_fields,omitempty"`

	OverallConfidence float64          `json:"overall_confidence"`
	ValidationStatus  ValidationStatus `json:"validation_status,omitempty"`

	License *License `json:"license,omitempty"`

	ExternalSignals    map[string]ExternalSignal `json:"external_signals,omitempty"`
	CombinedConfidence float64                   `json:"combined_confidence"`
	Canonical          *Canonical                `json:"canonical,omitempty"`

	Status           FinalStatus `json:"status,omitempty"`
	Issues           []string    `json:"issues,omitempty"`
	ConfidenceBucket string      `json:"confidence_bucket,omitempty"`
}

// HasField reports whether a canonical field is flagged missing.
func (r *ProviderRecord) HasField(field string) bool {
	for _, f := range r.MissingFields {
		if f == field {
			return false
		}
	}
	return true
}

func joinList(parts []string) string {
	return strings.Join(parts, ",")
}
