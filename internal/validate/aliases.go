package validate

import (
	"fmt"
	"strings"

	"github.com/medregistry/provider-cli/internal/model"
)

// fieldAliases maps each canonical field to the upstream key spellings it
// may arrive under, in probe order. Upstream schemas are heterogeneous
// (a form row says "phone", the document extractor may say "mobile"), so
// the alias list is declared data rather than inline conditional chains.
var fieldAliases = map[string][]string{
	model.FieldName:            {"name", "provider_name", "full_name"},
	model.FieldPhone:           {"phone", "phone_number", "contact", "mobile"},
	model.FieldEmail:           {"email", "email_address", "contact_email"},
	model.FieldAddress:         {"address", "location", "addr", "clinic_address"},
	model.FieldQualifications:  {"qualifications", "qualification", "degree"},
	model.FieldRegistration:    {"registration_number", "registration", "reg_no", "regnum"},
	model.FieldSpecializations: {"specializations", "speciality", "specialties"},
	model.FieldExperienceYears: {"experience_years", "experience", "exp"},
}

// licenseAliases maps license sub-record components to extracted-document
// key spellings.
var licenseAliases = map[string][]string{
	"number":      {"license_number", "registration_number", "number"},
	"status":      {"license_status", "status"},
	"issue_date":  {"issue_date", "issued", "license_issue_date"},
	"expiry_date": {"expiry_date", "expiry", "valid_until", "license_expiry_date"},
}

// probe returns the first non-empty value found under any alias of the
// canonical field, or nil.
func probe(raw map[string]any, field string) any {
	if raw == nil {
		return nil
	}
	for _, key := range fieldAliases[field] {
		if v, ok := raw[key]; ok && !isEmptyValue(v) {
			return v
		}
	}
	return nil
}

// probeLicense returns the first non-empty string found under any alias of
// the license component.
func probeLicense(raw map[string]any, component string) string {
	if raw == nil {
		return ""
	}
	for _, key := range licenseAliases[component] {
		if v, ok := raw[key]; ok && !isEmptyValue(v) {
			return strings.TrimSpace(rawString(v))
		}
	}
	return ""
}

// rawString renders an untyped raw value for normalization and comparison.
// Lists join on comma; everything else goes through fmt.
func rawString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []string:
		return strings.Join(t, ",")
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			parts = append(parts, rawString(e))
		}
		return strings.Join(parts, ",")
	case float64:
		// JSON numbers decode as float64; integral values print bare.
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []string:
		return len(t) == 0
	case []any:
		return len(t) == 0
	}
	return false
}
