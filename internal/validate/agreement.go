package validate

import (
	"strconv"
	"strings"

	"github.com/medregistry/provider-cli/internal/model"
)

// Agreement scores in [0,1] for the cross-source comparison of one field.
// Submitted-only values outrank extracted-only values: directly-submitted
// structured data is inherently more trustworthy than document extraction,
// even absent any conflict.
const (
	agreeBothEqual     = 0.95
	agreeBothConflict  = 0.40
	agreeSubmittedNorm = 0.88
	agreeSubmittedOnly = 0.80
	agreeExtractedNorm = 0.75
	agreeExtractedOnly = 0.60
)

// phoneSuffixLen is the digit window for phone equality. Two numbers that
// differ only by country code or formatting share their trailing digits.
const phoneSuffixLen = 10

// SourceAgreement scores how much the submitted and extracted sources agree
// on a canonical field. Both sources are probed through the field's alias
// list. Values are compared after field normalization, so pure formatting
// differences (separators, honorifics, country prefixes) count as full
// agreement; values whose normalized forms still differ are a genuine
// conflict, even when one side matches the canonical result.
func SourceAgreement(field string, submitted, extracted map[string]any, normalized string) float64 {
	subRaw := rawString(probe(submitted, field))
	extRaw := rawString(probe(extracted, field))

	sub := compareKey(subRaw)
	ext := compareKey(extRaw)
	norm := compareKey(normalized)

	switch {
	case sub != "" && ext != "":
		nsub := compareKey(normalizeField(field, subRaw))
		next := compareKey(normalizeField(field, extRaw))
		if fieldEqual(field, nsub, next) {
			return agreeBothEqual
		}
		return agreeBothConflict

	case sub != "":
		if sub == norm {
			return agreeSubmittedNorm
		}
		return agreeSubmittedOnly

	case ext != "":
		if ext == norm {
			return agreeExtractedNorm
		}
		return agreeExtractedOnly
	}
	return 0
}

// normalizeField routes a raw value through the field's normalizer and
// returns the comparable string form.
func normalizeField(field, raw string) string {
	switch field {
	case model.FieldName:
		return NormalizeName(raw)
	case model.FieldPhone:
		return NormalizePhone(raw)
	case model.FieldEmail:
		return NormalizeEmail(raw)
	case model.FieldAddress:
		return NormalizeAddress(raw)
	case model.FieldRegistration:
		return NormalizeRegistration(raw)
	case model.FieldQualifications:
		return strings.Join(NormalizeQualifications(raw), ",")
	case model.FieldSpecializations:
		return strings.Join(NormalizeSpecializations(raw), ",")
	case model.FieldExperienceYears:
		if v := ExtractExperienceYears(raw); v != nil {
			return strconv.Itoa(*v)
		}
		return ""
	}
	return strings.TrimSpace(raw)
}

// fieldEqual compares two normalized comparable forms. Phones match on
// their trailing digits so country-code presence does not break agreement.
func fieldEqual(field, a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if field == model.FieldPhone {
		return phonesEqual(a, b)
	}
	return a == b
}

func phonesEqual(a, b string) bool {
	da := digitsOnly(a)
	db := digitsOnly(b)
	if da == "" || db == "" {
		return false
	}
	n := min(len(da), len(db), phoneSuffixLen)
	if n < 7 {
		return da == db
	}
	return da[len(da)-n:] == db[len(db)-n:]
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// compareKey folds a raw value for agreement comparison.
func compareKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
