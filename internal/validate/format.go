package validate

import (
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

var (
	emailRE     = regexp.MustCompile(`^[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}$`)
	regNoFullRE = regexp.MustCompile(`(?i)[A-Z]{1,5}\s*-?\s*\d{2,8}`)
	houseNumRE  = regexp.MustCompile(`\d{1,5}`)
	nonDigitRE  = regexp.MustCompile(`\D`)
)

// streetKeywords are the address tokens that suggest a street-level address.
var streetKeywords = []string{
	"street", "st", "road", "rd", "lane", "ln",
	"avenue", "ave", "block", "sector", "sector-",
}

// FormatScorer scores the internal well-formedness of normalized field
// values, independent of any other source. All scores are in [0,1] and
// empty input always scores 0.
type FormatScorer struct {
	defaultRegion string
}

// NewFormatScorer returns a scorer parsing phones against the given ISO
// region when no international prefix is present.
func NewFormatScorer(defaultRegion string) *FormatScorer {
	return &FormatScorer{defaultRegion: defaultRegion}
}

// Name scores 1.0 for two-plus tokens each longer than one rune, 0.6 for
// any other non-empty value.
func (s *FormatScorer) Name(name string) float64 {
	if name == "" {
		return 0
	}
	parts := strings.Fields(name)
	if len(parts) >= 2 && len(parts[0]) > 1 && len(parts[1]) > 1 {
		return 1.0
	}
	return 0.6
}

// Phone delegates to the phone-number library for validity; when parsing
// fails entirely it falls back to digit-count heuristics.
func (s *FormatScorer) Phone(phone string) float64 {
	if phone == "" {
		return 0
	}

	region := s.defaultRegion
	if strings.HasPrefix(phone, "+") {
		region = ""
	}
	if num, err := phonenumbers.Parse(phone, region); err == nil {
		if phonenumbers.IsValidNumber(num) {
			return 1.0
		}
		if phonenumbers.IsPossibleNumber(num) {
			return 0.8
		}
	}

	digits := nonDigitRE.ReplaceAllString(phone, "")
	switch {
	case len(digits) >= 10 && len(digits) <= 15:
		return 0.8
	case len(digits) >= 7 && len(digits) < 10:
		return 0.5
	}
	return 0
}

// Email scores 1.0 for a strict local@domain.tld match, 0.6 when it merely
// has an "@" with a "." somewhere after it.
func (s *FormatScorer) Email(email string) float64 {
	if email == "" {
		return 0
	}
	if emailRE.MatchString(email) {
		return 1.0
	}
	at := strings.LastIndex(email, "@")
	if at >= 0 && strings.Contains(email[at+1:], ".") {
		return 0.6
	}
	return 0
}

// Address accumulates up to 1.0 from three independent signals: a street
// keyword (+0.5), a short digit run (+0.3), and a comma-separated
// component (+0.2).
func (s *FormatScorer) Address(address string) float64 {
	if address == "" {
		return 0
	}
	lower := strings.ToLower(address)

	score := 0.0
	for _, kw := range streetKeywords {
		if containsWord(lower, kw) {
			score += 0.5
			break
		}
	}
	if houseNumRE.MatchString(address) {
		score += 0.3
	}
	if strings.Contains(address, ",") {
		score += 0.2
	}
	return clamp01(score)
}

// Registration scores 1.0 for an alpha-prefix + 2-8 digit pattern, 0.6 when
// the value at least mixes letters and digits.
func (s *FormatScorer) Registration(reg string) float64 {
	if reg == "" {
		return 0
	}
	if regNoFullRE.MatchString(reg) {
		return 1.0
	}
	var hasAlpha, hasDigit bool
	for _, r := range reg {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
			hasAlpha = true
		}
	}
	if hasAlpha && hasDigit {
		return 0.6
	}
	return 0
}

// Presence is the binary score for list and integer fields.
func (s *FormatScorer) Presence(present bool) float64 {
	if present {
		return 1.0
	}
	return 0
}

// containsWord reports whether text contains needle bounded by
// non-alphanumeric characters. Both arguments must already be lowercased.
func containsWord(text, needle string) bool {
	if needle == "" || text == "" {
		return false
	}
	start := 0
	for {
		idx := strings.Index(text[start:], needle)
		if idx < 0 {
			return false
		}
		absIdx := start + idx
		endIdx := absIdx + len(needle)

		leftOK := absIdx == 0 || !isAlphaNum(text[absIdx-1])
		rightOK := endIdx == len(text) || !isAlphaNum(text[endIdx])
		if leftOK && rightOK {
			return true
		}
		start = absIdx + 1
	}
}

func isAlphaNum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
