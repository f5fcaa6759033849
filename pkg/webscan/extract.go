package webscan

import (
	"regexp"
	"strings"
)

var (
	emailRE = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRE = regexp.MustCompile(`(?:\+?\d{1,3}[- ]?)?(?:\(?\d{3,5}\)?[- ]?)?\d{3,4}[- ]?\d{3,4}`)
	digitRE = regexp.MustCompile(`\D`)
)

// addressKeywords mark lines of page text that plausibly contain a street
// address.
var addressKeywords = []string{
	"road", "street", "st", "avenue", "colony", "sector",
	"lane", "block", "district", "city", "india", "usa",
}

func extractEmails(html string) []string {
	return dedupe(emailRE.FindAllString(html, -1))
}

// extractPhones pulls phone-shaped digit runs out of page text, normalizing
// to a leading-plus digit string. Ten-digit numbers get the default country
// code since sites rarely publish it.
func extractPhones(text string) []string {
	var out []string
	for _, raw := range phoneRE.FindAllString(text, -1) {
		digits := digitRE.ReplaceAllString(raw, "")
		if len(digits) < 7 || len(digits) > 15 {
			continue
		}
		if len(digits) == 10 {
			out = append(out, "+91"+digits)
		} else {
			out = append(out, "+"+digits)
		}
	}
	return dedupe(out)
}

// extractAddresses returns page-text lines that carry an address keyword and
// are plausibly sized for a postal address.
func extractAddresses(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) < 15 || len(trimmed) > 200 {
			continue
		}
		low := strings.ToLower(trimmed)
		for _, kw := range addressKeywords {
			if containsWord(low, kw) {
				out = append(out, trimmed)
				break
			}
		}
	}
	return dedupe(out)
}

// containsWord reports whether s contains w as a whole word.
func containsWord(s, w string) bool {
	idx := 0
	for {
		i := strings.Index(s[idx:], w)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(w)
		leftOK := start == 0 || !isAlnum(s[start-1])
		rightOK := end == len(s) || !isAlnum(s[end])
		if leftOK && rightOK {
			return true
		}
		idx = start + 1
	}
}

func isAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
