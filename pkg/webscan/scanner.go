// Package webscan scrapes a practice website for contact evidence and scores
// how strongly the site supports the provider's claimed presence there.
package webscan

import (
	"context"
	"io"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

const (
	userAgent    = "Mozilla/5.0 (ProviderVerifierBot/1.0)"
	maxBodyBytes = 2 << 20

	// maxProviderPages caps the follow-up crawl of candidate profile pages.
	maxProviderPages = 3
)

// Facility-level score components: site publishes an email, phone, address.
const (
	facilityEmailScore   = 0.3
	facilityPhoneScore   = 0.4
	facilityAddressScore = 0.3
)

// Provider-level score components: a reachable profile page, the provider's
// name on the site, the claimed specialization on a profile page.
const (
	providerPageScore = 0.5
	providerNameScore = 0.3
	providerSpecScore = 0.2
)

// Trust blend: provider presence outweighs generic facility contact info,
// with a small boost when a structured profile page was actually reachable.
const (
	trustProviderWeight = 0.7
	trustFacilityWeight = 0.3
	profileBoost        = 0.1
)

// Result is the evidence and scoring from one site scan.
type Result struct {
	URL            string   `json:"url"`
	Reachable      bool     `json:"reachable"`
	Emails         []string `json:"emails,omitempty"`
	Phones         []string `json:"phones,omitempty"`
	Addresses      []string `json:"addresses,omitempty"`
	ProviderPages  []string `json:"provider_pages,omitempty"`
	NameOnSite     bool     `json:"name_on_site"`
	SpecOnProfile  bool     `json:"spec_on_profile"`
	ProfileReached bool     `json:"profile_reached"`
	FacilityScore  float64  `json:"facility_score"`
	ProviderScore  float64  `json:"provider_score"`
	TrustScore     float64  `json:"trust_score"`
}

// Scanner scrapes practice websites.
type Scanner interface {
	// Scrape fetches the site, extracts contact evidence, follows up to
	// maxProviderPages candidate profile links, and scores the result. An
	// unreachable site yields Reachable=false, not an error.
	Scrape(ctx context.Context, siteURL, providerName, specialization string) (*Result, error)
}

// Option configures the scanner.
type Option func(*scanner)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *scanner) { s.httpClient = hc }
}

// WithTimeout sets the per-fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *scanner) { s.httpClient.Timeout = d }
}

// WithMaxPages overrides the profile-page crawl cap.
func WithMaxPages(n int) Option {
	return func(s *scanner) {
		if n > 0 {
			s.maxPages = n
		}
	}
}

type scanner struct {
	httpClient *http.Client
	maxPages   int
}

// NewScanner creates a Scanner with the given options.
func NewScanner(opts ...Option) Scanner {
	s := &scanner{
		httpClient: &http.Client{Timeout: 3 * time.Second},
		maxPages:   maxProviderPages,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *scanner) Scrape(ctx context.Context, siteURL, providerName, specialization string) (*Result, error) {
	res := &Result{URL: siteURL}
	if siteURL == "" {
		return res, nil
	}

	doc, raw, err := s.fetch(ctx, siteURL)
	if err != nil {
		return res, err
	}
	if doc == nil {
		return res, nil
	}
	res.Reachable = true

	text := doc.Text()
	res.Emails = extractEmails(raw)
	res.Phones = extractPhones(text)
	res.Addresses = extractAddresses(text)

	nameKey := nameSearchKey(providerName)
	if nameKey != "" {
		res.NameOnSite = strings.Contains(strings.ToLower(text), nameKey)
		res.ProviderPages = providerPageLinks(doc, siteURL, nameKey, s.maxPages)
		s.scanProfiles(ctx, res, specialization)
	}

	score(res)
	return res, nil
}

// scanProfiles fetches the discovered candidate profile pages and pulls
// provider-level evidence off them.
func (s *scanner) scanProfiles(ctx context.Context, res *Result, specialization string) {
	specKey := strings.ToLower(strings.TrimSpace(specialization))

	for _, page := range res.ProviderPages {
		doc, raw, err := s.fetch(ctx, page)
		if err != nil || doc == nil {
			continue
		}
		res.ProfileReached = true

		res.Emails = dedupe(append(res.Emails, extractEmails(raw)...))
		res.Phones = dedupe(append(res.Phones, extractPhones(doc.Text())...))

		if specKey != "" && strings.Contains(strings.ToLower(doc.Text()), specKey) {
			res.SpecOnProfile = true
		}
	}
}

// fetch returns a parsed document plus the raw HTML, or nil on any fetch
// failure. Scrape failures are evidence absence, not errors.
func (s *scanner) fetch(ctx context.Context, pageURL string) (*goquery.Document, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", eris.Wrapf(err, "webscan: build request %s", pageURL)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, "", nil
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, "", nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, "", nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, "", nil
	}
	return doc, string(body), nil
}

// providerPageLinks finds anchor links that look like provider profile pages
// for this name, resolved against the site base, capped at maxPages.
func providerPageLinks(doc *goquery.Document, siteURL, nameKey string, maxPages int) []string {
	base, err := url.Parse(siteURL)
	if err != nil {
		return nil
	}
	first, _, _ := strings.Cut(nameKey, " ")

	seen := map[string]bool{}
	var pages []string
	doc.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		hrefLow := strings.ToLower(href)
		txt := strings.ToLower(a.Text())

		keep := strings.Contains(txt, nameKey)
		if !keep {
			for _, w := range []string{"doctor", "team", "profile", "physician", "provider"} {
				if strings.Contains(hrefLow, w) && (strings.Contains(hrefLow, first) || strings.Contains(txt, first)) {
					keep = true
					break
				}
			}
		}
		if !keep {
			return true
		}

		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		abs := base.ResolveReference(ref).String()
		if !seen[abs] {
			seen[abs] = true
			pages = append(pages, abs)
		}
		return len(pages) < maxPages
	})
	return pages
}

func score(res *Result) {
	if !res.Reachable {
		return
	}

	facility := 0.0
	if len(res.Emails) > 0 {
		facility += facilityEmailScore
	}
	if len(res.Phones) > 0 {
		facility += facilityPhoneScore
	}
	if len(res.Addresses) > 0 {
		facility += facilityAddressScore
	}

	provider := 0.0
	if res.ProfileReached {
		provider += providerPageScore
	}
	if res.NameOnSite {
		provider += providerNameScore
	}
	if res.SpecOnProfile {
		provider += providerSpecScore
	}

	res.FacilityScore = round3(math.Min(facility, 1.0))
	res.ProviderScore = round3(math.Min(provider, 1.0))

	trust := res.ProviderScore*trustProviderWeight + res.FacilityScore*trustFacilityWeight
	if res.ProfileReached {
		trust += profileBoost
	}
	res.TrustScore = round3(math.Min(trust, 1.0))
}

// nameSearchKey lowercases a provider name and strips the honorific so site
// text can be probed for it.
func nameSearchKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.TrimPrefix(key, "dr.")
	key = strings.TrimPrefix(key, "dr ")
	return strings.TrimSpace(key)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
