// Package registry looks up healthcare providers in the NPI registry and
// scores how well the best candidate matches locally-held provider data.
package registry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/medregistry/provider-cli/internal/resilience"
)

const defaultBaseURL = "https://npiregistry.cms.hhs.gov/api/"

// apiVersion is the only NPI API version the response shapes below cover.
const apiVersion = "2.1"

// Query carries the provider attributes used to search and score candidates.
type Query struct {
	Name           string
	Specialization string
	State          string
	Address        string
	Phone          string
	Number         string // direct registry-number lookup when present
}

// Match is the scored outcome of a registry lookup.
type Match struct {
	Found      bool               `json:"found"`
	Number     string             `json:"number,omitempty"`
	Name       string             `json:"name,omitempty"`
	Address    string             `json:"address,omitempty"`
	Phone      string             `json:"phone,omitempty"`
	Taxonomy   string             `json:"taxonomy,omitempty"`
	MatchScore float64            `json:"match_score"`
	Signals    map[string]float64 `json:"signals,omitempty"`
	Synthetic  bool               `json:"synthetic,omitempty"`
}

// Client resolves a provider against the registry.
type Client interface {
	// BestMatch returns the highest-scoring registry candidate for the query.
	// A provider absent from the registry yields Found=false, not an error.
	BestMatch(ctx context.Context, q Query) (*Match, error)
}

// Option configures the registry client.
type Option func(*client)

// WithBaseURL overrides the registry endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *client) { c.baseURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.httpClient = hc }
}

// WithRateLimit sets the requests-per-second limit for registry calls.
func WithRateLimit(rps float64) Option {
	return func(c *client) { c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps)) }
}

// WithRetry overrides the retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *client) { c.retry = cfg }
}

// WithSyntheticFallback enables canned candidate records when the registry
// is unreachable, for offline and demo runs.
func WithSyntheticFallback(enabled bool) Option {
	return func(c *client) { c.synthetic = enabled }
}

type client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      resilience.RetryConfig
	synthetic  bool
}

// NewClient creates a registry Client with the given options.
func NewClient(opts ...Option) Client {
	c := &client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(5, 5),
		retry:      resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// apiResponse is the registry search envelope.
type apiResponse struct {
	ResultCount int         `json:"result_count"`
	Results     []apiResult `json:"results"`
}

type apiResult struct {
	Number string `json:"number"`
	Basic  struct {
		FirstName        string `json:"first_name"`
		LastName         string `json:"last_name"`
		OrganizationName string `json:"organization_name"`
	} `json:"basic"`
	Addresses []apiAddress `json:"addresses"`
	Taxonomies []struct {
		Desc string `json:"desc"`
	} `json:"taxonomies"`
}

type apiAddress struct {
	AddressPurpose  string `json:"address_purpose"`
	Address1        string `json:"address_1"`
	City            string `json:"city"`
	State           string `json:"state"`
	TelephoneNumber string `json:"telephone_number"`
}

func (c *client) BestMatch(ctx context.Context, q Query) (*Match, error) {
	if q.Number != "" {
		return c.byNumber(ctx, q.Number)
	}
	if q.Name == "" {
		return &Match{Found: false}, nil
	}

	first, last := splitName(q.Name)
	params := url.Values{}
	params.Set("first_name", first)
	if last != "" {
		params.Set("last_name", last)
	}
	if q.Specialization != "" {
		params.Set("taxonomy_description", q.Specialization)
	}
	if q.State != "" {
		params.Set("address_purpose", "LOCATION")
		params.Set("state", q.State)
	}

	resp, err := c.search(ctx, params)
	if err != nil || resp.ResultCount == 0 {
		if c.synthetic {
			if m := syntheticByName(first); m != nil {
				return m, nil
			}
		}
		if err != nil {
			return nil, err
		}
		return &Match{Found: false}, nil
	}

	return scoreCandidates(resp.Results, q), nil
}

// byNumber resolves a direct registry-number lookup. A number the registry
// confirms scores 1.0 without any fuzzy comparison.
func (c *client) byNumber(ctx context.Context, number string) (*Match, error) {
	params := url.Values{}
	params.Set("number", number)

	resp, err := c.search(ctx, params)
	if err != nil || resp.ResultCount == 0 {
		if c.synthetic {
			if m := syntheticByNumber(number); m != nil {
				return m, nil
			}
		}
		if err != nil {
			return nil, err
		}
		return &Match{Found: false}, nil
	}

	m := candidateMatch(resp.Results[0])
	m.MatchScore = 1.0
	m.Signals = map[string]float64{"direct_number": 1}
	return m, nil
}

func (c *client) search(ctx context.Context, params url.Values) (*apiResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "registry: rate limit")
	}

	params.Set("version", apiVersion)
	reqURL := c.baseURL + "?" + params.Encode()

	return resilience.DoVal(ctx, c.retry, "registry search", func(ctx context.Context) (*apiResponse, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, eris.Wrap(err, "registry: build request")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "registry: request")
		}
		defer resp.Body.Close() //nolint:errcheck

		if resp.StatusCode != http.StatusOK {
			err := eris.Errorf("registry: status %d", resp.StatusCode)
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return nil, resilience.NewTransientError(err, resp.StatusCode)
			}
			return nil, err
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, eris.Wrap(err, "registry: read body")
		}

		var out apiResponse
		if err := json.Unmarshal(body, &out); err != nil {
			return nil, eris.Wrap(err, "registry: parse response")
		}
		return &out, nil
	})
}
