// Package places verifies a provider's practice location against the Google
// Places and Geocoding APIs and scores how well the best hit matches.
package places

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

const defaultBaseURL = "https://maps.googleapis.com/maps/api"

// Location is the scored outcome of a place lookup.
type Location struct {
	Found            bool    `json:"found"`
	MatchScore       float64 `json:"match_score"`
	PlaceName        string  `json:"place_name,omitempty"`
	FormattedAddress string  `json:"formatted_address,omitempty"`
	Phone            string  `json:"phone,omitempty"`
	Website          string  `json:"website,omitempty"`
	Latitude         float64 `json:"lat,omitempty"`
	Longitude        float64 `json:"lng,omitempty"`
	NameMatch        float64 `json:"name_match,omitempty"`
	AddressMatch     float64 `json:"address_match,omitempty"`
	GeocodeOnly      bool    `json:"geocode_only,omitempty"`
}

// Client resolves a provider's practice location.
type Client interface {
	// EnrichLocation searches for the provider's place by name plus address,
	// falls back to plain geocoding, and returns the scored result. An
	// unlocatable provider yields Found=false, not an error.
	EnrichLocation(ctx context.Context, name, address string) (*Location, error)
}

// Option configures the places client.
type Option func(*client)

// WithAPIKey sets the Google API key.
func WithAPIKey(key string) Option {
	return func(c *client) { c.apiKey = key }
}

// WithBaseURL overrides the API endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *client) { c.baseURL = u }
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.httpClient = hc }
}

// WithRateLimit sets the requests-per-second limit.
func WithRateLimit(rps float64) Option {
	return func(c *client) { c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps)) }
}

// WithRetry overrides the retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *client) { c.retry = cfg }
}

type client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      resilience.RetryConfig
}

// NewClient creates a places Client with the given options.
func NewClient(opts ...Option) Client {
	c := &client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    rate.NewLimiter(10, 10),
		retry:      resilience.DefaultRetryConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type searchResponse struct {
	Results []struct {
		PlaceID          string `json:"place_id"`
		Name             string `json:"name"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
}

type detailsResponse struct {
	Result *struct {
		Name                     string `json:"name"`
		FormattedAddress         string `json:"formatted_address"`
		FormattedPhoneNumber     string `json:"formatted_phone_number"`
		InternationalPhoneNumber string `json:"international_phone_number"`
		Website                  string `json:"website"`
		Geometry                 struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"result"`
}

type geocodeResponse struct {
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func (c *client) EnrichLocation(ctx context.Context, name, address string) (*Location, error) {
	query := joinQuery(name, address)
	if query == "" {
		return &Location{Found: false}, nil
	}

	var search searchResponse
	err := c.get(ctx, "/place/textsearch/json", url.Values{"query": {query}}, &search)
	if err != nil {
		return nil, err
	}

	if len(search.Results) == 0 {
		return c.geocodeFallback(ctx, address)
	}

	hit := search.Results[0]
	loc := &Location{
		Found:            true,
		PlaceName:        hit.Name,
		FormattedAddress: hit.FormattedAddress,
	}

	var details detailsResponse
	err = c.get(ctx, "/place/details/json", url.Values{
		"place_id": {hit.PlaceID},
		"fields":   {"name,formatted_address,formatted_phone_number,international_phone_number,website,geometry"},
	}, &details)
	if err == nil && details.Result != nil {
		r := details.Result
		loc.FormattedAddress = r.FormattedAddress
		loc.Phone = r.FormattedPhoneNumber
		if loc.Phone == "" {
			loc.Phone = r.InternationalPhoneNumber
		}
		loc.Website = r.Website
		loc.Latitude = r.Geometry.Location.Lat
		loc.Longitude = r.Geometry.Location.Lng
	}

	scoreLocation(loc, name, address)
	return loc, nil
}

// geocodeFallback resolves just the address when no place matched. A geocode
// hit is a weak signal: the address exists but nothing ties the provider to
// it.
func (c *client) geocodeFallback(ctx context.Context, address string) (*Location, error) {
	if address == "" {
		return &Location{Found: false}, nil
	}

	var geo geocodeResponse
	err := c.get(ctx, "/geocode/json", url.Values{"address": {address}}, &geo)
	if err != nil {
		return nil, err
	}
	if len(geo.Results) == 0 {
		return &Location{Found: false}, nil
	}

	r := geo.Results[0]
	return &Location{
		Found:            true,
		GeocodeOnly:      true,
		MatchScore:       geocodeOnlyScore,
		FormattedAddress: r.FormattedAddress,
		Latitude:         r.Geometry.Location.Lat,
		Longitude:        r.Geometry.Location.Lng,
	}, nil
}

func (c *client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return eris.Wrap(err, "places: rate limit")
	}

	params.Set("key", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	return resilience.Do(ctx, c.retry, "places "+path, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return eris.Wrap(err, "places: build request")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return eris.Wrap(err, "places: request")
		}
		defer resp.Body.Close() //nolint:errcheck

		if resp.StatusCode != http.StatusOK {
			err := eris.Errorf("places: status %d", resp.StatusCode)
			if resilience.IsTransientHTTPStatus(resp.StatusCode) {
				return resilience.NewTransientError(err, resp.StatusCode)
			}
			return err
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return eris.Wrap(err, "places: read body")
		}
		if err := json.Unmarshal(body, out); err != nil {
			return eris.Wrap(err, "places: parse response")
		}
		return nil
	})
}

func joinQuery(name, address string) string {
	switch {
	case name == "":
		return address
	case address == "":
		return name
	}
	return name + " " + address
}
