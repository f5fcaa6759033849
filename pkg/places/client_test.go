package places

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medregistry/provider-cli/internal/resilience"
)

func placesServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(handler))
	t.Cleanup(srv.Close)
	return NewClient(
		WithBaseURL(srv.URL),
		WithAPIKey("test-key"),
		WithRetry(resilience.DefaultRetryConfig().WithMaxAttempts(1)),
	)
}

func TestEnrichLocationFound(t *testing.T) {
	t.Parallel()

	c := placesServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")

		switch {
		case strings.HasPrefix(r.URL.Path, "/place/textsearch"):
			assert.Contains(t, r.URL.Query().Get("query"), "Sunrise Clinic")
			w.Write([]byte(`{"results": [{
				"place_id": "abc123",
				"name": "Sunrise Clinic",
				"formatted_address": "12 MG Road, Indore"
			}]}`))
		case strings.HasPrefix(r.URL.Path, "/place/details"):
			assert.Equal(t, "abc123", r.URL.Query().Get("place_id"))
			w.Write([]byte(`{"result": {
				"name": "Sunrise Clinic",
				"formatted_address": "12 MG Road, Indore 452001",
				"formatted_phone_number": "0731 555 0100",
				"website": "https://sunriseclinic.example.com",
				"geometry": {"location": {"lat": 22.72, "lng": 75.86}}
			}}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	loc, err := c.EnrichLocation(context.Background(), "Sunrise Clinic", "12 MG Road, Indore")
	require.NoError(t, err)
	require.True(t, loc.Found)
	assert.False(t, loc.GeocodeOnly)
	assert.Equal(t, "Sunrise Clinic", loc.PlaceName)
	assert.Equal(t, "12 MG Road, Indore 452001", loc.FormattedAddress)
	assert.Equal(t, "0731 555 0100", loc.Phone)
	assert.Equal(t, "https://sunriseclinic.example.com", loc.Website)
	assert.Equal(t, 22.72, loc.Latitude)

	// found 0.40 + exact name 0.20 + website 0.15 plus most of the address
	// weight.
	assert.Equal(t, 1.0, loc.NameMatch)
	assert.Greater(t, loc.MatchScore, 0.9)
}

func TestEnrichLocationGeocodeFallback(t *testing.T) {
	t.Parallel()

	c := placesServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(r.URL.Path, "/place/textsearch"):
			w.Write([]byte(`{"results": []}`))
		case strings.HasPrefix(r.URL.Path, "/geocode"):
			assert.Equal(t, "12 MG Road, Indore", r.URL.Query().Get("address"))
			w.Write([]byte(`{"results": [{
				"formatted_address": "12 MG Road, Indore 452001, India",
				"geometry": {"location": {"lat": 22.72, "lng": 75.86}}
			}]}`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	loc, err := c.EnrichLocation(context.Background(), "Sunrise Clinic", "12 MG Road, Indore")
	require.NoError(t, err)
	require.True(t, loc.Found)
	assert.True(t, loc.GeocodeOnly)
	assert.Equal(t, geocodeOnlyScore, loc.MatchScore)
	assert.Equal(t, "12 MG Road, Indore 452001, India", loc.FormattedAddress)
}

func TestEnrichLocationNothingFound(t *testing.T) {
	t.Parallel()

	c := placesServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results": []}`))
	})

	loc, err := c.EnrichLocation(context.Background(), "Sunrise Clinic", "12 MG Road, Indore")
	require.NoError(t, err)
	assert.False(t, loc.Found)
	assert.Zero(t, loc.MatchScore)
}

func TestEnrichLocationEmptyQuery(t *testing.T) {
	t.Parallel()

	c := NewClient(WithBaseURL("http://invalid.invalid"))
	loc, err := c.EnrichLocation(context.Background(), "", "")
	require.NoError(t, err)
	assert.False(t, loc.Found)
}

func TestEnrichLocationServerError(t *testing.T) {
	t.Parallel()

	c := placesServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := c.EnrichLocation(context.Background(), "Sunrise Clinic", "12 MG Road")
	assert.Error(t, err)
}

func TestScoreLocationWithoutWebsite(t *testing.T) {
	t.Parallel()

	loc := &Location{Found: true, PlaceName: "Sunrise Clinic", FormattedAddress: "12 MG Road, Indore"}
	scoreLocation(loc, "Sunrise Clinic", "12 MG Road, Indore")

	// 0.40 + 1.0*0.20 + 1.0*0.25, no website bonus.
	assert.Equal(t, 0.85, loc.MatchScore)
}

func TestJoinQuery(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a b", joinQuery("a", "b"))
	assert.Equal(t, "b", joinQuery("", "b"))
	assert.Equal(t, "a", joinQuery("a", ""))
	assert.Empty(t, joinQuery("", ""))
}
