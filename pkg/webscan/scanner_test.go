package webscan

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const indexPage = `<html><body>
<h1>Sunrise Clinic</h1>
<p>Dr. Anjali Mehta, Senior Consultant</p>
<p>12 MG Road, Near City Mall, Indore 452001</p>
<p>Call 9876543210 or mail contact@sunriseclinic.in</p>
<a href="/doctors/anjali-mehta">Dr. Anjali Mehta</a>
</body></html>`

const profilePage = `<html><body>
<h2>Dr. Anjali Mehta</h2>
<p>Department of Cardiology</p>
</body></html>`

func TestScrapeFullEvidence(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			fmt.Fprint(w, indexPage)
		case "/doctors/anjali-mehta":
			fmt.Fprint(w, profilePage)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	res, err := NewScanner().Scrape(context.Background(), srv.URL, "Dr. Anjali Mehta", "Cardiology")
	require.NoError(t, err)

	assert.True(t, res.Reachable)
	assert.True(t, res.NameOnSite)
	assert.True(t, res.ProfileReached)
	assert.True(t, res.SpecOnProfile)
	require.Len(t, res.ProviderPages, 1)
	assert.Equal(t, srv.URL+"/doctors/anjali-mehta", res.ProviderPages[0])

	assert.Contains(t, res.Emails, "contact@sunriseclinic.in")
	assert.Contains(t, res.Phones, "+919876543210")
	require.Len(t, res.Addresses, 1)

	// Every facility and provider component lands; the profile boost tops the
	// trust score out at the cap.
	assert.Equal(t, 1.0, res.FacilityScore)
	assert.Equal(t, 1.0, res.ProviderScore)
	assert.Equal(t, 1.0, res.TrustScore)
}

func TestScrapeCapsProfilePages(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, "<html><body>")
		for i := 0; i < 5; i++ {
			fmt.Fprintf(w, `<a href="/p%d">Dr. Anjali Mehta profile</a>`, i)
		}
		fmt.Fprint(w, "</body></html>")
	}))
	t.Cleanup(srv.Close)

	res, err := NewScanner().Scrape(context.Background(), srv.URL, "Anjali Mehta", "")
	require.NoError(t, err)

	assert.Len(t, res.ProviderPages, maxProviderPages)
	// Every profile fetch 404s, so no profile-level evidence accrues.
	assert.False(t, res.ProfileReached)
	assert.False(t, res.SpecOnProfile)
}

func TestScrapeUnreachableSite(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	res, err := NewScanner().Scrape(context.Background(), srv.URL, "Anjali Mehta", "Cardiology")
	require.NoError(t, err)
	assert.False(t, res.Reachable)
	assert.Zero(t, res.TrustScore)
}

func TestScrapeEmptyURL(t *testing.T) {
	t.Parallel()

	res, err := NewScanner().Scrape(context.Background(), "", "Anjali Mehta", "")
	require.NoError(t, err)
	assert.False(t, res.Reachable)
}

func TestScoreBlend(t *testing.T) {
	t.Parallel()

	res := &Result{
		Reachable:  true,
		Phones:     []string{"+919876543210"},
		NameOnSite: true,
	}
	score(res)

	assert.Equal(t, 0.4, res.FacilityScore)
	assert.Equal(t, 0.3, res.ProviderScore)
	// 0.3*0.7 + 0.4*0.3, no profile boost.
	assert.Equal(t, 0.33, res.TrustScore)
}
