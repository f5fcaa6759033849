package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func candidate(number, first, last, taxonomy, state, addr, phone string) apiResult {
	var r apiResult
	r.Number = number
	r.Basic.FirstName = first
	r.Basic.LastName = last
	r.Taxonomies = []struct {
		Desc string `json:"desc"`
	}{{Desc: taxonomy}}
	r.Addresses = []apiAddress{{
		AddressPurpose:  "LOCATION",
		Address1:        addr,
		City:            "Albany",
		State:           state,
		TelephoneNumber: phone,
	}}
	return r
}

func TestScoreCandidatesExactMatch(t *testing.T) {
	t.Parallel()

	q := Query{
		Name:           "John Doe",
		Specialization: "Internal Medicine",
		State:          "NY",
		Address:        "100 State Street Albany",
		Phone:          "+15185551234",
	}
	results := []apiResult{
		candidate("1427557893", "John", "Doe", "Internal Medicine", "NY", "100 State Street", "5185551234"),
	}

	m := scoreCandidates(results, q)
	require.True(t, m.Found)
	assert.Equal(t, "1427557893", m.Number)
	assert.Equal(t, "John Doe", m.Name)

	// name 0.50 + taxonomy 0.25 + state 0.15 + phone 0.05 all land; address
	// similarity adds most of its 0.10.
	assert.Greater(t, m.MatchScore, 0.9)
	assert.Equal(t, 1.0, m.Signals["name_match"])
	assert.Equal(t, 1.0, m.Signals["state_match"])
	assert.Equal(t, 1.0, m.Signals["phone_match"])
}

func TestScoreCandidatesPicksBest(t *testing.T) {
	t.Parallel()

	q := Query{Name: "John Doe", State: "NY"}
	results := []apiResult{
		candidate("1", "Jane", "Dough", "", "CA", "", ""),
		candidate("2", "John", "Doe", "", "NY", "", ""),
	}

	m := scoreCandidates(results, q)
	require.True(t, m.Found)
	assert.Equal(t, "2", m.Number)
}

func TestScoreCandidatesEmpty(t *testing.T) {
	t.Parallel()

	m := scoreCandidates(nil, Query{Name: "John Doe"})
	assert.False(t, m.Found)
}

func TestSplitName(t *testing.T) {
	t.Parallel()

	first, last := splitName("John Doe")
	assert.Equal(t, "John", first)
	assert.Equal(t, "Doe", last)

	first, last = splitName("Cher")
	assert.Equal(t, "Cher", first)
	assert.Empty(t, last)

	first, last = splitName("John Michael Doe")
	assert.Equal(t, "John", first)
	assert.Equal(t, "Doe", last)

	first, last = splitName("")
	assert.Empty(t, first)
	assert.Empty(t, last)
}

func TestLastDigits(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1234", lastDigits("+1 518 555-1234", 4))
	assert.Equal(t, "123", lastDigits("123", 4))
	assert.Empty(t, lastDigits("no digits", 4))
}

func TestSyntheticFallback(t *testing.T) {
	t.Parallel()

	m := syntheticByNumber("1427557893")
	require.NotNil(t, m)
	assert.True(t, m.Synthetic)
	assert.Equal(t, 0.95, m.MatchScore)

	assert.Nil(t, syntheticByNumber("0000000000"))

	m = syntheticByName("emily")
	require.NotNil(t, m)
	assert.Equal(t, "Emily Clark", m.Name)
	assert.Equal(t, 0.9, m.MatchScore)

	assert.Nil(t, syntheticByName("zelda"))
}
