package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"honorific stripped", "Dr. Anjali Mehta", "Anjali Mehta"},
		{"honorific no dot", "dr anjali mehta", "Anjali Mehta"},
		{"prof stripped", "Prof. R. K. Sharma", "R. K. Sharma"},
		{"case folded", "JOHN SMITH", "John Smith"},
		{"whitespace collapsed", "  john   smith  ", "John Smith"},
		{"stray punctuation", "John @Smith!", "John Smith"},
		{"hyphenated kept", "Mary-Jane O'Brien", "Mary-Jane O'Brien"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizeName(tt.in))
		})
	}
}

func TestNormalizePhone(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain digits", "9876543210", "9876543210"},
		{"separators stripped", "98-76-54-32-10", "9876543210"},
		{"plus preserved", "+91-9876543210", "+919876543210"},
		{"spaces with plus", "+91 99887 76655", "+919988776655"},
		{"parentheses", "(0731) 246800", "0731246800"},
		{"no digits", "call me", ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, NormalizePhone(tt.in))
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", NormalizeEmail(""))
	assert.Equal(t, "a.mehta@clinic.in", NormalizeEmail("  A.Mehta@Clinic.IN "))
	assert.Equal(t, "a@b.com", NormalizeEmail("a @ b.com"))
}

func TestNormalizeAddress(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", NormalizeAddress(""))
	assert.Equal(t,
		"12 MG Road, Indore, MP",
		NormalizeAddress("12 MG Road,\nIndore,\t MP"),
	)
	assert.Equal(t, "plain", NormalizeAddress("  plain  "))
}

func TestNormalizeQualifications(t *testing.T) {
	t.Parallel()

	assert.Nil(t, NormalizeQualifications(""))
	assert.Equal(t, []string{"MBBS", "MD"}, NormalizeQualifications("M.B.B.S., M.D."))
	assert.Equal(t, []string{"MBBS", "DNB"}, NormalizeQualifications("mbbs/dnb"))
	assert.Equal(t, []string{"MD"}, NormalizeQualifications(",MD,"))
}

func TestNormalizeRegistration(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", NormalizeRegistration(""))
	assert.Equal(t, "MH-12345", NormalizeRegistration("MH-12345"))
	assert.Equal(t, "MH 12345", NormalizeRegistration("MH #12345?"))
}

func TestNormalizeSpecializations(t *testing.T) {
	t.Parallel()

	assert.Nil(t, NormalizeSpecializations(""))
	assert.Equal(t,
		[]string{"Cardiology", "Internal Medicine"},
		NormalizeSpecializations("Cardiology; Internal Medicine"),
	)
	assert.Equal(t,
		[]string{"Cardiology", "Internal Medicine"},
		NormalizeSpecializations("cardiology/INTERNAL MEDICINE"),
	)
}

func TestExtractExperienceYears(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want *int
	}{
		{"empty", "", nil},
		{"plain number", "12", intPtr(12)},
		{"with suffix", "12 yrs", intPtr(12)},
		{"years word", "8 years", intPtr(8)},
		{"embedded", "over 15 years of practice", intPtr(15)},
		{"implausible run skipped", "19850101", nil},
		{"zero", "0", intPtr(0)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ExtractExperienceYears(tt.in)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func intPtr(v int) *int { return &v }
