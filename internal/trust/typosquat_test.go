package trust

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTyposquatCheck(t *testing.T) {
	tests := []struct {
		name         string
		domain       string
		wantTarget   string
		wantDistance int
	}{
		{
			name:         "single substitution",
			domain:       "paytrn.com",
			wantTarget:   "paytm.com",
			wantDistance: 2,
		},
		{
			name:         "digit substitution",
			domain:       "g00gle.com",
			wantTarget:   "google.com",
			wantDistance: 2,
		},
		{
			name:         "missing letter",
			domain:       "facebok.com",
			wantTarget:   "facebook.com",
			wantDistance: 1,
		},
		{
			name:         "bank lookalike",
			domain:       "sbi.co.im",
			wantTarget:   "sbi.co.in",
			wantDistance: 1,
		},
		{
			name:   "exact match is not a squat",
			domain: "paytm.com",
		},
		{
			name:   "unrelated domain",
			domain: "example.org",
		},
		{
			name:   "too far from every target",
			domain: "gooogle-login-secure.com",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match := TyposquatCheck(tt.domain, nil, 2)

			if tt.wantTarget == "" {
				assert.Nil(t, match)

				return
			}

			require.NotNil(t, match)
			assert.Equal(t, tt.wantTarget, match.Target)
			assert.Equal(t, tt.wantDistance, match.Distance)
		})
	}
}

func TestTyposquatCheck_ShortTargetsSkipped(t *testing.T) {
	// Small edit distances between short names are common and
	// meaningless; targets under the length floor never match.
	match := TyposquatCheck("x.co", []string{"t.co"}, 2)

	assert.Nil(t, match)
}

func TestTyposquatCheck_CaseInsensitive(t *testing.T) {
	match := TyposquatCheck("PayTrn.com", nil, 2)

	require.NotNil(t, match)
	assert.Equal(t, "paytm.com", match.Target)
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"paytm", "paytm", 0},
		{"paytm", "paytrn", 2},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, levenshtein(tt.a, tt.b), "%q vs %q", tt.a, tt.b)
	}
}
