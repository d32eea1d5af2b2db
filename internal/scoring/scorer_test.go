package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lueurxax/scam-shield/internal/core/domain"
	"github.com/lueurxax/scam-shield/internal/truth"
)

func allIndicators() domain.Indicators {
	return domain.Indicators{
		Urgency:           true,
		CredentialRequest: true,
		Impersonation:     true,
		FinancialRequest:  true,
		SentimentScore:    -1,
	}
}

func TestCalculate_ScoreAlwaysInRange(t *testing.T) {
	scorer := New()

	tests := []struct {
		name       string
		indicators domain.Indicators
		truth      domain.TruthVerificationResult
		urlFacts   []domain.URLFact
	}{
		{
			name: "all zero",
		},
		{
			name:       "everything maxed",
			indicators: allIndicators(),
			truth: domain.TruthVerificationResult{
				LocalFlags:      1000,
				TrendingLocally: true,
				CyberCellStatus: domain.CyberCellStatusConfirmed,
				LocalWeight:     1,
			},
			urlFacts: []domain.URLFact{{TrustScore: 0}},
		},
		{
			name:       "collaborator noise above range",
			indicators: domain.Indicators{Urgency: true, SentimentScore: -5},
			truth:      domain.TruthVerificationResult{LocalWeight: 7, CyberCellStatus: domain.CyberCellStatusConfirmed},
			urlFacts:   []domain.URLFact{{TrustScore: -3}},
		},
		{
			name:     "collaborator noise below range",
			truth:    domain.TruthVerificationResult{LocalWeight: -2},
			urlFacts: []domain.URLFact{{TrustScore: 5}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := scorer.Calculate(tt.indicators, tt.truth, tt.urlFacts)

			assert.GreaterOrEqual(t, result.Score, 0.0)
			assert.LessOrEqual(t, result.Score, 100.0)
		})
	}
}

func TestClassify_BoundariesBelongToHigherTier(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0, domain.ClassLikelySafe},
		{29.9, domain.ClassLikelySafe},
		{30.0, domain.ClassSuspicious},
		{69.9, domain.ClassSuspicious},
		{70.0, domain.ClassHighRisk},
		{100, domain.ClassHighRisk},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.score), "score %.1f", tt.score)
	}
}

func TestCalculate_LocalContextNeverLowersScore(t *testing.T) {
	scorer := New()
	indicators := domain.Indicators{Urgency: true, CredentialRequest: true}

	without := scorer.Calculate(indicators, domain.TruthVerificationResult{}, nil)
	with := scorer.Calculate(indicators, domain.TruthVerificationResult{
		LocalFlags:  3,
		LocalWeight: truth.LocalWeight(3, false, domain.CyberCellStatusNone),
	}, nil)

	assert.GreaterOrEqual(t, with.Score, without.Score)
	assert.Greater(t, with.TruthScore, without.TruthScore)
}

func TestCalculate_ReasonsNeverEmptyWhenNotSafe(t *testing.T) {
	scorer := New()

	result := scorer.Calculate(domain.Indicators{Urgency: true, CredentialRequest: true, Impersonation: true}, domain.TruthVerificationResult{}, nil)

	require.NotEqual(t, domain.ClassLikelySafe, result.Classification)
	assert.NotEmpty(t, result.Reasons)
}

func TestCalculate_OpaqueReasoningSurfacedVerbatim(t *testing.T) {
	scorer := New()
	reasoning := "The message mimics a bank's KYC notice and pressures the reader."

	result := scorer.Calculate(domain.Indicators{Urgency: true, Reasoning: reasoning}, domain.TruthVerificationResult{}, nil)

	require.NotEmpty(t, result.Reasons)
	assert.Equal(t, reasoning, result.Reasons[len(result.Reasons)-1])
}

func TestCalculate_BenignContentIsLikelySafe(t *testing.T) {
	scorer := New()

	result := scorer.Calculate(domain.Indicators{SentimentScore: 0.4}, domain.TruthVerificationResult{}, []domain.URLFact{
		{Domain: "wikipedia.org", ReputationTier: domain.TierTrusted, TrustScore: 0.95, AgeDays: 8000, SSLValid: true},
	})

	assert.Equal(t, domain.ClassLikelySafe, result.Classification)
}

// The KYC scenario: urgency plus a credential-adjacent ask over a
// days-old domain must land in the high tier even with no district
// history at all.
func TestCalculate_KYCScenarioWithoutLocalHistory(t *testing.T) {
	scorer := New()

	indicators := domain.Indicators{
		Urgency:           true,
		CredentialRequest: true,
		Impersonation:     true,
		SentimentScore:    -0.5,
	}
	urlFacts := []domain.URLFact{{
		URL:        "http://bit.ly/xyz123",
		Domain:     "kyc-update-now.com",
		AgeDays:    5,
		TrustScore: 0.35,
		Flags:      []string{"shortened link", "new domain"},
	}}

	result := scorer.Calculate(indicators, domain.TruthVerificationResult{}, urlFacts)

	assert.Equal(t, domain.ClassHighRisk, result.Classification)
	assert.GreaterOrEqual(t, result.Score, 70.0)
}

// Same content with district evidence must score strictly higher.
func TestCalculate_KYCScenarioWithLocalHistoryScoresHigher(t *testing.T) {
	scorer := New()

	indicators := domain.Indicators{
		Urgency:           true,
		CredentialRequest: true,
		Impersonation:     true,
		SentimentScore:    -0.5,
	}
	urlFacts := []domain.URLFact{{
		URL:        "http://bit.ly/xyz123",
		Domain:     "kyc-update-now.com",
		AgeDays:    5,
		TrustScore: 0.35,
		Flags:      []string{"shortened link", "new domain"},
	}}

	baseline := scorer.Calculate(indicators, domain.TruthVerificationResult{}, urlFacts)

	local := domain.TruthVerificationResult{
		LocalFlags:      12,
		TrendingLocally: true,
		CyberCellStatus: domain.CyberCellStatusConfirmed,
	}
	local.LocalWeight = truth.LocalWeight(local.LocalFlags, local.TrendingLocally, local.CyberCellStatus)

	boosted := scorer.Calculate(indicators, local, urlFacts)

	assert.Greater(t, boosted.Score, baseline.Score)
	assert.Equal(t, domain.ClassHighRisk, boosted.Classification)
}

func TestCalculate_URLScoreUsesWorstLink(t *testing.T) {
	scorer := New()

	result := scorer.Calculate(domain.Indicators{}, domain.TruthVerificationResult{}, []domain.URLFact{
		{Domain: "wikipedia.org", TrustScore: 0.95},
		{Domain: "scam-site.xyz", TrustScore: 0.1, Flags: []string{"new domain"}},
	})

	assert.InDelta(t, 90.0, result.URLScore, 0.001)
}
