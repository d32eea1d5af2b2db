package reasoning

import (
	"context"
	"strings"

	"github.com/lueurxax/scam-shield/internal/core/domain"
)

// Keyword lists for the mock extractor. Deliberately crude: the mock
// exists for local runs and tests, not for accuracy.
var (
	urgencyKeywords    = []string{"urgent", "immediately", "expire", "last chance", "act now", "within 24"}
	credentialKeywords = []string{"otp", "kyc", "password", "pin", "cvv", "verify your account", "aadhaar"}
	impersonationWords = []string{"bank", "income tax", "police", "customs", "rbi", "courier", "electricity board"}
	financialKeywords  = []string{"transfer", "payment", "pay ", "upi", "processing fee", "refund"}
)

const mockNegativeSentiment = -0.6

type mockExtractor struct{}

// NewMock creates a keyword-driven extractor for tests and keyless runs.
func NewMock() Extractor {
	return &mockExtractor{}
}

func (m *mockExtractor) ExtractIndicators(_ context.Context, content domain.Content) (domain.Indicators, error) {
	text := strings.ToLower(content.Text)

	ind := domain.Indicators{
		Urgency:           containsAny(text, urgencyKeywords),
		CredentialRequest: containsAny(text, credentialKeywords),
		Impersonation:     containsAny(text, impersonationWords),
		FinancialRequest:  containsAny(text, financialKeywords),
	}

	if ind.Urgency || ind.CredentialRequest {
		ind.SentimentScore = mockNegativeSentiment
	}

	return ind, nil
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}

	return false
}
