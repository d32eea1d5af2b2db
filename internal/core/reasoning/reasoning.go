// Package reasoning wraps the generative-reasoning collaborator that
// turns content text into normalized Indicators. The collaborator's
// free-text reasoning is carried through opaque; only the named
// boolean/scalar signals feed the scoring formula.
package reasoning

import (
	"context"

	"github.com/lueurxax/scam-shield/internal/core/domain"
)

// Extractor produces normalized scam indicators for one content item.
type Extractor interface {
	ExtractIndicators(ctx context.Context, content domain.Content) (domain.Indicators, error)
}

// Config holds collaborator settings.
type Config struct {
	APIKey string
	Model  string
	RPS    float64
}
