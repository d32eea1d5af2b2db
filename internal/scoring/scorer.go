// Package scoring combines indicator, truth, URL, and sentiment signals
// into one bounded score and a three-tier classification.
//
// Clamping to [0, 100] is a hard invariant: collaborator noise must
// never push the final score out of range.
package scoring

import (
	"fmt"

	"github.com/lueurxax/scam-shield/internal/core/domain"
)

// Component weights of the final score.
const (
	patternWeight   = 0.40
	truthWeight     = 0.35
	urlWeight       = 0.15
	sentimentWeight = 0.10
)

// Indicator sub-weights of the pattern score.
const (
	urgencyPoints    = 30.0
	credentialPoints = 30.0
	impersonation    = 20.0
	financialPoints  = 20.0
)

// Truth score shaping. The generic pattern evidence forms the baseline;
// the local weight amplifies it, so district evidence can only raise the
// truth component, never lower it.
const (
	confirmedPoints = 30.0
	investigating   = 20.0
	resolvedPoints  = 10.0
)

// Classification boundaries. Boundary values belong to the higher tier.
const (
	suspiciousThreshold = 30.0
	highRiskThreshold   = 70.0
)

const maxScore = 100.0

// minReasonScore is the sub-score contribution below which a signal is
// considered trivial and omitted from reasons.
const minReasonScore = 5.0

// Scorer computes the weighted scam probability score.
type Scorer struct{}

// New creates a scorer.
func New() *Scorer {
	return &Scorer{}
}

// Result carries the final score with its components and reasons.
type Result struct {
	Score          float64
	Classification string
	PatternScore   float64
	TruthScore     float64
	URLScore       float64
	SentimentScore float64
	Reasons        []string
}

// Calculate combines all signals into the final bounded score. Reasons
// are ordered by contribution: indicators first, then local truth, then
// URL facts, then sentiment, with the opaque collaborator reasoning
// appended verbatim last.
func (s *Scorer) Calculate(indicators domain.Indicators, truth domain.TruthVerificationResult, urlFacts []domain.URLFact) Result {
	patternScore, patternReasons := s.patternScore(indicators)
	truthScore, truthReasons := s.truthScore(patternScore, truth)
	urlScore, urlReasons := s.urlScore(urlFacts)
	sentimentScore, sentimentReasons := s.sentimentScore(indicators.SentimentScore)

	final := patternWeight*patternScore + truthWeight*truthScore + urlWeight*urlScore + sentimentWeight*sentimentScore
	final = clamp(final)

	reasons := make([]string, 0, len(patternReasons)+len(truthReasons)+len(urlReasons)+len(sentimentReasons)+1)
	reasons = append(reasons, patternReasons...)
	reasons = append(reasons, truthReasons...)
	reasons = append(reasons, urlReasons...)
	reasons = append(reasons, sentimentReasons...)

	if indicators.Reasoning != "" {
		reasons = append(reasons, indicators.Reasoning)
	}

	classification := Classify(final)

	// Never empty when the content is not classified safe.
	if classification != domain.ClassLikelySafe && len(reasons) == 0 {
		reasons = append(reasons, "multiple weak signals combined")
	}

	return Result{
		Score:          final,
		Classification: classification,
		PatternScore:   patternScore,
		TruthScore:     truthScore,
		URLScore:       urlScore,
		SentimentScore: sentimentScore,
		Reasons:        reasons,
	}
}

// Classify maps a score to its tier. Boundary values belong to the
// higher tier: 30.0 is Suspicious, 70.0 is High Scam Probability.
func Classify(score float64) string {
	switch {
	case score >= highRiskThreshold:
		return domain.ClassHighRisk
	case score >= suspiciousThreshold:
		return domain.ClassSuspicious
	default:
		return domain.ClassLikelySafe
	}
}

// patternScore derives 0-100 from the fixed indicator sub-weights.
func (s *Scorer) patternScore(ind domain.Indicators) (float64, []string) {
	var (
		score   float64
		reasons []string
	)

	if ind.Urgency {
		score += urgencyPoints

		reasons = append(reasons, "urgent or pressuring language")
	}

	if ind.CredentialRequest {
		score += credentialPoints

		reasons = append(reasons, "requests credentials, OTP, or personal data")
	}

	if ind.Impersonation {
		score += impersonation

		reasons = append(reasons, "impersonates a known organization or authority")
	}

	if ind.FinancialRequest {
		score += financialPoints

		reasons = append(reasons, "requests money or payment details")
	}

	return clamp(score), reasons
}

// truthScore derives 0-100 from the generic pattern evidence amplified
// by the local weight, plus official status severity.
func (s *Scorer) truthScore(patternScore float64, truth domain.TruthVerificationResult) (float64, []string) {
	score := patternScore * (1 + truth.LocalWeight)

	switch truth.CyberCellStatus {
	case domain.CyberCellStatusConfirmed:
		score += confirmedPoints
	case domain.CyberCellStatusInvestigating:
		score += investigating
	case domain.CyberCellStatusResolved:
		score += resolvedPoints
	}

	var reasons []string

	if truth.LocalFlags > 0 {
		reasons = append(reasons, fmt.Sprintf("reported %d times in your district recently", truth.LocalFlags))
	}

	if truth.TrendingLocally {
		reasons = append(reasons, "this scam is trending in your area")
	}

	if truth.CyberCellStatus == domain.CyberCellStatusConfirmed {
		reasons = append(reasons, "confirmed by the cyber cell")
	} else if truth.CyberCellStatus == domain.CyberCellStatusInvestigating {
		reasons = append(reasons, "under cyber cell investigation")
	}

	return clamp(score), reasons
}

// urlScore derives 0-100 from the maximum badness across analyzed URLs.
func (s *Scorer) urlScore(facts []domain.URLFact) (float64, []string) {
	var (
		worst      float64
		worstFlags []string
		worstFact  *domain.URLFact
	)

	for i := range facts {
		badness := (1 - facts[i].TrustScore) * maxScore
		if badness > worst {
			worst = badness
			worstFlags = facts[i].Flags
			worstFact = &facts[i]
		}
	}

	var reasons []string

	if worst >= minReasonScore && worstFact != nil {
		for _, flag := range worstFlags {
			reasons = append(reasons, fmt.Sprintf("link %s: %s", worstFact.Domain, flag))
		}
	}

	return clamp(worst), reasons
}

// sentimentScore derives 0-100 from negative-sentiment intensity.
// Sentiment is in [-1, 1]; only the negative half contributes.
func (s *Scorer) sentimentScore(sentiment float64) (float64, []string) {
	if sentiment >= 0 {
		return 0, nil
	}

	score := clamp(-sentiment * maxScore)

	var reasons []string

	if score >= minReasonScore*2 {
		reasons = append(reasons, "emotionally manipulative tone")
	}

	return score, reasons
}

func clamp(score float64) float64 {
	if score < 0 {
		return 0
	}

	if score > maxScore {
		return maxScore
	}

	return score
}
