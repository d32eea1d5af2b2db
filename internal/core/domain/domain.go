// Package domain defines the core data model for the scam analysis engine.
//
// Everything here is plain data: content variants, collaborator-produced
// indicators, URL trust facts, regional scam patterns, and the engine's
// externally visible AnalysisOutput. No I/O, no behavior beyond
// derivations that belong to the types themselves.
package domain

import "time"

// ContentKind identifies the provenance of analyzed text. The engine is
// provenance-agnostic: image and voice content arrive already normalized
// to text by upstream collaborators and take the same path as direct text.
type ContentKind string

const (
	ContentText             ContentKind = "text"
	ContentImageDerivedText ContentKind = "image_text"
	ContentVoiceDerivedText ContentKind = "voice_text"
)

// Content is normalized text plus provenance.
type Content struct {
	Kind     ContentKind
	Text     string
	Language string
	// LanguageDetected is false when the upstream language detector
	// failed and Language is a fallback. Alerts then carry a reduced
	// confidence marker.
	LanguageDetected bool
}

// Indicators are the normalized signals produced per request by the
// reasoning collaborator. Immutable once built.
type Indicators struct {
	Urgency           bool
	CredentialRequest bool
	Impersonation     bool
	FinancialRequest  bool
	SentimentScore    float64 // [-1, 1], negative means distressing/urgent language
	// Reasoning is free text from the generative collaborator. Opaque:
	// surfaced verbatim in reasons, never parsed or branched on.
	Reasoning string
}

// ReputationTier classifies a domain's known reputation.
type ReputationTier string

const (
	TierTrusted    ReputationTier = "trusted"
	TierUnknown    ReputationTier = "unknown"
	TierSuspicious ReputationTier = "suspicious"
	TierMalicious  ReputationTier = "malicious"
)

// URLFact holds the derived trust facts for a single extracted URL.
type URLFact struct {
	URL                 string
	Domain              string
	AgeDays             int
	ReputationTier      ReputationTier
	IsShortener         bool
	ResolvedDestination string
	RedirectHops        int
	TyposquatDistance   int
	TyposquatTarget     string
	SSLValid            bool
	TrustScore          float64 // [0, 1], 1 is fully trusted
	Flags               []string
}

// DomainTrustRecord is the persisted, shared-across-requests form of a
// domain's trust facts. Last write wins; refreshed when stale.
type DomainTrustRecord struct {
	Domain         string
	TrustScore     float64
	ReputationTier ReputationTier
	LastChecked    time.Time
	TTL            time.Duration
}

// Stale reports whether the record has outlived its TTL.
func (r DomainTrustRecord) Stale(now time.Time) bool {
	return now.After(r.LastChecked.Add(r.TTL))
}

// ScamType categorizes a stored scam pattern.
type ScamType string

const (
	ScamTypeOTPTheft      ScamType = "otp_theft"
	ScamTypeImpersonation ScamType = "impersonation"
	ScamTypeFakeOffer     ScamType = "fake_offer"
	ScamTypeLottery       ScamType = "lottery"
	ScamTypeJobOffer      ScamType = "job_offer"
	ScamTypeInvestment    ScamType = "investment"
	ScamTypeOther         ScamType = "other"
)

// Pattern status constants. Transitions go active -> historical only and
// are never reversed; historical records are retained until expiry TTL.
const (
	PatternStatusActive     = "active"
	PatternStatusHistorical = "historical"
)

// Pattern severity constants.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// ScamPattern is a stored, fingerprinted record of previously observed
// scam content, scoped by district and type.
type ScamPattern struct {
	ID          string
	PatternHash string
	District    string
	ScamType    ScamType
	Language    string
	FirstSeen   time.Time
	LastSeen    time.Time
	ReportCount int
	Status      string
	Severity    string
	ExpiresAt   *time.Time
}

// Official status values for Cyber Cell reports.
const (
	CyberCellStatusNone          = ""
	CyberCellStatusInvestigating = "investigating"
	CyberCellStatusConfirmed     = "confirmed"
	CyberCellStatusResolved      = "resolved"
)

// CyberCellReport is an official report ingested out-of-band. Read-only
// from the engine's perspective; writes may lag receipt by up to five
// minutes, which the engine tolerates.
type CyberCellReport struct {
	ID              string
	OfficialStatus  string
	RelatedPatterns []string
	PublicWarning   string
	ReceivedAt      time.Time
}

// TruthVerificationResult is the per-request product of the regional
// truth engine. Derived, never persisted.
type TruthVerificationResult struct {
	LocalFlags       int
	CyberCellStatus  string
	TrendingLocally  bool
	RelatedPatterns  []string
	OfficialWarnings []string
	LocalWeight      float64 // [0, 1]
	Degraded         bool
}

// HasLocalContext reports whether district-specific evidence exists.
func (t TruthVerificationResult) HasLocalContext() bool {
	return t.LocalFlags > 0 || t.TrendingLocally || len(t.OfficialWarnings) > 0
}

// Classification tiers. Boundary values belong to the higher tier.
const (
	ClassLikelySafe = "Likely Safe"
	ClassSuspicious = "Suspicious"
	ClassHighRisk   = "High Scam Probability"
)

// LocalContext is the district-scoped slice of the truth result that is
// surfaced to the caller when present.
type LocalContext struct {
	District         string   `json:"district"`
	LocalFlags       int      `json:"localFlags"`
	TrendingLocally  bool     `json:"trendingLocally"`
	CyberCellStatus  string   `json:"cyberCellStatus,omitempty"`
	OfficialWarnings []string `json:"officialWarnings,omitempty"`
}

// AnalysisOutput is the engine's sole externally visible product.
type AnalysisOutput struct {
	RequestID            string        `json:"requestId"`
	ScamProbabilityScore float64       `json:"scamProbabilityScore"` // [0, 100]
	Classification       string        `json:"classification"`
	Reasons              []string      `json:"reasons"`
	LocalContext         *LocalContext `json:"localContext,omitempty"`
	Alert                string        `json:"alert"`
	ProcessingTimeMs     int64         `json:"processingTimeMs"`
	Partial              bool          `json:"partial"`
	Degraded             bool          `json:"degraded"`
}
