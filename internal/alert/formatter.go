// Package alert renders the final user-facing alert text from a scored
// analysis. Templates are keyed by (classification, language); the alert
// always speaks the content's language, falling back to the default only
// when upstream language detection itself failed.
package alert

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/lueurxax/scam-shield/internal/core/domain"
)

// maxTopReasons caps the enumerated reasons on high-probability alerts.
const maxTopReasons = 3

// Input is everything the formatter needs to render one alert.
type Input struct {
	Score          float64
	Classification string
	Reasons        []string
	Language       string
	// LanguageDetected false means Language is a fallback and the alert
	// carries a reduced-confidence note.
	LanguageDetected bool
	LocalContext     *domain.LocalContext
}

// Formatter renders localized alerts.
type Formatter struct {
	matcher language.Matcher
	logger  *zerolog.Logger
}

// New creates a formatter.
func New(logger *zerolog.Logger) *Formatter {
	return &Formatter{
		matcher: language.NewMatcher(supportedTags),
		logger:  logger,
	}
}

// Generate renders the alert. High-probability alerts enumerate the top
// reasons; district text appears only when local context is non-trivial.
func (f *Formatter) Generate(in Input) string {
	cat := f.catalogFor(in.Language)

	var sb strings.Builder

	sb.WriteString(f.header(cat, in.Classification))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf(cat.scoreLine, in.Score))
	sb.WriteString("\n")

	if in.Classification == domain.ClassHighRisk && len(in.Reasons) > 0 {
		sb.WriteString("\n")
		sb.WriteString(cat.reasonsHeading)
		sb.WriteString("\n")

		top := in.Reasons
		if len(top) > maxTopReasons {
			top = top[:maxTopReasons]
		}

		for _, reason := range top {
			sb.WriteString(fmt.Sprintf("• %s\n", reason))
		}
	}

	if lc := in.LocalContext; lc != nil && localContextNonTrivial(lc) {
		sb.WriteString("\n")
		f.writeLocalContext(&sb, cat, lc)
	}

	sb.WriteString("\n")
	sb.WriteString(f.advice(cat, in.Classification))

	if !in.LanguageDetected {
		sb.WriteString("\n\n")
		sb.WriteString(cat.reducedNote)
	}

	return sb.String()
}

// catalogFor matches the content language against the supported set.
func (f *Formatter) catalogFor(lang string) catalog {
	tag, err := language.Parse(lang)
	if err != nil {
		f.logger.Debug().Str("language", lang).Msg("unparseable language tag, using default")

		return catalogs[supportedTags[0]]
	}

	_, index, _ := f.matcher.Match(tag)

	return catalogs[supportedTags[index]]
}

func (f *Formatter) header(cat catalog, classification string) string {
	switch classification {
	case domain.ClassHighRisk:
		return cat.headerHigh
	case domain.ClassSuspicious:
		return cat.headerSuspicious
	default:
		return cat.headerSafe
	}
}

func (f *Formatter) advice(cat catalog, classification string) string {
	switch classification {
	case domain.ClassHighRisk:
		return cat.adviceHigh
	case domain.ClassSuspicious:
		return cat.adviceSuspicious
	default:
		return cat.adviceSafe
	}
}

func (f *Formatter) writeLocalContext(sb *strings.Builder, cat catalog, lc *domain.LocalContext) {
	if lc.LocalFlags > 0 {
		sb.WriteString(fmt.Sprintf(cat.districtReports, lc.LocalFlags, lc.District))
		sb.WriteString("\n")
	}

	if lc.TrendingLocally {
		sb.WriteString(fmt.Sprintf(cat.districtTrending, lc.District))
		sb.WriteString("\n")
	}

	switch lc.CyberCellStatus {
	case domain.CyberCellStatusConfirmed:
		sb.WriteString(cat.cellConfirmed)
		sb.WriteString("\n")
	case domain.CyberCellStatusInvestigating:
		sb.WriteString(cat.cellInvestigate)
		sb.WriteString("\n")
	}

	for _, warning := range lc.OfficialWarnings {
		sb.WriteString(fmt.Sprintf(cat.warningPrefix, warning))
		sb.WriteString("\n")
	}
}

// localContextNonTrivial mirrors TruthVerificationResult.HasLocalContext
// for the surfaced slice: district text is omitted, not blanked, when
// nothing local contributed.
func localContextNonTrivial(lc *domain.LocalContext) bool {
	return lc.LocalFlags > 0 || lc.TrendingLocally || len(lc.OfficialWarnings) > 0 ||
		lc.CyberCellStatus == domain.CyberCellStatusConfirmed ||
		lc.CyberCellStatus == domain.CyberCellStatusInvestigating
}
