package trust

import "strings"

// High-value domains commonly impersonated in phishing campaigns. The
// list is extendable through configuration; these are always checked.
var defaultHighValueDomains = []string{
	"google.com",
	"facebook.com",
	"whatsapp.com",
	"paypal.com",
	"amazon.com",
	"apple.com",
	"microsoft.com",
	"netflix.com",
	"sbi.co.in",
	"hdfcbank.com",
	"icicibank.com",
	"axisbank.com",
	"paytm.com",
	"phonepe.com",
	"irctc.co.in",
	"incometax.gov.in",
	"uidai.gov.in",
}

// minTargetLength guards against false positives on short names, where
// small edit distances are common between unrelated domains.
const minTargetLength = 6

// TyposquatMatch describes the closest high-value domain within the
// distance threshold.
type TyposquatMatch struct {
	Target   string
	Distance int
}

// TyposquatCheck computes the minimum edit distance between the
// registrable domain and each high-value domain. A match is returned
// when the distance is positive, at most maxDist, and the target is long
// enough for the distance to be meaningful. Exact matches (distance 0)
// are the legitimate domain itself, not a squat.
func TyposquatCheck(domainName string, targets []string, maxDist int) *TyposquatMatch {
	if len(targets) == 0 {
		targets = defaultHighValueDomains
	}

	domainName = strings.ToLower(domainName)

	var best *TyposquatMatch

	for _, target := range targets {
		if len(target) < minTargetLength {
			continue
		}

		dist := levenshtein(domainName, target)
		if dist == 0 || dist > maxDist {
			continue
		}

		if best == nil || dist < best.Distance {
			best = &TyposquatMatch{Target: target, Distance: dist}
		}
	}

	return best
}

// levenshtein computes the edit distance between two strings using the
// two-row dynamic programming form.
func levenshtein(a, b string) int {
	if a == b {
		return 0
	}

	ra, rb := []rune(a), []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}

	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)

	for j := 0; j <= len(rb); j++ {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i

		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}

		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

func minInt(values ...int) int {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}

	return m
}
