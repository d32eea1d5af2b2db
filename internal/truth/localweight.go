package truth

import (
	"math"

	"github.com/lueurxax/scam-shield/internal/core/domain"
)

// Local weight shaping. Flags saturate instead of growing linearly: the
// difference between 0 and 10 district reports matters far more than the
// difference between 50 and 60.
const (
	flagsSaturation = 8.0
	flagsCap        = 0.6
	trendingBoost   = 0.2

	confirmedBoost     = 0.2
	investigatingBoost = 0.15
	resolvedBoost      = 0.05
)

// LocalWeight computes the amplification factor for district-specific
// evidence. Monotonically non-decreasing in each input, capped at 1.0.
func LocalWeight(localFlags int, trendingLocally bool, cyberCellStatus string) float64 {
	if localFlags < 0 {
		localFlags = 0
	}

	weight := flagsCap * (1 - math.Exp(-float64(localFlags)/flagsSaturation))

	if trendingLocally {
		weight += trendingBoost
	}

	switch cyberCellStatus {
	case domain.CyberCellStatusConfirmed:
		weight += confirmedBoost
	case domain.CyberCellStatusInvestigating:
		weight += investigatingBoost
	case domain.CyberCellStatusResolved:
		weight += resolvedBoost
	}

	if weight > 1 {
		return 1
	}

	return weight
}
