package truth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lueurxax/scam-shield/internal/core/domain"
)

func TestLocalWeight_Range(t *testing.T) {
	tests := []struct {
		name     string
		flags    int
		trending bool
		status   string
	}{
		{name: "zero evidence"},
		{name: "negative flags clamped", flags: -5},
		{name: "everything maxed", flags: 10000, trending: true, status: domain.CyberCellStatusConfirmed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			weight := LocalWeight(tt.flags, tt.trending, tt.status)

			assert.GreaterOrEqual(t, weight, 0.0)
			assert.LessOrEqual(t, weight, 1.0)
		})
	}
}

func TestLocalWeight_MonotoneInFlags(t *testing.T) {
	prev := 0.0

	for flags := 0; flags <= 100; flags++ {
		weight := LocalWeight(flags, false, domain.CyberCellStatusNone)

		assert.GreaterOrEqual(t, weight, prev, "flags=%d", flags)
		prev = weight
	}
}

func TestLocalWeight_TrendingNeverLowers(t *testing.T) {
	for _, flags := range []int{0, 1, 5, 50} {
		without := LocalWeight(flags, false, domain.CyberCellStatusNone)
		with := LocalWeight(flags, true, domain.CyberCellStatusNone)

		assert.GreaterOrEqual(t, with, without, "flags=%d", flags)
	}
}

func TestLocalWeight_StatusSeverityOrdering(t *testing.T) {
	none := LocalWeight(5, false, domain.CyberCellStatusNone)
	resolved := LocalWeight(5, false, domain.CyberCellStatusResolved)
	investigating := LocalWeight(5, false, domain.CyberCellStatusInvestigating)
	confirmed := LocalWeight(5, false, domain.CyberCellStatusConfirmed)

	assert.Greater(t, resolved, none)
	assert.Greater(t, investigating, resolved)
	assert.Greater(t, confirmed, investigating)
}

func TestLocalWeight_ZeroEvidenceIsZero(t *testing.T) {
	assert.Zero(t, LocalWeight(0, false, domain.CyberCellStatusNone))
}
