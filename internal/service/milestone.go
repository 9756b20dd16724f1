package service

import "fmt"

// milestones are the fixed celebratory thresholds, ascending. They are a
// display concern only and unrelated to phase gating.
var milestones = []int64{
	100,
	500,
	1_000,
	2_500,
	5_000,
	10_000,
	25_000,
	50_000,
	100_000,
	250_000,
	500_000,
	1_000_000,
	2_500_000,
	5_000_000,
	10_000_000,
}

// CheckMilestone returns the smallest milestone m with prev < m <= curr.
// When an update jumps several milestones at once only the smallest is
// reported; a caller wanting the rest re-invokes with prev = m.
func CheckMilestone(prev, curr int64) (int64, bool) {
	for _, m := range milestones {
		if prev < m && m <= curr {
			return m, true
		}
	}
	return 0, false
}

// FormatMilestone renders a milestone as its celebration label:
// 1_000_000 -> "1M!", 5_000 -> "5k!", 500 -> "500!".
func FormatMilestone(m int64) string {
	switch {
	case m%1_000_000 == 0:
		return fmt.Sprintf("%dM!", m/1_000_000)
	case m%1_000 == 0:
		return fmt.Sprintf("%dk!", m/1_000)
	default:
		return fmt.Sprintf("%d!", m)
	}
}
