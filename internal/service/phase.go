package service

// Evolution phase thresholds. Upper bounds are inclusive: a total equal to
// Phase1Max still belongs to phase 1.
const (
	Phase1Max int64 = 25_000
	Phase2Max int64 = 75_000
	Phase3Max int64 = 200_000

	// Phase 4 has no upper bound; its progress ring repeats every
	// phase4Ring steps.
	phase4Ring int64 = 100_000

	// FreePhaseCap is the highest phase reachable without premium.
	FreePhaseCap = 2

	MaxPhase = 4
)

// EarnedPhase maps a cumulative total to the phase implied by steps alone,
// ignoring entitlement.
func EarnedPhase(total int64) int {
	switch {
	case total <= Phase1Max:
		return 1
	case total <= Phase2Max:
		return 2
	case total <= Phase3Max:
		return 3
	default:
		return MaxPhase
	}
}

// CurrentPhase is the earned phase capped at FreePhaseCap for free users.
func CurrentPhase(total int64, isPremium bool) int {
	earned := EarnedPhase(total)
	if !isPremium && earned > FreePhaseCap {
		return FreePhaseCap
	}
	return earned
}

// ProgressInPhase returns the fraction in [0,1) of steps completed within
// the earned phase's band. Phase 4 is unbounded and wraps on a repeating
// ring.
func ProgressInPhase(total int64) float64 {
	switch EarnedPhase(total) {
	case 1:
		return float64(total) / float64(Phase1Max+1)
	case 2:
		return float64(total-Phase1Max-1) / float64(Phase2Max-Phase1Max)
	case 3:
		return float64(total-Phase2Max-1) / float64(Phase3Max-Phase2Max)
	default:
		return float64((total-Phase3Max)%phase4Ring) / float64(phase4Ring)
	}
}

// StepsToNextPhase returns the steps remaining until the next phase, or
// false when the earned phase is terminal.
func StepsToNextPhase(total int64) (int64, bool) {
	switch EarnedPhase(total) {
	case 1:
		return Phase1Max - total + 1, true
	case 2:
		return Phase2Max - total + 1, true
	case 3:
		return Phase3Max - total + 1, true
	default:
		return 0, false
	}
}

// CheckPhaseTransition returns the new earned phase when curr crosses into a
// higher phase than prev, independent of entitlement gating.
func CheckPhaseTransition(prev, curr int64) (int, bool) {
	if EarnedPhase(curr) > EarnedPhase(prev) {
		return EarnedPhase(curr), true
	}
	return 0, false
}

// ShouldShowPaywall reports whether the one-time paywall is due: free user,
// never shown, earned phase at or beyond the gate.
func ShouldShowPaywall(total int64, isPremium, hasSeenPaywall bool) bool {
	return !isPremium && !hasSeenPaywall && EarnedPhase(total) > FreePhaseCap
}
