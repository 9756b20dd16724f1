package service

import "github.com/steppet/steppet-engine/internal/model"

// Energy display bands over today's step count.
const (
	tiredBelow    int64 = 3_000
	energeticFrom int64 = 8_000
)

// ClassifyDisplay maps today's steps to the energy display state.
func ClassifyDisplay(todaySteps int64) model.DisplayState {
	switch {
	case todaySteps < tiredBelow:
		return model.DisplayTired
	case todaySteps >= energeticFrom:
		return model.DisplayEnergetic
	default:
		return model.DisplayNormal
	}
}
