package model

import "time"

// DisplayState is the energy state derived from today's step count.
type DisplayState string

const (
	DisplayTired     DisplayState = "tired"
	DisplayNormal    DisplayState = "normal"
	DisplayEnergetic DisplayState = "energetic"
)

// Snapshot is the immutable content unit handed to the rendering surface.
// Receivers must tolerate repeated identical snapshots.
type Snapshot struct {
	Steps         int64        `json:"steps"`
	TodaySteps    int64        `json:"todaySteps"`
	Phase         int          `json:"phase"`
	PhaseProgress float64      `json:"phaseProgress"`
	StepsToNext   int64        `json:"stepsToNext,omitempty"`
	Display       DisplayState `json:"display"`
	IsWalking     bool         `json:"isWalking"`
	FrameIndex    int          `json:"frameIndex"`
	MilestoneText string       `json:"milestoneText,omitempty"`
	ShowPaywall   bool         `json:"showPaywall"`
	CapturedAt    time.Time    `json:"capturedAt"`
}
