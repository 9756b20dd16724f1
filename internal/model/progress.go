package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ProgressStore defines persistence operations for evolution progress.
// The record is loaded once on start and saved on every mutation.
type ProgressStore interface {
	Load(ctx context.Context, profileID uuid.UUID) (ProgressState, error)
	Save(ctx context.Context, state ProgressState) error
}

// ProgressState is the durable evolution record. TotalStepsSinceStart never
// decreases and is the sole driver of phase. CurrentPhase never decreases
// either: a phase reached under premium stays the stored floor even after
// the entitlement lapses.
type ProgressState struct {
	ProfileID            uuid.UUID
	TotalStepsSinceStart int64
	LastSyncTime         time.Time
	CurrentPhase         int
	HasSeenPaywall       bool
	TodaySteps           int64
	TodayDate            time.Time
}

// UpdateOutcome reports the one-time events produced by a step update.
// Zero values mean no event.
type UpdateOutcome struct {
	PhaseTransition int
	Milestone       int64
}
