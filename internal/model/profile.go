package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ProfileStore defines persistence operations for the user profile.
// The engine is single-user: there is at most one profile row.
type ProfileStore interface {
	Load(ctx context.Context) (UserProfile, error)
	Create(ctx context.Context, profile UserProfile) (UserProfile, error)
	SetOnboardingComplete(ctx context.Context, id uuid.UUID) error
}

// UserProfile holds identity and the step-counting baseline. CreatedAt is
// set once at onboarding and never changes; cumulative totals are counted
// from that instant.
type UserProfile struct {
	ID                 uuid.UUID
	Gender             Gender
	StarterStyle       StarterStyle
	CreatedAt          time.Time
	OnboardingComplete bool
}

// Gender enumerates profile gender choices.
type Gender string

const (
	GenderFemale      Gender = "female"
	GenderMale        Gender = "male"
	GenderUnspecified Gender = "unspecified"
)

// StarterStyle enumerates the companion style chosen at onboarding.
type StarterStyle string

const (
	StarterStyleSunny StarterStyle = "sunny"
	StarterStyleMisty StarterStyle = "misty"
	StarterStyleEmber StarterStyle = "ember"
)
