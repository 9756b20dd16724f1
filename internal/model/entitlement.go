package model

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EntitlementStore defines persistence operations for entitlements.
type EntitlementStore interface {
	Load(ctx context.Context, profileID uuid.UUID) (Entitlements, error)
	Save(ctx context.Context, ent Entitlements) error
}

// Entitlements records premium access. PremiumSince is set on first
// activation and retained across deactivation as a historical record.
type Entitlements struct {
	ProfileID    uuid.UUID
	IsPremium    bool
	PremiumSince *time.Time
}
