package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/steppet/steppet-engine/internal/model"
	"github.com/steppet/steppet-engine/internal/testutil"
)

// memEntitlementStore is an in-memory EntitlementStore.
type memEntitlementStore struct {
	ent model.Entitlements
	set bool
}

func (s *memEntitlementStore) Load(ctx context.Context, profileID uuid.UUID) (model.Entitlements, error) {
	if !s.set {
		return model.Entitlements{}, model.ErrNotFound
	}
	return s.ent, nil
}

func (s *memEntitlementStore) Save(ctx context.Context, ent model.Entitlements) error {
	s.ent = ent
	s.set = true
	return nil
}

func newTestEntitlement(t *testing.T) (*Entitlement, *testutil.ManualClock) {
	t.Helper()
	clock := testutil.NewManualClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	profile := model.UserProfile{ID: uuid.New()}
	e, err := NewEntitlement(context.Background(), &memEntitlementStore{}, profile, clock, testutil.MakeNoopLogger())
	require.NoError(t, err)
	return e, clock
}

func TestEntitlement_DefaultsToFree(t *testing.T) {
	e, _ := newTestEntitlement(t)
	assert.False(t, e.IsPremium())
	assert.Nil(t, e.Current().PremiumSince)
}

func TestEntitlement_PremiumSinceSetOnce(t *testing.T) {
	e, clock := newTestEntitlement(t)
	ctx := context.Background()

	require.NoError(t, e.SetPremium(ctx, true))
	first := e.Current().PremiumSince
	require.NotNil(t, first)

	// Deactivation keeps the historical record.
	require.NoError(t, e.SetPremium(ctx, false))
	assert.False(t, e.IsPremium())
	assert.Equal(t, first, e.Current().PremiumSince)

	// Re-activation later does not move it.
	clock.Advance(48 * time.Hour)
	require.NoError(t, e.SetPremium(ctx, true))
	assert.True(t, e.IsPremium())
	assert.Equal(t, first, e.Current().PremiumSince)
}
