package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/steppet/steppet-engine/internal/model"
	"github.com/steppet/steppet-engine/internal/testutil"
)

// MockProgressStore mocks the ProgressStore interface
type MockProgressStore struct {
	mock.Mock
}

func (m *MockProgressStore) Load(ctx context.Context, profileID uuid.UUID) (model.ProgressState, error) {
	args := m.Called(ctx, profileID)
	return args.Get(0).(model.ProgressState), args.Error(1)
}

func (m *MockProgressStore) Save(ctx context.Context, state model.ProgressState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

// memProgressStore is an in-memory ProgressStore for multi-step scenarios.
type memProgressStore struct {
	state model.ProgressState
	set   bool
	fail  error
}

func (s *memProgressStore) Load(ctx context.Context, profileID uuid.UUID) (model.ProgressState, error) {
	if !s.set {
		return model.ProgressState{}, model.ErrNotFound
	}
	return s.state, nil
}

func (s *memProgressStore) Save(ctx context.Context, state model.ProgressState) error {
	if s.fail != nil {
		return s.fail
	}
	s.state = state
	s.set = true
	return nil
}

func newTestProgress(t *testing.T, store model.ProgressStore) *Progress {
	t.Helper()
	profile := model.UserProfile{ID: uuid.New(), CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	clock := testutil.NewManualClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	p, err := NewProgress(context.Background(), store, profile, clock, testutil.MakeNoopLogger())
	require.NoError(t, err)
	return p
}

func TestProgress_InitializesPhaseOneRecord(t *testing.T) {
	p := newTestProgress(t, &memProgressStore{})

	state := p.State()
	assert.Equal(t, 1, state.CurrentPhase)
	assert.Equal(t, int64(0), state.TotalStepsSinceStart)
	assert.False(t, state.HasSeenPaywall)
}

func TestProgress_ApplyStepUpdate_PhaseTransitionAndMilestone(t *testing.T) {
	p := newTestProgress(t, &memProgressStore{})
	ctx := context.Background()

	outcome, err := p.ApplyStepUpdate(ctx, 24_999, true)
	require.NoError(t, err)
	assert.Zero(t, outcome.PhaseTransition)

	outcome, err = p.ApplyStepUpdate(ctx, 25_001, true)
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.PhaseTransition)
	assert.Equal(t, int64(25_000), outcome.Milestone)

	state := p.State()
	assert.Equal(t, 2, state.CurrentPhase)
	assert.Equal(t, int64(25_001), state.TotalStepsSinceStart)
}

func TestProgress_ApplyStepUpdate_Idempotent(t *testing.T) {
	p := newTestProgress(t, &memProgressStore{})
	ctx := context.Background()

	outcome, err := p.ApplyStepUpdate(ctx, 30_000, true)
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.PhaseTransition)

	// Same total again: no second event.
	outcome, err = p.ApplyStepUpdate(ctx, 30_000, true)
	require.NoError(t, err)
	assert.Zero(t, outcome.PhaseTransition)
	assert.Zero(t, outcome.Milestone)
}

func TestProgress_ApplyStepUpdate_RejectsRegression(t *testing.T) {
	p := newTestProgress(t, &memProgressStore{})
	ctx := context.Background()

	_, err := p.ApplyStepUpdate(ctx, 10_000, false)
	require.NoError(t, err)

	_, err = p.ApplyStepUpdate(ctx, 9_000, false)
	require.ErrorIs(t, err, model.ErrRegressiveUpdate)

	var regErr *model.RegressiveUpdateError
	require.ErrorAs(t, err, &regErr)
	assert.Equal(t, int64(10_000), regErr.Stored)
	assert.Equal(t, int64(9_000), regErr.Incoming)

	// Prior state retained.
	assert.Equal(t, int64(10_000), p.State().TotalStepsSinceStart)
}

func TestProgress_PhaseNeverDecreasesAfterPremiumLapse(t *testing.T) {
	p := newTestProgress(t, &memProgressStore{})
	ctx := context.Background()

	_, err := p.ApplyStepUpdate(ctx, 150_000, true)
	require.NoError(t, err)
	assert.Equal(t, 3, p.State().CurrentPhase)

	// Premium lapses: the capped recomputation folds in via max, so the
	// stored phase stays the floor.
	_, err = p.ApplyStepUpdate(ctx, 151_000, false)
	require.NoError(t, err)
	assert.Equal(t, 3, p.State().CurrentPhase)
}

func TestProgress_FreeTierPhaseCapped(t *testing.T) {
	p := newTestProgress(t, &memProgressStore{})
	ctx := context.Background()

	_, err := p.ApplyStepUpdate(ctx, 150_000, false)
	require.NoError(t, err)

	state := p.State()
	assert.Equal(t, 2, state.CurrentPhase)
	assert.True(t, ShouldShowPaywall(state.TotalStepsSinceStart, false, state.HasSeenPaywall))
}

func TestProgress_AcknowledgePaywallIdempotent(t *testing.T) {
	store := &memProgressStore{}
	p := newTestProgress(t, store)
	ctx := context.Background()

	require.NoError(t, p.AcknowledgePaywall(ctx))
	assert.True(t, p.State().HasSeenPaywall)

	// Second ack is a no-op, without a save.
	savesBefore := store.state
	require.NoError(t, p.AcknowledgePaywall(ctx))
	assert.Equal(t, savesBefore, store.state)
}

func TestProgress_ResetPaywallRearmsIt(t *testing.T) {
	p := newTestProgress(t, &memProgressStore{})
	ctx := context.Background()

	_, err := p.ApplyStepUpdate(ctx, 150_000, false)
	require.NoError(t, err)
	require.NoError(t, p.AcknowledgePaywall(ctx))

	state := p.State()
	assert.False(t, ShouldShowPaywall(state.TotalStepsSinceStart, false, state.HasSeenPaywall))

	require.NoError(t, p.ResetPaywall(ctx))
	state = p.State()
	assert.True(t, ShouldShowPaywall(state.TotalStepsSinceStart, false, state.HasSeenPaywall))
}

func TestProgress_PersistenceFailureKeepsMemoryState(t *testing.T) {
	store := &memProgressStore{}
	p := newTestProgress(t, store)
	ctx := context.Background()

	store.fail = errors.New("disk full")

	outcome, err := p.ApplyStepUpdate(ctx, 30_000, true)
	require.Error(t, err)
	assert.Equal(t, 2, outcome.PhaseTransition)

	// In-memory state advanced despite the failed save.
	assert.Equal(t, int64(30_000), p.State().TotalStepsSinceStart)

	// Next mutation retries and lands the full record.
	store.fail = nil
	_, err = p.ApplyStepUpdate(ctx, 30_001, true)
	require.NoError(t, err)
	assert.Equal(t, int64(30_001), store.state.TotalStepsSinceStart)
	assert.Equal(t, 2, store.state.CurrentPhase)
}

func TestProgress_SetTodayStepsRollsOverOnNewDay(t *testing.T) {
	store := &memProgressStore{}
	profile := model.UserProfile{ID: uuid.New(), CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	clock := testutil.NewManualClock(time.Date(2025, 6, 1, 23, 50, 0, 0, time.UTC))
	p, err := NewProgress(context.Background(), store, profile, clock, testutil.MakeNoopLogger())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, p.SetTodaySteps(ctx, 4_000))
	assert.Equal(t, int64(4_000), p.State().TodaySteps)

	clock.Advance(20 * time.Minute)

	require.NoError(t, p.SetTodaySteps(ctx, 120))
	state := p.State()
	assert.Equal(t, int64(120), state.TodaySteps)
	assert.Equal(t, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC), state.TodayDate)
}

func TestProgress_SaveReceivesUpdatedRecord(t *testing.T) {
	store := &MockProgressStore{}
	profileID := uuid.New()
	store.On("Load", mock.Anything, profileID).Return(model.ProgressState{
		ProfileID:            profileID,
		TotalStepsSinceStart: 1_000,
		CurrentPhase:         1,
	}, nil)
	store.On("Save", mock.Anything, mock.MatchedBy(func(s model.ProgressState) bool {
		return s.TotalStepsSinceStart == 2_000 && s.CurrentPhase == 1
	})).Return(nil).Once()

	profile := model.UserProfile{ID: profileID}
	clock := testutil.NewManualClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	p, err := NewProgress(context.Background(), store, profile, clock, testutil.MakeNoopLogger())
	require.NoError(t, err)

	_, err = p.ApplyStepUpdate(context.Background(), 2_000, false)
	require.NoError(t, err)

	store.AssertExpectations(t)
}
