package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/steppet/steppet-engine/internal/logger"
	"github.com/steppet/steppet-engine/internal/model"
	"github.com/steppet/steppet-engine/internal/observability"
)

// Progress owns the durable evolution record. All mutations are serialized
// through its mutex; nothing else writes CurrentPhase or
// TotalStepsSinceStart. On a persistence failure the in-memory state stands
// and the next mutation retries the save.
type Progress struct {
	store  model.ProgressStore
	clock  model.Clock
	logger *logger.Logger

	mu    sync.Mutex
	state model.ProgressState
}

// NewProgress loads the record for the profile, initializing a phase-1 record
// when none exists yet.
func NewProgress(ctx context.Context, store model.ProgressStore, profile model.UserProfile, clock model.Clock, logger *logger.Logger) (*Progress, error) {
	state, err := store.Load(ctx, profile.ID)
	if errors.Is(err, model.ErrNotFound) {
		state = model.ProgressState{
			ProfileID:    profile.ID,
			CurrentPhase: 1,
			TodayDate:    civilDay(clock.Now()),
		}
		if err := store.Save(ctx, state); err != nil {
			return nil, fmt.Errorf("failed to save initial progress: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	observability.SetCurrentPhase(state.CurrentPhase)

	return &Progress{
		store:  store,
		clock:  clock,
		logger: logger,
		state:  state,
	}, nil
}

// ApplyStepUpdate applies a new cumulative total. A total below the stored
// one is rejected with ErrRegressiveUpdate and prior state retained. The
// stored phase only ever rises: the capped phase for the new total is folded
// in via max, so a phase unlocked under premium survives a later lapse.
// Returned events fire once; re-applying the same total yields none.
func (p *Progress) ApplyStepUpdate(ctx context.Context, newTotal int64, isPremium bool) (model.UpdateOutcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if newTotal < p.state.TotalStepsSinceStart {
		err := &model.RegressiveUpdateError{Stored: p.state.TotalStepsSinceStart, Incoming: newTotal}
		p.logger.Warn("Progress service: rejecting regressive update",
			"stored", err.Stored,
			"incoming", err.Incoming)
		return model.UpdateOutcome{}, err
	}

	prev := p.state.TotalStepsSinceStart

	var outcome model.UpdateOutcome
	if phase, ok := CheckPhaseTransition(prev, newTotal); ok {
		outcome.PhaseTransition = phase
		observability.RecordPhaseTransition()
	}
	if m, ok := CheckMilestone(prev, newTotal); ok {
		outcome.Milestone = m
		observability.RecordMilestone()
	}

	p.state.TotalStepsSinceStart = newTotal
	p.state.LastSyncTime = p.clock.Now()
	if phase := CurrentPhase(newTotal, isPremium); phase > p.state.CurrentPhase {
		p.state.CurrentPhase = phase
	}
	observability.SetCurrentPhase(p.state.CurrentPhase)

	if err := p.store.Save(ctx, p.state); err != nil {
		return outcome, fmt.Errorf("failed to save progress: %w", err)
	}

	return outcome, nil
}

// SetTodaySteps records today's resettable counter, rolling it over when the
// civil day has changed since the last write.
func (p *Progress) SetTodaySteps(ctx context.Context, todaySteps int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	today := civilDay(p.clock.Now())
	if !p.state.TodayDate.Equal(today) {
		p.state.TodayDate = today
	}
	p.state.TodaySteps = todaySteps

	if err := p.store.Save(ctx, p.state); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// AcknowledgePaywall marks the paywall as seen. Idempotent.
func (p *Progress) AcknowledgePaywall(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.HasSeenPaywall {
		return nil
	}
	p.state.HasSeenPaywall = true

	if err := p.store.Save(ctx, p.state); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// ResetPaywall clears the seen flag so the paywall can fire again. Debug
// only; not part of the public surface.
func (p *Progress) ResetPaywall(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state.HasSeenPaywall = false
	if err := p.store.Save(ctx, p.state); err != nil {
		return fmt.Errorf("failed to save progress: %w", err)
	}
	return nil
}

// State returns a copy of the current record.
func (p *Progress) State() model.ProgressState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
