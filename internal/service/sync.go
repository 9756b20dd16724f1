package service

import (
	"context"
	"errors"
	"time"

	"github.com/steppet/steppet-engine/internal/logger"
	"github.com/steppet/steppet-engine/internal/model"
	"github.com/steppet/steppet-engine/internal/render"
)

// Syncer drives the engine pipeline: provider totals flow through the cache
// into the progress record, the walker consumes today's samples, and every
// pass publishes a snapshot for the rendering surface. Provider and
// persistence failures are never fatal; the last known good state renders.
type Syncer struct {
	cache       *StepCache
	progress    *Progress
	entitlement *Entitlement
	provider    model.StepProvider
	bus         *render.Bus
	clock       model.Clock
	interval    time.Duration
	baseline    time.Time
	logger      *logger.Logger

	walker *Walker
}

type SyncerParams struct {
	Cache         *StepCache
	Progress      *Progress
	Entitlement   *Entitlement
	Provider      model.StepProvider
	Bus           *render.Bus
	Clock         model.Clock
	PollInterval  time.Duration
	Baseline      time.Time
	Frames        int
	FrameInterval time.Duration
	Logger        *logger.Logger
}

func NewSyncer(p SyncerParams) *Syncer {
	s := &Syncer{
		cache:       p.Cache,
		progress:    p.Progress,
		entitlement: p.Entitlement,
		provider:    p.Provider,
		bus:         p.Bus,
		clock:       p.Clock,
		interval:    p.PollInterval,
		baseline:    p.Baseline,
		logger:      p.Logger,
	}
	s.walker = NewWalker(p.Frames, p.FrameInterval, p.Clock, s.publishFrame, p.Logger)
	return s
}

// Walker exposes the animation state machine, mainly for session teardown.
func (s *Syncer) Walker() *Walker {
	return s.walker
}

// Run polls the provider until ctx is done, then cancels the walker's timer.
func (s *Syncer) Run(ctx context.Context) {
	defer s.walker.Stop()

	if err := s.SyncOnce(ctx); err != nil {
		s.logger.Error("Syncer: initial sync failed", "error", err.Error())
	}

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C():
			if err := s.SyncOnce(ctx); err != nil {
				s.logger.Error("Syncer: sync failed", "error", err.Error())
			}
		case <-ctx.Done():
			return
		}
	}
}

// SyncOnce performs one pipeline pass and publishes the resulting snapshot.
func (s *Syncer) SyncOnce(ctx context.Context) error {
	var milestoneText string

	isPremium := s.entitlement.IsPremium()

	total, err := s.cache.Get(ctx, s.baseline)
	if err != nil {
		// Transient: keep rendering the stored state.
		s.logger.Warn("Syncer: cumulative fetch failed, rendering last known state",
			"error", err.Error())
	} else {
		outcome, err := s.progress.ApplyStepUpdate(ctx, total, isPremium)
		switch {
		case errors.Is(err, model.ErrRegressiveUpdate):
			s.logger.Warn("Syncer: provider total regressed, keeping stored state",
				"error", err.Error())
		case err != nil:
			s.logger.Error("Syncer: failed to persist step update",
				"error", err.Error())
		}
		if outcome.Milestone != 0 {
			milestoneText = FormatMilestone(outcome.Milestone)
		}
		if outcome.PhaseTransition != 0 {
			s.logger.Info("Syncer: phase transition",
				"phase", outcome.PhaseTransition)
		}
	}

	if today, err := s.provider.FetchTodaySteps(ctx); err != nil {
		s.logger.Warn("Syncer: today fetch failed", "error", err.Error())
	} else {
		s.walker.Observe(today)
		if err := s.progress.SetTodaySteps(ctx, today); err != nil {
			s.logger.Error("Syncer: failed to persist today steps",
				"error", err.Error())
		}
	}

	s.bus.Publish(s.snapshot(milestoneText))
	return nil
}

// Refresh is the user-initiated path: drop the cache entry and sync now.
func (s *Syncer) Refresh(ctx context.Context) error {
	s.cache.Invalidate()
	return s.SyncOnce(ctx)
}

// Snapshot builds the current content snapshot without touching the
// provider.
func (s *Syncer) Snapshot() model.Snapshot {
	return s.snapshot("")
}

func (s *Syncer) snapshot(milestoneText string) model.Snapshot {
	state := s.progress.State()
	walking, frame := s.walker.State()
	isPremium := s.entitlement.IsPremium()

	stepsToNext, _ := StepsToNextPhase(state.TotalStepsSinceStart)

	return model.Snapshot{
		Steps:         state.TotalStepsSinceStart,
		TodaySteps:    state.TodaySteps,
		Phase:         state.CurrentPhase,
		PhaseProgress: ProgressInPhase(state.TotalStepsSinceStart),
		StepsToNext:   stepsToNext,
		Display:       ClassifyDisplay(state.TodaySteps),
		IsWalking:     walking,
		FrameIndex:    frame,
		MilestoneText: milestoneText,
		ShowPaywall:   ShouldShowPaywall(state.TotalStepsSinceStart, isPremium, state.HasSeenPaywall),
		CapturedAt:    s.clock.Now(),
	}
}

// publishFrame is the walker's render sink: each frame advance re-publishes
// a snapshot carrying the new frame.
func (s *Syncer) publishFrame(walking bool, frame int) {
	snap := s.snapshot("")
	snap.IsWalking = walking
	snap.FrameIndex = frame
	s.bus.Publish(snap)
}
