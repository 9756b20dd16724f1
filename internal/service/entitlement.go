package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/steppet/steppet-engine/internal/logger"
	"github.com/steppet/steppet-engine/internal/model"
)

// Entitlement mirrors the billing collaborator's premium flag. The engine
// only ever reads it; writes arrive through SetPremium. PremiumSince is set
// on first activation and never cleared afterwards.
type Entitlement struct {
	store  model.EntitlementStore
	clock  model.Clock
	logger *logger.Logger

	mu  sync.Mutex
	ent model.Entitlements
}

func NewEntitlement(ctx context.Context, store model.EntitlementStore, profile model.UserProfile, clock model.Clock, logger *logger.Logger) (*Entitlement, error) {
	ent, err := store.Load(ctx, profile.ID)
	if errors.Is(err, model.ErrNotFound) {
		ent = model.Entitlements{ProfileID: profile.ID}
		if err := store.Save(ctx, ent); err != nil {
			return nil, fmt.Errorf("failed to save initial entitlements: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to load entitlements: %w", err)
	}

	return &Entitlement{
		store:  store,
		clock:  clock,
		logger: logger,
		ent:    ent,
	}, nil
}

// SetPremium applies a billing update.
func (e *Entitlement) SetPremium(ctx context.Context, active bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if active && e.ent.PremiumSince == nil {
		since := e.clock.Now()
		e.ent.PremiumSince = &since
	}
	e.ent.IsPremium = active

	if err := e.store.Save(ctx, e.ent); err != nil {
		return fmt.Errorf("failed to save entitlements: %w", err)
	}

	e.logger.Info("Entitlement service: premium flag updated", "active", active)
	return nil
}

// IsPremium reports the current premium flag. Callers re-read it for every
// step update rather than caching it across calls.
func (e *Entitlement) IsPremium() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ent.IsPremium
}

// Current returns a copy of the entitlement record.
func (e *Entitlement) Current() model.Entitlements {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ent
}
