package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/steppet/steppet-engine/internal/model"
)

var _ model.ProgressStore = (*ProgressRepository)(nil)

type ProgressRepository struct {
	db *Connection
}

func NewProgressRepository(db *Connection) *ProgressRepository {
	return &ProgressRepository{
		db: db,
	}
}

func (r *ProgressRepository) Load(ctx context.Context, profileID uuid.UUID) (model.ProgressState, error) {
	query := `
		SELECT profile_id, total_steps, last_sync_time, current_phase,
		       has_seen_paywall, today_steps, today_date
		FROM progress
		WHERE profile_id = $1`

	var state model.ProgressState
	err := r.db.QueryRow(ctx, query, profileID).Scan(
		&state.ProfileID, &state.TotalStepsSinceStart, &state.LastSyncTime,
		&state.CurrentPhase, &state.HasSeenPaywall, &state.TodaySteps, &state.TodayDate,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ProgressState{}, model.ErrNotFound
		}
		return model.ProgressState{}, err
	}

	return state, nil
}

func (r *ProgressRepository) Save(ctx context.Context, state model.ProgressState) error {
	query := `
		INSERT INTO progress (profile_id, total_steps, last_sync_time, current_phase, has_seen_paywall, today_steps, today_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (profile_id) DO UPDATE SET
			total_steps = EXCLUDED.total_steps,
			last_sync_time = EXCLUDED.last_sync_time,
			current_phase = EXCLUDED.current_phase,
			has_seen_paywall = EXCLUDED.has_seen_paywall,
			today_steps = EXCLUDED.today_steps,
			today_date = EXCLUDED.today_date,
			updated_at = NOW()`

	_, err := r.db.Exec(ctx, query,
		state.ProfileID, state.TotalStepsSinceStart, state.LastSyncTime,
		state.CurrentPhase, state.HasSeenPaywall, state.TodaySteps, state.TodayDate,
	)
	return err
}
