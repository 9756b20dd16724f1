package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/steppet/steppet-engine/internal/model"
)

var _ model.ProfileStore = (*ProfileRepository)(nil)

type ProfileRepository struct {
	db *Connection
}

func NewProfileRepository(db *Connection) *ProfileRepository {
	return &ProfileRepository{
		db: db,
	}
}

func (r *ProfileRepository) Load(ctx context.Context) (model.UserProfile, error) {
	query := `
		SELECT id, gender, starter_style, created_at, onboarding_complete
		FROM profiles
		ORDER BY created_at ASC
		LIMIT 1`

	var profile model.UserProfile
	err := r.db.QueryRow(ctx, query).Scan(
		&profile.ID, &profile.Gender, &profile.StarterStyle,
		&profile.CreatedAt, &profile.OnboardingComplete,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.UserProfile{}, model.ErrNotFound
		}
		return model.UserProfile{}, err
	}

	return profile, nil
}

func (r *ProfileRepository) Create(ctx context.Context, profile model.UserProfile) (model.UserProfile, error) {
	query := `
		INSERT INTO profiles (id, gender, starter_style, created_at, onboarding_complete)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, gender, starter_style, created_at, onboarding_complete`

	var saved model.UserProfile
	err := r.db.QueryRow(ctx, query,
		profile.ID, string(profile.Gender), string(profile.StarterStyle),
		profile.CreatedAt, profile.OnboardingComplete,
	).Scan(
		&saved.ID, &saved.Gender, &saved.StarterStyle,
		&saved.CreatedAt, &saved.OnboardingComplete,
	)
	if err != nil {
		return model.UserProfile{}, err
	}

	return saved, nil
}

func (r *ProfileRepository) SetOnboardingComplete(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE profiles SET onboarding_complete = TRUE WHERE id = $1`
	cmd, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
