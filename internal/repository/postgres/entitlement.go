package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/steppet/steppet-engine/internal/model"
)

var _ model.EntitlementStore = (*EntitlementRepository)(nil)

type EntitlementRepository struct {
	db *Connection
}

func NewEntitlementRepository(db *Connection) *EntitlementRepository {
	return &EntitlementRepository{
		db: db,
	}
}

func (r *EntitlementRepository) Load(ctx context.Context, profileID uuid.UUID) (model.Entitlements, error) {
	query := `
		SELECT profile_id, is_premium, premium_since
		FROM entitlements
		WHERE profile_id = $1`

	var ent model.Entitlements
	err := r.db.QueryRow(ctx, query, profileID).Scan(
		&ent.ProfileID, &ent.IsPremium, &ent.PremiumSince,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Entitlements{}, model.ErrNotFound
		}
		return model.Entitlements{}, err
	}

	return ent, nil
}

func (r *EntitlementRepository) Save(ctx context.Context, ent model.Entitlements) error {
	// premium_since is write-once: COALESCE keeps the first recorded instant.
	query := `
		INSERT INTO entitlements (profile_id, is_premium, premium_since)
		VALUES ($1, $2, $3)
		ON CONFLICT (profile_id) DO UPDATE SET
			is_premium = EXCLUDED.is_premium,
			premium_since = COALESCE(entitlements.premium_since, EXCLUDED.premium_since),
			updated_at = NOW()`

	_, err := r.db.Exec(ctx, query, ent.ProfileID, ent.IsPremium, ent.PremiumSince)
	return err
}
