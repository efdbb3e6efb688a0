package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/studioshot/headshot-be/internal/api/model"
	"github.com/studioshot/headshot-be/shared/postgresql"
)

type Storage struct {
	db *sqlx.DB
}

func NewStorage(pg *postgresql.Client) *Storage {
	return &Storage{
		db: pg.GetDB(),
	}
}

// UpsertCheckoutSession records the paid session and its contact.
// Webhook relays redeliver, so the write is idempotent per session_ref.
func (s *Storage) UpsertCheckoutSession(ctx context.Context, session *model.CheckoutSession) error {
	query := `
		INSERT INTO checkout_sessions (
			session_ref, order_id, customer_id, asset_group_id,
			variant, email, first_name, last_name, created_at, updated_at
		) VALUES (
			:session_ref, :order_id, :customer_id, :asset_group_id,
			:variant, :email, :first_name, :last_name, :created_at, :updated_at
		)
		ON CONFLICT (session_ref) DO UPDATE SET
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := s.db.NamedExecContext(ctx, query, session); err != nil {
		return fmt.Errorf("failed to upsert checkout session: %w", err)
	}

	return nil
}

// GalleryURLs returns the generated image URLs for an asset group.
func (s *Storage) GalleryURLs(ctx context.Context, assetGroupID string) ([]string, error) {
	query := `
		SELECT image_url
		FROM generated_assets
		WHERE asset_group_id = $1
		ORDER BY created_at, id
	`

	urls := []string{}
	if err := s.db.SelectContext(ctx, &urls, query, assetGroupID); err != nil {
		return nil, fmt.Errorf("failed to list gallery: %w", err)
	}

	return urls, nil
}
