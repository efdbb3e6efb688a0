package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/studioshot/headshot-be/internal/pipeline"
)

// Storage is the PostgreSQL-backed implementation of the pipeline's
// durable surface.
type Storage struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStorage creates a new Storage instance.
func NewStorage(db *sqlx.DB, logger *slog.Logger) *Storage {
	return &Storage{
		db:     db,
		logger: logger,
	}
}

// UploadedAssetURLs returns the input photo URLs uploaded for a group.
// Rows are written upstream by the intake flow and read-only here.
func (s *Storage) UploadedAssetURLs(ctx context.Context, assetGroupID string) ([]string, error) {
	query := `
		SELECT url
		FROM uploaded_assets
		WHERE asset_group_id = $1
		ORDER BY created_at, id
	`

	urls := []string{}
	if err := s.db.SelectContext(ctx, &urls, query, assetGroupID); err != nil {
		return nil, fmt.Errorf("failed to list uploaded assets: %w", err)
	}
	return urls, nil
}

// ModelHandle returns the group's stored model handle, or "" when the
// group has none (or does not exist yet).
func (s *Storage) ModelHandle(ctx context.Context, assetGroupID string) (string, error) {
	query := `SELECT model_handle FROM asset_groups WHERE asset_group_id = $1`

	var handle sql.NullString
	err := s.db.QueryRowContext(ctx, query, assetGroupID).Scan(&handle)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read model handle: %w", err)
	}
	return handle.String, nil
}

// SetModelHandle stores handle onto the group only while the stored
// handle is null, creating the group row if the intake flow has not yet.
// Returns true when this call's write won. The conditional update is
// what keeps at most one non-null handle per group under duplicate job
// delivery.
func (s *Storage) SetModelHandle(ctx context.Context, assetGroupID, handle string) (bool, error) {
	query := `
		INSERT INTO asset_groups (asset_group_id, model_handle, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (asset_group_id) DO UPDATE
		SET model_handle = EXCLUDED.model_handle,
		    updated_at = NOW()
		WHERE asset_groups.model_handle IS NULL
	`

	result, err := s.db.ExecContext(ctx, query, assetGroupID, handle)
	if err != nil {
		return false, fmt.Errorf("failed to set model handle: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		s.logger.Warn("Model handle already set, write skipped",
			slog.String("asset_group_id", assetGroupID),
		)
		return false, nil
	}
	return true, nil
}

type generatedAssetRow struct {
	ID           string    `db:"id"`
	PromptRef    string    `db:"prompt_ref"`
	AssetGroupID string    `db:"asset_group_id"`
	ImageURL     string    `db:"image_url"`
	SourceRef    string    `db:"source_ref"`
	CreatedAt    time.Time `db:"created_at"`
}

// AppendGeneratedAssets inserts one row per produced image. Append-only:
// nothing here updates or deletes earlier rows.
func (s *Storage) AppendGeneratedAssets(ctx context.Context, assets []pipeline.GeneratedAsset) error {
	if len(assets) == 0 {
		return nil
	}

	rows := make([]generatedAssetRow, 0, len(assets))
	for _, a := range assets {
		rows = append(rows, generatedAssetRow{
			ID:           a.ID,
			PromptRef:    a.PromptRef,
			AssetGroupID: a.AssetGroupID,
			ImageURL:     a.ImageURL,
			SourceRef:    a.SourceRef,
			CreatedAt:    a.CreatedAt,
		})
	}

	query := `
		INSERT INTO generated_assets (id, prompt_ref, asset_group_id, image_url, source_ref, created_at)
		VALUES (:id, :prompt_ref, :asset_group_id, :image_url, :source_ref, :created_at)
	`

	if _, err := s.db.NamedExecContext(ctx, query, rows); err != nil {
		return fmt.Errorf("failed to insert generated assets: %w", err)
	}
	return nil
}

// CountGeneratedAssets counts the images persisted for a group.
func (s *Storage) CountGeneratedAssets(ctx context.Context, assetGroupID string) (int, error) {
	query := `SELECT COUNT(*) FROM generated_assets WHERE asset_group_id = $1`

	var count int
	if err := s.db.GetContext(ctx, &count, query, assetGroupID); err != nil {
		return 0, fmt.Errorf("failed to count generated assets: %w", err)
	}
	return count, nil
}

// GalleryURLs returns every persisted image URL for a group.
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

type contactRow struct {
	Email     string         `db:"email"`
	FirstName sql.NullString `db:"first_name"`
	LastName  sql.NullString `db:"last_name"`
}

func (r contactRow) toContact() *pipeline.Contact {
	return &pipeline.Contact{
		Email:     r.Email,
		FirstName: r.FirstName.String,
		LastName:  r.LastName.String,
	}
}

// CustomerContact returns the customer's stored contact profile, or nil
// when no local profile exists.
func (s *Storage) CustomerContact(ctx context.Context, customerID string) (*pipeline.Contact, error) {
	query := `
		SELECT email, first_name, last_name
		FROM customers
		WHERE customer_id = $1
	`

	var row contactRow
	err := s.db.GetContext(ctx, &row, query, customerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read customer contact: %w", err)
	}
	return row.toContact(), nil
}

// SessionContact returns the contact captured on the checkout session at
// payment time, the fallback when the customer has no local profile.
func (s *Storage) SessionContact(ctx context.Context, sessionRef string) (*pipeline.Contact, error) {
	query := `
		SELECT email, first_name, last_name
		FROM checkout_sessions
		WHERE session_ref = $1
	`

	var row contactRow
	err := s.db.GetContext(ctx, &row, query, sessionRef)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session contact: %w", err)
	}
	return row.toContact(), nil
}
