package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/infinai/infinai/internal/model"
)

// UpsertUser inserts or replaces the profile fields of a synced user.
func (r *Repository) UpsertUser(ctx context.Context, user *model.SyncedUser) error {
	query := `
		INSERT INTO users (clerk_id, email, first_name, last_name, username, image_url, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (clerk_id) DO UPDATE SET
			email      = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name  = EXCLUDED.last_name,
			username   = EXCLUDED.username,
			image_url  = EXCLUDED.image_url,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		user.ExternalID,
		user.Email,
		user.FirstName,
		user.LastName,
		user.Username,
		user.ImageURL,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}

	return nil
}

// GetUserByExternalID retrieves a synced user by identity provider id.
func (r *Repository) GetUserByExternalID(ctx context.Context, externalID string) (*model.SyncedUser, error) {
	query := `
		SELECT clerk_id, email, first_name, last_name, username, image_url, updated_at
		FROM users
		WHERE clerk_id = $1
	`

	var user model.SyncedUser
	err := r.pool.QueryRow(ctx, query, externalID).Scan(
		&user.ExternalID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Username,
		&user.ImageURL,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by external id: %w", err)
	}

	return &user, nil
}

// CountUsers returns the number of synced users.
func (r *Repository) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
