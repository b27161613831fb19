package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/infinai/infinai/internal/model"
)

// GetSubscriberByEmail retrieves a subscriber by email address.
func (r *Repository) GetSubscriberByEmail(ctx context.Context, email string) (*model.Subscriber, error) {
	query := `
		SELECT id, email, subscribed_at
		FROM subscribers
		WHERE email = $1
	`

	var sub model.Subscriber
	err := r.pool.QueryRow(ctx, query, email).Scan(
		&sub.ID,
		&sub.Email,
		&sub.SubscribedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriberNotFound
		}
		return nil, fmt.Errorf("failed to get subscriber by email: %w", err)
	}

	return &sub, nil
}

// CreateSubscriber inserts a new subscriber. A concurrent insert of the
// same email surfaces as ErrSubscriberExists through the unique index.
func (r *Repository) CreateSubscriber(ctx context.Context, sub *model.Subscriber) error {
	query := `
		INSERT INTO subscribers (id, email, subscribed_at)
		VALUES ($1, $2, $3)
	`

	_, err := r.pool.Exec(ctx, query,
		sub.ID,
		sub.Email,
		sub.SubscribedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrSubscriberExists
		}
		return fmt.Errorf("failed to create subscriber: %w", err)
	}

	return nil
}

// CountSubscribers returns the number of subscribers.
func (r *Repository) CountSubscribers(ctx context.Context) (int64, error) {
	var n int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM subscribers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count subscribers: %w", err)
	}
	return n, nil
}
