package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/infinai/infinai/internal/metrics"
	"github.com/infinai/infinai/internal/model"
	"github.com/infinai/infinai/internal/repository"
)

// Subscription errors.
var (
	ErrInvalidEmail      = errors.New("valid email is required")
	ErrAlreadySubscribed = errors.New("email is already subscribed")
)

// maxEmailLength follows the SMTP path limit.
const maxEmailLength = 254

// SubscriptionService records newsletter signups.
type SubscriptionService struct {
	store   repository.Store
	metrics metrics.Recorder
	now     func() time.Time
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(store repository.Store, recorder metrics.Recorder) *SubscriptionService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &SubscriptionService{
		store:   store,
		metrics: recorder,
		now:     time.Now,
	}
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidEmail reports whether email passes the signup check: non-empty and
// containing "@".
func ValidEmail(email string) bool {
	return email != "" && len(email) <= maxEmailLength && strings.Contains(email, "@")
}

// Subscribe stores email as a new subscriber.
func (s *SubscriptionService) Subscribe(ctx context.Context, email string) (*model.Subscriber, error) {
	email = NormalizeEmail(email)
	if !ValidEmail(email) {
		s.metrics.IncSubscription(metrics.StatusInvalid)
		return nil, ErrInvalidEmail
	}

	existing, err := s.store.GetSubscriberByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		s.metrics.IncSubscription(metrics.StatusDuplicate)
		return nil, ErrAlreadySubscribed
	case err != nil && !errors.Is(err, repository.ErrSubscriberNotFound):
		s.metrics.IncSubscription(metrics.StatusError)
		return nil, fmt.Errorf("lookup subscriber: %w", err)
	}

	sub := &model.Subscriber{
		ID:           newID(),
		Email:        email,
		SubscribedAt: s.now().UTC(),
	}

	// The unique index catches a concurrent signup that slipped past the lookup.
	if err := s.store.CreateSubscriber(ctx, sub); err != nil {
		if errors.Is(err, repository.ErrSubscriberExists) {
			s.metrics.IncSubscription(metrics.StatusDuplicate)
			return nil, ErrAlreadySubscribed
		}
		s.metrics.IncSubscription(metrics.StatusError)
		return nil, fmt.Errorf("create subscriber: %w", err)
	}

	s.metrics.IncSubscription(metrics.StatusCreated)
	return sub, nil
}
