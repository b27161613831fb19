package service

import (
	"context"
	"fmt"

	"github.com/infinai/infinai/internal/content"
	"github.com/infinai/infinai/internal/repository"
)

// Stats is the admin overview of stored records and site content.
type Stats struct {
	Subscribers int64                `json:"subscribers"`
	Users       int64                `json:"users"`
	Projects    content.ProjectStats `json:"projects"`
}

// StatsService reports record counts.
type StatsService struct {
	store   repository.Store
	content *content.Store
}

// NewStatsService creates a new StatsService.
func NewStatsService(store repository.Store, site *content.Store) *StatsService {
	return &StatsService{store: store, content: site}
}

// Stats counts subscribers and synced users.
func (s *StatsService) Stats(ctx context.Context) (*Stats, error) {
	subs, err := s.store.CountSubscribers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count subscribers: %w", err)
	}
	users, err := s.store.CountUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	stats := &Stats{Subscribers: subs, Users: users}
	if s.content != nil {
		stats.Projects = s.content.Stats()
	}
	return stats, nil
}
