package identity

import (
	"context"
	"strconv"

	"github.com/infinai/infinai/internal/model"
)

// Static serves a fixed list of users. Used by tests and local runs
// without provider credentials.
type Static struct {
	users []model.SyncedUser
	err   error
}

// NewStatic returns a provider over users.
func NewStatic(users ...model.SyncedUser) *Static {
	return &Static{users: users}
}

// FailWith makes every later call return err.
func (s *Static) FailWith(err error) *Static {
	s.err = err
	return s
}

// Name returns "static".
func (s *Static) Name() string { return "static" }

// ListUsers pages through the fixed list by offset.
func (s *Static) ListUsers(ctx context.Context, cursor string, limit int) (Page, error) {
	if s.err != nil {
		return Page{}, s.err
	}
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}
	offset, err := parseOffset(cursor)
	if err != nil {
		return Page{}, err
	}
	if limit <= 0 {
		limit = len(s.users)
	}

	start := min(int(offset), len(s.users))
	end := min(start+limit, len(s.users))
	page := Page{Users: append([]model.SyncedUser(nil), s.users[start:end]...)}
	if end < len(s.users) {
		page.Next = strconv.Itoa(end)
	}
	return page, nil
}
