package identity

import (
	"context"
	"fmt"
	"strconv"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/user"

	"github.com/infinai/infinai/internal/model"
)

// clerkLister is the subset of the Clerk user client the provider needs.
type clerkLister interface {
	List(ctx context.Context, params *user.ListParams) (*clerk.UserList, error)
}

// Clerk lists users through the Clerk Backend API. Cursors are offsets.
type Clerk struct {
	client clerkLister
}

// NewClerk returns a Clerk provider authenticated with secretKey.
func NewClerk(secretKey string) *Clerk {
	client := user.NewClient(&clerk.ClientConfig{
		BackendConfig: clerk.BackendConfig{Key: clerk.String(secretKey)},
	})
	return &Clerk{client: client}
}

// Name returns "clerk".
func (c *Clerk) Name() string { return "clerk" }

// ListUsers returns up to limit users starting at the offset in cursor.
func (c *Clerk) ListUsers(ctx context.Context, cursor string, limit int) (Page, error) {
	offset, err := parseOffset(cursor)
	if err != nil {
		return Page{}, err
	}

	params := &user.ListParams{}
	params.Limit = clerk.Int64(int64(limit))
	params.Offset = clerk.Int64(offset)

	list, err := c.client.List(ctx, params)
	if err != nil {
		return Page{}, fmt.Errorf("clerk list users: %w", err)
	}

	page := Page{Users: make([]model.SyncedUser, 0, len(list.Users))}
	for _, u := range list.Users {
		if u == nil {
			continue
		}
		page.Users = append(page.Users, fromClerk(u))
	}

	next := offset + int64(len(list.Users))
	if len(list.Users) > 0 && len(list.Users) >= limit && next < list.TotalCount {
		page.Next = strconv.FormatInt(next, 10)
	}
	return page, nil
}

func parseOffset(cursor string) (int64, error) {
	if cursor == "" {
		return 0, nil
	}
	offset, err := strconv.ParseInt(cursor, 10, 64)
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("%w: %q", ErrBadCursor, cursor)
	}
	return offset, nil
}

// fromClerk maps a Clerk user. The primary address wins; otherwise the
// first listed address is used.
func fromClerk(u *clerk.User) model.SyncedUser {
	su := model.SyncedUser{
		ExternalID: u.ID,
		FirstName:  deref(u.FirstName),
		LastName:   deref(u.LastName),
		Username:   deref(u.Username),
		ImageURL:   deref(u.ImageURL),
	}

	primary := deref(u.PrimaryEmailAddressID)
	for _, addr := range u.EmailAddresses {
		if addr == nil {
			continue
		}
		if su.Email == "" {
			su.Email = addr.EmailAddress
		}
		if primary != "" && addr.ID == primary {
			su.Email = addr.EmailAddress
			break
		}
	}
	return su
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
