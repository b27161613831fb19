package identity

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/infinai/infinai/internal/model"
)

// firebasePager fetches one page of exported users.
type firebasePager func(ctx context.Context, token string, limit int) ([]*auth.ExportedUserRecord, string, error)

// Firebase lists users through the Firebase Admin SDK. Cursors are the
// SDK's page tokens.
type Firebase struct {
	page firebasePager
}

// NewFirebase initializes the Admin SDK from a service account file.
func NewFirebase(ctx context.Context, credentialsPath string) (*Firebase, error) {
	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Auth client: %w", err)
	}

	return &Firebase{page: func(ctx context.Context, token string, limit int) ([]*auth.ExportedUserRecord, string, error) {
		var users []*auth.ExportedUserRecord
		pager := iterator.NewPager(client.Users(ctx, ""), limit, token)
		next, err := pager.NextPage(&users)
		return users, next, err
	}}, nil
}

// Name returns "firebase".
func (f *Firebase) Name() string { return "firebase" }

// ListUsers returns up to limit users from the page named by cursor.
func (f *Firebase) ListUsers(ctx context.Context, cursor string, limit int) (Page, error) {
	records, next, err := f.page(ctx, cursor, limit)
	if err != nil {
		return Page{}, fmt.Errorf("firebase list users: %w", err)
	}

	page := Page{Users: make([]model.SyncedUser, 0, len(records)), Next: next}
	for _, r := range records {
		if r == nil || r.UserRecord == nil || r.UserInfo == nil {
			continue
		}
		page.Users = append(page.Users, fromFirebase(r.UserRecord))
	}
	return page, nil
}

// fromFirebase maps a Firebase account. Firebase keeps a single display
// name, split here on the first space into first and last name.
func fromFirebase(r *auth.UserRecord) model.SyncedUser {
	first, last, _ := strings.Cut(strings.TrimSpace(r.DisplayName), " ")
	username, _, _ := strings.Cut(r.Email, "@")
	return model.SyncedUser{
		ExternalID: r.UID,
		Email:      r.Email,
		FirstName:  first,
		LastName:   strings.TrimSpace(last),
		Username:   username,
		ImageURL:   r.PhotoURL,
	}
}
