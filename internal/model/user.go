package model

import "time"

// Subscriber is a newsletter signup. Email is the natural key.
type Subscriber struct {
	ID           string    `json:"id" bson:"-"`
	Email        string    `json:"email" bson:"email"`
	SubscribedAt time.Time `json:"subscribed_at" bson:"subscribed_at"`
}

// SyncedUser is a local copy of an identity provider account,
// keyed by the provider's user id.
type SyncedUser struct {
	ExternalID string    `json:"clerkId" bson:"clerkId"`
	Email      string    `json:"email" bson:"email"`
	FirstName  string    `json:"firstName" bson:"firstName"`
	LastName   string    `json:"lastName" bson:"lastName"`
	Username   string    `json:"username" bson:"username"`
	ImageURL   string    `json:"imageUrl" bson:"imageUrl"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}

// DisplayName returns the best human-readable name for the user.
func (u *SyncedUser) DisplayName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.Username != "":
		return u.Username
	default:
		return u.Email
	}
}
