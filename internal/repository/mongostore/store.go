// Package mongostore provides a MongoDB-backed repository.Store using the
// "subscribers" and "users" collections.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/infinai/infinai/internal/model"
	"github.com/infinai/infinai/internal/repository"
)

const (
	subscribersCollection = "subscribers"
	usersCollection       = "users"
)

// Store persists subscribers and users in MongoDB.
type Store struct {
	client      *mongo.Client
	subscribers *mongo.Collection
	users       *mongo.Collection
}

var _ repository.Store = (*Store)(nil)

// Open connects to uri, selects database, and ensures indexes.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(repository.DefaultConnectTimeout).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)
	s := &Store{
		client:      client,
		subscribers: db.Collection(subscribersCollection),
		users:       db.Collection(usersCollection),
	}

	if err := s.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context) error {
	_, err := s.subscribers.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("email_unique"),
	})
	if err != nil {
		return fmt.Errorf("create subscribers index: %w", err)
	}

	_, err = s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "clerkId", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("clerkId_unique"),
	})
	if err != nil {
		return fmt.Errorf("create users index: %w", err)
	}
	return nil
}

// Ping checks connectivity to the primary.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// GetSubscriberByEmail retrieves a subscriber by email address.
func (s *Store) GetSubscriberByEmail(ctx context.Context, email string) (*model.Subscriber, error) {
	var sub model.Subscriber
	err := s.subscribers.FindOne(ctx, bson.M{"email": email}).Decode(&sub)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrSubscriberNotFound
		}
		return nil, fmt.Errorf("failed to get subscriber by email: %w", err)
	}
	sub.SubscribedAt = sub.SubscribedAt.UTC()
	return &sub, nil
}

// CreateSubscriber inserts {email, subscribed_at}.
func (s *Store) CreateSubscriber(ctx context.Context, sub *model.Subscriber) error {
	_, err := s.subscribers.InsertOne(ctx, sub)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrSubscriberExists
		}
		return fmt.Errorf("failed to create subscriber: %w", err)
	}
	return nil
}

// CountSubscribers returns the number of subscribers.
func (s *Store) CountSubscribers(ctx context.Context) (int64, error) {
	n, err := s.subscribers.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count subscribers: %w", err)
	}
	return n, nil
}

// UpsertUser sets the profile fields on the document keyed by clerkId,
// creating it when absent.
func (s *Store) UpsertUser(ctx context.Context, user *model.SyncedUser) error {
	update := bson.M{"$set": bson.M{
		"email":      user.Email,
		"firstName":  user.FirstName,
		"lastName":   user.LastName,
		"username":   user.Username,
		"imageUrl":   user.ImageURL,
		"updated_at": user.UpdatedAt,
	}}

	_, err := s.users.UpdateOne(ctx,
		bson.M{"clerkId": user.ExternalID},
		update,
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// GetUserByExternalID retrieves a synced user by identity provider id.
func (s *Store) GetUserByExternalID(ctx context.Context, externalID string) (*model.SyncedUser, error) {
	var u model.SyncedUser
	err := s.users.FindOne(ctx, bson.M{"clerkId": externalID}).Decode(&u)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by external id: %w", err)
	}
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}

// CountUsers returns the number of synced users.
func (s *Store) CountUsers(ctx context.Context) (int64, error) {
	n, err := s.users.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// Drop removes both collections. Used by tests.
func (s *Store) Drop(ctx context.Context) error {
	if err := s.subscribers.Drop(ctx); err != nil {
		return err
	}
	return s.users.Drop(ctx)
}
