// Package storage picks and opens the repository.Store named by the
// configured database URL.
package storage

import (
	"context"
	"fmt"

	"github.com/infinai/infinai/internal/config"
	"github.com/infinai/infinai/internal/repository"
	"github.com/infinai/infinai/internal/repository/mongostore"
	"github.com/infinai/infinai/internal/repository/sqlitestore"
)

// Open connects to the store named by databaseURL.
func Open(ctx context.Context, databaseURL, databaseName string) (repository.Store, error) {
	driver, err := config.DriverFor(databaseURL)
	if err != nil {
		return nil, err
	}

	var store repository.Store
	switch driver {
	case config.DriverMongo:
		store, err = openMongo(ctx, databaseURL, databaseName)
	case config.DriverPostgres:
		store, err = openPostgres(ctx, databaseURL)
	case config.DriverSQLite:
		store, err = openSQLite(ctx, sqlitestore.PathFromURL(databaseURL))
	default:
		err = fmt.Errorf("%w: %s", config.ErrUnknownDriver, driver)
	}
	if err != nil {
		return nil, err
	}
	return store, nil
}

// The helpers below keep a typed nil out of the interface on failure.

func openMongo(ctx context.Context, uri, name string) (repository.Store, error) {
	s, err := mongostore.Open(ctx, uri, name)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openPostgres(ctx context.Context, url string) (repository.Store, error) {
	s, err := repository.New(ctx, url)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func openSQLite(ctx context.Context, path string) (repository.Store, error) {
	s, err := sqlitestore.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Lazy returns a store that connects on first use.
func Lazy(databaseURL, databaseName string) *repository.Lazy {
	return repository.NewLazy(func(ctx context.Context) (repository.Store, error) {
		return Open(ctx, databaseURL, databaseName)
	}, repository.DefaultConnectTimeout)
}
