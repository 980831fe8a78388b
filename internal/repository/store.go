// Package repository loads applicants and mentors for the matcher from
// Postgres, Redis and Elasticsearch.
package repository

import (
	"context"
	"errors"

	"mentor-match/internal/models"
)

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrProviderNotFound = errors.New("provider not found")
)

// UserStore resolves applicants by ID.
type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
}

// ProviderStore returns the mentor pool. ListProviders returns every
// provider regardless of status so the selector can fall back to top-rated
// mentors when nobody is eligible.
type ProviderStore interface {
	ListProviders(ctx context.Context) ([]*models.Provider, error)
	GetProvider(ctx context.Context, id string) (*models.Provider, error)
}

// ProviderQuery filters a directory search.
type ProviderQuery struct {
	Text           string
	Specialization string
	ApprovedOnly   bool
	Limit          int
}

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

func (q ProviderQuery) size() int {
	switch {
	case q.Limit <= 0:
		return defaultSearchLimit
	case q.Limit > maxSearchLimit:
		return maxSearchLimit
	default:
		return q.Limit
	}
}

// ProviderSearcher is implemented by stores backed by a search index.
type ProviderSearcher interface {
	SearchProviders(ctx context.Context, q ProviderQuery) ([]*models.Provider, error)
}
