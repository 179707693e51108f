// Package cache defines local repository-cache interfaces implemented by concrete backends.
//
// Cache reads are expected to complete without user-visible latency. Read
// failures degrade to a cache-miss and never block the network path; write
// failures are logged by callers as warnings.
package cache

import (
	"context"

	"github.com/starview-app/starview/internal/model"
)

// UserCache stores the platform users whose starred sets have been synced.
type UserCache interface {
	// FindUser loads a cached user by id, errs.ErrNotFound when absent.
	FindUser(ctx context.Context, id int64) (*model.User, error)
	// UpsertUser inserts or updates a user keyed by id.
	UpsertUser(ctx context.Context, u *model.User) error
}

// RepoCache stores starred repositories per owning user.
type RepoCache interface {
	// FetchAllRepos returns the cached starred set ordered by starred_at
	// descending. An empty slice means nothing is cached.
	FetchAllRepos(ctx context.Context, userID int64) ([]model.Repository, error)
	// UpsertRepos inserts or updates repositories keyed by repository id.
	// Repeated upsert of the same id never duplicates an entry.
	UpsertRepos(ctx context.Context, userID int64, repos []model.Repository) error
}

// LangCache stores the derived per-user language index.
type LangCache interface {
	// FetchLangGroup returns the cached language group, nil when absent.
	FetchLangGroup(ctx context.Context, userID int64) (model.LanguageGroup, error)
	// UpsertLangGroup replaces the language group for a user.
	UpsertLangGroup(ctx context.Context, userID int64, g model.LanguageGroup) error
}

// Cache aggregates the three collections a backend provides.
type Cache interface {
	UserCache
	RepoCache
	LangCache
}
