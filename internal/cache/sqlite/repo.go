package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/starview-app/starview/internal/errs"
	"github.com/starview-app/starview/internal/model"
)

// Store implements cache.Cache over an opened SQLite database.
type Store struct{ db *sql.DB }

// NewStore constructs the SQLite-backed cache.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// FindUser selects a cached user by id.
func (s *Store) FindUser(ctx context.Context, id int64) (*model.User, error) {
	const q = `
SELECT id, login, name, avatar_url, html_url
FROM users WHERE id = ?`
	row := s.db.QueryRowContext(ctx, q, id)
	var u model.User
	if err := row.Scan(&u.ID, &u.Login, &u.Name, &u.AvatarURL, &u.HTMLURL); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, &errs.CacheError{Op: "find user", Err: err}
	}
	return &u, nil
}

// UpsertUser inserts or updates a user row keyed by id.
func (s *Store) UpsertUser(ctx context.Context, u *model.User) error {
	const q = `
INSERT INTO users (id, login, name, avatar_url, html_url)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	login = excluded.login,
	name = excluded.name,
	avatar_url = excluded.avatar_url,
	html_url = excluded.html_url`
	if _, err := s.db.ExecContext(ctx, q, u.ID, u.Login, u.Name, u.AvatarURL, u.HTMLURL); err != nil {
		return &errs.CacheError{Op: "upsert user", Err: err}
	}
	return nil
}

// FetchAllRepos returns a user's cached starred set, newest star first.
func (s *Store) FetchAllRepos(ctx context.Context, userID int64) ([]model.Repository, error) {
	const q = `
SELECT id, name, full_name, language, description, owner, html_url, stars, fork, starred_at
FROM repos WHERE user_id = ?
ORDER BY starred_at DESC, id`
	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, &errs.CacheError{Op: "fetch repos", Err: err}
	}
	defer rows.Close()

	var repos []model.Repository
	for rows.Next() {
		var r model.Repository
		var starredAt string
		if err := rows.Scan(&r.ID, &r.Name, &r.FullName, &r.Language, &r.Description,
			&r.Owner, &r.HTMLURL, &r.Stars, &r.Fork, &starredAt); err != nil {
			return nil, &errs.CacheError{Op: "scan repo", Err: err}
		}
		if t, err := time.Parse(time.RFC3339, starredAt); err == nil {
			r.StarredAt = t
		}
		repos = append(repos, r)
	}
	if err := rows.Err(); err != nil {
		return nil, &errs.CacheError{Op: "fetch repos", Err: err}
	}
	return repos, nil
}

// UpsertRepos writes the batch in one transaction, keyed by repository id.
func (s *Store) UpsertRepos(ctx context.Context, userID int64, repos []model.Repository) error {
	if len(repos) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &errs.CacheError{Op: "upsert repos", Err: err}
	}
	defer tx.Rollback()

	const q = `
INSERT INTO repos (id, user_id, name, full_name, language, description, owner, html_url, stars, fork, starred_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	user_id = excluded.user_id,
	name = excluded.name,
	full_name = excluded.full_name,
	language = excluded.language,
	description = excluded.description,
	owner = excluded.owner,
	html_url = excluded.html_url,
	stars = excluded.stars,
	fork = excluded.fork,
	starred_at = excluded.starred_at`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		return &errs.CacheError{Op: "upsert repos", Err: err}
	}
	defer stmt.Close()

	for i := range repos {
		r := &repos[i]
		_, err := stmt.ExecContext(ctx, r.ID, userID, r.Name, r.FullName, r.Language,
			r.Description, r.Owner, r.HTMLURL, r.Stars, r.Fork,
			r.StarredAt.UTC().Format(time.RFC3339))
		if err != nil {
			return &errs.CacheError{Op: fmt.Sprintf("upsert repo %d", r.ID), Err: err}
		}
	}
	if err := tx.Commit(); err != nil {
		return &errs.CacheError{Op: "upsert repos", Err: err}
	}
	return nil
}

// FetchLangGroup loads the derived language index, nil when absent.
func (s *Store) FetchLangGroup(ctx context.Context, userID int64) (model.LanguageGroup, error) {
	const q = `SELECT groups FROM lang_groups WHERE user_id = ?`
	row := s.db.QueryRowContext(ctx, q, userID)
	var doc []byte
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, &errs.CacheError{Op: "fetch lang group", Err: err}
	}
	var g model.LanguageGroup
	if err := json.Unmarshal(doc, &g); err != nil {
		return nil, &errs.CacheError{Op: "decode lang group", Err: err}
	}
	return g, nil
}

// UpsertLangGroup replaces the stored language index for a user.
func (s *Store) UpsertLangGroup(ctx context.Context, userID int64, g model.LanguageGroup) error {
	doc, err := json.Marshal(g)
	if err != nil {
		return &errs.CacheError{Op: "encode lang group", Err: err}
	}
	const q = `
INSERT INTO lang_groups (user_id, groups)
VALUES (?, ?)
ON CONFLICT (user_id) DO UPDATE SET groups = excluded.groups`
	if _, err := s.db.ExecContext(ctx, q, userID, doc); err != nil {
		return &errs.CacheError{Op: "upsert lang group", Err: err}
	}
	return nil
}
