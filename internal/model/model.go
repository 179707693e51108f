// Package model defines domain entities used by the sync controller, cache and stores.
package model

import (
	"sort"
	"time"
)

// Credential is the single persisted OAuth record, keyed by the fixed
// "oauth2" namespace in the credential store.
type Credential struct {
	Code  string `json:"code"`
	Token string `json:"token"`
}

// User is the platform account the starred set belongs to. ID is the cache
// key for per-user repository sets.
type User struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	HTMLURL   string `json:"html_url"`
}

// Repository is one starred repository. Identity is ID; repeated sync
// upserts by ID and never duplicates.
type Repository struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	FullName    string    `json:"full_name"`
	Language    string    `json:"language"`
	Description string    `json:"description"`
	Owner       string    `json:"owner"`
	HTMLURL     string    `json:"html_url"`
	Stars       int       `json:"stargazers_count"`
	Fork        bool      `json:"fork"`
	StarredAt   time.Time `json:"starred_at"`
}

// LanguageGroup maps language name to the ids of repositories written in it.
// Derived from the current repository set, recomputed on every sync, never
// edited directly. Repositories without a language land under "Unknown".
type LanguageGroup map[string][]int64

// UnknownLanguage buckets repositories the platform reports no language for.
const UnknownLanguage = "Unknown"

// GroupByLanguage recomputes the language index from a repository set.
// Ids within each language are sorted.
func GroupByLanguage(repos []Repository) LanguageGroup {
	g := make(LanguageGroup)
	for _, r := range repos {
		lang := r.Language
		if lang == "" {
			lang = UnknownLanguage
		}
		g[lang] = append(g[lang], r.ID)
	}
	for _, ids := range g {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	}
	return g
}
