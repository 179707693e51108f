// Package github is a thin typed client for the platform endpoints starview needs:
// OAuth token exchange, current-user fetch, and the paged starred-repos listing.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/starview-app/starview/internal/errs"
	"github.com/starview-app/starview/internal/model"
)

const (
	defaultAPIBase = "https://api.github.com"
	perPage        = 100

	// starAccept asks for the starred listing variant that carries starred_at.
	starAccept = "application/vnd.github.star+json"
)

// Client issues authenticated HTTP calls. Failures are returned as errors,
// never panics, so the sync controller can apply uniform recovery policy.
type Client struct {
	httpc   *http.Client
	apiBase string

	// authBase overrides the OAuth host scheme+authority; used by tests.
	authBase string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.httpc = h } }

// WithAPIBase points API calls at a different base URL.
func WithAPIBase(u string) Option { return func(c *Client) { c.apiBase = u } }

// WithAuthBase points the token exchange at a fixed base URL instead of
// https://{hostname}.
func WithAuthBase(u string) Option { return func(c *Client) { c.authBase = u } }

// NewClient constructs a Client with a sane default timeout.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpc:   &http.Client{Timeout: 30 * time.Second},
		apiBase: defaultAPIBase,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// ExchangeToken posts the authorization code to the platform's token endpoint
// and returns the access token. Anything but HTTP 200 with a well-formed body
// containing a non-empty access_token is an AuthError.
func (c *Client) ExchangeToken(ctx context.Context, clientID, clientSecret, code, hostname string) (string, error) {
	url := c.authBase + "/login/oauth/access_token"
	if c.authBase == "" {
		url = fmt.Sprintf("https://%s/login/oauth/access_token", hostname)
	}

	body, err := json.Marshal(map[string]string{
		"client_id":     clientID,
		"client_secret": clientSecret,
		"code":          code,
	})
	if err != nil {
		return "", &errs.AuthError{Op: "exchange", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", &errs.AuthError{Op: "exchange", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", &errs.AuthError{Op: "exchange", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &errs.AuthError{Op: "exchange", Status: resp.StatusCode, Err: errs.ErrUnauthorized}
	}
	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &errs.AuthError{Op: "exchange", Status: resp.StatusCode, Err: err}
	}
	if out.AccessToken == "" {
		return "", &errs.AuthError{Op: "exchange", Status: resp.StatusCode, Err: errors.New("empty access_token")}
	}
	return out.AccessToken, nil
}

// FetchCurrentUser resolves the authenticated user behind the token.
func (c *Client) FetchCurrentUser(ctx context.Context, token string) (*model.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+"/user", nil)
	if err != nil {
		return nil, &errs.AuthError{Op: "user", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "token "+token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &errs.AuthError{Op: "user", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &errs.AuthError{Op: "user", Status: resp.StatusCode, Err: errs.ErrUnauthorized}
	}
	var u model.User
	if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
		return nil, &errs.AuthError{Op: "user", Status: resp.StatusCode, Err: err}
	}
	return &u, nil
}

// starredEntry is one element of the star+json listing.
type starredEntry struct {
	StarredAt time.Time `json:"starred_at"`
	Repo      struct {
		ID          int64  `json:"id"`
		Name        string `json:"name"`
		FullName    string `json:"full_name"`
		Language    string `json:"language"`
		Description string `json:"description"`
		HTMLURL     string `json:"html_url"`
		Stars       int    `json:"stargazers_count"`
		Fork        bool   `json:"fork"`
		Owner       struct {
			Login string `json:"login"`
		} `json:"owner"`
	} `json:"repo"`
}

// FetchStarredRepos walks every page of the user's starred listing before
// returning. Any page failing fails the whole call.
func (c *Client) FetchStarredRepos(ctx context.Context, token, login string) ([]model.Repository, error) {
	var repos []model.Repository
	for page := 1; ; page++ {
		entries, err := c.fetchStarredPage(ctx, token, login, page)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			repos = append(repos, model.Repository{
				ID:          e.Repo.ID,
				Name:        e.Repo.Name,
				FullName:    e.Repo.FullName,
				Language:    e.Repo.Language,
				Description: e.Repo.Description,
				Owner:       e.Repo.Owner.Login,
				HTMLURL:     e.Repo.HTMLURL,
				Stars:       e.Repo.Stars,
				Fork:        e.Repo.Fork,
				StarredAt:   e.StarredAt,
			})
		}
		if len(entries) < perPage {
			return repos, nil
		}
	}
}

func (c *Client) fetchStarredPage(ctx context.Context, token, login string, page int) ([]starredEntry, error) {
	url := fmt.Sprintf("%s/users/%s/starred?per_page=%d&page=%d", c.apiBase, login, perPage, page)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &errs.AuthError{Op: "starred", Err: err}
	}
	req.Header.Set("Accept", starAccept)
	req.Header.Set("Authorization", "token "+token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &errs.AuthError{Op: "starred", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &errs.AuthError{Op: "starred", Status: resp.StatusCode, Err: errs.ErrUnauthorized}
	}
	var entries []starredEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, &errs.AuthError{Op: "starred", Status: resp.StatusCode, Err: err}
	}
	return entries, nil
}
