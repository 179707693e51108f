package github

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/starview-app/starview/internal/errs"
)

func TestExchangeToken_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/login/oauth/access_token", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Accept"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "a", body["client_id"])
		require.Equal(t, "b", body["client_secret"])
		require.Equal(t, "c", body["code"])

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"access_token":"tok123","token_type":"bearer"}`)
	}))
	defer srv.Close()

	c := NewClient(WithAuthBase(srv.URL))
	tok, err := c.ExchangeToken(context.Background(), "a", "b", "c", "github.com")
	require.NoError(t, err)
	require.Equal(t, "tok123", tok)
}

func TestExchangeToken_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(WithAuthBase(srv.URL))
	_, err := c.ExchangeToken(context.Background(), "a", "b", "c", "github.com")
	require.Error(t, err)

	var authErr *errs.AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, http.StatusBadRequest, authErr.Status)
	require.ErrorIs(t, err, errs.ErrUnauthorized)
}

func TestExchangeToken_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"error":"bad_verification_code"}`)
	}))
	defer srv.Close()

	c := NewClient(WithAuthBase(srv.URL))
	_, err := c.ExchangeToken(context.Background(), "a", "b", "c", "github.com")
	require.Error(t, err)
	var authErr *errs.AuthError
	require.ErrorAs(t, err, &authErr)
}

func TestFetchCurrentUser_SendsTokenAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/user", r.URL.Path)
		require.Equal(t, "token tok123", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"id":7,"login":"octo","name":"Octo Cat"}`)
	}))
	defer srv.Close()

	c := NewClient(WithAPIBase(srv.URL))
	u, err := c.FetchCurrentUser(context.Background(), "tok123")
	require.NoError(t, err)
	require.Equal(t, int64(7), u.ID)
	require.Equal(t, "octo", u.Login)
}

func TestFetchCurrentUser_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient(WithAPIBase(srv.URL))
	_, err := c.FetchCurrentUser(context.Background(), "bad")
	require.ErrorIs(t, err, errs.ErrUnauthorized)
}

func starredPage(start, n int) string {
	entries := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		id := start + i
		entries = append(entries, map[string]any{
			"starred_at": time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Hour).Format(time.RFC3339),
			"repo": map[string]any{
				"id":        id,
				"name":      fmt.Sprintf("repo%d", id),
				"full_name": fmt.Sprintf("octo/repo%d", id),
				"language":  "Go",
				"owner":     map[string]any{"login": "octo"},
			},
		})
	}
	b, _ := json.Marshal(entries)
	return string(b)
}

func TestFetchStarredRepos_WalksAllPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users/octo/starred", r.URL.Path)
		require.Equal(t, starAccept, r.Header.Get("Accept"))
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, starredPage(1, perPage))
		case "2":
			fmt.Fprint(w, starredPage(perPage+1, 3))
		default:
			t.Errorf("unexpected page %q", r.URL.Query().Get("page"))
		}
	}))
	defer srv.Close()

	c := NewClient(WithAPIBase(srv.URL))
	repos, err := c.FetchStarredRepos(context.Background(), "tok", "octo")
	require.NoError(t, err)
	require.Len(t, repos, perPage+3)
	require.Equal(t, "octo/repo1", repos[0].FullName)
	require.Equal(t, "octo", repos[0].Owner)
	require.False(t, repos[0].StarredAt.IsZero())
}

func TestFetchStarredRepos_MidPageFailureFailsWholeCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, starredPage(1, perPage))
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(WithAPIBase(srv.URL))
	_, err := c.FetchStarredRepos(context.Background(), "tok", "octo")
	require.Error(t, err)
	var authErr *errs.AuthError
	require.ErrorAs(t, err, &authErr)
	require.Equal(t, http.StatusForbidden, authErr.Status)
}
