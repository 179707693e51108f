package state

import "github.com/starview-app/starview/internal/model"

// Mutation is a named, pure, synchronous state-tree update. The set of
// implementations is closed; each carries its typed payload.
type Mutation interface {
	Name() string
	apply(State) State
}

// ToggleConnecting flips the OAuth-handshake-in-progress flag.
type ToggleConnecting struct{}

func (ToggleConnecting) Name() string { return "TOGGLE_CONNECTING" }
func (ToggleConnecting) apply(s State) State {
	s.UI.Connecting = !s.UI.Connecting
	return s
}

// SetToken stores the session access token.
type SetToken struct{ Token string }

func (SetToken) Name() string { return "SET_TOKEN" }
func (m SetToken) apply(s State) State {
	s.Token = m.Token
	return s
}

// SetClient marks the authenticated platform client as constructed for this
// session. The handle itself is owned by the sync controller.
type SetClient struct{}

func (SetClient) Name() string { return "SET_GITHUB" }
func (SetClient) apply(s State) State {
	s.ClientReady = true
	return s
}

// ToggleLoading flips the post-login loading flag.
type ToggleLoading struct{}

func (ToggleLoading) Name() string { return "TOGGLE_LOADING" }
func (ToggleLoading) apply(s State) State {
	s.UI.Loading = !s.UI.Loading
	return s
}

// SetUser stores the authenticated platform user.
type SetUser struct{ User *model.User }

func (SetUser) Name() string { return "SET_USER" }
func (m SetUser) apply(s State) State {
	s.User = m.User
	return s
}

// InitRepos replaces the repo set with an authoritative network result.
type InitRepos struct{ Repos []model.Repository }

func (InitRepos) Name() string { return "INIT_REPOS" }
func (m InitRepos) apply(s State) State {
	s.Repos = m.Repos
	return s
}

// SetRepos replaces the repo set with cached data (stale-but-fast path).
type SetRepos struct{ Repos []model.Repository }

func (SetRepos) Name() string { return "SET_REPOS" }
func (m SetRepos) apply(s State) State {
	s.Repos = m.Repos
	return s
}

// SetLangGroup replaces the derived language index.
type SetLangGroup struct{ Group model.LanguageGroup }

func (SetLangGroup) Name() string { return "SET_LANG_GROUP" }
func (m SetLangGroup) apply(s State) State {
	s.LangGroup = m.Group
	return s
}

// ToggleLogin flips the logged-in flag once a sync completes.
type ToggleLogin struct{}

func (ToggleLogin) Name() string { return "TOGGLE_LOGIN" }
func (ToggleLogin) apply(s State) State {
	s.UI.LoggedIn = !s.UI.LoggedIn
	return s
}

// IncreaseLimit widens the lazy-load window.
type IncreaseLimit struct{ By int }

func (IncreaseLimit) Name() string { return "INCREASE_LIMIT" }
func (m IncreaseLimit) apply(s State) State {
	by := m.By
	if by <= 0 {
		by = DefaultLimit
	}
	s.UI.Limit += by
	return s
}

// ToggleLoadingRepos flips the repo-list loading flag.
type ToggleLoadingRepos struct{}

func (ToggleLoadingRepos) Name() string { return "TOGGLE_LOADING_REPOS" }
func (ToggleLoadingRepos) apply(s State) State {
	s.UI.LoadingRepos = !s.UI.LoadingRepos
	return s
}

// ToggleLoadingReadme flips the readme loading flag.
type ToggleLoadingReadme struct{}

func (ToggleLoadingReadme) Name() string { return "TOGGLE_LOADING_README" }
func (ToggleLoadingReadme) apply(s State) State {
	s.UI.LoadingReadme = !s.UI.LoadingReadme
	return s
}

// SetActiveRepo selects a repository in the content pane.
type SetActiveRepo struct{ ID int64 }

func (SetActiveRepo) Name() string { return "SET_ACTIVE_REPO" }
func (m SetActiveRepo) apply(s State) State {
	s.UI.ActiveRepoID = m.ID
	return s
}

// SetRepoReadme stores the rendered readme of the active repository.
type SetRepoReadme struct{ Readme string }

func (SetRepoReadme) Name() string { return "SET_REPO_README" }
func (m SetRepoReadme) apply(s State) State {
	s.UI.Readme = m.Readme
	return s
}

// OrderRepo records the field the repo list is ordered by.
type OrderRepo struct{ Field string }

func (OrderRepo) Name() string { return "ORDER_REPO" }
func (m OrderRepo) apply(s State) State {
	s.UI.RepoOrder = m.Field
	return s
}

// ToggleSidebar flips sidebar visibility.
type ToggleSidebar struct{}

func (ToggleSidebar) Name() string { return "TOGGLE_SIDEBAR" }
func (ToggleSidebar) apply(s State) State {
	s.UI.SidebarVisible = !s.UI.SidebarVisible
	return s
}

// SetSidebar sets sidebar visibility explicitly.
type SetSidebar struct{ Visible bool }

func (SetSidebar) Name() string { return "SET_SIDEBAR" }
func (m SetSidebar) apply(s State) State {
	s.UI.SidebarVisible = m.Visible
	return s
}

// SetLazyRepos stores the currently materialized lazy-load slice.
type SetLazyRepos struct{ Repos []model.Repository }

func (SetLazyRepos) Name() string { return "SET_LAZY_REPOS" }
func (m SetLazyRepos) apply(s State) State {
	s.LazyRepos = m.Repos
	return s
}

// FilterByLanguage restricts the visible list to one language ("" clears).
type FilterByLanguage struct{ Language string }

func (FilterByLanguage) Name() string { return "FILTER_BY_LANGUAGE" }
func (m FilterByLanguage) apply(s State) State {
	s.UI.LanguageFilter = m.Language
	return s
}

// OrderedRepos replaces the repo set with a re-ordered copy.
type OrderedRepos struct{ Repos []model.Repository }

func (OrderedRepos) Name() string { return "ORDERED_REPOS" }
func (m OrderedRepos) apply(s State) State {
	s.Repos = m.Repos
	return s
}

// SetSearchQuery stores the sidebar search query.
type SetSearchQuery struct{ Query string }

func (SetSearchQuery) Name() string { return "SET_SEARCH_QUERY" }
func (m SetSearchQuery) apply(s State) State {
	s.UI.SearchQuery = m.Query
	return s
}

// UserSignout clears the session and everything derived from it.
type UserSignout struct{}

func (UserSignout) Name() string { return "USER_SIGNOUT" }
func (UserSignout) apply(s State) State {
	return State{UI: UIState{SidebarVisible: true, Limit: DefaultLimit}}
}
