package state

import (
	"testing"

	"github.com/starview-app/starview/internal/model"
)

func TestCommit_NotifiesSubscribersInOrder(t *testing.T) {
	s := NewStore()

	var names []string
	unsub := s.Subscribe(func(m Mutation, _ State) {
		names = append(names, m.Name())
	})
	defer unsub()

	s.Commit(ToggleConnecting{})
	s.Commit(SetToken{Token: "tok123"})
	s.Commit(SetClient{})
	s.Commit(ToggleLoading{})

	want := []string{"TOGGLE_CONNECTING", "SET_TOKEN", "SET_GITHUB", "TOGGLE_LOADING"}
	if len(names) != len(want) {
		t.Fatalf("got %d notifications, want %d", len(names), len(want))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("notification %d = %q, want %q", i, names[i], want[i])
		}
	}

	snap := s.Snapshot()
	if snap.Token != "tok123" || !snap.ClientReady || !snap.UI.Loading {
		t.Fatalf("unexpected state after commits: %+v", snap)
	}
}

func TestUnsubscribe_StopsNotifications(t *testing.T) {
	s := NewStore()
	calls := 0
	unsub := s.Subscribe(func(Mutation, State) { calls++ })
	s.Commit(ToggleSidebar{})
	unsub()
	s.Commit(ToggleSidebar{})
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestSnapshot_DoesNotAliasStore(t *testing.T) {
	s := NewStore()
	s.Commit(SetRepos{Repos: []model.Repository{{ID: 1, FullName: "a/a"}}})
	s.Commit(SetLangGroup{Group: model.LanguageGroup{"Go": {1}}})

	snap := s.Snapshot()
	snap.Repos[0].FullName = "mutated"
	snap.LangGroup["Go"][0] = 99

	fresh := s.Snapshot()
	if fresh.Repos[0].FullName != "a/a" {
		t.Fatalf("repo slice aliased between snapshot and store")
	}
	if fresh.LangGroup["Go"][0] != 1 {
		t.Fatalf("lang group aliased between snapshot and store")
	}
}

func TestToggleMutations_RoundTrip(t *testing.T) {
	s := NewStore()
	s.Commit(ToggleConnecting{})
	if !s.Snapshot().UI.Connecting {
		t.Fatal("connecting should be on after one toggle")
	}
	s.Commit(ToggleConnecting{})
	if s.Snapshot().UI.Connecting {
		t.Fatal("connecting should be off after two toggles")
	}
}

func TestUserSignout_ResetsToDefaults(t *testing.T) {
	s := NewStore()
	s.Commit(SetToken{Token: "tok"})
	s.Commit(SetClient{})
	s.Commit(SetUser{User: &model.User{ID: 7, Login: "x"}})
	s.Commit(InitRepos{Repos: []model.Repository{{ID: 1}}})
	s.Commit(ToggleLogin{})

	s.Commit(UserSignout{})

	snap := s.Snapshot()
	if snap.Token != "" || snap.ClientReady || snap.User != nil || len(snap.Repos) != 0 || snap.UI.LoggedIn {
		t.Fatalf("signout left residual state: %+v", snap)
	}
	if snap.UI.Limit != DefaultLimit || !snap.UI.SidebarVisible {
		t.Fatalf("signout lost presentation defaults: %+v", snap.UI)
	}
}

func TestVisibleRepos_FilterQueryAndLimit(t *testing.T) {
	repos := []model.Repository{
		{ID: 1, FullName: "a/alpha", Language: "Go", Description: "fast"},
		{ID: 2, FullName: "b/beta", Language: "Rust"},
		{ID: 3, FullName: "c/gamma", Language: "", Description: "go tooling"},
		{ID: 4, FullName: "d/delta", Language: "Go"},
	}
	s := State{Repos: repos, UI: UIState{Limit: DefaultLimit}}

	s.UI.LanguageFilter = "Go"
	got := s.VisibleRepos()
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 4 {
		t.Fatalf("language filter: got %+v", got)
	}

	s.UI.LanguageFilter = model.UnknownLanguage
	if got := s.VisibleRepos(); len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("unknown-language bucket: got %+v", got)
	}

	s.UI.LanguageFilter = ""
	s.UI.SearchQuery = "GO"
	got = s.VisibleRepos()
	if len(got) != 1 || got[0].ID != 3 {
		t.Fatalf("search query: got %+v", got)
	}

	s.UI.SearchQuery = ""
	s.UI.Limit = 2
	if got := s.VisibleRepos(); len(got) != 2 {
		t.Fatalf("limit: got %d repos, want 2", len(got))
	}
}

func TestIncreaseLimit_DefaultStep(t *testing.T) {
	s := NewStore()
	s.Commit(IncreaseLimit{})
	if got := s.Snapshot().UI.Limit; got != 2*DefaultLimit {
		t.Fatalf("limit = %d, want %d", got, 2*DefaultLimit)
	}
	s.Commit(IncreaseLimit{By: 5})
	if got := s.Snapshot().UI.Limit; got != 2*DefaultLimit+5 {
		t.Fatalf("limit = %d, want %d", got, 2*DefaultLimit+5)
	}
}
