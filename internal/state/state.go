// Package state holds the application state tree behind a mutation-only interface.
//
// Actions (async, I/O-performing) live in the sync controller; they end by
// committing mutations here. Mutations are pure, synchronous updates of the
// tree, so subscribers always observe a consistent, fully-applied state.
package state

import (
	"sort"
	"strings"
	"sync"

	"github.com/starview-app/starview/internal/model"
)

// DefaultLimit is the initial lazy-load window for the repo list.
const DefaultLimit = 20

// UIState is pure presentation state, mutated only via mutations.
type UIState struct {
	Connecting     bool
	Loading        bool
	LoggedIn       bool
	LoadingRepos   bool
	LoadingReadme  bool
	SidebarVisible bool
	ActiveRepoID   int64
	Readme         string
	RepoOrder      string
	LanguageFilter string
	SearchQuery    string
	Limit          int
}

// State is the full tree. Values handed to subscribers are snapshots; mutating
// them never affects the store.
type State struct {
	Token       string
	ClientReady bool
	User        *model.User
	Repos       []model.Repository
	LazyRepos   []model.Repository
	LangGroup   model.LanguageGroup
	UI          UIState
}

// VisibleRepos applies the language filter, search query and lazy-load limit
// to the current repo set, mirroring what the presentation layer renders.
func (s State) VisibleRepos() []model.Repository {
	out := make([]model.Repository, 0, len(s.Repos))
	q := strings.ToLower(s.UI.SearchQuery)
	for _, r := range s.Repos {
		if s.UI.LanguageFilter != "" {
			lang := r.Language
			if lang == "" {
				lang = model.UnknownLanguage
			}
			if lang != s.UI.LanguageFilter {
				continue
			}
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(r.FullName), q) &&
			!strings.Contains(strings.ToLower(r.Description), q) {
			continue
		}
		out = append(out, r)
	}
	if s.UI.Limit > 0 && len(out) > s.UI.Limit {
		out = out[:s.UI.Limit]
	}
	return out
}

// Languages returns the language names of the current group, sorted.
func (s State) Languages() []string {
	langs := make([]string, 0, len(s.LangGroup))
	for l := range s.LangGroup {
		langs = append(langs, l)
	}
	sort.Strings(langs)
	return langs
}

func (s State) clone() State {
	c := s
	if s.User != nil {
		u := *s.User
		c.User = &u
	}
	c.Repos = append([]model.Repository(nil), s.Repos...)
	c.LazyRepos = append([]model.Repository(nil), s.LazyRepos...)
	if s.LangGroup != nil {
		c.LangGroup = make(model.LanguageGroup, len(s.LangGroup))
		for k, v := range s.LangGroup {
			c.LangGroup[k] = append([]int64(nil), v...)
		}
	}
	return c
}

// Subscriber observes commits. Called synchronously, in commit order, with
// the applied mutation and a snapshot of the resulting state.
type Subscriber func(Mutation, State)

// Store is the single owned state tree.
type Store struct {
	mu    sync.Mutex
	state State

	subMu   sync.Mutex
	subs    map[int]Subscriber
	nextSub int
}

// NewStore constructs a Store with presentation defaults applied.
func NewStore() *Store {
	return &Store{
		state: State{UI: UIState{SidebarVisible: true, Limit: DefaultLimit}},
		subs:  make(map[int]Subscriber),
	}
}

// Commit applies a mutation and notifies subscribers with the new snapshot.
// Mutations never perform I/O; application is atomic and ordered.
func (s *Store) Commit(m Mutation) {
	s.mu.Lock()
	next := m.apply(s.state.clone())
	s.state = next
	snap := next.clone()
	s.mu.Unlock()

	s.subMu.Lock()
	subs := make([]Subscriber, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()
	for _, fn := range subs {
		fn(m, snap)
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe registers an observer and returns its unsubscribe func.
func (s *Store) Subscribe(fn Subscriber) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}
