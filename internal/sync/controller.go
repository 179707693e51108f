// Package sync contains the controller orchestrating login, user resolution
// and repository sync between the local cache and the platform API.
//
// Controller methods are the application's actions: asynchronous with respect
// to the presentation layer (dispatch them from a goroutine), each ending by
// committing zero or more mutations to the state store. The controller holds
// no persistent state of its own.
package sync

import (
	"context"
	"errors"
	gosync "sync"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/starview-app/starview/internal/cache"
	"github.com/starview-app/starview/internal/credstore"
	"github.com/starview-app/starview/internal/errs"
	"github.com/starview-app/starview/internal/model"
	"github.com/starview-app/starview/internal/state"
)

// PlatformClient is the slice of the API client the controller needs.
type PlatformClient interface {
	ExchangeToken(ctx context.Context, clientID, clientSecret, code, hostname string) (string, error)
	FetchCurrentUser(ctx context.Context, token string) (*model.User, error)
	FetchStarredRepos(ctx context.Context, token, login string) ([]model.Repository, error)
}

// AuthOptions identifies the OAuth application.
type AuthOptions struct {
	ClientID     string
	ClientSecret string
	Hostname     string
}

// Controller coordinates credential store, cache, API client and state store.
type Controller struct {
	auth   AuthOptions
	creds  credstore.Store
	cache  cache.Cache
	client PlatformClient
	store  *state.Store
	log    *zap.Logger

	reg *inflightRegistry
}

// NewController constructs the controller with all collaborators injected.
func NewController(auth AuthOptions, creds credstore.Store, c cache.Cache, client PlatformClient, store *state.Store, log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		auth:   auth,
		creds:  creds,
		cache:  c,
		client: client,
		store:  store,
		log:    log,
		reg:    newInflightRegistry(),
	}
}

// GetToken exchanges an authorization code for an access token and opens the
// session. Exactly one exchange attempt per call, no automatic retry.
//
// warn carries a non-fatal PersistenceError when the credential could not be
// saved; the in-memory session is still established in that case.
func (c *Controller) GetToken(ctx context.Context, code string) (warn error, err error) {
	c.store.Commit(state.ToggleConnecting{})

	token, err := c.client.ExchangeToken(ctx, c.auth.ClientID, c.auth.ClientSecret, code, c.auth.Hostname)
	if err != nil {
		// net effect: connecting returns to its pre-call value
		c.store.Commit(state.ToggleConnecting{})
		return nil, err
	}

	if serr := c.creds.Save(model.Credential{Code: code, Token: token}); serr != nil {
		c.log.Warn("credential save failed, session continues in memory", zap.Error(serr))
		warn = serr
	}

	c.store.Commit(state.SetToken{Token: token})
	c.store.Commit(state.SetClient{})
	c.store.Commit(state.ToggleLoading{})
	return warn, nil
}

// GetLocalToken attempts silent re-authentication from the persisted
// credential. On errs.ErrNoCredential the caller falls back to interactive
// login.
func (c *Controller) GetLocalToken(ctx context.Context) error {
	cred, err := c.creds.Load()
	if err != nil {
		c.store.Commit(state.ToggleConnecting{})
		if errors.Is(err, errs.ErrNoCredential) {
			return errs.ErrNoCredential
		}
		return err
	}
	if cred.Token == "" {
		c.store.Commit(state.ToggleConnecting{})
		return errs.ErrNoCredential
	}

	c.store.Commit(state.SetToken{Token: cred.Token})
	c.store.Commit(state.SetClient{})
	c.store.Commit(state.ToggleLoading{})
	return nil
}

// GetUser resolves the current platform user behind the session token. On
// failure no user state is committed.
func (c *Controller) GetUser(ctx context.Context) (*model.User, error) {
	token := c.store.Snapshot().Token
	if token == "" {
		return nil, errs.ErrNoSession
	}
	u, err := c.client.FetchCurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}
	if cerr := c.cache.UpsertUser(ctx, u); cerr != nil {
		c.log.Warn("cache user upsert failed", zap.Error(cerr))
	}
	c.store.Commit(state.SetUser{User: u})
	return u, nil
}

// GetRepos syncs the user's starred set, stale-while-revalidate: cached data
// is committed immediately when present, then exactly one network refresh
// runs and commits the authoritative result. A concurrent call for the same
// user joins the in-flight refresh instead of spawning a second fetch.
//
// Callers may therefore observe up to two successive repo-list commits and
// must render idempotently on either.
func (c *Controller) GetRepos(ctx context.Context, user *model.User) error {
	snap := c.store.Snapshot()
	if user == nil {
		user = snap.User
	}
	if user == nil {
		return errs.ErrNoSession
	}
	if snap.Token == "" {
		return errs.ErrNoSession
	}

	c.serveCached(ctx, user.ID)
	return c.refresh(ctx, snap.Token, user)
}

// SignOut clears the session and the persisted credential. Any in-flight
// refresh generation is invalidated so a late network result cannot commit
// repositories into the signed-out tree.
func (c *Controller) SignOut(ctx context.Context) error {
	if u := c.store.Snapshot().User; u != nil {
		c.reg.invalidate(u.ID)
	}
	err := c.creds.Clear()
	if err != nil {
		c.log.Warn("credential clear failed", zap.Error(err))
	}
	c.store.Commit(state.UserSignout{})
	return err
}

// serveCached commits cached repos and language group when present. Cache
// errors degrade to a miss and never block the refresh.
func (c *Controller) serveCached(ctx context.Context, userID int64) {
	if _, err := c.cache.FindUser(ctx, userID); err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			c.log.Warn("cache user lookup failed", zap.Int64("user", userID), zap.Error(err))
		}
		// first sync for this user: nothing cached to serve
		return
	}

	repos, err := c.cache.FetchAllRepos(ctx, userID)
	switch {
	case err != nil:
		c.log.Warn("cache repo fetch failed", zap.Int64("user", userID), zap.Error(err))
	case len(repos) > 0:
		c.store.Commit(state.SetRepos{Repos: repos})
	}

	group, err := c.cache.FetchLangGroup(ctx, userID)
	switch {
	case err != nil:
		c.log.Warn("cache lang group fetch failed", zap.Int64("user", userID), zap.Error(err))
	case len(group) > 0:
		c.store.Commit(state.SetLangGroup{Group: group})
	}
}

// refresh fetches the starred set from the network, commits the result and
// writes it back to the cache. Each refresh carries a generation id; a
// generation invalidated while the fetch was in flight (sign-out) must not
// commit, keeping at-most-one-authoritative-write ordering.
func (c *Controller) refresh(ctx context.Context, token string, user *model.User) error {
	fl, gen, started := c.reg.joinOrStart(user.ID)
	if !started {
		select {
		case <-fl.done:
			return fl.err
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	repos, err := c.client.FetchStarredRepos(ctx, token, user.Login)
	if err == nil {
		if c.reg.isLatest(user.ID, gen) {
			group := model.GroupByLanguage(repos)
			c.store.Commit(state.InitRepos{Repos: repos})
			c.store.Commit(state.SetLangGroup{Group: group})
			c.store.Commit(state.ToggleLogin{})
			c.writeBack(ctx, user, repos, group)
		} else {
			c.log.Info("discarding refresh invalidated in flight",
				zap.Int64("user", user.ID),
				zap.String("sync_id", gen.String()),
			)
		}
	}

	c.reg.finish(user.ID, fl, err)
	return err
}

func (c *Controller) writeBack(ctx context.Context, user *model.User, repos []model.Repository, group model.LanguageGroup) {
	if err := c.cache.UpsertUser(ctx, user); err != nil {
		c.log.Warn("cache user upsert failed", zap.Int64("user", user.ID), zap.Error(err))
	}
	if err := c.cache.UpsertRepos(ctx, user.ID, repos); err != nil {
		c.log.Warn("cache repo upsert failed", zap.Int64("user", user.ID), zap.Error(err))
	}
	if err := c.cache.UpsertLangGroup(ctx, user.ID, group); err != nil {
		c.log.Warn("cache lang group upsert failed", zap.Int64("user", user.ID), zap.Error(err))
	}
}

// inflight is one running refresh observers can wait on.
type inflight struct {
	done chan struct{}
	err  error
}

// inflightRegistry keys running refreshes and the newest generation by user.
type inflightRegistry struct {
	mu      gosync.Mutex
	running map[int64]*inflight
	latest  map[int64]uuid.UUID
}

func newInflightRegistry() *inflightRegistry {
	return &inflightRegistry{
		running: make(map[int64]*inflight),
		latest:  make(map[int64]uuid.UUID),
	}
}

// joinOrStart returns the refresh to wait on. started reports whether the
// caller owns the refresh and must run it.
func (r *inflightRegistry) joinOrStart(userID int64) (fl *inflight, gen uuid.UUID, started bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if fl, ok := r.running[userID]; ok {
		return fl, uuid.Nil, false
	}
	fl = &inflight{done: make(chan struct{})}
	gen = uuid.Must(uuid.NewV4())
	r.running[userID] = fl
	r.latest[userID] = gen
	return fl, gen, true
}

func (r *inflightRegistry) isLatest(userID int64, gen uuid.UUID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest[userID] == gen
}

// invalidate withdraws the user's current generation so a refresh completing
// after this point is discarded instead of committed.
func (r *inflightRegistry) invalidate(userID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.latest, userID)
}

func (r *inflightRegistry) finish(userID int64, fl *inflight, err error) {
	r.mu.Lock()
	if r.running[userID] == fl {
		delete(r.running, userID)
	}
	r.mu.Unlock()
	fl.err = err
	close(fl.done)
}
