// Command starview logs in against the platform, syncs the user's starred
// repositories into the local cache and prints them grouped by language.
//
// It is the terminal stand-in for the presentation layer: it dispatches the
// same actions and observes the same state commits a GUI shell would.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/starview-app/starview/internal/cache/sqlite"
	"github.com/starview-app/starview/internal/config"
	"github.com/starview-app/starview/internal/credstore"
	"github.com/starview-app/starview/internal/errs"
	"github.com/starview-app/starview/internal/github"
	"github.com/starview-app/starview/internal/migrate"
	"github.com/starview-app/starview/internal/state"
	syncctl "github.com/starview-app/starview/internal/sync"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

// main parses configuration, opens the cache and runs one login+sync cycle.
func main() {
	configPath := flag.String("config", "", "config file (default ~/.config/starview/config.toml)")
	code := flag.String("code", "", "OAuth authorization code for interactive login")
	clientID := flag.String("client-id", "", "OAuth client id (overrides config)")
	clientSecret := flag.String("client-secret", "", "OAuth client secret (overrides config)")
	hostname := flag.String("hostname", "", "OAuth hostname (overrides config)")
	cachePath := flag.String("cache", "", "cache database path (overrides config)")
	lang := flag.String("lang", "", "only list repositories in this language")
	limit := flag.Int("limit", 0, "max repositories to list (0 = state default)")
	dev := flag.Bool("dev", false, "verbose development logging")
	flag.Parse()

	logger := newLogger(*dev)
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
	)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}
	if *clientID != "" {
		cfg.ClientID = *clientID
	}
	if *clientSecret != "" {
		cfg.ClientSecret = *clientSecret
	}
	if *hostname != "" {
		cfg.Hostname = *hostname
	}
	if *cachePath != "" {
		cfg.CachePath = *cachePath
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(filepath.Dir(cfg.CachePath), 0o700); err != nil {
		logger.Fatal("create cache dir", zap.Error(err))
	}
	db, err := sqlite.Open(cfg.CachePath)
	if err != nil {
		logger.Fatal("open cache", zap.Error(err))
	}
	defer db.Close()
	if err := migrate.Up(ctx, db); err != nil {
		logger.Fatal("migrate cache", zap.Error(err))
	}

	creds := credstore.NewFileStore(cfg.CredPath, cfg.KeyPath)
	localCache := sqlite.NewStore(db)
	client := github.NewClient()
	store := state.NewStore()

	ctl := syncctl.NewController(syncctl.AuthOptions{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Hostname:     cfg.Hostname,
	}, creds, localCache, client, store, logger)

	if *lang != "" {
		store.Commit(state.FilterByLanguage{Language: *lang})
	}
	if *limit > state.DefaultLimit {
		store.Commit(state.IncreaseLimit{By: *limit - state.DefaultLimit})
	}

	// Render whenever a sync completes.
	unsubscribe := store.Subscribe(func(m state.Mutation, s state.State) {
		if _, ok := m.(state.ToggleLogin); !ok {
			return
		}
		render(s)
	})
	defer unsubscribe()

	if err := ctl.GetLocalToken(ctx); err != nil {
		if !errors.Is(err, errs.ErrNoCredential) {
			logger.Fatal("load local token", zap.Error(err))
		}
		if *code == "" {
			logger.Fatal("no stored credential; re-run with --code from the OAuth redirect")
		}
		warn, err := ctl.GetToken(ctx, *code)
		if err != nil {
			logger.Fatal("token exchange", zap.Error(err))
		}
		if warn != nil {
			logger.Warn("credential not persisted; login valid for this run only", zap.Error(warn))
		}
	}

	user, err := ctl.GetUser(ctx)
	if err != nil {
		logger.Fatal("resolve user", zap.Error(err))
	}
	logger.Info("authenticated", zap.String("login", user.Login))

	if err := ctl.GetRepos(ctx, user); err != nil {
		logger.Fatal("sync starred repos", zap.Error(err))
	}
}

func newLogger(dev bool) *zap.Logger {
	if dev {
		l, _ := zap.NewDevelopment()
		return l
	}
	l, _ := zap.NewProduction()
	return l
}

// render prints the language summary and the visible repo list.
func render(s state.State) {
	fmt.Printf("\n%d starred repositories\n", len(s.Repos))
	for _, lang := range s.Languages() {
		fmt.Printf("  %-20s %d\n", lang, len(s.LangGroup[lang]))
	}
	fmt.Println()
	for _, r := range s.VisibleRepos() {
		lang := r.Language
		if lang == "" {
			lang = "-"
		}
		fmt.Printf("  %-40s %-12s ★ %d\n", r.FullName, lang, r.Stars)
	}
}
