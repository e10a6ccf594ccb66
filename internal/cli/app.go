package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/rentroll/internal/client"
	"github.com/evcraddock/rentroll/internal/db"
	"github.com/evcraddock/rentroll/internal/flow"
	"github.com/evcraddock/rentroll/internal/logging"
	"github.com/evcraddock/rentroll/internal/session"
	"github.com/evcraddock/rentroll/internal/store"
	"github.com/evcraddock/rentroll/internal/user"
)

const defaultTimeout = 30 * time.Second

var (
	ownerRoles  = []user.Role{user.RoleOwner, user.RoleAdmin}
	tenantRoles = []user.Role{user.RoleTenant}
)

var (
	errNotLoggedIn    = errors.New("not logged in, run 'rr login'")
	errChangePassword = errors.New("password change required, run 'rr passwd'")
)

// app wires the client, session, stores and cache snapshot for one command.
type app struct {
	cfg     CLIConfig
	client  *client.Client
	session *session.Session
	stores  *store.Stores
	flow    *flow.Flow
	cache   *sql.DB
	loaded  bool
	out     io.Writer
}

// newApp builds the command's dependencies and opens the cache database. A
// missing or broken cache is not fatal.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	timeout := defaultTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	opts := []client.Option{
		client.WithHTTPClient(&http.Client{
			Timeout:   timeout,
			Transport: logging.NewTransport(http.DefaultTransport),
		}),
	}
	if cfg.RateLimitPerSec > 0 {
		opts = append(opts, client.WithRateLimit(cfg.RateLimitPerSec))
	}
	if cfg.SessionPath != "" {
		opts = append(opts, client.WithSessionPath(cfg.SessionPath))
	}

	c := client.New(getServerURL(cfg), "", opts...)
	st := store.New(c, store.LastDispatchedWins)
	a := &app{
		cfg:     cfg,
		client:  c,
		session: session.New(c, fileCredentials{}),
		stores:  st,
		flow:    flow.New(st),
		out:     cmd.OutOrStdout(),
	}
	a.openCache()
	return a, nil
}

func (a *app) openCache() {
	path, err := getCachePath(a.cfg)
	if err != nil {
		slog.Warn("locating cache", "error", err)
		return
	}
	cache, err := db.Open(path)
	if err != nil {
		slog.Warn("opening cache", "path", path, "error", err)
		return
	}
	a.cache = cache
}

// loadCache restores the snapshot saved by the signed-in user. A snapshot of
// anyone else is dropped. With --refresh the stores start empty and the
// snapshot is overwritten on close.
func (a *app) loadCache(ctx context.Context) {
	if a.cache == nil {
		return
	}
	a.loaded = true
	if flagRefresh {
		return
	}
	if _, err := db.Load(ctx, a.cache, a.ownerID(), a.stores); err != nil {
		slog.Warn("loading cache", "error", err)
	}
}

// ownerID names the user a snapshot belongs to, or "" when nobody is fully
// signed in.
func (a *app) ownerID() string {
	u := a.session.User()
	if u == nil || a.session.State() != session.Authenticated {
		return ""
	}
	if u.ID != "" {
		return u.ID
	}
	return u.Email
}

// close saves the snapshot if one was loaded and closes the cache database.
func (a *app) close(ctx context.Context) {
	if a.cache == nil {
		return
	}
	if a.loaded {
		if err := db.Save(ctx, a.cache, a.ownerID(), a.stores); err != nil {
			slog.Warn("saving cache", "error", err)
		}
	}
	if err := a.cache.Close(); err != nil {
		slog.Warn("closing cache", "error", err)
	}
	a.cache = nil
}

// dropCache forgets every cached collection, in memory and on disk.
func (a *app) dropCache(ctx context.Context) error {
	a.stores.Reset()
	if a.cache == nil {
		return nil
	}
	return db.Clear(ctx, a.cache)
}

// require restores the session and checks that it may run a command open to
// roles. An empty role set admits any authenticated user.
func (a *app) require(ctx context.Context, roles ...user.Role) error {
	if err := a.session.Bootstrap(ctx); err != nil {
		return err
	}
	switch a.session.Guard(roles...) {
	case session.Allow:
		return nil
	case session.RedirectLogin:
		return errNotLoggedIn
	case session.RedirectPasswordChange:
		return errChangePassword
	case session.Forbidden:
		names := make([]string, len(roles))
		for i, r := range roles {
			names[i] = string(r)
		}
		return fmt.Errorf("this command is for %s accounts", strings.Join(names, " or "))
	default:
		return errors.New("session is still loading, try again")
	}
}

// run opens the app and calls fn. When roles is non-nil the session must pass
// the guard first, and only then is the user's cache snapshot loaded and saved
// again afterwards.
func run(cmd *cobra.Command, roles []user.Role, fn func(ctx context.Context, a *app) error) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	defer a.close(ctx)

	if roles != nil {
		if err := a.require(ctx, roles...); err != nil {
			if a.session.State() == session.Anonymous {
				if derr := a.dropCache(ctx); derr != nil {
					slog.Warn("dropping cache", "error", derr)
				}
			}
			return err
		}
		a.loadCache(ctx)
	}
	return fn(ctx, a)
}
