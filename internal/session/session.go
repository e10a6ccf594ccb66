// Package session tracks the authenticated user and gates commands by role.
//
// The session is the only reader of the persisted credential. Guards ask the
// session for its state and never look at the credential themselves.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/evcraddock/rentroll/internal/apierr"
	"github.com/evcraddock/rentroll/internal/client"
	"github.com/evcraddock/rentroll/internal/user"
	"github.com/evcraddock/rentroll/internal/validate"
)

// State is the position of the session in its lifecycle.
type State int

const (
	Anonymous State = iota
	Authenticating
	PasswordChangeRequired
	Authenticated
)

func (s State) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case PasswordChangeRequired:
		return "password_change_required"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// ErrReloginRequired is returned when a password change succeeded but the
// user could not be reloaded with the existing credential.
var ErrReloginRequired = errors.New("password changed successfully, please log in with your new password")

// ErrNotLoggedIn is returned by operations that need a credential.
var ErrNotLoggedIn = errors.New("authentication required, please log in again")

// API is the remote side of the session.
type API interface {
	Login(ctx context.Context, in user.LoginInput) (*client.LoginResult, error)
	Register(ctx context.Context, in user.RegisterInput) error
	Bootstrap(ctx context.Context) (*user.User, error)
	Me(ctx context.Context) (*user.User, error)
	ChangePassword(ctx context.Context, in user.PasswordChangeInput) error
	SetToken(token string)
}

// CredentialStore persists the bearer token between runs.
type CredentialStore interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// Session holds the current principal.
type Session struct {
	api   API
	creds CredentialStore

	mu    sync.RWMutex
	state State
	user  *user.User
	email string
}

// New creates an anonymous session.
func New(api API, creds CredentialStore) *Session {
	return &Session{api: api, creds: creds}
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// User returns the current user. It is set in PasswordChangeRequired too, but
// only Authenticated users pass role guards.
func (s *Session) User() *user.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// PendingEmail returns the email of a login that is waiting on a password change.
func (s *Session) PendingEmail() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.email
}

func (s *Session) set(state State, u *user.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.user = u
	if state != PasswordChangeRequired {
		s.email = ""
	}
}

// Bootstrap restores the session from a persisted credential. A rejected
// credential is cleared and the session stays anonymous without an error.
func (s *Session) Bootstrap(ctx context.Context) error {
	token, err := s.creds.Load()
	if err != nil {
		return fmt.Errorf("loading credential: %w", err)
	}
	if token == "" {
		s.set(Anonymous, nil)
		return nil
	}

	s.set(Authenticating, nil)
	s.api.SetToken(token)

	u, err := s.api.Bootstrap(ctx)
	if err != nil {
		slog.Debug("stored credential rejected", "error", err)
		s.api.SetToken("")
		if cerr := s.creds.Clear(); cerr != nil {
			slog.Warn("clearing credential", "error", cerr)
		}
		s.set(Anonymous, nil)
		return nil
	}

	if u.NeedsPasswordChange {
		s.mu.Lock()
		s.state, s.user, s.email = PasswordChangeRequired, u, u.Email
		s.mu.Unlock()
		return nil
	}
	s.set(Authenticated, u)
	return nil
}

// Login authenticates with email and password. The credential is stored even
// when the user must change their password first, so that request can be
// authenticated.
func (s *Session) Login(ctx context.Context, in user.LoginInput) error {
	if verr := validate.Struct(in); verr != nil {
		return verr
	}

	s.set(Authenticating, nil)
	res, err := s.api.Login(ctx, in)
	if err != nil {
		s.set(Anonymous, nil)
		return err
	}

	if err := s.creds.Save(res.Token); err != nil {
		s.set(Anonymous, nil)
		return fmt.Errorf("saving credential: %w", err)
	}
	s.api.SetToken(res.Token)

	if res.User.NeedsPasswordChange {
		s.mu.Lock()
		s.state, s.user, s.email = PasswordChangeRequired, res.User, in.Email
		s.mu.Unlock()
		return nil
	}
	s.set(Authenticated, res.User)
	return nil
}

// ChangePassword replaces the password and reloads the user. When the reload
// fails the credential is dropped and ErrReloginRequired is returned.
func (s *Session) ChangePassword(ctx context.Context, in user.PasswordChangeInput) error {
	st := s.State()
	if st != PasswordChangeRequired && st != Authenticated {
		return apierr.New(apierr.KindUnauthorized, ErrNotLoggedIn.Error())
	}
	if verr := validate.Struct(in); verr != nil {
		return verr
	}

	if err := s.api.ChangePassword(ctx, in); err != nil {
		return err
	}

	u, err := s.api.Me(ctx)
	if err != nil {
		slog.Debug("reloading user after password change", "error", err)
		s.Logout()
		return ErrReloginRequired
	}
	u.NeedsPasswordChange = false
	s.set(Authenticated, u)
	return nil
}

// Register creates an account. It does not log in.
func (s *Session) Register(ctx context.Context, in user.RegisterInput) error {
	if verr := validate.Struct(in); verr != nil {
		return verr
	}
	return s.api.Register(ctx, in)
}

// Logout clears the credential and resets to anonymous.
func (s *Session) Logout() {
	s.api.SetToken("")
	if err := s.creds.Clear(); err != nil {
		slog.Warn("clearing credential", "error", err)
	}
	s.set(Anonymous, nil)
}

// MemoryCredentials keeps the token in memory.
type MemoryCredentials struct {
	mu    sync.Mutex
	token string
}

// Load implements CredentialStore.
func (m *MemoryCredentials) Load() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

// Save implements CredentialStore.
func (m *MemoryCredentials) Save(token string) error {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()
	return nil
}

// Clear implements CredentialStore.
func (m *MemoryCredentials) Clear() error {
	return m.Save("")
}
