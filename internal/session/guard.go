package session

import (
	"strings"

	"github.com/evcraddock/rentroll/internal/user"
)

// IsAuthorized reports whether u holds one of roles. Roles compare
// case-insensitively. An empty role set admits any user.
func IsAuthorized(u *user.User, roles ...user.Role) bool {
	if u == nil {
		return false
	}
	if len(roles) == 0 {
		return true
	}
	for _, r := range roles {
		if strings.EqualFold(string(u.Role), string(r)) {
			return true
		}
	}
	return false
}

// Decision is the outcome of a guard check.
type Decision int

const (
	Allow Decision = iota
	Loading
	RedirectLogin
	RedirectPasswordChange
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Loading:
		return "loading"
	case RedirectLogin:
		return "redirect_login"
	case RedirectPasswordChange:
		return "redirect_password_change"
	case Forbidden:
		return "forbidden"
	default:
		return "allow"
	}
}

// Guard decides whether the session may enter a command that allows roles.
func (s *Session) Guard(roles ...user.Role) Decision {
	s.mu.RLock()
	state, u := s.state, s.user
	s.mu.RUnlock()

	switch state {
	case Anonymous:
		return RedirectLogin
	case Authenticating:
		return Loading
	case PasswordChangeRequired:
		return RedirectPasswordChange
	}
	if !IsAuthorized(u, roles...) {
		return Forbidden
	}
	return Allow
}
