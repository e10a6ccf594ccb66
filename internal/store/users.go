package store

import (
	"context"
	"sync"

	"github.com/evcraddock/rentroll/internal/user"
)

// UserAPI is the remote side of the user store.
type UserAPI interface {
	SearchTenant(ctx context.Context, email string) (*user.User, error)
	CreateTenant(ctx context.Context, in user.TenantInput) (*user.User, error)
	DashboardStats(ctx context.Context) (*user.DashboardStats, error)
}

// Users holds the tenant search result and the owner's dashboard stats. Stats
// have their own loading and error state.
type Users struct {
	status
	api UserAPI

	mu       sync.RWMutex
	searched *user.User
	stats    *user.DashboardStats
	statsSt  status
}

// NewUsers creates an empty user store.
func NewUsers(api UserAPI) *Users {
	return &Users{api: api}
}

// SearchedTenant returns the last tenant found or created, or nil.
func (s *Users) SearchedTenant() *user.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.searched
}

// ClearSearchedTenant forgets the search result and its error.
func (s *Users) ClearSearchedTenant() {
	s.mu.Lock()
	s.searched = nil
	s.mu.Unlock()
	s.ResetErr()
}

// SearchTenant looks a tenant up by email. A failed search clears the result.
func (s *Users) SearchTenant(ctx context.Context, email string) (*user.User, error) {
	s.begin()
	u, err := s.api.SearchTenant(ctx, email)
	if e := s.end(err); e != nil {
		s.mu.Lock()
		s.searched = nil
		s.mu.Unlock()
		return nil, e
	}
	s.mu.Lock()
	s.searched = u
	s.mu.Unlock()
	return u, nil
}

// CreateTenant creates a tenant and makes it the current search result. A
// failure leaves the previous result in place.
func (s *Users) CreateTenant(ctx context.Context, in user.TenantInput) (*user.User, error) {
	s.begin()
	u, err := s.api.CreateTenant(ctx, in)
	if e := s.end(err); e != nil {
		return nil, e
	}
	s.mu.Lock()
	s.searched = u
	s.mu.Unlock()
	return u, nil
}

// Stats returns the cached dashboard stats, or nil before the first fetch.
func (s *Users) Stats() *user.DashboardStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

// StatsLoading reports whether a stats fetch is in flight.
func (s *Users) StatsLoading() bool { return s.statsSt.Loading() }

// StatsErr returns the last stats failure, or nil.
func (s *Users) StatsErr() error {
	if e := s.statsSt.Err(); e != nil {
		return e
	}
	return nil
}

// FetchStats loads the dashboard stats. On failure the previous stats stay.
func (s *Users) FetchStats(ctx context.Context) (*user.DashboardStats, error) {
	s.statsSt.begin()
	st, err := s.api.DashboardStats(ctx)
	if e := s.statsSt.end(err); e != nil {
		return nil, e
	}
	s.mu.Lock()
	s.stats = st
	s.mu.Unlock()
	return st, nil
}

// SetStats installs stats restored from a snapshot.
func (s *Users) SetStats(st *user.DashboardStats) {
	s.mu.Lock()
	s.stats = st
	s.mu.Unlock()
}
