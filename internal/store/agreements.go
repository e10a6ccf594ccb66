package store

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/evcraddock/rentroll/internal/agreement"
)

// AgreementAPI is the remote side of the agreement store.
type AgreementAPI interface {
	ListAgreements(ctx context.Context, unitID string) ([]agreement.Agreement, error)
	OwnerAgreements(ctx context.Context) ([]agreement.Agreement, error)
	MyAgreements(ctx context.Context) ([]agreement.Agreement, error)
	CreateAgreement(ctx context.Context, in agreement.CreateInput) (*agreement.Agreement, error)
	UpdateAgreement(ctx context.Context, id string, in agreement.UpdateInput) (*agreement.Agreement, error)
	TerminateAgreement(ctx context.Context, id string) error
}

// Reserved parent keys for the lists that are not scoped to a unit. Unit ids
// never start with "@".
const (
	OwnerList = "@owner"
	MineList  = "@mine"
)

// Agreements caches agreements keyed by unit id, plus the owner's full list
// and the current tenant's residences.
type Agreements struct {
	status
	api   AgreementAPI
	cache *Cache[agreement.Agreement]
	group singleflight.Group
}

// NewAgreements creates an empty agreement store.
func NewAgreements(api AgreementAPI, policy Policy) *Agreements {
	return &Agreements{api: api, cache: NewCache[agreement.Agreement](policy)}
}

// ByUnit returns the cached agreements of a unit and whether they were fetched.
func (s *Agreements) ByUnit(unitID string) ([]agreement.Agreement, bool) {
	return s.cache.Get(unitID)
}

// Owner returns the cached owner-wide list.
func (s *Agreements) Owner() ([]agreement.Agreement, bool) {
	return s.cache.Get(OwnerList)
}

// Mine returns the cached residences of the current tenant.
func (s *Agreements) Mine() ([]agreement.Agreement, bool) {
	return s.cache.Get(MineList)
}

// Find returns a cached agreement by id from any list.
func (s *Agreements) Find(id string) (agreement.Agreement, bool) {
	a, _, ok := s.cache.Find(id)
	return a, ok
}

// FetchByUnit loads the agreements of a unit.
func (s *Agreements) FetchByUnit(ctx context.Context, unitID string) ([]agreement.Agreement, error) {
	return s.fetch(ctx, unitID, func(ctx context.Context) ([]agreement.Agreement, error) {
		return s.api.ListAgreements(ctx, unitID)
	})
}

// FetchOwner loads every agreement across the owner's units.
func (s *Agreements) FetchOwner(ctx context.Context) ([]agreement.Agreement, error) {
	return s.fetch(ctx, OwnerList, s.api.OwnerAgreements)
}

// FetchMine loads the current tenant's residences.
func (s *Agreements) FetchMine(ctx context.Context) ([]agreement.Agreement, error) {
	return s.fetch(ctx, MineList, s.api.MyAgreements)
}

func (s *Agreements) fetch(ctx context.Context, key string, load func(context.Context) ([]agreement.Agreement, error)) ([]agreement.Agreement, error) {
	v, err, _ := s.group.Do(key, func() (any, error) {
		s.begin()
		t := s.cache.Begin("list:" + key)
		as, err := load(ctx)
		if e := s.end(err); e != nil {
			return nil, e
		}
		if !s.cache.Replace(t, key, as) {
			slog.Debug("discarded stale agreement list", "key", key)
		}
		slog.Debug("cached agreements", "key", key, "count", len(as))
		return as, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]agreement.Agreement), nil
}

// Create adds an agreement. The server's copy is appended under the unit it
// names and to the owner list when that list is cached.
func (s *Agreements) Create(ctx context.Context, in agreement.CreateInput) (*agreement.Agreement, error) {
	s.begin()
	a, err := s.api.CreateAgreement(ctx, in)
	if e := s.end(err); e != nil {
		return nil, e
	}
	parent := a.UnitID()
	if parent == "" {
		parent = in.Unit
	}
	s.cache.Append(parent, *a)
	s.cache.AppendIfPresent(OwnerList, *a)
	return a, nil
}

// Update replaces every cached copy of the agreement with the server response.
func (s *Agreements) Update(ctx context.Context, id string, in agreement.UpdateInput) (*agreement.Agreement, error) {
	s.begin()
	t := s.cache.Begin("agreement:" + id)
	a, err := s.api.UpdateAgreement(ctx, id, in)
	if e := s.end(err); e != nil {
		return nil, e
	}

	parent := a.UnitID()
	if parent == "" {
		if cached, p, ok := s.cache.Find(id); ok {
			parent = cached.UnitID()
			if parent == "" {
				parent = p
			}
		}
	}
	replaced := s.cache.ReplaceEntity(t, parent, *a)
	for _, list := range []string{OwnerList, MineList} {
		if s.cache.ReplaceEntity(t, list, *a) {
			replaced = true
		}
	}
	if !replaced {
		slog.Debug("agreement update not applied to cache", "id", id)
	}
	return a, nil
}

// Terminate ends an agreement and patches only its status flags in every
// cached list. No other field is refreshed.
func (s *Agreements) Terminate(ctx context.Context, id string) error {
	s.begin()
	t := s.cache.Begin("agreement:" + id)
	err := s.api.TerminateAgreement(ctx, id)
	if e := s.end(err); e != nil {
		return e
	}
	n := s.cache.PatchFields(t, id, func(a *agreement.Agreement) {
		a.Status = agreement.StatusTerminated
		a.IsActive = false
	})
	slog.Debug("terminated agreement", "id", id, "patched", n)
	return nil
}

// Cache exposes the underlying cache for snapshots.
func (s *Agreements) Cache() *Cache[agreement.Agreement] { return s.cache }
