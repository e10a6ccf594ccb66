package store

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/evcraddock/rentroll/internal/building"
)

// BuildingAPI is the remote side of the building store.
type BuildingAPI interface {
	ListBuildings(ctx context.Context) ([]building.Building, error)
	CreateBuilding(ctx context.Context, in building.Input) (*building.Building, error)
	UpdateBuilding(ctx context.Context, id string, in building.Input) (*building.Building, error)
}

// ownerKey is the single parent key for collections scoped to the current user.
const ownerKey = ""

// Buildings caches the current owner's buildings.
type Buildings struct {
	status
	api   BuildingAPI
	cache *Cache[building.Building]
	group singleflight.Group
}

// NewBuildings creates an empty building store.
func NewBuildings(api BuildingAPI, policy Policy) *Buildings {
	return &Buildings{api: api, cache: NewCache[building.Building](policy)}
}

// List returns the cached buildings and whether they were ever fetched.
func (s *Buildings) List() ([]building.Building, bool) {
	return s.cache.Get(ownerKey)
}

// Find returns a cached building by id.
func (s *Buildings) Find(id string) (building.Building, bool) {
	b, _, ok := s.cache.Find(id)
	return b, ok
}

// Fetch loads the buildings and replaces the cached list. On failure the
// last-known list is kept.
func (s *Buildings) Fetch(ctx context.Context) ([]building.Building, error) {
	v, err, shared := s.group.Do("list", func() (any, error) {
		s.begin()
		t := s.cache.Begin("list")
		bs, err := s.api.ListBuildings(ctx)
		if e := s.end(err); e != nil {
			return nil, e
		}
		if !s.cache.Replace(t, ownerKey, bs) {
			slog.Debug("discarded stale building list")
		}
		slog.Debug("cached buildings", "count", len(bs))
		return bs, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		slog.Debug("shared in-flight building fetch")
	}
	return v.([]building.Building), nil
}

// Create adds a building and appends the server's copy to the cache.
func (s *Buildings) Create(ctx context.Context, in building.Input) (*building.Building, error) {
	s.begin()
	b, err := s.api.CreateBuilding(ctx, in)
	if e := s.end(err); e != nil {
		return nil, e
	}
	s.cache.Append(ownerKey, *b)
	return b, nil
}

// Update replaces a building's fields with the server response.
func (s *Buildings) Update(ctx context.Context, id string, in building.Input) (*building.Building, error) {
	s.begin()
	t := s.cache.Begin("building:" + id)
	b, err := s.api.UpdateBuilding(ctx, id, in)
	if e := s.end(err); e != nil {
		return nil, e
	}
	if !s.cache.ReplaceEntity(t, ownerKey, *b) {
		slog.Debug("building update not applied to cache", "id", id)
	}
	return b, nil
}

// Cache exposes the underlying cache for snapshots.
func (s *Buildings) Cache() *Cache[building.Building] { return s.cache }
