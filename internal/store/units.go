package store

import (
	"context"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/evcraddock/rentroll/internal/unit"
)

// UnitAPI is the remote side of the unit store.
type UnitAPI interface {
	ListUnits(ctx context.Context, buildingID string) ([]unit.Unit, error)
	CreateUnit(ctx context.Context, in unit.Input) (*unit.Unit, error)
	UpdateUnit(ctx context.Context, id string, in unit.Input) (*unit.Unit, error)
}

// Units caches units keyed by building id.
type Units struct {
	status
	api   UnitAPI
	cache *Cache[unit.Unit]
	group singleflight.Group
}

// NewUnits creates an empty unit store.
func NewUnits(api UnitAPI, policy Policy) *Units {
	return &Units{api: api, cache: NewCache[unit.Unit](policy)}
}

// List returns the cached units of a building and whether they were fetched.
func (s *Units) List(buildingID string) ([]unit.Unit, bool) {
	return s.cache.Get(buildingID)
}

// Find returns a cached unit by id from any building.
func (s *Units) Find(id string) (unit.Unit, bool) {
	u, _, ok := s.cache.Find(id)
	return u, ok
}

// Fetch loads the units of a building and replaces that building's list.
func (s *Units) Fetch(ctx context.Context, buildingID string) ([]unit.Unit, error) {
	v, err, _ := s.group.Do(buildingID, func() (any, error) {
		s.begin()
		t := s.cache.Begin("list:" + buildingID)
		us, err := s.api.ListUnits(ctx, buildingID)
		if e := s.end(err); e != nil {
			return nil, e
		}
		if !s.cache.Replace(t, buildingID, us) {
			slog.Debug("discarded stale unit list", "building", buildingID)
		}
		slog.Debug("cached units", "building", buildingID, "count", len(us))
		return us, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]unit.Unit), nil
}

// Create adds a unit. The server's copy is appended under the building it
// names, which may differ from the one in the input.
func (s *Units) Create(ctx context.Context, in unit.Input) (*unit.Unit, error) {
	s.begin()
	u, err := s.api.CreateUnit(ctx, in)
	if e := s.end(err); e != nil {
		return nil, e
	}
	parent := u.BuildingID()
	if parent == "" {
		parent = in.Building
	}
	s.cache.Append(parent, *u)
	return u, nil
}

// Update replaces a unit in place within its building's list.
func (s *Units) Update(ctx context.Context, id string, in unit.Input) (*unit.Unit, error) {
	s.begin()
	t := s.cache.Begin("unit:" + id)
	u, err := s.api.UpdateUnit(ctx, id, in)
	if e := s.end(err); e != nil {
		return nil, e
	}
	parent := u.BuildingID()
	if parent == "" {
		parent = in.Building
	}
	if !s.cache.ReplaceEntity(t, parent, *u) {
		slog.Debug("unit update not applied to cache", "id", id, "building", parent)
	}
	return u, nil
}

// Cache exposes the underlying cache for snapshots.
func (s *Units) Cache() *Cache[unit.Unit] { return s.cache }
