// Package flow decides what each command needs fetched and keeps related
// caches in step after mutations.
//
// Loads are cache-first: a collection is fetched only when its key is absent
// or empty, unless the caller forces a refresh. After a mutation the affected
// collections are refetched by these rules:
//
//	create agreement     -> units of the building, agreements of the unit
//	update agreement     -> units of the building, buildings
//	terminate agreement  -> units of the building, buildings, agreements of the unit
//
// Dashboard stats are never refetched by a mutation.
package flow

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/evcraddock/rentroll/internal/agreement"
	"github.com/evcraddock/rentroll/internal/apierr"
	"github.com/evcraddock/rentroll/internal/building"
	"github.com/evcraddock/rentroll/internal/store"
	"github.com/evcraddock/rentroll/internal/unit"
	"github.com/evcraddock/rentroll/internal/user"
	"github.com/evcraddock/rentroll/internal/validate"
)

// Flow orchestrates loads and refetches over a set of stores.
type Flow struct {
	st *store.Stores
}

// New creates a Flow over st.
func New(st *store.Stores) *Flow {
	return &Flow{st: st}
}

// Stores returns the stores the flow works on.
func (f *Flow) Stores() *store.Stores { return f.st }

// Buildings returns the owner's buildings, fetching them only when not cached.
func (f *Flow) Buildings(ctx context.Context, refresh bool) ([]building.Building, error) {
	if bs, ok := f.st.Buildings.List(); ok && len(bs) > 0 && !refresh {
		return bs, nil
	}
	return f.st.Buildings.Fetch(ctx)
}

// Units returns the units of a building, fetching them only when not cached.
func (f *Flow) Units(ctx context.Context, buildingID string, refresh bool) ([]unit.Unit, error) {
	if us, ok := f.st.Units.List(buildingID); ok && len(us) > 0 && !refresh {
		return us, nil
	}
	return f.st.Units.Fetch(ctx, buildingID)
}

// UnitAgreements returns the agreements of a unit, fetching them only when not
// cached.
func (f *Flow) UnitAgreements(ctx context.Context, unitID string, refresh bool) ([]agreement.Agreement, error) {
	if as, ok := f.st.Agreements.ByUnit(unitID); ok && len(as) > 0 && !refresh {
		return as, nil
	}
	return f.st.Agreements.FetchByUnit(ctx, unitID)
}

// OwnerAgreements returns the owner-wide agreement list.
func (f *Flow) OwnerAgreements(ctx context.Context, refresh bool) ([]agreement.Agreement, error) {
	if as, ok := f.st.Agreements.Owner(); ok && len(as) > 0 && !refresh {
		return as, nil
	}
	return f.st.Agreements.FetchOwner(ctx)
}

// MyResidences returns the current tenant's agreements.
func (f *Flow) MyResidences(ctx context.Context, refresh bool) ([]agreement.Agreement, error) {
	if as, ok := f.st.Agreements.Mine(); ok && len(as) > 0 && !refresh {
		return as, nil
	}
	return f.st.Agreements.FetchMine(ctx)
}

// Stats returns the dashboard stats, fetching them only when not cached.
func (f *Flow) Stats(ctx context.Context, refresh bool) (*user.DashboardStats, error) {
	if s := f.st.Users.Stats(); s != nil && !refresh {
		return s, nil
	}
	return f.st.Users.FetchStats(ctx)
}

// FindAgreement returns an agreement from the cache, loading the owner list
// when it is not cached anywhere.
func (f *Flow) FindAgreement(ctx context.Context, id string) (agreement.Agreement, error) {
	if a, ok := f.st.Agreements.Find(id); ok {
		return a, nil
	}
	if _, err := f.st.Agreements.FetchOwner(ctx); err != nil {
		return agreement.Agreement{}, err
	}
	if a, ok := f.st.Agreements.Find(id); ok {
		return a, nil
	}
	return agreement.Agreement{}, apierr.New(apierr.KindNotFound, fmt.Sprintf("agreement %s not found", id))
}

// CreateBuilding validates and creates a building.
func (f *Flow) CreateBuilding(ctx context.Context, in building.Input) (*building.Building, error) {
	if verr := validate.Struct(in); verr != nil {
		return nil, verr
	}
	return f.st.Buildings.Create(ctx, in)
}

// UpdateBuilding validates and updates a building.
func (f *Flow) UpdateBuilding(ctx context.Context, id string, in building.Input) (*building.Building, error) {
	if verr := validate.Struct(in); verr != nil {
		return nil, verr
	}
	return f.st.Buildings.Update(ctx, id, in)
}

// CreateUnit validates and creates a unit.
func (f *Flow) CreateUnit(ctx context.Context, in unit.Input) (*unit.Unit, error) {
	if verr := validate.Struct(in); verr != nil {
		return nil, verr
	}
	return f.st.Units.Create(ctx, in)
}

// UpdateUnit validates and updates a unit.
func (f *Flow) UpdateUnit(ctx context.Context, id string, in unit.Input) (*unit.Unit, error) {
	if verr := validate.Struct(in); verr != nil {
		return nil, verr
	}
	return f.st.Units.Update(ctx, id, in)
}

// ResolveTenant searches for a tenant by email. When the search fails with a
// not-found or global error, canCreate reports that the caller may create the
// tenant inline instead.
func (f *Flow) ResolveTenant(ctx context.Context, email string) (u *user.User, canCreate bool, err error) {
	u, err = f.st.Users.SearchTenant(ctx, email)
	if err == nil {
		return u, false, nil
	}
	e := apierr.As(err)
	return nil, e.Kind == apierr.KindNotFound || e.Kind == apierr.KindGlobal, err
}

// CreateTenant validates and creates a tenant.
func (f *Flow) CreateTenant(ctx context.Context, in user.TenantInput) (*user.User, error) {
	if verr := validate.Struct(in); verr != nil {
		return nil, verr
	}
	return f.st.Users.CreateTenant(ctx, in)
}

// CreateAgreement validates the input, checks the renting-model exclusion
// against the unit's cached agreements and creates the agreement.
func (f *Flow) CreateAgreement(ctx context.Context, in agreement.CreateInput) (*agreement.Agreement, error) {
	if verr := validate.Struct(in); verr != nil {
		return nil, verr
	}

	existing, err := f.UnitAgreements(ctx, in.Unit, false)
	if err != nil {
		return nil, fmt.Errorf("loading unit agreements: %w", err)
	}
	if err := agreement.CheckAvailability(existing, in.RentingType); err != nil {
		return nil, apierr.Global(0, err.Error())
	}

	a, err := f.st.Agreements.Create(ctx, in)
	if err != nil {
		return nil, err
	}

	unitID := a.UnitID()
	if unitID == "" {
		unitID = in.Unit
	}
	f.refetch(ctx, "create agreement", f.buildingOf(*a, unitID), unitID, false)
	return a, nil
}

// UpdateAgreement validates the input against the cached agreement and updates it.
func (f *Flow) UpdateAgreement(ctx context.Context, id string, in agreement.UpdateInput) (*agreement.Agreement, error) {
	current, err := f.FindAgreement(ctx, id)
	if err != nil {
		return nil, err
	}
	if verr := validate.AgreementUpdate(in, current.LeaseStartDate); verr != nil {
		return nil, verr
	}

	a, err := f.st.Agreements.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	f.refetch(ctx, "update agreement", f.buildingOf(current, current.UnitID()), "", true)
	return a, nil
}

// TerminateAgreement ends an agreement and refreshes the collections whose
// occupancy it changes.
func (f *Flow) TerminateAgreement(ctx context.Context, id string) error {
	current, err := f.FindAgreement(ctx, id)
	if err != nil {
		return err
	}
	if current.Terminated() {
		return apierr.Global(0, "Agreement is already terminated")
	}

	if err := f.st.Agreements.Terminate(ctx, id); err != nil {
		return err
	}
	f.refetch(ctx, "terminate agreement", f.buildingOf(current, current.UnitID()), current.UnitID(), true)
	return nil
}

// refetch runs the follow-up fetches of a mutation in parallel. The mutation
// already succeeded, so failures are logged and not returned.
func (f *Flow) refetch(ctx context.Context, after, buildingID, unitID string, buildings bool) {
	g, gctx := errgroup.WithContext(ctx)
	if buildingID != "" {
		g.Go(func() error {
			_, err := f.st.Units.Fetch(gctx, buildingID)
			return err
		})
	}
	if unitID != "" {
		g.Go(func() error {
			_, err := f.st.Agreements.FetchByUnit(gctx, unitID)
			return err
		})
	}
	if buildings {
		g.Go(func() error {
			_, err := f.st.Buildings.Fetch(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		slog.Warn("refetch failed", "after", after, "building", buildingID, "unit", unitID, "error", err)
	}
}

// buildingOf finds the building of a unit from the unit cache or from the
// populated references of an agreement.
func (f *Flow) buildingOf(a agreement.Agreement, unitID string) string {
	if u, ok := f.st.Units.Find(unitID); ok && u.BuildingID() != "" {
		return u.BuildingID()
	}
	if a.Unit.Value != nil {
		return a.Unit.Value.BuildingID()
	}
	return ""
}
