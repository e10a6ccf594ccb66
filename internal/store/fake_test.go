package store

import (
	"context"
	"sync"

	"github.com/evcraddock/rentroll/internal/agreement"
	"github.com/evcraddock/rentroll/internal/building"
	"github.com/evcraddock/rentroll/internal/unit"
	"github.com/evcraddock/rentroll/internal/user"
)

// fakeAPI records call counts and delegates to optional per-method funcs.
type fakeAPI struct {
	mu    sync.Mutex
	calls map[string]int

	listBuildings   func(context.Context) ([]building.Building, error)
	createBuilding  func(context.Context, building.Input) (*building.Building, error)
	updateBuilding  func(context.Context, string, building.Input) (*building.Building, error)
	listUnits       func(context.Context, string) ([]unit.Unit, error)
	createUnit      func(context.Context, unit.Input) (*unit.Unit, error)
	updateUnit      func(context.Context, string, unit.Input) (*unit.Unit, error)
	listAgreements  func(context.Context, string) ([]agreement.Agreement, error)
	ownerAgreements func(context.Context) ([]agreement.Agreement, error)
	myAgreements    func(context.Context) ([]agreement.Agreement, error)
	createAgreement func(context.Context, agreement.CreateInput) (*agreement.Agreement, error)
	updateAgreement func(context.Context, string, agreement.UpdateInput) (*agreement.Agreement, error)
	terminate       func(context.Context, string) error
	searchTenant    func(context.Context, string) (*user.User, error)
	createTenant    func(context.Context, user.TenantInput) (*user.User, error)
	stats           func(context.Context) (*user.DashboardStats, error)
}

func (f *fakeAPI) count(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[name]++
}

func (f *fakeAPI) Calls(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeAPI) ListBuildings(ctx context.Context) ([]building.Building, error) {
	f.count("ListBuildings")
	if f.listBuildings == nil {
		return nil, nil
	}
	return f.listBuildings(ctx)
}

func (f *fakeAPI) CreateBuilding(ctx context.Context, in building.Input) (*building.Building, error) {
	f.count("CreateBuilding")
	return f.createBuilding(ctx, in)
}

func (f *fakeAPI) UpdateBuilding(ctx context.Context, id string, in building.Input) (*building.Building, error) {
	f.count("UpdateBuilding")
	return f.updateBuilding(ctx, id, in)
}

func (f *fakeAPI) ListUnits(ctx context.Context, buildingID string) ([]unit.Unit, error) {
	f.count("ListUnits")
	if f.listUnits == nil {
		return nil, nil
	}
	return f.listUnits(ctx, buildingID)
}

func (f *fakeAPI) CreateUnit(ctx context.Context, in unit.Input) (*unit.Unit, error) {
	f.count("CreateUnit")
	return f.createUnit(ctx, in)
}

func (f *fakeAPI) UpdateUnit(ctx context.Context, id string, in unit.Input) (*unit.Unit, error) {
	f.count("UpdateUnit")
	return f.updateUnit(ctx, id, in)
}

func (f *fakeAPI) ListAgreements(ctx context.Context, unitID string) ([]agreement.Agreement, error) {
	f.count("ListAgreements")
	if f.listAgreements == nil {
		return nil, nil
	}
	return f.listAgreements(ctx, unitID)
}

func (f *fakeAPI) OwnerAgreements(ctx context.Context) ([]agreement.Agreement, error) {
	f.count("OwnerAgreements")
	if f.ownerAgreements == nil {
		return nil, nil
	}
	return f.ownerAgreements(ctx)
}

func (f *fakeAPI) MyAgreements(ctx context.Context) ([]agreement.Agreement, error) {
	f.count("MyAgreements")
	if f.myAgreements == nil {
		return nil, nil
	}
	return f.myAgreements(ctx)
}

func (f *fakeAPI) CreateAgreement(ctx context.Context, in agreement.CreateInput) (*agreement.Agreement, error) {
	f.count("CreateAgreement")
	return f.createAgreement(ctx, in)
}

func (f *fakeAPI) UpdateAgreement(ctx context.Context, id string, in agreement.UpdateInput) (*agreement.Agreement, error) {
	f.count("UpdateAgreement")
	return f.updateAgreement(ctx, id, in)
}

func (f *fakeAPI) TerminateAgreement(ctx context.Context, id string) error {
	f.count("TerminateAgreement")
	if f.terminate == nil {
		return nil
	}
	return f.terminate(ctx, id)
}

func (f *fakeAPI) SearchTenant(ctx context.Context, email string) (*user.User, error) {
	f.count("SearchTenant")
	return f.searchTenant(ctx, email)
}

func (f *fakeAPI) CreateTenant(ctx context.Context, in user.TenantInput) (*user.User, error) {
	f.count("CreateTenant")
	return f.createTenant(ctx, in)
}

func (f *fakeAPI) DashboardStats(ctx context.Context) (*user.DashboardStats, error) {
	f.count("DashboardStats")
	return f.stats(ctx)
}
