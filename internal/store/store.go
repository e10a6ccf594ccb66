package store

// API is the full remote surface the stores need.
type API interface {
	BuildingAPI
	UnitAPI
	AgreementAPI
	UserAPI
}

// Stores groups the per-resource stores of one client.
type Stores struct {
	Buildings  *Buildings
	Units      *Units
	Agreements *Agreements
	Users      *Users
}

// New creates empty stores backed by api.
func New(api API, policy Policy) *Stores {
	return &Stores{
		Buildings:  NewBuildings(api, policy),
		Units:      NewUnits(api, policy),
		Agreements: NewAgreements(api, policy),
		Users:      NewUsers(api),
	}
}

// Reset drops every cached collection and result.
func (s *Stores) Reset() {
	s.Buildings.cache.Reset()
	s.Units.cache.Reset()
	s.Agreements.cache.Reset()
	s.Users.ClearSearchedTenant()
	s.Users.SetStats(nil)
}
