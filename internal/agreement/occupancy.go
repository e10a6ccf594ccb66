package agreement

import (
	"errors"
	"fmt"
	"strings"

	"github.com/evcraddock/rentroll/internal/unit"
	"github.com/evcraddock/rentroll/internal/user"
)

// ErrUnitTaken is returned when a new agreement would break the renting model
// already in force on a unit.
var ErrUnitTaken = errors.New("unit is not available for this renting type")

// DefaultRentingType picks the renting model offered first for a unit: an
// occupied unit can only take bedspace tenants.
func DefaultRentingType(u *unit.Unit) RentingType {
	if u != nil && u.Status == unit.StatusOccupied {
		return ByBedspace
	}
	return ByUnit
}

// Live filters agreements that currently occupy their unit.
func Live(agreements []Agreement) []Agreement {
	var out []Agreement
	for _, a := range agreements {
		if a.Live() {
			out = append(out, a)
		}
	}
	return out
}

// VisibleForUnit returns the live agreements for a unit's agreement list.
// When a By Unit agreement is live it is the only one shown, so a unit never
// presents both renting models as active at once.
func VisibleForUnit(agreements []Agreement) []Agreement {
	live := Live(agreements)
	for _, a := range live {
		if a.RentingType == ByUnit {
			return []Agreement{a}
		}
	}
	return live
}

// CheckAvailability reports whether a new agreement of type rt may be created
// next to the existing agreements of the same unit.
func CheckAvailability(existing []Agreement, rt RentingType) error {
	for _, a := range Live(existing) {
		if a.RentingType == ByUnit {
			return fmt.Errorf("%w: unit is leased as a whole under agreement %s", ErrUnitTaken, a.ID)
		}
		if rt == ByUnit {
			return fmt.Errorf("%w: unit has active bedspace agreements", ErrUnitTaken)
		}
	}
	return nil
}

// TenantAgreements groups a tenant with their live agreements.
type TenantAgreements struct {
	Tenant     user.User
	Agreements []Agreement
}

// ActiveTenants de-duplicates tenants across live agreements, keeping the
// order in which each tenant first appears. Agreements whose tenant was not
// populated are skipped.
func ActiveTenants(agreements []Agreement, query string) []TenantAgreements {
	query = strings.ToLower(strings.TrimSpace(query))

	var out []TenantAgreements
	index := make(map[string]int)
	for _, a := range Live(agreements) {
		if a.Tenant.Value == nil || a.Tenant.ID == "" {
			continue
		}
		i, ok := index[a.Tenant.ID]
		if !ok {
			i = len(out)
			index[a.Tenant.ID] = i
			out = append(out, TenantAgreements{Tenant: *a.Tenant.Value})
		}
		out[i].Agreements = append(out[i].Agreements, a)
	}

	if query == "" {
		return out
	}
	filtered := out[:0]
	for _, t := range out {
		if strings.Contains(strings.ToLower(t.Tenant.Name), query) ||
			strings.Contains(strings.ToLower(t.Tenant.Email), query) {
			filtered = append(filtered, t)
		}
	}
	return filtered
}
