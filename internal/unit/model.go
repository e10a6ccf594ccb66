// Package unit provides the rentable unit model.
package unit

import (
	"time"

	"github.com/evcraddock/rentroll/internal/building"
	"github.com/evcraddock/rentroll/internal/ref"
)

// Type is the layout class of a unit.
type Type string

const (
	Type1BHK   Type = "1BHK"
	Type2BHK   Type = "2BHK"
	Type3BHK   Type = "3BHK"
	TypeStudio Type = "Studio"
	TypeVilla  Type = "Villa"
	TypeOther  Type = "Other"
)

// Status is the occupancy state of a unit.
type Status string

const (
	StatusVacant      Status = "vacant"
	StatusOccupied    Status = "occupied"
	StatusMaintenance Status = "maintenance"
)

// ValidType returns true if s is a known unit type.
func ValidType(s string) bool {
	switch Type(s) {
	case Type1BHK, Type2BHK, Type3BHK, TypeStudio, TypeVilla, TypeOther:
		return true
	}
	return false
}

// ValidStatus returns true if s is a known unit status.
func ValidStatus(s string) bool {
	switch Status(s) {
	case StatusVacant, StatusOccupied, StatusMaintenance:
		return true
	}
	return false
}

// Unit is a rentable sub-space of a building.
type Unit struct {
	ID          string                     `json:"_id"`
	Building    ref.Ref[building.Building] `json:"building"`
	UnitNumber  string                     `json:"unitNumber"`
	FloorNumber string                     `json:"floorNumber,omitempty"`
	RentAmount  float64                    `json:"rentAmount"`
	UnitType    Type                       `json:"unitType"`
	Status      Status                     `json:"status"`
	CreatedAt   time.Time                  `json:"createdAt,omitzero"`
	UpdatedAt   time.Time                  `json:"updatedAt,omitzero"`
}

// Key returns the unit id.
func (u Unit) Key() string { return u.ID }

// BuildingID is the parent key the unit is cached under.
func (u Unit) BuildingID() string { return u.Building.ID }

// Input is the body of POST /api/units and PUT /api/units/:id.
type Input struct {
	Building    string  `json:"building" validate:"required"`
	UnitNumber  string  `json:"unitNumber" validate:"required"`
	FloorNumber string  `json:"floorNumber,omitempty"`
	RentAmount  float64 `json:"rentAmount" validate:"gte=0"`
	UnitType    Type    `json:"unitType" validate:"required,oneof=1BHK 2BHK 3BHK Studio Villa Other"`
	Status      Status  `json:"status" validate:"required,oneof=vacant occupied maintenance"`
}
