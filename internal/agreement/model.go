// Package agreement provides the lease agreement model and the read-side
// queries the commands run over cached agreement lists.
package agreement

import (
	"time"

	"github.com/evcraddock/rentroll/internal/ref"
	"github.com/evcraddock/rentroll/internal/unit"
	"github.com/evcraddock/rentroll/internal/user"
)

// RentingType is the occupancy model of an agreement.
type RentingType string

const (
	ByUnit     RentingType = "By Unit"
	ByBedspace RentingType = "By Bedspace"
)

// ValidRentingType returns true if s is a known renting type.
func ValidRentingType(s string) bool {
	switch RentingType(s) {
	case ByUnit, ByBedspace:
		return true
	}
	return false
}

// Status is the lifecycle state of an agreement.
type Status string

const (
	StatusActive     Status = "active"
	StatusPending    Status = "pending"
	StatusTerminated Status = "terminated"
)

// EmergencyContact is an optional contact for the tenant.
type EmergencyContact struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required,len=10,number"`
}

// IDProof is an optional identity document reference.
type IDProof struct {
	Type   string `json:"type" validate:"required"`
	Number string `json:"number" validate:"required"`
	URL    string `json:"url" validate:"required,url"`
}

// Occupant is another person living under the agreement.
type Occupant struct {
	Name         string `json:"name" validate:"required"`
	Relationship string `json:"relationship" validate:"required"`
}

// Agreement is a lease between a tenant and a unit.
type Agreement struct {
	ID               string             `json:"_id"`
	Unit             ref.Ref[unit.Unit] `json:"unit"`
	Tenant           ref.Ref[user.User] `json:"tenant"`
	Owner            ref.Ref[user.User] `json:"owner"`
	RentingType      RentingType        `json:"rentingType"`
	RentAmount       float64            `json:"rentAmount"`
	SecurityDeposit  float64            `json:"securityDeposit"`
	LeaseStartDate   time.Time          `json:"leaseStartDate,omitzero"`
	LeaseEndDate     time.Time          `json:"leaseEndDate,omitzero"`
	RentDueDate      int                `json:"rentDueDate"`
	Status           Status             `json:"status"`
	IsActive         bool               `json:"isActive"`
	EmergencyContact *EmergencyContact  `json:"emergencyContact,omitempty"`
	IDProof          *IDProof           `json:"idProof,omitempty"`
	OtherOccupants   []Occupant         `json:"otherOccupants,omitempty"`
	CreatedAt        time.Time          `json:"createdAt,omitzero"`
	UpdatedAt        time.Time          `json:"updatedAt,omitzero"`
}

// Key returns the agreement id.
func (a Agreement) Key() string { return a.ID }

// UnitID is the parent key the agreement is cached under.
func (a Agreement) UnitID() string { return a.Unit.ID }

// Live reports whether the agreement currently occupies its unit.
func (a Agreement) Live() bool {
	return a.IsActive && a.Status == StatusActive
}

// Terminated reports whether the agreement has been soft-deleted.
func (a Agreement) Terminated() bool {
	return !a.IsActive || a.Status == StatusTerminated
}

// CreateInput is the body of POST /api/agreements.
type CreateInput struct {
	Unit             string            `json:"unit" validate:"required"`
	Tenant           string            `json:"tenant" validate:"required"`
	RentingType      RentingType       `json:"rentingType" validate:"required,oneof='By Unit' 'By Bedspace'"`
	RentAmount       float64           `json:"rentAmount" validate:"gte=0"`
	SecurityDeposit  float64           `json:"securityDeposit" validate:"gte=0"`
	LeaseStartDate   time.Time         `json:"leaseStartDate" validate:"required"`
	LeaseEndDate     time.Time         `json:"leaseEndDate" validate:"required,gtefield=LeaseStartDate"`
	RentDueDate      int               `json:"rentDueDate" validate:"required,min=1,max=31"`
	EmergencyContact *EmergencyContact `json:"emergencyContact,omitempty"`
	IDProof          *IDProof          `json:"idProof,omitempty"`
	OtherOccupants   []Occupant        `json:"otherOccupants,omitempty" validate:"dive"`
}

// UpdateInput is the body of PUT /api/agreements/:id. Tenant and lease start
// date cannot change after creation, so they are absent here.
type UpdateInput struct {
	RentingType      RentingType       `json:"rentingType,omitempty" validate:"omitempty,oneof='By Unit' 'By Bedspace'"`
	RentAmount       *float64          `json:"rentAmount,omitempty" validate:"omitempty,gte=0"`
	SecurityDeposit  *float64          `json:"securityDeposit,omitempty" validate:"omitempty,gte=0"`
	LeaseEndDate     *time.Time        `json:"leaseEndDate,omitempty"`
	RentDueDate      *int              `json:"rentDueDate,omitempty" validate:"omitempty,min=1,max=31"`
	EmergencyContact *EmergencyContact `json:"emergencyContact,omitempty"`
	IDProof          *IDProof          `json:"idProof,omitempty"`
	OtherOccupants   []Occupant        `json:"otherOccupants,omitempty" validate:"dive"`
}
