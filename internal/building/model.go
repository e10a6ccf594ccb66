// Package building provides the building model and its input payloads.
package building

import (
	"time"

	"github.com/evcraddock/rentroll/internal/format"
	"github.com/evcraddock/rentroll/internal/ref"
	"github.com/evcraddock/rentroll/internal/user"
)

// Address is the postal address of a building.
type Address struct {
	Street  string `json:"street" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required"`
	Pincode string `json:"pincode" validate:"required"`
}

// String joins the non-empty parts of the address.
func (a Address) String() string {
	return format.Address(a.Street, a.City, a.State, a.Pincode)
}

// Building is a property owned by a user with role owner.
type Building struct {
	ID        string             `json:"_id"`
	Name      string             `json:"name"`
	Address   Address            `json:"address"`
	Owner     ref.Ref[user.User] `json:"owner"`
	CreatedAt time.Time          `json:"createdAt,omitzero"`
	UpdatedAt time.Time          `json:"updatedAt,omitzero"`
}

// Key returns the building id.
func (b Building) Key() string { return b.ID }

// Input is the body of POST /api/buildings and PUT /api/buildings/:id.
type Input struct {
	Name    string  `json:"name" validate:"required"`
	Address Address `json:"address"`
}
