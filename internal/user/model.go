// Package user provides the platform user model, roles and dashboard statistics.
package user

import (
	"math"
	"strings"
	"time"
)

// Role is the permission class of a platform user.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleTenant Role = "tenant"
	RoleAdmin  Role = "admin"
)

// ValidRole returns true if s is a known role.
func ValidRole(s string) bool {
	switch Role(strings.ToLower(s)) {
	case RoleOwner, RoleTenant, RoleAdmin:
		return true
	}
	return false
}

// User is a platform account. Tenants are users with RoleTenant.
type User struct {
	ID                  string    `json:"_id"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	Phone               string    `json:"phone,omitempty"`
	Role                Role      `json:"role"`
	NeedsPasswordChange bool      `json:"needsPasswordChange,omitempty"`
	CreatedAt           time.Time `json:"createdAt,omitzero"`
}

// HasRole compares roles case-insensitively.
func (u *User) HasRole(r Role) bool {
	return u != nil && strings.EqualFold(string(u.Role), string(r))
}

// LoginInput is the body of POST /api/users/login.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterInput is the body of POST /api/users/register.
type RegisterInput struct {
	Name     string `json:"name" validate:"required,min=3,max=35"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"required,len=10,number"`
	Password string `json:"password" validate:"required,min=8,password"`
	Role     Role   `json:"role" validate:"required,oneof=owner tenant"`
}

// PasswordChangeInput is the body of POST /api/users/password.
type PasswordChangeInput struct {
	Email           string `json:"email" validate:"required,email"`
	OldPassword     string `json:"oldPassword" validate:"required,min=8"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,password"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

// TenantInput is the body of POST /api/tenants.
type TenantInput struct {
	Name  string `json:"name" validate:"required,min=3,max=35"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"required,len=10,number"`
}

// BuildingOccupancy is one row of the per-building occupancy breakdown.
type BuildingOccupancy struct {
	BuildingName  string  `json:"buildingName"`
	OccupancyRate float64 `json:"occupancyRate"`
	OccupiedUnits int     `json:"occupiedUnits"`
	TotalUnits    int     `json:"totalUnits"`
}

// RecentAgreement is a flattened agreement summary shown on the dashboard.
type RecentAgreement struct {
	TenantName     string    `json:"tenantName"`
	TenantEmail    string    `json:"tenantEmail"`
	BuildingName   string    `json:"buildingName"`
	UnitNumber     string    `json:"unitNumber"`
	RentAmount     float64   `json:"rentAmount"`
	LeaseStartDate time.Time `json:"leaseStartDate,omitzero"`
	LeaseEndDate   time.Time `json:"leaseEndDate,omitzero"`
	CreatedAt      time.Time `json:"createdAt,omitzero"`
}

// DashboardStats are server-computed aggregates for an owner.
type DashboardStats struct {
	TotalBuildings      int                 `json:"totalBuildings"`
	TotalUnits          int                 `json:"totalUnits"`
	OccupiedUnits       int                 `json:"occupiedUnits"`
	TotalTenants        int                 `json:"totalTenants"`
	OccupancyByBuilding []BuildingOccupancy `json:"occupancyByBuilding"`
	RecentAgreements    []RecentAgreement   `json:"recentAgreements"`
}

// OccupancyRate returns occupied/total as a rounded percentage, 0 with no units.
func (s *DashboardStats) OccupancyRate() int {
	if s == nil || s.TotalUnits <= 0 {
		return 0
	}
	return int(math.Round(float64(s.OccupiedUnits) / float64(s.TotalUnits) * 100))
}
