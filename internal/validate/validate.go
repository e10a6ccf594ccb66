// Package validate checks input payloads against their struct-tag schemas and
// reports failures in the same shape the backend uses for field errors.
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/evcraddock/rentroll/internal/agreement"
	"github.com/evcraddock/rentroll/internal/apierr"
)

var (
	once   sync.Once
	engine *validator.Validate
)

// specials is the set of characters accepted as the special character of a
// strong password.
const specials = "!@#$%^&*()_+-=[]{};':\"\\|,.<>/?"

func get() *validator.Validate {
	once.Do(func() {
		engine = validator.New(validator.WithRequiredStructEnabled())
		engine.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			switch name {
			case "-":
				return ""
			case "":
				return fld.Name
			}
			return name
		})
		if err := engine.RegisterValidation("password", strongPassword); err != nil {
			panic(fmt.Sprintf("registering password validation: %v", err))
		}
	})
	return engine
}

// strongPassword requires a lowercase and an uppercase letter, a digit and a
// special character.
func strongPassword(fl validator.FieldLevel) bool {
	var lower, upper, digit, special bool
	for _, r := range fl.Field().String() {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(specials, r):
			special = true
		}
	}
	return lower && upper && digit && special
}

var indexRe = regexp.MustCompile(`\[\d+\]`)

// Struct validates s and returns nil or a validation error listing every
// failing field.
func Struct(s any) *apierr.Error {
	err := get().Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierr.Validation([]apierr.FieldError{{Path: "", Message: err.Error()}})
	}

	fields := make([]apierr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		path := fe.Namespace()
		if _, rest, ok := strings.Cut(path, "."); ok {
			path = rest
		}
		fields = append(fields, apierr.FieldError{Path: path, Message: message(path, fe)})
	}
	return apierr.Validation(fields)
}

// AgreementUpdate validates an update payload. The lease end date may not move
// before the agreement's original start date.
func AgreementUpdate(in agreement.UpdateInput, originalStart time.Time) *apierr.Error {
	verr := Struct(in)
	if in.LeaseEndDate != nil && !originalStart.IsZero() && in.LeaseEndDate.Before(originalStart) {
		fe := apierr.FieldError{Path: "leaseEndDate", Message: messages["leaseEndDate.gtefield"]}
		if verr == nil {
			verr = apierr.Validation(nil)
		}
		verr.Fields = append(verr.Fields, fe)
	}
	return verr
}

func message(path string, fe validator.FieldError) string {
	key := indexRe.ReplaceAllString(path, "") + "." + fe.Tag()
	if m, ok := messages[key]; ok {
		return m
	}
	if m, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return m
	}
	return fmt.Sprintf("%s is invalid (%s)", path, fe.Tag())
}

// messages maps "path.tag" to the message shown for that failure.
var messages = map[string]string{
	// buildings
	"name.required":            "Name is required",
	"address.street.required":  "Street is required",
	"address.city.required":    "City is required",
	"address.state.required":   "State is required",
	"address.pincode.required": "Pincode is required",

	// units
	"building.required":   "Building is required",
	"unitNumber.required": "Unit number is required",
	"rentAmount.gte":      "Rent must be a positive number",
	"unitType.required":   "Unit type is required",
	"unitType.oneof":      "Unit type must be one of 1BHK, 2BHK, 3BHK, Studio, Villa, Other",
	"status.required":     "Status is required",
	"status.oneof":        "Status must be one of vacant, occupied, maintenance",

	// agreements
	"unit.required":                        "Unit information is missing",
	"tenant.required":                      "Tenant is required",
	"rentingType.required":                 "Renting type is required",
	"rentingType.oneof":                    "Renting type must be By Unit or By Bedspace",
	"securityDeposit.gte":                  "Security deposit must be a positive number",
	"leaseStartDate.required":              "Lease start date is required",
	"leaseEndDate.required":                "Lease end date is required",
	"leaseEndDate.gtefield":                "End date must be after start date",
	"rentDueDate.required":                 "Rent due date is required",
	"rentDueDate.min":                      "Rent due date must be between 1 and 31",
	"rentDueDate.max":                      "Rent due date must be between 1 and 31",
	"emergencyContact.name.required":       "Emergency contact name is required",
	"emergencyContact.phone.required":      "Emergency contact phone is required",
	"phone.len":                            "Phone number must be exactly 10 digits",
	"phone.number":                         "Phone number must contain only digits",
	"idProof.type.required":                "ID proof type is required",
	"idProof.number.required":              "ID proof number is required",
	"idProof.url.required":                 "ID proof URL is required",
	"idProof.url.url":                      "Must be a valid URL",
	"otherOccupants.name.required":         "Occupant name is required",
	"otherOccupants.relationship.required": "Relationship is required",

	// users
	"name.min":                 "Name must be at least 3 characters",
	"name.max":                 "Name must be less than 35 characters",
	"email.required":           "Email is required",
	"email.email":              "Must be a valid email",
	"phone.required":           "Phone is required",
	"password.required":        "Password is required",
	"password.min":             "Password must be at least 8 characters",
	"password.password":        passwordRule,
	"role.required":            "Role is required",
	"role.oneof":               "Role must be owner or tenant",
	"oldPassword.required":     "Current password is required",
	"oldPassword.min":          "Password must be at least 8 characters",
	"newPassword.required":     "New password is required",
	"newPassword.min":          "Password must be at least 8 characters",
	"newPassword.password":     passwordRule,
	"confirmPassword.required": "Please confirm your password",
	"confirmPassword.eqfield":  "Passwords must match",
}

const passwordRule = "Password must include at least one uppercase letter, one lowercase letter, one number, and one special character"
