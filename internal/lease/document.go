// Package lease renders a lease agreement document from an agreement, its unit
// and the landlord.
package lease

import (
	"fmt"
	"strings"
	"time"

	"github.com/evcraddock/rentroll/internal/agreement"
	"github.com/evcraddock/rentroll/internal/building"
	"github.com/evcraddock/rentroll/internal/format"
	"github.com/evcraddock/rentroll/internal/unit"
	"github.com/evcraddock/rentroll/internal/user"
)

// Document titles.
const (
	TitleShared      = "SHARED ACCOMMODATION AGREEMENT"
	TitleCommercial  = "COMMERCIAL RENTAL AGREEMENT"
	TitleResidential = "RESIDENTIAL LEASE AGREEMENT"
)

const (
	usageShared = "The Tenant is leasing a specific Bedspace within the Premises. The Tenant shall have shared access to common areas (kitchen, living room, bathrooms) but does NOT have exclusive possession of the entire Unit. The Tenant agrees to respect the quiet enjoyment and rights of other occupants."

	usageCommercial = "The Premises shall be used and occupied by the Tenant exclusively for the lawful purposes agreed upon by the Landlord and Tenant."

	usageResidential = "The Premises shall be used and occupied by the Tenant and listed occupants exclusively as a private single-family residence. The Tenant shall have the right to exclusive possession of the entire Unit."
)

// Section is one numbered clause.
type Section struct {
	Title      string
	Paragraphs []string
	ListTitle  string
	List       []string
	Closing    []string
}

// Document is a rendered lease ready for output.
type Document struct {
	Title    string
	Landlord string
	Tenant   string
	Sections []Section
}

// Build assembles the lease for agreement a on unit u, let by owner. now is the
// date the agreement is made.
func Build(a agreement.Agreement, u unit.Unit, owner *user.User, now time.Time) Document {
	landlord := format.NotAvailable
	if owner != nil && owner.Name != "" {
		landlord = owner.Name
	}
	tenant := format.NotAvailable
	if a.Tenant.Value != nil && a.Tenant.Value.Name != "" {
		tenant = a.Tenant.Value.Name
	}

	var b building.Building
	if u.Building.Value != nil {
		b = *u.Building.Value
	}
	state := b.Address.State
	if strings.TrimSpace(state) == "" {
		state = "India"
	}

	occupants := namedOccupants(a.OtherOccupants)
	listTitle := ""
	if len(occupants) > 0 {
		listTitle = "Authorized Occupants:"
	}

	return Document{
		Title:    Title(a.RentingType, u.UnitType),
		Landlord: landlord,
		Tenant:   tenant,
		Sections: []Section{
			{
				Title: "1. PARTIES",
				Paragraphs: []string{
					fmt.Sprintf("This Agreement is made and entered into on %s, by and between:", format.LongDate(now)),
					fmt.Sprintf("Landlord: %s (\"Landlord\")", landlord),
					fmt.Sprintf("Tenant: %s (\"Tenant\")", tenant),
				},
			},
			{
				Title: "2. PREMISES",
				Paragraphs: []string{
					"The Landlord leases to the Tenant the premises located at:",
					PremisesAddress(u, b) + ".",
				},
			},
			{
				Title: "3. TERM AND NOTICE",
				Paragraphs: []string{
					fmt.Sprintf("The lease term shall commence on %s and shall terminate on %s.",
						format.LongDate(a.LeaseStartDate), format.LongDate(a.LeaseEndDate)),
					"Either party may terminate this Agreement early by providing one (1) month's written notice to the other party.",
				},
			},
			{
				Title: "4. RENT",
				Paragraphs: []string{
					fmt.Sprintf("The Tenant agrees to pay the Landlord a monthly rent of %s.", Currency(a.RentAmount)),
					fmt.Sprintf("The rent is due on the %d%s day of each calendar month.", a.RentDueDate, format.Ordinal(a.RentDueDate)),
				},
			},
			{
				Title: "5. SECURITY DEPOSIT",
				Paragraphs: []string{
					fmt.Sprintf("Upon execution of this Agreement, the Tenant shall deposit with the Landlord the sum of %s as security for the faithful performance of the terms of this Agreement.", Currency(a.SecurityDeposit)),
				},
			},
			{
				Title:      "6. USE OF PREMISES",
				Paragraphs: []string{UsageClause(a.RentingType, u.UnitType)},
				ListTitle:  listTitle,
				List:       occupants,
			},
			{
				Title: "7. DEFAULT AND TERMINATION",
				Paragraphs: []string{
					"The Landlord may terminate this Agreement immediately if the Tenant:",
				},
				List: []string{
					"(a) Fails to pay Rent when due;",
					"(b) Engages in any illegal activity on the Premises;",
					"(c) Materially breaches any specific term of this Agreement.",
				},
				Closing: []string{
					"Upon such termination, the Tenant shall immediately vacate the Premises and the Landlord shall be entitled to retain the Security Deposit to cover unpaid rent or damages.",
				},
			},
			{
				Title: "8. GOVERNING LAW",
				Paragraphs: []string{
					fmt.Sprintf("This Agreement shall be governed by and construed in accordance with the laws of the State of %s.", state),
				},
			},
		},
	}
}

// Title picks the document title. Bedspace renting wins over the unit type.
func Title(rt agreement.RentingType, t unit.Type) string {
	switch {
	case rt == agreement.ByBedspace:
		return TitleShared
	case t == unit.TypeOther:
		return TitleCommercial
	default:
		return TitleResidential
	}
}

// UsageClause picks the use-of-premises clause the same way as Title.
func UsageClause(rt agreement.RentingType, t unit.Type) string {
	switch {
	case rt == agreement.ByBedspace:
		return usageShared
	case t == unit.TypeOther:
		return usageCommercial
	default:
		return usageResidential
	}
}

// PremisesAddress joins the unit number, building name and address parts,
// skipping blanks.
func PremisesAddress(u unit.Unit, b building.Building) string {
	var parts []string
	if u.UnitNumber != "" {
		parts = append(parts, "Unit "+u.UnitNumber)
	}
	for _, p := range []string{b.Name, b.Address.Street, b.Address.City, b.Address.State, b.Address.Pincode} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// Currency formats an amount as "Rs. 12,000".
func Currency(amount float64) string {
	return "Rs. " + format.Grouped(amount)
}

func namedOccupants(occ []agreement.Occupant) []string {
	var out []string
	for _, o := range occ {
		name := strings.TrimSpace(o.Name)
		if name == "" {
			continue
		}
		if o.Relationship != "" {
			out = append(out, fmt.Sprintf("• %s (%s)", name, o.Relationship))
		} else {
			out = append(out, "• "+name)
		}
	}
	return out
}
