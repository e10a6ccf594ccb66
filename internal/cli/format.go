package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/evcraddock/rentroll/internal/agreement"
	"github.com/evcraddock/rentroll/internal/building"
	"github.com/evcraddock/rentroll/internal/format"
	"github.com/evcraddock/rentroll/internal/session"
	"github.com/evcraddock/rentroll/internal/unit"
	"github.com/evcraddock/rentroll/internal/user"
)

// printJSON marshals v as indented JSON and writes it to w.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// table writes a header, a dashed separator and rows through a tabwriter.
type table struct {
	tw  *tabwriter.Writer
	err error
}

func newTable(w io.Writer, cols ...string) *table {
	t := &table{tw: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
	t.row(toAny(cols)...)
	dashes := make([]any, len(cols))
	for i, c := range cols {
		dashes[i] = strings.Repeat("-", len([]rune(c)))
	}
	t.row(dashes...)
	return t
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

func (t *table) row(cells ...any) {
	if t.err != nil {
		return
	}
	for i, c := range cells {
		sep := "\t"
		if i == len(cells)-1 {
			sep = "\n"
		}
		if _, err := fmt.Fprintf(t.tw, "%v%s", c, sep); err != nil {
			t.err = fmt.Errorf("writing table row: %w", err)
			return
		}
	}
}

func (t *table) flush() error {
	if t.err != nil {
		return t.err
	}
	if err := t.tw.Flush(); err != nil {
		return fmt.Errorf("flushing table: %w", err)
	}
	return nil
}

// printUser prints the account summary.
func printUser(w io.Writer, u *user.User, state session.State) error {
	_, err := fmt.Fprintf(w, "Name:   %s\nEmail:  %s\nPhone:  %s\nRole:   %s\nState:  %s\n",
		u.Name, u.Email, orNA(u.Phone), u.Role, state)
	return err
}

// printBuildings prints buildings as a formatted table.
func printBuildings(w io.Writer, bs []building.Building) error {
	if len(bs) == 0 {
		_, err := fmt.Fprintln(w, "No buildings found.")
		return err
	}

	t := newTable(w, "ID", "NAME", "ADDRESS")
	for _, b := range bs {
		t.row(b.ID, truncate(b.Name, 30), truncate(b.Address.String(), 60))
	}
	if err := t.flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nTotal: %d buildings\n", len(bs))
	return err
}

// printUnits prints units as a formatted table.
func printUnits(w io.Writer, us []unit.Unit) error {
	if len(us) == 0 {
		_, err := fmt.Fprintln(w, "No units found.")
		return err
	}

	t := newTable(w, "ID", "UNIT", "FLOOR", "TYPE", "RENT", "STATUS")
	for _, u := range us {
		t.row(u.ID, u.UnitNumber, orDash(u.FloorNumber), u.UnitType, format.Currency(u.RentAmount), u.Status)
	}
	if err := t.flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nTotal: %d units\n", len(us))
	return err
}

// printAgreements prints agreements as a formatted table.
func printAgreements(w io.Writer, as []agreement.Agreement) error {
	if len(as) == 0 {
		_, err := fmt.Fprintln(w, "No agreements found.")
		return err
	}

	t := newTable(w, "ID", "TENANT", "UNIT", "TYPE", "RENT", "START", "END", "STATUS")
	for _, a := range as {
		tenant := a.Tenant.ID
		if a.Tenant.Value != nil {
			tenant = a.Tenant.Value.Name
		}
		unitNo := a.Unit.ID
		if a.Unit.Value != nil {
			unitNo = a.Unit.Value.UnitNumber
		}
		t.row(a.ID, truncate(orDash(tenant), 25), orDash(unitNo), a.RentingType,
			format.Currency(a.RentAmount), format.Date(a.LeaseStartDate), format.Date(a.LeaseEndDate), a.Status)
	}
	if err := t.flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nTotal: %d agreements\n", len(as))
	return err
}

// printAgreement prints one agreement in detail.
func printAgreement(w io.Writer, a agreement.Agreement) error {
	tenant := format.NotAvailable
	if a.Tenant.Value != nil {
		tenant = fmt.Sprintf("%s <%s>", a.Tenant.Value.Name, a.Tenant.Value.Email)
	}
	_, err := fmt.Fprintf(w,
		"Agreement %s\n  Tenant:    %s\n  Unit:      %s\n  Type:      %s\n  Rent:      %s\n  Deposit:   %s\n  Term:      %s to %s\n  Due day:   %d%s\n  Status:    %s\n",
		a.ID, tenant, orNA(a.Unit.ID), a.RentingType,
		format.Currency(a.RentAmount), format.Currency(a.SecurityDeposit),
		format.Date(a.LeaseStartDate), format.Date(a.LeaseEndDate),
		a.RentDueDate, format.Ordinal(a.RentDueDate), a.Status)
	return err
}

// printTenants prints tenants with the number of live agreements each holds.
func printTenants(w io.Writer, ts []agreement.TenantAgreements) error {
	if len(ts) == 0 {
		_, err := fmt.Fprintln(w, "No active tenants.")
		return err
	}

	t := newTable(w, "ID", "NAME", "EMAIL", "PHONE", "AGREEMENTS")
	for _, ta := range ts {
		t.row(ta.Tenant.ID, truncate(ta.Tenant.Name, 30), ta.Tenant.Email, orDash(ta.Tenant.Phone), len(ta.Agreements))
	}
	if err := t.flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(w, "\nTotal: %d tenants\n", len(ts))
	return err
}

// printTenant prints a single tenant.
func printTenant(w io.Writer, u *user.User) error {
	_, err := fmt.Fprintf(w, "Tenant %s\n  Name:   %s\n  Email:  %s\n  Phone:  %s\n",
		u.ID, u.Name, u.Email, orNA(u.Phone))
	return err
}

// printStats prints the owner dashboard.
func printStats(w io.Writer, s *user.DashboardStats) error {
	if _, err := fmt.Fprintf(w, "Buildings:  %d\nUnits:      %d\nOccupied:   %d (%d%%)\nTenants:    %d\n",
		s.TotalBuildings, s.TotalUnits, s.OccupiedUnits, s.OccupancyRate(), s.TotalTenants); err != nil {
		return err
	}

	if len(s.OccupancyByBuilding) > 0 {
		if _, err := fmt.Fprintln(w, "\nOccupancy by building"); err != nil {
			return err
		}
		t := newTable(w, "BUILDING", "OCCUPIED", "TOTAL", "RATE")
		for _, o := range s.OccupancyByBuilding {
			t.row(o.BuildingName, o.OccupiedUnits, o.TotalUnits, fmt.Sprintf("%g%%", o.OccupancyRate))
		}
		if err := t.flush(); err != nil {
			return err
		}
	}

	if len(s.RecentAgreements) > 0 {
		if _, err := fmt.Fprintln(w, "\nRecent agreements"); err != nil {
			return err
		}
		t := newTable(w, "TENANT", "BUILDING", "UNIT", "RENT", "START", "END")
		for _, r := range s.RecentAgreements {
			t.row(truncate(r.TenantName, 25), truncate(r.BuildingName, 25), r.UnitNumber,
				format.Currency(r.RentAmount), format.Date(r.LeaseStartDate), format.Date(r.LeaseEndDate))
		}
		if err := t.flush(); err != nil {
			return err
		}
	}
	return nil
}

// homeSummary is the tenant's view of their first residence.
type homeSummary struct {
	Building        string    `json:"building"`
	Address         string    `json:"address"`
	Unit            string    `json:"unit"`
	Owner           string    `json:"owner"`
	RentAmount      float64   `json:"rentAmount"`
	LeaseEndDate    time.Time `json:"leaseEndDate,omitzero"`
	DaysUntilRenew  int       `json:"daysUntilRenewal"`
	NextPaymentDate time.Time `json:"nextPaymentDate,omitzero"`
	Residences      int       `json:"residences"`
}

// printHome prints the tenant home summary.
func printHome(w io.Writer, h homeSummary) error {
	next := format.NotAvailable
	if !h.NextPaymentDate.IsZero() {
		next = format.Date(h.NextPaymentDate)
	}
	_, err := fmt.Fprintf(w,
		"%s\n  %s\n  Unit:          %s\n  Owner:         %s\n  Rent:          %s\n  Lease ends:    %s (%d days)\n  Next payment:  %s\n",
		orNA(h.Building), orNA(h.Address), orNA(h.Unit), h.Owner,
		format.Currency(h.RentAmount), format.Date(h.LeaseEndDate), h.DaysUntilRenew, next)
	if err != nil {
		return err
	}
	if h.Residences > 1 {
		_, err = fmt.Fprintf(w, "\n%d residences in total, see 'rr agreements mine'.\n", h.Residences)
	}
	return err
}

func orNA(s string) string {
	if s == "" {
		return format.NotAvailable
	}
	return s
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
