package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/rentroll/internal/agreement"
	"github.com/evcraddock/rentroll/internal/apierr"
	"github.com/evcraddock/rentroll/internal/lease"
	"github.com/evcraddock/rentroll/internal/ref"
	"github.com/evcraddock/rentroll/internal/unit"
	"github.com/evcraddock/rentroll/internal/user"
)

const dateLayout = "2006-01-02"

func newAgreementsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "agreements",
		Aliases: []string{"agreement", "a"},
		Short:   "List and manage lease agreements",
	}
	cmd.AddCommand(
		newAgreementsListCmd(),
		newAgreementsOwnerCmd(),
		newAgreementsMineCmd(),
		newAgreementsCreateCmd(),
		newAgreementsEditCmd(),
		newAgreementsTerminateCmd(),
		newAgreementsLeaseCmd(),
	)
	return cmd
}

func newAgreementsListCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list <unit-id>",
		Short: "List the agreements of a unit",
		Long:  "Lists the live agreements of a unit. A live By Unit agreement hides any others.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, ownerRoles, func(ctx context.Context, a *app) error {
				as, err := a.flow.UnitAgreements(ctx, args[0], flagRefresh)
				if err != nil {
					return err
				}
				if !all {
					as = agreement.VisibleForUnit(as)
				}
				if isJSON() {
					return printJSON(a.out, as)
				}
				return printAgreements(a.out, as)
			})
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include terminated and pending agreements")
	return cmd
}

func newAgreementsOwnerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "owner",
		Short: "List every agreement across your buildings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, ownerRoles, func(ctx context.Context, a *app) error {
				as, err := a.flow.OwnerAgreements(ctx, flagRefresh)
				if err != nil {
					return err
				}
				if isJSON() {
					return printJSON(a.out, as)
				}
				return printAgreements(a.out, as)
			})
		},
	}
}

func newAgreementsMineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List the agreements you hold as a tenant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, tenantRoles, func(ctx context.Context, a *app) error {
				as, err := a.flow.MyResidences(ctx, flagRefresh)
				if err != nil {
					return err
				}
				if isJSON() {
					return printJSON(a.out, as)
				}
				return printAgreements(a.out, as)
			})
		},
	}
}

type createOptions struct {
	tenantEmail    string
	tenantName     string
	tenantPhone    string
	rentingType    string
	rent           float64
	deposit        float64
	start          string
	end            string
	dueDay         int
	occupants      []string
	emergencyName  string
	emergencyPhone string
	idType         string
	idNumber       string
	idURL          string
}

func newAgreementsCreateCmd() *cobra.Command {
	var o createOptions

	cmd := &cobra.Command{
		Use:   "create <unit-id>",
		Short: "Create an agreement on a unit",
		Long: `Creates a lease agreement for a tenant on a unit.

The tenant is looked up by email. When no tenant exists and --tenant-name and
--tenant-phone are given, the tenant is created first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, ownerRoles, func(ctx context.Context, a *app) error {
				return runAgreementCreate(ctx, cmd, a, args[0], o)
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.tenantEmail, "tenant", "", "tenant email (required)")
	f.StringVar(&o.tenantName, "tenant-name", "", "name for a new tenant")
	f.StringVar(&o.tenantPhone, "tenant-phone", "", "phone for a new tenant")
	f.StringVar(&o.rentingType, "type", "", `renting type ("By Unit" or "By Bedspace", default depends on unit status)`)
	f.Float64Var(&o.rent, "rent", 0, "monthly rent (default: the unit's rent)")
	f.Float64Var(&o.deposit, "deposit", 0, "security deposit")
	f.StringVar(&o.start, "start", "", "lease start date (YYYY-MM-DD)")
	f.StringVar(&o.end, "end", "", "lease end date (YYYY-MM-DD)")
	f.IntVar(&o.dueDay, "due-day", 1, "day of month rent is due (1-31)")
	f.StringArrayVar(&o.occupants, "occupant", nil, `other occupant as "name:relationship" (repeatable)`)
	f.StringVar(&o.emergencyName, "emergency-name", "", "emergency contact name")
	f.StringVar(&o.emergencyPhone, "emergency-phone", "", "emergency contact phone")
	f.StringVar(&o.idType, "id-type", "", "identity document type")
	f.StringVar(&o.idNumber, "id-number", "", "identity document number")
	f.StringVar(&o.idURL, "id-url", "", "identity document URL")
	if err := cmd.MarkFlagRequired("tenant"); err != nil {
		panic(err)
	}

	return cmd
}

func runAgreementCreate(ctx context.Context, cmd *cobra.Command, a *app, unitID string, o createOptions) error {
	u, err := findUnit(ctx, a, unitID, "")
	if err != nil {
		return err
	}

	tenant, err := resolveTenant(ctx, a, o)
	if err != nil {
		return err
	}

	in := agreement.CreateInput{
		Unit:            u.ID,
		Tenant:          tenant.ID,
		RentingType:     agreement.DefaultRentingType(&u),
		RentAmount:      u.RentAmount,
		SecurityDeposit: o.deposit,
		RentDueDate:     o.dueDay,
	}
	if o.rentingType != "" {
		in.RentingType = agreement.RentingType(o.rentingType)
	}
	if cmd.Flags().Changed("rent") {
		in.RentAmount = o.rent
	}
	if in.LeaseStartDate, err = parseDate("leaseStartDate", o.start); err != nil {
		return err
	}
	if in.LeaseEndDate, err = parseDate("leaseEndDate", o.end); err != nil {
		return err
	}
	if in.OtherOccupants, err = parseOccupants(o.occupants); err != nil {
		return err
	}
	if o.emergencyName != "" || o.emergencyPhone != "" {
		in.EmergencyContact = &agreement.EmergencyContact{Name: o.emergencyName, Phone: o.emergencyPhone}
	}
	if o.idType != "" || o.idNumber != "" || o.idURL != "" {
		in.IDProof = &agreement.IDProof{Type: o.idType, Number: o.idNumber, URL: o.idURL}
	}

	created, err := a.flow.CreateAgreement(ctx, in)
	if err != nil {
		return err
	}
	if isJSON() {
		return printJSON(a.out, created)
	}
	_, err = fmt.Fprintf(a.out, "✓ Created %s agreement %s for %s on unit %s\n",
		created.RentingType, created.ID, tenant.Name, u.UnitNumber)
	return err
}

// resolveTenant finds the tenant by email, creating them when the search
// allows it and enough details were given.
func resolveTenant(ctx context.Context, a *app, o createOptions) (*user.User, error) {
	t, canCreate, err := a.flow.ResolveTenant(ctx, o.tenantEmail)
	if err == nil {
		return t, nil
	}
	if !canCreate {
		return nil, err
	}
	if o.tenantName == "" || o.tenantPhone == "" {
		return nil, fmt.Errorf("no tenant with email %s: pass --tenant-name and --tenant-phone to create one", o.tenantEmail)
	}

	t, err = a.flow.CreateTenant(ctx, user.TenantInput{Name: o.tenantName, Email: o.tenantEmail, Phone: o.tenantPhone})
	if err != nil {
		return nil, err
	}
	if _, err := fmt.Fprintf(a.out, "✓ Created tenant %s\n", t.Name); err != nil {
		return nil, err
	}
	return t, nil
}

func newAgreementsEditCmd() *cobra.Command {
	var (
		rentingType string
		rent        float64
		deposit     float64
		end         string
		dueDay      int
		occupants   []string
	)

	cmd := &cobra.Command{
		Use:   "edit <agreement-id>",
		Short: "Edit an agreement",
		Long:  "Updates an agreement. Only the fields given on the command line are sent. The tenant and start date cannot change.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, ownerRoles, func(ctx context.Context, a *app) error {
				var in agreement.UpdateInput
				flags := cmd.Flags()
				if flags.Changed("type") {
					in.RentingType = agreement.RentingType(rentingType)
				}
				if flags.Changed("rent") {
					in.RentAmount = &rent
				}
				if flags.Changed("deposit") {
					in.SecurityDeposit = &deposit
				}
				if flags.Changed("due-day") {
					in.RentDueDate = &dueDay
				}
				if flags.Changed("end") {
					t, err := parseDate("leaseEndDate", end)
					if err != nil {
						return err
					}
					in.LeaseEndDate = &t
				}
				if flags.Changed("occupant") {
					occ, err := parseOccupants(occupants)
					if err != nil {
						return err
					}
					in.OtherOccupants = occ
				}

				updated, err := a.flow.UpdateAgreement(ctx, args[0], in)
				if err != nil {
					return err
				}
				if isJSON() {
					return printJSON(a.out, updated)
				}
				return printAgreement(a.out, *updated)
			})
		},
	}

	f := cmd.Flags()
	f.StringVar(&rentingType, "type", "", `renting type ("By Unit" or "By Bedspace")`)
	f.Float64Var(&rent, "rent", 0, "monthly rent")
	f.Float64Var(&deposit, "deposit", 0, "security deposit")
	f.StringVar(&end, "end", "", "lease end date (YYYY-MM-DD)")
	f.IntVar(&dueDay, "due-day", 0, "day of month rent is due (1-31)")
	f.StringArrayVar(&occupants, "occupant", nil, `other occupant as "name:relationship" (repeatable, replaces the list)`)

	return cmd
}

func newAgreementsTerminateCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "terminate <agreement-id>",
		Short: "Terminate an agreement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrompter(cmd)
			return run(cmd, ownerRoles, func(ctx context.Context, a *app) error {
				if !yes {
					answer, err := p.Line(fmt.Sprintf("Terminate agreement %s? [y/N] ", args[0]))
					if err != nil {
						return err
					}
					if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
						_, err := fmt.Fprintln(a.out, "Cancelled.")
						return err
					}
				}

				if err := a.flow.TerminateAgreement(ctx, args[0]); err != nil {
					return err
				}
				_, err := fmt.Fprintf(a.out, "✓ Agreement %s terminated.\n", args[0])
				return err
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newAgreementsLeaseCmd() *cobra.Command {
	var pdfPath string

	cmd := &cobra.Command{
		Use:   "lease <agreement-id>",
		Short: "Render the lease document of an agreement",
		Long:  "Prints the lease document as text, or writes it as a PDF with --pdf.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, ownerRoles, func(ctx context.Context, a *app) error {
				doc, err := leaseDocument(ctx, a, args[0])
				if err != nil {
					return err
				}
				if pdfPath == "" {
					return lease.WriteText(a.out, doc)
				}
				return writeLeasePDF(a, pdfPath, doc)
			})
		},
	}

	cmd.Flags().StringVar(&pdfPath, "pdf", "", "write the lease as a PDF to this file")
	return cmd
}

// leaseDocument gathers the agreement, its unit with building and the
// landlord, and builds the lease. The landlord is resolved like a tenant's
// residence, falling back to the signed-in owner.
func leaseDocument(ctx context.Context, a *app, id string) (lease.Document, error) {
	ag, err := a.flow.FindAgreement(ctx, id)
	if err != nil {
		return lease.Document{}, err
	}

	var u unit.Unit
	if ag.Unit.Value != nil {
		u = *ag.Unit.Value
	} else if u, err = findUnit(ctx, a, ag.UnitID(), ""); err != nil {
		return lease.Document{}, err
	}
	if u.Building.Value == nil && u.BuildingID() != "" {
		if _, err := a.flow.Buildings(ctx, false); err != nil {
			return lease.Document{}, err
		}
		if b, ok := a.stores.Buildings.Find(u.BuildingID()); ok {
			u.Building = ref.Of(b.ID, &b)
		}
	}

	ag.Unit = ref.Of(u.ID, &u)
	owner := residenceOwner(ag)
	if owner == nil {
		owner = a.session.User()
	}
	return lease.Build(ag, u, owner, time.Now()), nil
}

func writeLeasePDF(a *app, path string, doc lease.Document) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", path, cerr)
		}
	}()

	if err := lease.WritePDF(f, doc); err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.out, "✓ Lease written to %s\n", path)
	return err
}

// parseDate parses a YYYY-MM-DD flag value. An empty value yields the zero
// time, which validation reports as missing.
func parseDate(name, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return time.Time{}, apierr.Validation([]apierr.FieldError{{
			Path:    name,
			Message: fmt.Sprintf("Invalid date %q, use YYYY-MM-DD", v),
		}})
	}
	return t, nil
}

// parseOccupants parses "name:relationship" values.
func parseOccupants(values []string) ([]agreement.Occupant, error) {
	var out []agreement.Occupant
	for i, v := range values {
		name, rel, ok := strings.Cut(v, ":")
		if !ok {
			return nil, apierr.Validation([]apierr.FieldError{{
				Path:    fmt.Sprintf("otherOccupants[%d]", i),
				Message: fmt.Sprintf("Occupant %q must be name:relationship", v),
			}})
		}
		out = append(out, agreement.Occupant{Name: strings.TrimSpace(name), Relationship: strings.TrimSpace(rel)})
	}
	return out, nil
}
