package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/evcraddock/rentroll/internal/agreement"
	"github.com/evcraddock/rentroll/internal/format"
	"github.com/evcraddock/rentroll/internal/lease"
	"github.com/evcraddock/rentroll/internal/ref"
	"github.com/evcraddock/rentroll/internal/unit"
	"github.com/evcraddock/rentroll/internal/user"
)

// defaultOwnerName is shown when a residence carries no owner details.
const defaultOwnerName = "Property Owner"

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the owner dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, ownerRoles, func(ctx context.Context, a *app) error {
				s, err := a.flow.Stats(ctx, flagRefresh)
				if err != nil {
					return err
				}
				if isJSON() {
					return printJSON(a.out, s)
				}
				return printStats(a.out, s)
			})
		},
	}
}

func newHomeCmd() *cobra.Command {
	var (
		showLease bool
		pdfPath   string
	)

	cmd := &cobra.Command{
		Use:   "home",
		Short: "Show your residence",
		Long:  "Summarizes your first residence. With --lease or --pdf it renders that residence's lease instead.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, tenantRoles, func(ctx context.Context, a *app) error {
				res, err := a.flow.MyResidences(ctx, flagRefresh)
				if err != nil {
					return err
				}
				if len(res) == 0 {
					_, err := fmt.Fprintln(a.out, "You have no residences yet.")
					return err
				}

				if showLease || pdfPath != "" {
					doc := residenceLease(res[0], a.session.User(), time.Now())
					if pdfPath == "" {
						return lease.WriteText(a.out, doc)
					}
					return writeLeasePDF(a, pdfPath, doc)
				}

				h := summarizeHome(res, time.Now())
				if isJSON() {
					return printJSON(a.out, h)
				}
				return printHome(a.out, h)
			})
		},
	}

	cmd.Flags().BoolVar(&showLease, "lease", false, "print the lease of your residence")
	cmd.Flags().StringVar(&pdfPath, "pdf", "", "write the lease of your residence as a PDF to this file")
	return cmd
}

// summarizeHome describes the first residence.
func summarizeHome(res []agreement.Agreement, now time.Time) homeSummary {
	a := res[0]
	h := homeSummary{
		Owner:          defaultOwnerName,
		RentAmount:     a.RentAmount,
		LeaseEndDate:   a.LeaseEndDate,
		DaysUntilRenew: format.DaysUntilRenewal(a.LeaseEndDate, now),
		Residences:     len(res),
	}
	if next, ok := format.NextPaymentDate(a.RentDueDate, now); ok {
		h.NextPaymentDate = next
	}

	if u := a.Unit.Value; u != nil {
		h.Unit = u.UnitNumber
		if b := u.Building.Value; b != nil {
			h.Building = b.Name
			h.Address = b.Address.String()
		}
	}
	if o := residenceOwner(a); o != nil {
		h.Owner = o.Name
	}
	return h
}

// residenceOwner returns the landlord of a residence: the owner of the unit's
// building, then the agreement's owner. Only populated owners with a name
// count.
func residenceOwner(a agreement.Agreement) *user.User {
	if u := a.Unit.Value; u != nil {
		if b := u.Building.Value; b != nil {
			if o := b.Owner.Value; o != nil && o.Name != "" {
				return o
			}
		}
	}
	if o := a.Owner.Value; o != nil && o.Name != "" {
		return o
	}
	return nil
}

// residenceLease builds the lease of a tenant's residence from what the
// residence list carries. The tenant is the signed-in user when the agreement
// does not name them.
func residenceLease(a agreement.Agreement, me *user.User, now time.Time) lease.Document {
	var u unit.Unit
	if a.Unit.Value != nil {
		u = *a.Unit.Value
	}
	if a.Tenant.Value == nil && me != nil {
		a.Tenant = ref.Of(me.ID, me)
	}
	return lease.Build(a, u, residenceOwner(a), now)
}
