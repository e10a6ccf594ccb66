package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/rentroll/internal/agreement"
	"github.com/evcraddock/rentroll/internal/user"
)

func newTenantsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tenants",
		Aliases: []string{"tenant", "t"},
		Short:   "Find, create and list tenants",
	}
	cmd.AddCommand(newTenantsSearchCmd(), newTenantsCreateCmd(), newTenantsListCmd())
	return cmd
}

func newTenantsSearchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "search <email>",
		Short: "Look up a tenant by email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, ownerRoles, func(ctx context.Context, a *app) error {
				t, canCreate, err := a.flow.ResolveTenant(ctx, args[0])
				if err != nil {
					if canCreate {
						return fmt.Errorf("%w (create one with 'rr tenants create --email %s')", err, args[0])
					}
					return err
				}
				if isJSON() {
					return printJSON(a.out, t)
				}
				return printTenant(a.out, t)
			})
		},
	}
}

func newTenantsCreateCmd() *cobra.Command {
	var in user.TenantInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a tenant account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, ownerRoles, func(ctx context.Context, a *app) error {
				t, err := a.flow.CreateTenant(ctx, in)
				if err != nil {
					return err
				}
				if isJSON() {
					return printJSON(a.out, t)
				}
				_, err = fmt.Fprintf(a.out, "✓ Created tenant %s (%s)\n", t.Name, t.ID)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&in.Name, "name", "", "full name")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.Phone, "phone", "", "10 digit phone number")
	return cmd
}

func newTenantsListCmd() *cobra.Command {
	var query string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tenants with live agreements",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, ownerRoles, func(ctx context.Context, a *app) error {
				as, err := a.flow.OwnerAgreements(ctx, flagRefresh)
				if err != nil {
					return err
				}
				ts := agreement.ActiveTenants(as, query)
				if isJSON() {
					return printJSON(a.out, ts)
				}
				return printTenants(a.out, ts)
			})
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "filter by name or email")
	return cmd
}
