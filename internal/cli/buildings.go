package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/rentroll/internal/apierr"
	"github.com/evcraddock/rentroll/internal/building"
)

func newBuildingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "buildings",
		Aliases: []string{"building", "b"},
		Short:   "List and manage buildings",
	}
	cmd.AddCommand(newBuildingsListCmd(), newBuildingsAddCmd(), newBuildingsEditCmd())
	return cmd
}

func newBuildingsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your buildings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, ownerRoles, func(ctx context.Context, a *app) error {
				bs, err := a.flow.Buildings(ctx, flagRefresh)
				if err != nil {
					return err
				}
				if isJSON() {
					return printJSON(a.out, bs)
				}
				return printBuildings(a.out, bs)
			})
		},
	}
}

// buildingFlags binds the building input fields to cmd.
func buildingFlags(cmd *cobra.Command, in *building.Input) {
	cmd.Flags().StringVar(&in.Name, "name", "", "building name")
	cmd.Flags().StringVar(&in.Address.Street, "street", "", "street address")
	cmd.Flags().StringVar(&in.Address.City, "city", "", "city")
	cmd.Flags().StringVar(&in.Address.State, "state", "", "state")
	cmd.Flags().StringVar(&in.Address.Pincode, "pincode", "", "postal code")
}

func newBuildingsAddCmd() *cobra.Command {
	var in building.Input

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a building",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, ownerRoles, func(ctx context.Context, a *app) error {
				b, err := a.flow.CreateBuilding(ctx, in)
				if err != nil {
					return err
				}
				if isJSON() {
					return printJSON(a.out, b)
				}
				_, err = fmt.Fprintf(a.out, "✓ Added building %s (%s)\n", b.Name, b.ID)
				return err
			})
		},
	}

	buildingFlags(cmd, &in)
	return cmd
}

func newBuildingsEditCmd() *cobra.Command {
	var in building.Input

	cmd := &cobra.Command{
		Use:   "edit <building-id>",
		Short: "Edit a building",
		Long:  "Updates a building. Fields not given on the command line keep their current values.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, ownerRoles, func(ctx context.Context, a *app) error {
				if _, err := a.flow.Buildings(ctx, flagRefresh); err != nil {
					return err
				}
				cur, ok := a.stores.Buildings.Find(args[0])
				if !ok {
					return apierr.New(apierr.KindNotFound, "Building not found")
				}

				merged := building.Input{Name: cur.Name, Address: cur.Address}
				flags := cmd.Flags()
				if flags.Changed("name") {
					merged.Name = in.Name
				}
				if flags.Changed("street") {
					merged.Address.Street = in.Address.Street
				}
				if flags.Changed("city") {
					merged.Address.City = in.Address.City
				}
				if flags.Changed("state") {
					merged.Address.State = in.Address.State
				}
				if flags.Changed("pincode") {
					merged.Address.Pincode = in.Address.Pincode
				}

				b, err := a.flow.UpdateBuilding(ctx, args[0], merged)
				if err != nil {
					return err
				}
				if isJSON() {
					return printJSON(a.out, b)
				}
				_, err = fmt.Fprintf(a.out, "✓ Updated building %s\n", b.Name)
				return err
			})
		},
	}

	buildingFlags(cmd, &in)
	return cmd
}
