package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/evcraddock/rentroll/internal/apierr"
	"github.com/evcraddock/rentroll/internal/unit"
)

func newUnitsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "units",
		Aliases: []string{"unit", "u"},
		Short:   "List and manage the units of a building",
	}
	cmd.AddCommand(newUnitsListCmd(), newUnitsAddCmd(), newUnitsEditCmd())
	return cmd
}

func newUnitsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <building-id>",
		Short: "List the units of a building",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, ownerRoles, func(ctx context.Context, a *app) error {
				us, err := a.flow.Units(ctx, args[0], flagRefresh)
				if err != nil {
					return err
				}
				if isJSON() {
					return printJSON(a.out, us)
				}
				return printUnits(a.out, us)
			})
		},
	}
}

// unitFlags binds the unit input fields to cmd.
func unitFlags(cmd *cobra.Command, in *unit.Input, typ, status *string) {
	cmd.Flags().StringVar(&in.UnitNumber, "number", "", "unit number")
	cmd.Flags().StringVar(&in.FloorNumber, "floor", "", "floor number")
	cmd.Flags().Float64Var(&in.RentAmount, "rent", 0, "monthly rent")
	cmd.Flags().StringVar(typ, "type", string(unit.Type1BHK), "unit type (1BHK|2BHK|3BHK|Studio|Villa|Other)")
	cmd.Flags().StringVar(status, "status", string(unit.StatusVacant), "unit status (vacant|occupied|maintenance)")
}

func newUnitsAddCmd() *cobra.Command {
	var in unit.Input
	var typ, status string

	cmd := &cobra.Command{
		Use:   "add <building-id>",
		Short: "Add a unit to a building",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, ownerRoles, func(ctx context.Context, a *app) error {
				in.Building = args[0]
				in.UnitType = unit.Type(typ)
				in.Status = unit.Status(status)

				u, err := a.flow.CreateUnit(ctx, in)
				if err != nil {
					return err
				}
				if isJSON() {
					return printJSON(a.out, u)
				}
				_, err = fmt.Fprintf(a.out, "✓ Added unit %s (%s)\n", u.UnitNumber, u.ID)
				return err
			})
		},
	}

	unitFlags(cmd, &in, &typ, &status)
	return cmd
}

func newUnitsEditCmd() *cobra.Command {
	var in unit.Input
	var typ, status, buildingID string

	cmd := &cobra.Command{
		Use:   "edit <unit-id>",
		Short: "Edit a unit",
		Long:  "Updates a unit. Fields not given on the command line keep their current values.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, ownerRoles, func(ctx context.Context, a *app) error {
				cur, err := findUnit(ctx, a, args[0], buildingID)
				if err != nil {
					return err
				}

				merged := unit.Input{
					Building:    cur.BuildingID(),
					UnitNumber:  cur.UnitNumber,
					FloorNumber: cur.FloorNumber,
					RentAmount:  cur.RentAmount,
					UnitType:    cur.UnitType,
					Status:      cur.Status,
				}
				flags := cmd.Flags()
				if flags.Changed("number") {
					merged.UnitNumber = in.UnitNumber
				}
				if flags.Changed("floor") {
					merged.FloorNumber = in.FloorNumber
				}
				if flags.Changed("rent") {
					merged.RentAmount = in.RentAmount
				}
				if flags.Changed("type") {
					merged.UnitType = unit.Type(typ)
				}
				if flags.Changed("status") {
					merged.Status = unit.Status(status)
				}

				u, err := a.flow.UpdateUnit(ctx, args[0], merged)
				if err != nil {
					return err
				}
				if isJSON() {
					return printJSON(a.out, u)
				}
				_, err = fmt.Fprintf(a.out, "✓ Updated unit %s\n", u.UnitNumber)
				return err
			})
		},
	}

	unitFlags(cmd, &in, &typ, &status)
	cmd.Flags().StringVar(&buildingID, "building", "", "building the unit belongs to (speeds up lookup)")
	return cmd
}

// findUnit looks a unit up in the cache, loading unit lists until it is found.
// With buildingID set only that building is searched.
func findUnit(ctx context.Context, a *app, id, buildingID string) (unit.Unit, error) {
	if u, ok := a.stores.Units.Find(id); ok {
		return u, nil
	}

	buildings := []string{buildingID}
	if buildingID == "" {
		bs, err := a.flow.Buildings(ctx, false)
		if err != nil {
			return unit.Unit{}, err
		}
		buildings = buildings[:0]
		for _, b := range bs {
			buildings = append(buildings, b.ID)
		}
	}

	for _, bid := range buildings {
		if _, err := a.flow.Units(ctx, bid, false); err != nil {
			return unit.Unit{}, err
		}
		if u, ok := a.stores.Units.Find(id); ok {
			return u, nil
		}
	}
	return unit.Unit{}, apierr.New(apierr.KindNotFound, "Unit not found")
}
