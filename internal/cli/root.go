// Package cli defines the cobra command tree for rentroll.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/evcraddock/rentroll/internal/logging"
)

var (
	flagFormat  string
	flagRefresh bool
	flagVerbose bool
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rr",
		Short:         "Manage buildings, units, tenants and lease agreements",
		Long:          "A client for the rentroll property management API. Owners manage buildings, units and agreements; tenants see their residences.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(flagVerbose || debugFromEnv())
		},
	}

	root.PersistentFlags().StringVar(&flagFormat, "format", "text", "output format (text|json)")
	root.PersistentFlags().BoolVar(&flagRefresh, "refresh", false, "ignore cached data and fetch from the server")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "log requests and cache activity to stderr")

	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newRegisterCmd(),
		newPasswdCmd(),
		newWhoamiCmd(),
		newStatsCmd(),
		newHomeCmd(),
		newBuildingsCmd(),
		newUnitsCmd(),
		newAgreementsCmd(),
		newTenantsCmd(),
		newCacheCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	return root
}

// isJSON returns true if the --format flag is set to json.
func isJSON() bool {
	return flagFormat == "json"
}
