// Package commands defines the CLI command structure and flag bindings.
//
// Commands parse arguments and delegate execution to the handlers package.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/acmech/dataplane/cmd/acme-ch/handlers"
)

// Persistent flag names shared by all subcommands.
const (
	flagConfig  = "config"
	flagVerbose = "verbose"
)

// Root returns the root command for the acme-ch CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "acme-ch",
		Short: "Reconcile ClickHouse clusters from the ACME control plane",
		Long: `acme-ch is the data-plane agent for ACME ClickHouse.

It fetches the desired ClickHouse clusters of an organization from the
control plane and applies the matching Kubernetes resources (namespace,
Karpenter node class and pool, credentials, ClickHouse and Keeper
installations, service and ingress) in the cluster it runs in.

Configuration comes from an optional YAML file (--config) and the
ACME_CH_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			verbose, _ := cmd.Flags().GetBool(flagVerbose)
			handlers.SetupLogging(verbose)
		},
	}

	cmd.PersistentFlags().StringP(flagConfig, "c", "", "Path to configuration YAML file (optional)")
	cmd.PersistentFlags().BoolP(flagVerbose, "v", false, "Verbose output and debug logging")

	cmd.AddCommand(Reconcile())
	cmd.AddCommand(Render())
	cmd.AddCommand(GetClusters())
	cmd.AddCommand(GetOrg())
	cmd.AddCommand(DebugState())
	cmd.AddCommand(ConfigInfo())
	cmd.AddCommand(Version())

	return cmd
}

// configPath reads the inherited --config flag. Commands built outside the
// root have no such flag and get "".
func configPath(cmd *cobra.Command) string {
	path, _ := cmd.Flags().GetString(flagConfig)
	return path
}

func verbose(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool(flagVerbose)
	return v
}
