package commands

import (
	"github.com/spf13/cobra"

	"github.com/acmech/dataplane/cmd/acme-ch/handlers"
)

// Reconcile returns the command that runs a reconcile pass.
//
// Optional flags:
//
//	--cluster-id: Reconcile a single cluster
//	--dry-run: Render and report without applying anything
//	--fail-fast: Stop at the first failed cluster
func Reconcile() *cobra.Command {
	var opts handlers.ReconcileOptions

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile ClickHouse clusters with the control plane",
		Long: `Fetch the desired ClickHouse clusters and apply their Kubernetes resources.

Clusters marked deleting or deleted have their namespace removed. Every
other cluster gets its manifests applied in order; failures of single
manifests do not stop the rest. The outcome is reported back to the
control plane unless --dry-run is set.

Exits with status 1 if any cluster failed.

Examples:
  # Reconcile every cluster of the organization
  acme-ch reconcile

  # Show what would change for one cluster
  acme-ch reconcile --cluster-id abc123 --dry-run --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.ConfigPath = configPath(cmd)
			opts.Verbose = verbose(cmd)
			return handlers.Reconcile(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.ClusterID, "cluster-id", "", "Reconcile only this cluster")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Show what would be done without making changes")
	cmd.Flags().BoolVar(&opts.FailFast, "fail-fast", false, "Stop on the first failed cluster")

	return cmd
}
