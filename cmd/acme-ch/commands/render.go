package commands

import (
	"github.com/spf13/cobra"

	"github.com/acmech/dataplane/cmd/acme-ch/handlers"
)

// Render returns the command that prints manifests without applying them.
func Render() *cobra.Command {
	var opts handlers.RenderOptions

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render Kubernetes manifests to stdout",
		Long: `Render the manifests a reconcile pass would apply and print them as a
multi-document YAML stream. Nothing is applied.

Credential secrets are rendered with placeholder values. When the
Kubernetes API is reachable and a cluster's secret already exists, the
secret is left out, as reconcile would do.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.ConfigPath = configPath(cmd)
			opts.Verbose = verbose(cmd)
			return handlers.Render(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.ClusterID, "cluster-id", "", "Render only this cluster")

	return cmd
}
