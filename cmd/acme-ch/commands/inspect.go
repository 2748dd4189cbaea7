package commands

import (
	"github.com/spf13/cobra"

	"github.com/acmech/dataplane/cmd/acme-ch/handlers"
)

// GetClusters returns the command that lists desired clusters.
func GetClusters() *cobra.Command {
	var clusterID, output string

	cmd := &cobra.Command{
		Use:   "get-clusters",
		Short: "List ClickHouse clusters from the control plane",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.GetClusters(cmd.Context(), configPath(cmd), clusterID, output)
		},
	}

	cmd.Flags().StringVar(&clusterID, "cluster-id", "", "Fetch only this cluster")
	cmd.Flags().StringVarP(&output, "output", "o", handlers.OutputTable, "Output format: table or json")

	return cmd
}

// GetOrg returns the command that shows the organization.
func GetOrg() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "get-org",
		Short: "Show organization details from the control plane",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.GetOrg(cmd.Context(), configPath(cmd), output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", handlers.OutputTable, "Output format: table or json")

	return cmd
}

// DebugState returns the command that dumps the install state.
func DebugState() *cobra.Command {
	var withInstall bool

	cmd := &cobra.Command{
		Use:   "debug-state",
		Short: "Dump the install state and the outputs read from it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.DebugState(cmd.Context(), configPath(cmd), withInstall)
		},
	}

	cmd.Flags().BoolVar(&withInstall, "install", false, "Also dump the install document")
	return cmd
}

// ConfigInfo returns the command that prints the redacted configuration.
func ConfigInfo() *cobra.Command {
	return &cobra.Command{
		Use:   "config-info",
		Short: "Show the current configuration with secrets redacted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.ConfigInfo(configPath(cmd))
		},
	}
}
