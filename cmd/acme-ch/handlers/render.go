package handlers

import (
	"context"
	"fmt"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/acmech/dataplane/internal/controlplane"
	"github.com/acmech/dataplane/internal/k8sclient"
	"github.com/acmech/dataplane/internal/reconciler"
	"github.com/acmech/dataplane/internal/render"
	"github.com/acmech/dataplane/internal/util/keygen"
	"github.com/acmech/dataplane/internal/util/naming"
)

// RenderOptions are the flags of the render command.
type RenderOptions struct {
	ConfigPath string
	ClusterID  string
	Verbose    bool
}

// Render prints the manifests a reconcile pass would apply. Nothing is
// applied. Placeholder credentials stand in for secrets that do not exist
// yet; when Kubernetes is reachable and the secret exists, it is omitted.
func Render(ctx context.Context, opts RenderOptions) error {
	logger := log.FromContext(ctx)

	cfg, err := loadValidConfig(opts.ConfigPath)
	if err != nil {
		return err
	}
	cp := newControlPlane(cfg)

	org, err := cp.GetOrganization(ctx)
	if err != nil {
		return err
	}
	state, err := cp.GetInstallState(ctx)
	if err != nil {
		return err
	}
	infra, err := state.Outputs()
	if err != nil {
		return fmt.Errorf("cannot render manifests: %w", err)
	}

	clusters, err := cp.GetClusters(ctx, opts.ClusterID)
	if err != nil {
		return err
	}
	if len(clusters) == 0 {
		logger.Info("No ClickHouse clusters found")
		return nil
	}

	store, err := newStore(cfg)
	if err != nil {
		logger.V(1).Info("kubernetes not available, using placeholders for all secrets", "error", err.Error())
		store = nil
	}

	renderer := render.New()
	for i, cluster := range clusters {
		creds := renderCredentials(ctx, store, cluster)

		manifests, err := renderer.Render(render.Input{
			Cluster:     cluster,
			Org:         *org,
			Infra:       *infra,
			Credentials: creds,
		})
		if err != nil {
			return fmt.Errorf("failed to render cluster %s: %w", cluster.Name, err)
		}

		if i > 0 {
			fmt.Fprintln(stdout)
		}
		fmt.Fprintf(stdout, "---\n# Cluster: %s (%s)\n---\n", cluster.Name, cluster.ClusterType)
		if _, err := stdout.Write(render.Join(manifests)); err != nil {
			return err
		}
	}

	logger.V(1).Info("rendered clusters", "count", len(clusters))
	return nil
}

// renderCredentials returns placeholders unless the credential secret is
// known to exist. Lookup errors count as "does not exist".
func renderCredentials(ctx context.Context, store reconciler.Store, cluster controlplane.ClusterSpec) *keygen.Credentials {
	if !cluster.ClusterType.NeedsCredentials() {
		return nil
	}
	if store != nil {
		secret, err := store.Get(ctx, k8sclient.Ref{
			APIVersion: "v1",
			Kind:       k8sclient.KindSecret,
			Name:       naming.CredentialSecret,
			Namespace:  cluster.Namespace(),
		})
		if err == nil && secret != nil {
			log.FromContext(ctx).V(1).Info("secret exists, omitted from output", "cluster", cluster.Name)
			return nil
		}
	}
	return keygen.PlaceholderCredentials()
}
