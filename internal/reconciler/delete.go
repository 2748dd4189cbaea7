package reconciler

import (
	"context"
	"fmt"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/acmech/dataplane/internal/controlplane"
	"github.com/acmech/dataplane/internal/k8sclient"
)

// deleteCluster removes the cluster namespace, which cascades to everything
// inside it. The cluster-scoped node class and node pool are left in place.
func (r *Reconciler) deleteCluster(ctx context.Context, cluster controlplane.ClusterSpec) Result {
	ns := cluster.Namespace()
	res := Result{
		ClusterID:   cluster.ID,
		ClusterName: cluster.Name,
		Action:      ActionDelete,
	}

	exists, err := r.namespaceExists(ctx, ns)
	if err != nil {
		res.Status = StatusFailed
		res.Message = fmt.Sprintf("Failed to delete ClickHouse cluster: %v", err)
		res.Err = err
		return res
	}
	if !exists {
		res.Status = StatusSkipped
		res.Action = ActionNoop
		res.Message = "ClickHouse cluster already deleted"
		return res
	}

	if r.opts.DryRun {
		res.Status = StatusSuccess
		res.Message = "ClickHouse cluster would be deleted (dry-run)"
		return res
	}

	deleted, err := r.store.Delete(ctx, k8sclient.Ref{APIVersion: "v1", Kind: k8sclient.KindNamespace, Name: ns})
	if err != nil {
		res.Status = StatusFailed
		res.Message = fmt.Sprintf("Failed to delete ClickHouse cluster: %v", err)
		res.Err = err
		return res
	}
	log.FromContext(ctx).V(1).Info("namespace delete issued", "result", deleted.Action)

	res.Status = StatusSuccess
	res.Message = "ClickHouse cluster deleted successfully"
	return res
}
