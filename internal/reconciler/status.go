package reconciler

import (
	"context"
	"errors"
	"fmt"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/acmech/dataplane/internal/controlplane"
	"github.com/acmech/dataplane/internal/util/retry"
)

func statusFor(s Status) controlplane.Status {
	switch s {
	case StatusSuccess:
		return controlplane.StatusReady
	case StatusFailed:
		return controlplane.StatusError
	default:
		return controlplane.StatusPending
	}
}

// statusErrors formats failed manifests as "Kind/name: error".
func statusErrors(failed []ManifestResult) []string {
	if len(failed) == 0 {
		return nil
	}
	out := make([]string, 0, len(failed))
	for _, m := range failed {
		out = append(out, fmt.Sprintf("%s/%s: %v", m.Kind, m.Name, m.Err))
	}
	return out
}

// pushStatus reports the cluster outcome to the control plane. Transient
// failures are retried; any final failure is logged and counted only.
func (r *Reconciler) pushStatus(ctx context.Context, cluster controlplane.ClusterSpec, status Status, failed []ManifestResult, docs statusDocs) {
	logger := log.FromContext(ctx)

	update := controlplane.StatusUpdate{
		Status:  statusFor(status),
		Ingress: docs.ingress,
		CHI:     docs.chi,
		CHK:     docs.chk,
		Errors:  statusErrors(failed),
	}

	err := retry.Do(ctx, func(ctx context.Context) error {
		err := r.cp.UpdateClusterStatus(ctx, cluster.ID, update)
		var apiErr *controlplane.APIError
		if errors.As(err, &apiErr) && !apiErr.Temporary() {
			return retry.Fatal(err)
		}
		return err
	},
		retry.WithMaxAttempts(r.opts.StatusRetryAttempts),
		retry.WithInitialDelay(r.opts.StatusRetryDelay),
		retry.WithOnRetry(func(attempt int, err error) {
			logger.V(1).Info("retrying status update", "attempt", attempt, "error", err.Error())
		}),
	)
	if err != nil {
		r.metrics.RecordStatusPushFailure()
		logger.Error(err, "failed to send status update", "status", update.Status)
		return
	}
	logger.V(1).Info("status update sent", "status", update.Status, "errors", len(update.Errors))
}
