package reconciler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/acmech/dataplane/internal/controlplane"
	"github.com/acmech/dataplane/internal/metrics"
	"github.com/acmech/dataplane/internal/util/keygen"
)

const (
	defaultStatusRetryAttempts = 2
	defaultStatusRetryDelay    = time.Second
)

// Deps are the collaborators of a Reconciler. ControlPlane, Store and
// Renderer are required.
type Deps struct {
	ControlPlane ControlPlane
	Store        Store
	Renderer     Renderer

	// GenerateCredentials defaults to keygen.GenerateCredentials.
	GenerateCredentials CredentialFunc
	Metrics             *metrics.Recorder
	Archive             Archiver
}

// Options tune a Reconciler.
type Options struct {
	// DryRun renders and reports without touching the store, the control
	// plane status endpoint or the archive.
	DryRun bool

	StatusRetryAttempts int
	StatusRetryDelay    time.Duration
}

// RunOptions scope a single pass.
type RunOptions struct {
	// ClusterID limits the pass to one cluster.
	ClusterID string
	// FailFast stops at the first failed cluster and returns a *FailFastError.
	FailFast bool
}

// Reconciler runs reconcile passes. A Reconciler must not run concurrent
// passes for the same organization.
type Reconciler struct {
	cp       ControlPlane
	store    Store
	renderer Renderer
	genCreds CredentialFunc
	metrics  *metrics.Recorder
	archive  Archiver
	opts     Options
}

// New creates a Reconciler.
func New(deps Deps, opts Options) (*Reconciler, error) {
	switch {
	case deps.ControlPlane == nil:
		return nil, errors.New("reconciler: control plane client is required")
	case deps.Store == nil:
		return nil, errors.New("reconciler: store is required")
	case deps.Renderer == nil:
		return nil, errors.New("reconciler: renderer is required")
	}

	if deps.GenerateCredentials == nil {
		deps.GenerateCredentials = keygen.GenerateCredentials
	}
	if opts.StatusRetryAttempts < 1 {
		opts.StatusRetryAttempts = defaultStatusRetryAttempts
	}
	if opts.StatusRetryDelay <= 0 {
		opts.StatusRetryDelay = defaultStatusRetryDelay
	}

	return &Reconciler{
		cp:       deps.ControlPlane,
		store:    deps.Store,
		renderer: deps.Renderer,
		genCreds: deps.GenerateCredentials,
		metrics:  deps.Metrics,
		archive:  deps.Archive,
		opts:     opts,
	}, nil
}

// pass holds what is fetched once per Run.
type pass struct {
	runID string
	org   *controlplane.Organization
	infra *controlplane.InfraOutputs
}

// Run executes one reconcile pass and returns a result per cluster.
//
// Fetch failures produce a single failed result with an empty cluster id. An
// empty cluster list produces a single skipped result. The returned error is
// non-nil only in fail-fast mode or when ctx ends between clusters.
func (r *Reconciler) Run(ctx context.Context, opts RunOptions) ([]Result, error) {
	start := time.Now()
	p := &pass{runID: uuid.NewString()}

	logger := log.FromContext(ctx).WithValues("run", p.runID)
	ctx = log.IntoContext(ctx, logger)
	defer func() {
		r.metrics.ObservePass(time.Since(start))
	}()

	logger.Info("starting reconcile pass", "dryRun", r.opts.DryRun, "clusterID", opts.ClusterID)

	clusters, err := r.fetch(ctx, p, opts.ClusterID)
	if err != nil {
		logger.Error(err, "failed to fetch desired state")
		res := Result{
			Status:  StatusFailed,
			Action:  ActionNoop,
			Message: fmt.Sprintf("Failed to fetch data from API: %v", err),
			Err:     err,
		}
		r.metrics.RecordCluster("", string(res.Status), string(res.Action))
		if opts.FailFast {
			return []Result{res}, &FailFastError{Message: err.Error(), Err: err}
		}
		return []Result{res}, nil
	}

	if len(clusters) == 0 {
		logger.Info("no clusters to reconcile")
		return []Result{{
			Status:  StatusSkipped,
			Action:  ActionNoop,
			Message: "No ClickHouse clusters found",
		}}, nil
	}

	results := make([]Result, 0, len(clusters))
	for _, cluster := range clusters {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("reconcile pass interrupted: %w", err)
		}

		res := r.reconcileCluster(ctx, p, cluster)
		results = append(results, res)

		if opts.FailFast && res.Status == StatusFailed {
			return results, &FailFastError{ClusterID: res.ClusterID, Message: res.Message, Err: res.Err}
		}
	}

	s := Summarize(results)
	logger.Info("reconcile pass complete",
		"clusters", len(results), "success", s.Success, "failed", s.Failed, "skipped", s.Skipped,
		"duration", time.Since(start).Round(time.Millisecond).String())
	return results, nil
}

// fetch loads the organization, the install state and the cluster list, in
// that order. A missing region fails the fetch before clusters are listed.
func (r *Reconciler) fetch(ctx context.Context, p *pass, clusterID string) ([]controlplane.ClusterSpec, error) {
	org, err := r.cp.GetOrganization(ctx)
	if err != nil {
		return nil, err
	}
	p.org = org

	state, err := r.cp.GetInstallState(ctx)
	if err != nil {
		return nil, err
	}
	infra, err := state.Outputs()
	if err != nil {
		return nil, err
	}
	p.infra = infra

	return r.cp.GetClusters(ctx, clusterID)
}
