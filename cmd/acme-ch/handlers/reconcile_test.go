package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acmech/dataplane/internal/config"
	"github.com/acmech/dataplane/internal/controlplane"
	"github.com/acmech/dataplane/internal/reconciler"
)

func TestReconcile_Success(t *testing.T) {
	env := setupHandlers(t, cluster("c1", "db1", controlplane.ClusterTypeSingleNode))

	err := Reconcile(context.Background(), ReconcileOptions{})
	require.NoError(t, err)

	out := env.out.String()
	assert.Contains(t, out, "Reconciliation Results")
	assert.Contains(t, out, "✓ SUCCESS")
	assert.Contains(t, out, "All 6 manifests applied successfully")
	assert.Contains(t, out, "Secret created: clickhouse-cluster-pw in namespace db1")
	assert.Contains(t, out, "Success: 1 | Failed: 0 | Skipped: 0")
	assert.NotContains(t, out, "Manifest Details")

	assert.Equal(t, 6, env.store.applied)
	require.Len(t, env.cp.statusUpdates, 1)
	assert.Equal(t, controlplane.StatusReady, env.cp.statusUpdates[0].Status)
}

func TestReconcile_DryRun(t *testing.T) {
	env := setupHandlers(t, cluster("c1", "db1", controlplane.ClusterTypeSingleNode))

	err := Reconcile(context.Background(), ReconcileOptions{DryRun: true, Verbose: true})
	require.NoError(t, err)

	out := env.out.String()
	assert.Contains(t, out, "Mode: DRY-RUN")
	assert.Contains(t, out, "Would apply 6 manifests (dry-run)")
	assert.Contains(t, out, "Secret would be created: clickhouse-cluster-pw in namespace db1")
	assert.NotContains(t, out, "Secret created:")
	assert.Contains(t, out, "db1 - Manifest Details")
	assert.Contains(t, out, "would apply")
	assert.Zero(t, env.store.applied)
	assert.Empty(t, env.cp.statusUpdates)
}

func TestReconcile_FailedClusterReturnsError(t *testing.T) {
	env := setupHandlers(t,
		cluster("c1", "db1", "sharded"),
		cluster("c2", "db2", controlplane.ClusterTypeKeeper),
	)

	err := Reconcile(context.Background(), ReconcileOptions{})
	require.ErrorIs(t, err, ErrReconcileFailed)

	out := env.out.String()
	assert.Contains(t, out, "✗ FAILED")
	assert.Contains(t, out, "Success: 1 | Failed: 1 | Skipped: 0")
}

func TestReconcile_FailFast(t *testing.T) {
	setupHandlers(t,
		cluster("c1", "db1", "sharded"),
		cluster("c2", "db2", controlplane.ClusterTypeKeeper),
	)

	err := Reconcile(context.Background(), ReconcileOptions{FailFast: true})
	require.Error(t, err)

	var ffErr *reconciler.FailFastError
	require.ErrorAs(t, err, &ffErr)
	assert.Equal(t, "c1", ffErr.ClusterID)
}

func TestReconcile_ConfigError(t *testing.T) {
	setupHandlers(t)
	loadConfig = func(string) (*config.Config, error) { return &config.Config{}, nil }

	err := Reconcile(context.Background(), ReconcileOptions{})
	var missing *config.MissingError
	require.ErrorAs(t, err, &missing)
	assert.Len(t, missing.Vars, 3)
}

func TestReconcile_StoreUnavailable(t *testing.T) {
	setupHandlers(t)
	newStore = func(*config.Config) (reconciler.Store, error) {
		return nil, errors.New("no kubeconfig")
	}

	err := Reconcile(context.Background(), ReconcileOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to kubernetes")
}

func TestReconcile_PushesMetrics(t *testing.T) {
	var pushes atomic.Int32
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/metrics/job/") {
			pushes.Add(1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer gateway.Close()

	setupHandlers(t, cluster("c1", "db1", controlplane.ClusterTypeKeeper))
	loadConfig = func(string) (*config.Config, error) {
		cfg := testConfig()
		cfg.PushgatewayURL = gateway.URL
		return cfg, nil
	}

	require.NoError(t, Reconcile(context.Background(), ReconcileOptions{}))
	assert.Equal(t, int32(1), pushes.Load())
}

func TestReconcile_ArchiveFailureDoesNotAbort(t *testing.T) {
	setupHandlers(t, cluster("c1", "db1", controlplane.ClusterTypeKeeper))
	loadConfig = func(string) (*config.Config, error) {
		cfg := testConfig()
		cfg.Archive = config.ArchiveConfig{Bucket: "manifests", Region: "us-east-1"}
		return cfg, nil
	}

	var gotTimeout time.Duration
	newArchive = func(_ context.Context, _ config.ArchiveConfig, timeout time.Duration) (reconciler.Archiver, error) {
		gotTimeout = timeout
		return nil, errors.New("bucket unreachable")
	}

	require.NoError(t, Reconcile(context.Background(), ReconcileOptions{}))
	assert.Equal(t, time.Second, gotTimeout)
}

func TestPrintResults_FailedManifestDetails(t *testing.T) {
	env := setupHandlers(t)

	printResults(env.out, []reconciler.Result{
		{
			ClusterID:   "c1",
			ClusterName: "db1",
			Status:      reconciler.StatusFailed,
			Action:      reconciler.ActionCreate,
			Message:     "Applied 1/2 manifests successfully",
			Manifests: []reconciler.ManifestResult{
				{Kind: "Namespace", Name: "db1", Action: reconciler.ManifestCreated},
				{Kind: "Service", Name: "clickhouse-db1", Namespace: "db1", Action: reconciler.ManifestFailed, Err: errors.New("forbidden")},
			},
		},
		{ClusterID: "c2", ClusterName: "db2", Status: reconciler.StatusSkipped, Message: "ClickHouse cluster already deleted"},
	}, false, false)

	out := env.out.String()
	assert.Contains(t, out, "db1 - Manifest Details")
	assert.Contains(t, out, "✗")
	assert.Contains(t, out, "clickhouse-db1")
	assert.NotContains(t, out, "Error: forbidden", "errors only shown when verbose")
	assert.NotContains(t, out, "already deleted", "skipped clusters hidden unless verbose")
	assert.Contains(t, out, "Success: 0 | Failed: 1 | Skipped: 1")
}

func TestPrintResults_VerboseShowsErrors(t *testing.T) {
	env := setupHandlers(t)

	printResults(env.out, []reconciler.Result{
		{
			ClusterID:   "c1",
			ClusterName: "db1",
			Status:      reconciler.StatusFailed,
			Message:     "Applied 0/1 manifests successfully",
			Err:         errors.New("forbidden"),
			Manifests: []reconciler.ManifestResult{
				{Kind: "Service", Name: "clickhouse-db1", Action: reconciler.ManifestFailed, Err: errors.New("forbidden")},
			},
		},
		{ClusterID: "c2", ClusterName: "db2", Status: reconciler.StatusSkipped, Message: "ClickHouse cluster already deleted"},
	}, true, false)

	out := env.out.String()
	assert.Contains(t, out, "Error: forbidden")
	assert.Contains(t, out, "- SKIPPED")
	assert.Contains(t, out, "already deleted")
}

func TestPrintResults_NoClusters(t *testing.T) {
	env := setupHandlers(t)

	printResults(env.out, []reconciler.Result{
		{Status: reconciler.StatusSkipped, Action: reconciler.ActionNoop, Message: "No ClickHouse clusters found"},
	}, false, false)

	assert.Contains(t, env.out.String(), "No ClickHouse clusters found")
}
