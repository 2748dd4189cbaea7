package handlers

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/acmech/dataplane/internal/config"
	"github.com/acmech/dataplane/internal/controlplane"
	"github.com/acmech/dataplane/internal/k8sclient"
	"github.com/acmech/dataplane/internal/metrics"
	"github.com/acmech/dataplane/internal/reconciler"
)

// mockControlPlane serves canned documents.
type mockControlPlane struct {
	mu sync.Mutex

	org      *controlplane.Organization
	install  map[string]any
	state    *controlplane.InstallState
	clusters []controlplane.ClusterSpec
	err      error

	statusUpdates []controlplane.StatusUpdate
}

func (m *mockControlPlane) GetOrganization(_ context.Context) (*controlplane.Organization, error) {
	return m.org, m.err
}

func (m *mockControlPlane) GetInstall(_ context.Context) (map[string]any, error) {
	return m.install, m.err
}

func (m *mockControlPlane) GetInstallState(_ context.Context) (*controlplane.InstallState, error) {
	return m.state, m.err
}

func (m *mockControlPlane) GetClusters(_ context.Context, id string) ([]controlplane.ClusterSpec, error) {
	if m.err != nil {
		return nil, m.err
	}
	if id == "" {
		return m.clusters, nil
	}
	for _, c := range m.clusters {
		if c.ID == id {
			return []controlplane.ClusterSpec{c}, nil
		}
	}
	return nil, nil
}

func (m *mockControlPlane) UpdateClusterStatus(_ context.Context, _ string, update controlplane.StatusUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusUpdates = append(m.statusUpdates, update)
	return nil
}

// memStore is an in-memory reconciler.Store.
type memStore struct {
	mu      sync.Mutex
	objects map[string]bool
	applied int
	deleted int
}

func newMemStore() *memStore {
	return &memStore{objects: map[string]bool{}}
}

func memKey(kind, namespace, name string) string {
	return kind + "/" + namespace + "/" + name
}

func (s *memStore) Apply(_ context.Context, obj *unstructured.Unstructured, defaultNamespace string) (*k8sclient.ApplyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if obj.GetNamespace() == "" && !k8sclient.IsClusterScoped(obj.GetKind()) {
		obj.SetNamespace(defaultNamespace)
	}
	key := memKey(obj.GetKind(), obj.GetNamespace(), obj.GetName())
	action := k8sclient.ActionCreated
	if s.objects[key] {
		action = k8sclient.ActionUpdated
	}
	s.objects[key] = true
	s.applied++
	return &k8sclient.ApplyResult{Action: action, Kind: obj.GetKind(), Name: obj.GetName(), Namespace: obj.GetNamespace()}, nil
}

func (s *memStore) Get(_ context.Context, ref k8sclient.Ref) (*unstructured.Unstructured, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.objects[memKey(ref.Kind, ref.Namespace, ref.Name)] {
		return nil, nil
	}
	obj := &unstructured.Unstructured{}
	obj.SetKind(ref.Kind)
	obj.SetName(ref.Name)
	obj.SetNamespace(ref.Namespace)
	return obj, nil
}

func (s *memStore) Delete(_ context.Context, ref k8sclient.Ref) (*k8sclient.DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := memKey(ref.Kind, ref.Namespace, ref.Name)
	if !s.objects[key] {
		return &k8sclient.DeleteResult{Action: k8sclient.ActionNotFound}, nil
	}
	delete(s.objects, key)
	s.deleted++
	return &k8sclient.DeleteResult{Action: k8sclient.ActionDeleted}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		APIURL:   "https://cp.example.com",
		APIToken: "secret-token-1234",
		OrgID:    "org-1",
		Timeouts: &config.Timeouts{
			HTTP:                    time.Second,
			Kube:                    time.Second,
			StatusRetryMaxAttempts:  1,
			StatusRetryInitialDelay: time.Millisecond,
		},
	}
}

func testInstallState() *controlplane.InstallState {
	return &controlplane.InstallState{Raw: map[string]any{
		"install_stack": map[string]any{
			"outputs": map[string]any{"region": "us-east-1"},
		},
		"sandbox": map[string]any{
			"outputs": map[string]any{
				"karpenter": map[string]any{
					"discovery_value":  "acme-prod",
					"instance_profile": map[string]any{"name": "acme-prod-karpenter"},
				},
				"nuon_dns": map[string]any{
					"public_domain": map[string]any{"name": "acme.example.com"},
				},
			},
		},
		"components": map[string]any{
			"certificate": map[string]any{"outputs": map[string]any{"arn": "arn:aws:acm:us-east-1:1:certificate/x"}},
		},
	}}
}

func newMockControlPlane(clusters ...controlplane.ClusterSpec) *mockControlPlane {
	return &mockControlPlane{
		org:      &controlplane.Organization{ID: "org-1", Name: "Acme", Raw: map[string]any{"id": "org-1", "name": "Acme", "created_at": "2025-01-01"}},
		install:  map[string]any{"id": "inst-1"},
		state:    testInstallState(),
		clusters: clusters,
	}
}

func cluster(id, slug string, t controlplane.ClusterType) controlplane.ClusterSpec {
	return controlplane.ClusterSpec{
		ID:          id,
		Name:        slug,
		Slug:        slug,
		ClusterType: t,
		IngressType: controlplane.IngressNone,
		Status:      "active",
	}
}

type testEnv struct {
	cp    *mockControlPlane
	store *memStore
	out   *bytes.Buffer
}

// setupHandlers swaps every factory for a fake and restores them on cleanup.
func setupHandlers(t *testing.T, clusters ...controlplane.ClusterSpec) *testEnv {
	t.Helper()

	origLoadConfig := loadConfig
	origNewControlPlane := newControlPlane
	origNewStore := newStore
	origNewArchive := newArchive
	origNewRecorder := newRecorder
	origStdout := stdout
	origTTY := isInteractiveTTY

	t.Cleanup(func() {
		loadConfig = origLoadConfig
		newControlPlane = origNewControlPlane
		newStore = origNewStore
		newArchive = origNewArchive
		newRecorder = origNewRecorder
		stdout = origStdout
		isInteractiveTTY = origTTY
	})

	env := &testEnv{
		cp:    newMockControlPlane(clusters...),
		store: newMemStore(),
		out:   &bytes.Buffer{},
	}

	loadConfig = func(string) (*config.Config, error) { return testConfig(), nil }
	newControlPlane = func(*config.Config) ControlPlane { return env.cp }
	newStore = func(*config.Config) (reconciler.Store, error) { return env.store, nil }
	newArchive = func(context.Context, config.ArchiveConfig, time.Duration) (reconciler.Archiver, error) {
		return nil, errors.New("archive not expected")
	}
	newRecorder = func() (*metrics.Recorder, error) { return metrics.NewRecorder(prometheus.NewRegistry()) }
	stdout = env.out
	isInteractiveTTY = func() bool { return false }

	return env
}
