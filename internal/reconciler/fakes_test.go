package reconciler

import (
	"context"
	"errors"
	"net/http"
	"sync"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"

	"github.com/acmech/dataplane/internal/archive"
	"github.com/acmech/dataplane/internal/controlplane"
	"github.com/acmech/dataplane/internal/k8sclient"
	"github.com/acmech/dataplane/internal/render"
	"github.com/acmech/dataplane/internal/util/keygen"
)

// fakeControlPlane serves fixed documents and records status pushes.
type fakeControlPlane struct {
	mu sync.Mutex

	org      *controlplane.Organization
	state    *controlplane.InstallState
	clusters []controlplane.ClusterSpec

	GetOrganizationErr error
	GetInstallStateErr error
	GetClustersErr     error
	UpdateStatusFunc   func(id string, update controlplane.StatusUpdate) error

	GetOrganizationCalls int
	GetInstallStateCalls int
	GetClustersCalls     []string
	StatusCalls          []statusCall
}

type statusCall struct {
	ID     string
	Update controlplane.StatusUpdate
}

func newFakeControlPlane(clusters ...controlplane.ClusterSpec) *fakeControlPlane {
	return &fakeControlPlane{
		org:      &controlplane.Organization{ID: "org-1", Name: "Acme"},
		state:    testInstallState(),
		clusters: clusters,
	}
}

func (f *fakeControlPlane) GetOrganization(_ context.Context) (*controlplane.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetOrganizationCalls++
	if f.GetOrganizationErr != nil {
		return nil, f.GetOrganizationErr
	}
	return f.org, nil
}

func (f *fakeControlPlane) GetInstallState(_ context.Context) (*controlplane.InstallState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetInstallStateCalls++
	if f.GetInstallStateErr != nil {
		return nil, f.GetInstallStateErr
	}
	return f.state, nil
}

func (f *fakeControlPlane) GetClusters(_ context.Context, id string) ([]controlplane.ClusterSpec, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.GetClustersCalls = append(f.GetClustersCalls, id)
	if f.GetClustersErr != nil {
		return nil, f.GetClustersErr
	}
	if id == "" {
		return f.clusters, nil
	}
	for _, c := range f.clusters {
		if c.ID == id {
			return []controlplane.ClusterSpec{c}, nil
		}
	}
	return nil, nil
}

func (f *fakeControlPlane) UpdateClusterStatus(_ context.Context, id string, update controlplane.StatusUpdate) error {
	f.mu.Lock()
	f.StatusCalls = append(f.StatusCalls, statusCall{ID: id, Update: update})
	fn := f.UpdateStatusFunc
	f.mu.Unlock()

	if fn != nil {
		return fn(id, update)
	}
	return nil
}

// fakeStore keeps objects in memory and mimics get-then-create/patch.
type fakeStore struct {
	mu sync.Mutex

	objects map[string]*unstructured.Unstructured

	// ApplyErr fails applies of the given kind.
	ApplyErr map[string]error
	// GetErr fails reads of the given kind.
	GetErr    map[string]error
	DeleteErr error

	ApplyCalls  []k8sclient.Ref
	GetCalls    []k8sclient.Ref
	DeleteCalls []k8sclient.Ref
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		objects:  map[string]*unstructured.Unstructured{},
		ApplyErr: map[string]error{},
		GetErr:   map[string]error{},
	}
}

func objectKey(kind, namespace, name string) string {
	return kind + "/" + namespace + "/" + name
}

// seed stores an object as if it already existed in the cluster.
func (s *fakeStore) seed(kind, namespace, name string) {
	obj := &unstructured.Unstructured{}
	obj.SetKind(kind)
	obj.SetName(name)
	obj.SetNamespace(namespace)
	s.objects[objectKey(kind, namespace, name)] = obj
}

func (s *fakeStore) has(kind, namespace, name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.objects[objectKey(kind, namespace, name)]
	return ok
}

func (s *fakeStore) Apply(_ context.Context, obj *unstructured.Unstructured, defaultNamespace string) (*k8sclient.ApplyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if obj.GetNamespace() == "" && !k8sclient.IsClusterScoped(obj.GetKind()) {
		obj.SetNamespace(defaultNamespace)
	}
	ref := k8sclient.RefFor(obj)
	s.ApplyCalls = append(s.ApplyCalls, ref)

	if err := s.ApplyErr[ref.Kind]; err != nil {
		return nil, err
	}

	key := objectKey(ref.Kind, ref.Namespace, ref.Name)
	action := k8sclient.ActionCreated
	if _, ok := s.objects[key]; ok {
		action = k8sclient.ActionUpdated
	}
	s.objects[key] = obj.DeepCopy()

	return &k8sclient.ApplyResult{Action: action, Kind: ref.Kind, Name: ref.Name, Namespace: ref.Namespace}, nil
}

func (s *fakeStore) Get(_ context.Context, ref k8sclient.Ref) (*unstructured.Unstructured, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.GetCalls = append(s.GetCalls, ref)

	if err := s.GetErr[ref.Kind]; err != nil {
		return nil, err
	}
	obj, ok := s.objects[objectKey(ref.Kind, ref.Namespace, ref.Name)]
	if !ok {
		return nil, nil
	}
	return obj.DeepCopy(), nil
}

func (s *fakeStore) Delete(_ context.Context, ref k8sclient.Ref) (*k8sclient.DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.DeleteCalls = append(s.DeleteCalls, ref)

	if s.DeleteErr != nil {
		return nil, s.DeleteErr
	}
	key := objectKey(ref.Kind, ref.Namespace, ref.Name)
	if _, ok := s.objects[key]; !ok {
		return &k8sclient.DeleteResult{Action: k8sclient.ActionNotFound, Kind: ref.Kind, Name: ref.Name}, nil
	}
	delete(s.objects, key)
	return &k8sclient.DeleteResult{Action: k8sclient.ActionDeleted, Kind: ref.Kind, Name: ref.Name}, nil
}

// forbidden builds the store error the real client returns for a 403.
func forbidden(op, kind, name string) error {
	status := apierrors.NewForbidden(schema.GroupResource{Resource: kind}, name, errors.New("rbac"))
	return &k8sclient.StoreError{
		Op:         op,
		Kind:       kind,
		Name:       name,
		StatusCode: http.StatusForbidden,
		Reason:     status.ErrStatus.Reason,
		Err:        status,
	}
}

// fakeRenderer returns canned manifests.
type fakeRenderer struct {
	manifests []render.Manifest
	err       error
	inputs    []render.Input
}

func (r *fakeRenderer) Render(in render.Input) ([]render.Manifest, error) {
	r.inputs = append(r.inputs, in)
	return r.manifests, r.err
}

// fakeArchive records stored entries.
type fakeArchive struct {
	mu      sync.Mutex
	err     error
	entries []archive.Entry
}

func (a *fakeArchive) Store(_ context.Context, e archive.Entry) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
	if a.err != nil {
		return "", a.err
	}
	return e.ClusterSlug + "/" + e.RunID + ".yaml", nil
}

// countingCredentials wraps keygen and counts calls.
type countingCredentials struct {
	mu     sync.Mutex
	issued []*keygen.Credentials
}

func (c *countingCredentials) generate() (*keygen.Credentials, error) {
	creds, err := keygen.GenerateCredentials()
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.issued = append(c.issued, creds)
	c.mu.Unlock()
	return creds, nil
}

func testInstallState() *controlplane.InstallState {
	return &controlplane.InstallState{Raw: map[string]any{
		"install_stack": map[string]any{
			"outputs": map[string]any{"region": "us-east-1"},
		},
		"sandbox": map[string]any{
			"outputs": map[string]any{
				"karpenter": map[string]any{
					"cluster_name":    "acme-prod",
					"discovery_key":   "karpenter.sh/discovery",
					"discovery_value": "acme-prod",
					"instance_profile": map[string]any{
						"name": "acme-prod-karpenter",
					},
					"node_role_name": "acme-prod-node",
				},
				"nuon_dns": map[string]any{
					"public_domain": map[string]any{"name": "acme.example.com"},
				},
			},
		},
		"components": map[string]any{
			"certificate": map[string]any{
				"outputs": map[string]any{"arn": "arn:aws:acm:us-east-1:123456789012:certificate/abc"},
			},
		},
	}}
}

func singleNode(id, slug string) controlplane.ClusterSpec {
	return controlplane.ClusterSpec{
		ID:          id,
		Name:        slug,
		Slug:        slug,
		ClusterType: controlplane.ClusterTypeSingleNode,
		IngressType: controlplane.IngressNone,
		Status:      "active",
	}
}
