package reconciler

import (
	"context"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"

	"github.com/acmech/dataplane/internal/archive"
	"github.com/acmech/dataplane/internal/controlplane"
	"github.com/acmech/dataplane/internal/k8sclient"
	"github.com/acmech/dataplane/internal/render"
	"github.com/acmech/dataplane/internal/util/keygen"
)

// ControlPlane is the subset of the control-plane client used by a pass.
type ControlPlane interface {
	GetOrganization(ctx context.Context) (*controlplane.Organization, error)
	GetInstallState(ctx context.Context) (*controlplane.InstallState, error)
	GetClusters(ctx context.Context, id string) ([]controlplane.ClusterSpec, error)
	UpdateClusterStatus(ctx context.Context, id string, update controlplane.StatusUpdate) error
}

// Store applies, reads and deletes Kubernetes objects.
type Store interface {
	Apply(ctx context.Context, obj *unstructured.Unstructured, defaultNamespace string) (*k8sclient.ApplyResult, error)
	Get(ctx context.Context, ref k8sclient.Ref) (*unstructured.Unstructured, error)
	Delete(ctx context.Context, ref k8sclient.Ref) (*k8sclient.DeleteResult, error)
}

// Renderer turns a cluster into ordered manifests.
type Renderer interface {
	Render(in render.Input) ([]render.Manifest, error)
}

// Archiver keeps a copy of each applied bundle.
type Archiver interface {
	Store(ctx context.Context, e archive.Entry) (string, error)
}

// CredentialFunc generates credentials for a new cluster.
type CredentialFunc func() (*keygen.Credentials, error)
