package reconciler

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/acmech/dataplane/internal/archive"
	"github.com/acmech/dataplane/internal/controlplane"
	"github.com/acmech/dataplane/internal/k8sclient"
	"github.com/acmech/dataplane/internal/render"
	"github.com/acmech/dataplane/internal/util/keygen"
	"github.com/acmech/dataplane/internal/util/naming"
)

const unknownKind = "Unknown"

// statusDocs are the decoded documents reported with a status push.
type statusDocs struct {
	chi     map[string]any
	chk     map[string]any
	ingress map[string]any
}

func (d *statusDocs) track(obj *unstructured.Unstructured) {
	switch obj.GetKind() {
	case k8sclient.KindCHI:
		d.chi = obj.Object
	case k8sclient.KindCHK:
		d.chk = obj.Object
	case k8sclient.KindIngress:
		d.ingress = obj.Object
	}
}

func (r *Reconciler) reconcileCluster(ctx context.Context, p *pass, cluster controlplane.ClusterSpec) Result {
	logger := log.FromContext(ctx).WithValues("cluster", cluster.ID, "namespace", cluster.Namespace())
	ctx = log.IntoContext(ctx, logger)

	var res Result
	if cluster.Status.IsBeingRemoved() {
		res = r.deleteCluster(ctx, cluster)
	} else {
		res = r.applyCluster(ctx, p, cluster)
	}

	r.metrics.RecordCluster(cluster.ID, string(res.Status), string(res.Action))
	logOutcome(logger, res)
	return res
}

func logOutcome(logger logr.Logger, res Result) {
	if res.Status == StatusFailed {
		logger.Error(res.Err, "cluster reconcile failed", "message", res.Message)
		return
	}
	logger.Info("cluster reconciled", "status", res.Status, "action", res.Action, "message", res.Message)
}

func (r *Reconciler) applyCluster(ctx context.Context, p *pass, cluster controlplane.ClusterSpec) Result {
	logger := log.FromContext(ctx)
	ns := cluster.Namespace()

	res := Result{
		ClusterID:   cluster.ID,
		ClusterName: cluster.Name,
		Action:      ActionNoop,
	}
	fail := func(err error) Result {
		res.Status = StatusFailed
		res.Message = fmt.Sprintf("Failed to reconcile ClickHouse cluster: %v", err)
		res.Err = err
		return res
	}

	exists, err := r.namespaceExists(ctx, ns)
	if err != nil {
		return fail(err)
	}
	action := ActionCreate
	if exists {
		action = ActionUpdate
	}
	logger.V(1).Info("namespace checked", "exists", exists, "action", action)

	creds, secret, err := r.credentialsFor(ctx, cluster, exists)
	if err != nil {
		return fail(err)
	}
	res.Secret = secret

	manifests, err := r.renderer.Render(render.Input{
		Cluster:     cluster,
		Org:         *p.org,
		Infra:       *p.infra,
		Credentials: creds,
	})
	if err != nil {
		return fail(err)
	}

	var docs statusDocs
	for _, m := range manifests {
		mr := r.applyManifest(ctx, m, ns, &docs)
		r.metrics.RecordManifest(mr.Kind, string(mr.Action))
		res.Manifests = append(res.Manifests, mr)
	}

	res.Action = action
	failed := res.FailedManifests()
	switch {
	case len(failed) > 0:
		res.Status = StatusFailed
		res.Message = fmt.Sprintf("Applied %d/%d manifests successfully", len(res.Manifests)-len(failed), len(res.Manifests))
		res.Err = failed[0].Err
	case r.opts.DryRun:
		res.Status = StatusSuccess
		res.Message = fmt.Sprintf("Would apply %d manifests (dry-run)", len(res.Manifests))
	default:
		res.Status = StatusSuccess
		res.Message = fmt.Sprintf("All %d manifests applied successfully", len(res.Manifests))
	}

	if r.opts.DryRun {
		return res
	}

	r.pushStatus(ctx, cluster, res.Status, failed, docs)
	r.archiveManifests(ctx, p, cluster, manifests)
	return res
}

// applyManifest decodes and applies one manifest. Decode failures and store
// errors become a failed result; they never stop the caller's loop.
func (r *Reconciler) applyManifest(ctx context.Context, m render.Manifest, ns string, docs *statusDocs) ManifestResult {
	obj, err := k8sclient.DecodeManifest(m.Data)
	if err != nil {
		return ManifestResult{
			Kind:      unknownKind,
			Name:      "unknown",
			Namespace: ns,
			Action:    ManifestFailed,
			Err:       fmt.Errorf("%s: %w", m.Template, err),
		}
	}
	docs.track(obj)

	mr := ManifestResult{
		Kind:      obj.GetKind(),
		Name:      obj.GetName(),
		Namespace: obj.GetNamespace(),
	}
	if mr.Namespace == "" && !k8sclient.IsClusterScoped(mr.Kind) {
		mr.Namespace = ns
	}

	if r.opts.DryRun {
		mr.Action = ManifestWouldApply
		return mr
	}

	applied, err := r.store.Apply(ctx, obj, ns)
	if err != nil {
		mr.Action = ManifestFailed
		mr.Err = err
		return mr
	}
	mr.Action = ManifestAction(applied.Action)
	mr.Namespace = applied.Namespace
	return mr
}

func (r *Reconciler) namespaceExists(ctx context.Context, ns string) (bool, error) {
	obj, err := r.store.Get(ctx, k8sclient.Ref{APIVersion: "v1", Kind: k8sclient.KindNamespace, Name: ns})
	if err != nil {
		return false, fmt.Errorf("check namespace %s: %w", ns, err)
	}
	return obj != nil, nil
}

// credentialsFor returns fresh credentials when the cluster type needs a
// secret and none exists yet. An existing secret is never regenerated, and a
// failed lookup is an error rather than a reason to generate.
func (r *Reconciler) credentialsFor(ctx context.Context, cluster controlplane.ClusterSpec, nsExists bool) (*keygen.Credentials, *SecretInfo, error) {
	if !cluster.ClusterType.NeedsCredentials() {
		return nil, nil, nil
	}

	info := &SecretInfo{Name: naming.CredentialSecret, Namespace: cluster.Namespace()}
	if nsExists {
		secret, err := r.store.Get(ctx, k8sclient.Ref{
			APIVersion: "v1",
			Kind:       k8sclient.KindSecret,
			Name:       naming.CredentialSecret,
			Namespace:  cluster.Namespace(),
		})
		if err != nil {
			return nil, nil, fmt.Errorf("check credential secret: %w", err)
		}
		if secret != nil {
			return nil, info, nil
		}
	}

	creds, err := r.genCreds()
	if err != nil {
		return nil, nil, fmt.Errorf("generate credentials: %w", err)
	}
	info.Created = true
	log.FromContext(ctx).Info("generated credentials", "secret", info.Name, "dryRun", r.opts.DryRun)
	return creds, info, nil
}

// archiveManifests stores the applied bundle without the credential secret.
func (r *Reconciler) archiveManifests(ctx context.Context, p *pass, cluster controlplane.ClusterSpec, manifests []render.Manifest) {
	if r.archive == nil {
		return
	}
	logger := log.FromContext(ctx)

	kept := make([]render.Manifest, 0, len(manifests))
	for _, m := range manifests {
		if m.Template != render.TemplateSecret {
			kept = append(kept, m)
		}
	}

	key, err := r.archive.Store(ctx, archive.Entry{
		OrgID:       p.org.ID,
		ClusterID:   cluster.ID,
		ClusterSlug: cluster.Namespace(),
		RunID:       p.runID,
		Data:        render.Join(kept),
	})
	if err != nil {
		logger.Error(err, "failed to archive manifests")
		return
	}
	logger.V(1).Info("archived manifests", "key", key)
}
