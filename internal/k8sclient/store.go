package k8sclient

import (
	"context"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"sigs.k8s.io/controller-runtime/pkg/log"
)

// DefaultNamespace is used for namespaced objects without a namespace.
const DefaultNamespace = "default"

// Action is the outcome of an Apply or Delete.
type Action string

// Store actions.
const (
	ActionCreated  Action = "created"
	ActionUpdated  Action = "updated"
	ActionDeleted  Action = "deleted"
	ActionNotFound Action = "not_found"
)

// Ref identifies one object.
type Ref struct {
	APIVersion string
	Kind       string
	Name       string
	Namespace  string
}

// RefFor returns the identity of obj.
func RefFor(obj *unstructured.Unstructured) Ref {
	return Ref{
		APIVersion: obj.GetAPIVersion(),
		Kind:       obj.GetKind(),
		Name:       obj.GetName(),
		Namespace:  obj.GetNamespace(),
	}
}

// ApplyResult describes an applied object.
type ApplyResult struct {
	Action    Action
	Kind      string
	Name      string
	Namespace string
}

// DeleteResult describes a delete.
type DeleteResult struct {
	Action    Action
	Kind      string
	Name      string
	Namespace string
}

// Store applies, reads and deletes objects.
type Store struct {
	clientset     kubernetes.Interface
	dynamicClient dynamic.Interface
}

// Apply creates obj or patches the live object with it. The namespace of a
// namespaced object comes from its metadata, then defaultNamespace, then
// "default"; obj is updated with the resolved namespace.
func (s *Store) Apply(ctx context.Context, obj *unstructured.Unstructured, defaultNamespace string) (*ApplyResult, error) {
	ref := resolve(RefFor(obj), defaultNamespace)
	if ref.Namespace != "" {
		obj.SetNamespace(ref.Namespace)
	}
	logger := log.FromContext(ctx).WithValues("kind", ref.Kind, "name", ref.Name, "namespace", ref.Namespace)

	rc, err := s.resourceFor(ref)
	if err != nil {
		return nil, newStoreError("apply", ref, err)
	}

	result := &ApplyResult{Kind: ref.Kind, Name: ref.Name, Namespace: ref.Namespace}

	_, err = rc.get(ctx, ref.Name)
	switch {
	case IsNotFound(err):
		if err := rc.create(ctx, obj); err != nil {
			return nil, newStoreError("create", ref, err)
		}
		result.Action = ActionCreated
	case err != nil:
		return nil, newStoreError("get", ref, err)
	default:
		data, err := obj.MarshalJSON()
		if err != nil {
			return nil, newStoreError("apply", ref, err)
		}
		if err := rc.patch(ctx, ref.Name, data); err != nil {
			return nil, newStoreError("patch", ref, err)
		}
		result.Action = ActionUpdated
	}

	logger.V(1).Info("applied object", "action", result.Action)
	return result, nil
}

// Get returns the live object, or nil without error when it does not exist.
func (s *Store) Get(ctx context.Context, ref Ref) (*unstructured.Unstructured, error) {
	ref = resolve(ref, "")

	rc, err := s.resourceFor(ref)
	if err != nil {
		return nil, newStoreError("get", ref, err)
	}

	content, err := rc.get(ctx, ref.Name)
	if IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, newStoreError("get", ref, err)
	}

	obj := &unstructured.Unstructured{Object: content}
	// Typed clients strip type metadata.
	if obj.GetKind() == "" {
		obj.SetKind(ref.Kind)
	}
	if obj.GetAPIVersion() == "" {
		obj.SetAPIVersion(ref.APIVersion)
	}
	return obj, nil
}

// Delete removes the object. A missing object is not an error.
func (s *Store) Delete(ctx context.Context, ref Ref) (*DeleteResult, error) {
	ref = resolve(ref, "")

	rc, err := s.resourceFor(ref)
	if err != nil {
		return nil, newStoreError("delete", ref, err)
	}

	result := &DeleteResult{Kind: ref.Kind, Name: ref.Name, Namespace: ref.Namespace}

	err = rc.delete(ctx, ref.Name)
	switch {
	case IsNotFound(err):
		result.Action = ActionNotFound
	case err != nil:
		return nil, newStoreError("delete", ref, err)
	default:
		result.Action = ActionDeleted
	}

	log.FromContext(ctx).V(1).Info("deleted object", "kind", ref.Kind, "name", ref.Name, "action", result.Action)
	return result, nil
}

// resolve fills the namespace and apiVersion defaults for ref.
func resolve(ref Ref, defaultNamespace string) Ref {
	if IsClusterScoped(ref.Kind) {
		ref.Namespace = ""
	} else if ref.Namespace == "" {
		ref.Namespace = defaultNamespace
		if ref.Namespace == "" {
			ref.Namespace = DefaultNamespace
		}
	}

	if ref.APIVersion == "" {
		ref.APIVersion = defaultAPIVersion(ref.Kind)
	}
	return ref
}

func defaultAPIVersion(kind string) string {
	switch kind {
	case KindNamespace, KindService, KindSecret:
		return "v1"
	case KindIngress:
		return "networking.k8s.io/v1"
	case KindEC2NodeClass:
		return "karpenter.k8s.aws/v1"
	case KindNodePool:
		return "karpenter.sh/v1"
	case KindCHI:
		return "clickhouse.altinity.com/v1"
	case KindCHK:
		return "clickhouse-keeper.altinity.com/v1"
	default:
		return ""
	}
}
