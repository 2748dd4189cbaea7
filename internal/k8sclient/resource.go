package k8sclient

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	networkingv1 "k8s.io/api/networking/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/dynamic"
)

// resourceClient is the get/create/patch/delete surface for one kind in one
// namespace.
type resourceClient interface {
	get(ctx context.Context, name string) (map[string]any, error)
	create(ctx context.Context, obj *unstructured.Unstructured) error
	patch(ctx context.Context, name string, data []byte) error
	delete(ctx context.Context, name string) error
}

// typedAPI matches the generated client-go interfaces, e.g. NamespaceInterface.
type typedAPI[T any] interface {
	Get(ctx context.Context, name string, opts metav1.GetOptions) (*T, error)
	Create(ctx context.Context, obj *T, opts metav1.CreateOptions) (*T, error)
	Patch(ctx context.Context, name string, pt types.PatchType, data []byte, opts metav1.PatchOptions, subresources ...string) (*T, error)
	Delete(ctx context.Context, name string, opts metav1.DeleteOptions) error
}

// typedClient adapts a generated client; updates use strategic merge patch.
type typedClient[T any] struct {
	api typedAPI[T]
}

func (c typedClient[T]) get(ctx context.Context, name string) (map[string]any, error) {
	obj, err := c.api.Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, err
	}
	return runtime.DefaultUnstructuredConverter.ToUnstructured(obj)
}

func (c typedClient[T]) create(ctx context.Context, obj *unstructured.Unstructured) error {
	typed := new(T)
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(obj.Object, typed); err != nil {
		return fmt.Errorf("convert %s: %w", obj.GetKind(), err)
	}
	_, err := c.api.Create(ctx, typed, metav1.CreateOptions{})
	return err
}

func (c typedClient[T]) patch(ctx context.Context, name string, data []byte) error {
	_, err := c.api.Patch(ctx, name, types.StrategicMergePatchType, data, metav1.PatchOptions{})
	return err
}

func (c typedClient[T]) delete(ctx context.Context, name string) error {
	return c.api.Delete(ctx, name, metav1.DeleteOptions{})
}

// dynamicClient serves custom resources; updates use JSON merge patch since
// custom resources carry no strategic merge metadata.
type dynamicClient struct {
	api dynamic.ResourceInterface
}

func (c dynamicClient) get(ctx context.Context, name string) (map[string]any, error) {
	obj, err := c.api.Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return nil, err
	}
	return obj.Object, nil
}

func (c dynamicClient) create(ctx context.Context, obj *unstructured.Unstructured) error {
	_, err := c.api.Create(ctx, obj, metav1.CreateOptions{})
	return err
}

func (c dynamicClient) patch(ctx context.Context, name string, data []byte) error {
	_, err := c.api.Patch(ctx, name, types.MergePatchType, data, metav1.PatchOptions{})
	return err
}

func (c dynamicClient) delete(ctx context.Context, name string) error {
	return c.api.Delete(ctx, name, metav1.DeleteOptions{})
}

// resourceFor picks the client for ref. Namespace must already be resolved.
func (s *Store) resourceFor(ref Ref) (resourceClient, error) {
	info := lookupKind(ref.Kind)

	if info.typed {
		switch ref.Kind {
		case KindNamespace:
			return typedClient[corev1.Namespace]{api: s.clientset.CoreV1().Namespaces()}, nil
		case KindService:
			return typedClient[corev1.Service]{api: s.clientset.CoreV1().Services(ref.Namespace)}, nil
		case KindSecret:
			return typedClient[corev1.Secret]{api: s.clientset.CoreV1().Secrets(ref.Namespace)}, nil
		case KindIngress:
			return typedClient[networkingv1.Ingress]{api: s.clientset.NetworkingV1().Ingresses(ref.Namespace)}, nil
		}
	}

	gv, err := schema.ParseGroupVersion(ref.APIVersion)
	if err != nil {
		return nil, fmt.Errorf("parse apiVersion %q: %w", ref.APIVersion, err)
	}
	gvr := gv.WithResource(info.plural)

	if info.clusterScoped {
		return dynamicClient{api: s.dynamicClient.Resource(gvr)}, nil
	}
	return dynamicClient{api: s.dynamicClient.Resource(gvr).Namespace(ref.Namespace)}, nil
}
