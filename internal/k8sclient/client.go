package k8sclient

import (
	"fmt"
	"time"

	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
	ctrlconfig "sigs.k8s.io/controller-runtime/pkg/client/config"
)

// LoadRESTConfig resolves cluster credentials. In-cluster wins, then an
// explicit kubeconfig path, then the controller-runtime default lookup
// (KUBECONFIG, ~/.kube/config). Every request is bounded by timeout.
func LoadRESTConfig(inCluster bool, kubeconfig string, timeout time.Duration) (*rest.Config, error) {
	var (
		cfg *rest.Config
		err error
	)

	switch {
	case inCluster:
		cfg, err = rest.InClusterConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load in-cluster config: %w", err)
		}
	case kubeconfig != "":
		cfg, err = clientcmd.BuildConfigFromFlags("", kubeconfig)
		if err != nil {
			return nil, fmt.Errorf("failed to load kubeconfig %s: %w", kubeconfig, err)
		}
	default:
		cfg, err = ctrlconfig.GetConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to load kubeconfig: %w", err)
		}
	}

	if timeout > 0 {
		cfg.Timeout = timeout
	}
	return cfg, nil
}

// NewFromRESTConfig creates a Store talking to the cluster behind cfg.
func NewFromRESTConfig(cfg *rest.Config) (*Store, error) {
	clientset, err := kubernetes.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes clientset: %w", err)
	}

	dynamicClient, err := dynamic.NewForConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}

	return NewFromClients(clientset, dynamicClient), nil
}

// NewFromClients creates a Store from pre-configured clients.
// This is useful for testing with fake clients.
func NewFromClients(clientset kubernetes.Interface, dynamicClient dynamic.Interface) *Store {
	return &Store{
		clientset:     clientset,
		dynamicClient: dynamicClient,
	}
}
