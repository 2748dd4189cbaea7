// Package handlers implements the business logic for CLI commands.
//
// Commands in the commands package parse flags and delegate here. External
// dependencies are created through package-level factory variables so tests
// can replace them.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	ctrlmetrics "sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/acmech/dataplane/internal/archive"
	"github.com/acmech/dataplane/internal/config"
	"github.com/acmech/dataplane/internal/controlplane"
	"github.com/acmech/dataplane/internal/k8sclient"
	"github.com/acmech/dataplane/internal/metrics"
	"github.com/acmech/dataplane/internal/reconciler"
)

// ErrReconcileFailed is returned when at least one cluster failed.
var ErrReconcileFailed = errors.New("one or more clusters failed to reconcile")

// ControlPlane is the control-plane API used by the CLI.
type ControlPlane interface {
	reconciler.ControlPlane
	GetInstall(ctx context.Context) (map[string]any, error)
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfig reads the config file and environment.
	loadConfig = config.Load

	// newControlPlane creates the control-plane API client.
	newControlPlane = func(cfg *config.Config) ControlPlane {
		return controlplane.NewClient(cfg)
	}

	// newStore connects to Kubernetes.
	newStore = func(cfg *config.Config) (reconciler.Store, error) {
		restCfg, err := k8sclient.LoadRESTConfig(cfg.InCluster, cfg.Kubeconfig, cfg.Timeouts.Kube)
		if err != nil {
			return nil, err
		}
		return k8sclient.NewFromRESTConfig(restCfg)
	}

	// newArchive creates the S3 manifest archive.
	newArchive = func(ctx context.Context, cfg config.ArchiveConfig, timeout time.Duration) (reconciler.Archiver, error) {
		a, err := archive.New(ctx, cfg, timeout)
		if err != nil {
			return nil, err
		}
		return a, nil
	}

	// newRecorder registers reconcile metrics on the controller-runtime registry.
	newRecorder = func() (*metrics.Recorder, error) {
		return metrics.NewRecorder(ctrlmetrics.Registry)
	}

	// stdout receives command output; logs go to stderr.
	stdout io.Writer = os.Stdout
)

// loadValidConfig loads configuration and checks required settings.
func loadValidConfig(path string) (*config.Config, error) {
	cfg, err := loadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}
	if cfg.Timeouts == nil {
		cfg.Timeouts = config.LoadTimeouts()
	}
	return cfg, nil
}
