package reconciler

import (
	"fmt"
)

// Status is the outcome of reconciling one cluster.
type Status string

// Cluster outcomes.
const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Action is what the pass did, or tried to do, to a cluster.
type Action string

// Cluster actions. Create and update are decided from namespace presence and
// are informational; every manifest is applied the same way.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionNoop   Action = "noop"
)

// ManifestAction is the outcome of one manifest.
type ManifestAction string

// Manifest outcomes.
const (
	ManifestCreated    ManifestAction = "created"
	ManifestUpdated    ManifestAction = "updated"
	ManifestWouldApply ManifestAction = "would apply"
	ManifestFailed     ManifestAction = "failed"
)

// ManifestResult records one manifest of a cluster.
type ManifestResult struct {
	Kind      string
	Name      string
	Namespace string
	Action    ManifestAction
	Err       error
}

// SecretInfo describes the credential secret of a cluster.
// Created is true when credentials were generated during the pass.
type SecretInfo struct {
	Name      string
	Namespace string
	Created   bool
}

// Result records one cluster.
type Result struct {
	ClusterID   string
	ClusterName string
	Status      Status
	Action      Action
	Message     string
	Err         error
	Manifests   []ManifestResult
	Secret      *SecretInfo
}

// FailedManifests returns the manifests that failed.
func (r Result) FailedManifests() []ManifestResult {
	var failed []ManifestResult
	for _, m := range r.Manifests {
		if m.Action == ManifestFailed {
			failed = append(failed, m)
		}
	}
	return failed
}

// AnyFailed reports whether any result failed.
func AnyFailed(results []Result) bool {
	for _, r := range results {
		if r.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Summary counts results by status.
type Summary struct {
	Success int
	Failed  int
	Skipped int
}

// Summarize counts results by status.
func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Status {
		case StatusSuccess:
			s.Success++
		case StatusFailed:
			s.Failed++
		case StatusSkipped:
			s.Skipped++
		}
	}
	return s
}

// FailFastError aborts a pass after the first failed cluster.
type FailFastError struct {
	ClusterID string
	Message   string
	Err       error
}

func (e *FailFastError) Error() string {
	if e.ClusterID == "" {
		return fmt.Sprintf("reconciliation aborted: %s", e.Message)
	}
	return fmt.Sprintf("reconciliation failed for cluster %s: %s", e.ClusterID, e.Message)
}

func (e *FailFastError) Unwrap() error {
	return e.Err
}
