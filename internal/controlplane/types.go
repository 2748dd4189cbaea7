package controlplane

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ClusterType selects which installation resources a cluster gets.
type ClusterType string

// Cluster types.
const (
	ClusterTypeSingleNode ClusterType = "single_node"
	ClusterTypeCluster    ClusterType = "cluster"
	ClusterTypeKeeper     ClusterType = "keeper"
)

// NeedsCredentials reports whether the type runs ClickHouse servers that
// authenticate with the generated credential secret.
func (t ClusterType) NeedsCredentials() bool {
	return t == ClusterTypeSingleNode || t == ClusterTypeCluster
}

// IngressType selects how a cluster is exposed.
type IngressType string

// Ingress types. Tailnet exposes the cluster on the private overlay network.
const (
	IngressNone    IngressType = "none"
	IngressPublic  IngressType = "public"
	IngressTailnet IngressType = "tailnet"
)

// Lifecycle is the desired lifecycle of a cluster, lower-cased.
// An empty value means active.
type Lifecycle string

// Lifecycle values understood by the reconciler.
const (
	LifecycleActive   Lifecycle = "active"
	LifecycleDeleting Lifecycle = "deleting"
	LifecycleDeleted  Lifecycle = "deleted"
)

// UnmarshalJSON accepts a string or tolerates the control plane's status
// document (an object) and null, both of which carry no lifecycle value.
func (l *Lifecycle) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '"' {
		*l = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = Lifecycle(strings.ToLower(strings.TrimSpace(s)))
	return nil
}

// IsBeingRemoved reports whether the cluster should not exist.
func (l Lifecycle) IsBeingRemoved() bool {
	return l == LifecycleDeleted || l == LifecycleDeleting
}

// String returns the lifecycle, defaulting to active.
func (l Lifecycle) String() string {
	if l == "" {
		return string(LifecycleActive)
	}
	return string(l)
}

// ClusterSpec is the desired state of one ClickHouse cluster.
type ClusterSpec struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Slug        string      `json:"slug"`
	ClusterType ClusterType `json:"cluster_type"`
	IngressType IngressType `json:"ingress_type"`
	Status      Lifecycle   `json:"status"`
}

// Namespace is the Kubernetes namespace holding the cluster.
func (c ClusterSpec) Namespace() string {
	if c.Slug != "" {
		return c.Slug
	}
	return c.Name
}

// Organization is the tenant that owns the clusters.
type Organization struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Raw  map[string]any `json:"-"`
}

// Status is the cluster health reported back to the control plane.
type Status string

// Reported statuses. Pending is accepted by the API but not emitted by a
// normal reconcile pass.
const (
	StatusReady   Status = "ready"
	StatusError   Status = "error"
	StatusPending Status = "pending"
)

// StatusUpdate is the body of a status push. Documents are the rendered
// Ingress, ClickHouseInstallation and ClickHouseKeeperInstallation objects.
type StatusUpdate struct {
	Status  Status         `json:"status"`
	Ingress map[string]any `json:"ingress,omitempty"`
	CHI     map[string]any `json:"chi,omitempty"`
	CHK     map[string]any `json:"chk,omitempty"`
	Errors  []string       `json:"errors,omitempty"`
}
