package labels

import "sort"

// Standard Kubernetes label keys.
const (
	KeyAppName   = "app.kubernetes.io/name"
	KeyInstance  = "app.kubernetes.io/instance"
	KeyComponent = "app.kubernetes.io/component"
	KeyManagedBy = "app.kubernetes.io/managed-by"
)

// Keys identifying the control-plane objects a resource belongs to.
const (
	// KeyOrg identifies which organization a resource belongs to
	KeyOrg = "acme.ch/org-id"

	// KeyCluster identifies which ClickHouse cluster a resource belongs to
	KeyCluster = "acme.ch/cluster-id"

	// KeyClusterType records the cluster type (single_node, cluster, keeper)
	KeyClusterType = "acme.ch/cluster-type"
)

const (
	AppNameClickHouse  = "clickhouse"
	ManagedByDataPlane = "acme-ch-dataplane"
)

// Component values
const (
	ComponentServer = "server"
	ComponentKeeper = "keeper"
)

// LabelBuilder provides a fluent interface for building resource labels.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a label builder for the cluster with the given slug.
func NewLabelBuilder(slug string) *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyAppName:   AppNameClickHouse,
			KeyInstance:  slug,
			KeyManagedBy: ManagedByDataPlane,
		},
	}
}

// WithOrg adds the organization label if orgID is non-empty.
func (lb *LabelBuilder) WithOrg(orgID string) *LabelBuilder {
	if orgID != "" {
		lb.labels[KeyOrg] = orgID
	}
	return lb
}

// WithCluster adds the cluster id label if clusterID is non-empty.
func (lb *LabelBuilder) WithCluster(clusterID string) *LabelBuilder {
	if clusterID != "" {
		lb.labels[KeyCluster] = clusterID
	}
	return lb
}

// WithClusterType adds the cluster type label.
func (lb *LabelBuilder) WithClusterType(clusterType string) *LabelBuilder {
	if clusterType != "" {
		lb.labels[KeyClusterType] = clusterType
	}
	return lb
}

// WithComponent adds a component label (e.g., "server", "keeper").
func (lb *LabelBuilder) WithComponent(component string) *LabelBuilder {
	lb.labels[KeyComponent] = component
	return lb
}

// Pair is a single label in a sorted label list.
type Pair struct {
	Key   string
	Value string
}

// Sorted returns the labels ordered by key, for deterministic template output.
func (lb *LabelBuilder) Sorted() []Pair {
	keys := make([]string, 0, len(lb.labels))
	for k := range lb.labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]Pair, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, Pair{Key: k, Value: lb.labels[k]})
	}
	return pairs
}
