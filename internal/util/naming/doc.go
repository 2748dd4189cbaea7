// Package naming provides consistent names for the Kubernetes resources of a
// ClickHouse cluster.
//
// Every cluster lives in a namespace named after its slug. Cluster-scoped
// resources (node classes, node pools) carry a "ch-" prefix so they can be
// told apart from other workloads sharing the Kubernetes cluster.
package naming
