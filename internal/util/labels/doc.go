// Package labels provides consistent labeling for the Kubernetes resources of
// a ClickHouse cluster.
//
// Labels follow the app.kubernetes.io conventions plus acme.ch prefixed keys
// identifying the owning organization and cluster, built with a fluent builder.
package labels
