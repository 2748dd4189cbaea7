// Package render turns a cluster's desired state into the ordered list of
// Kubernetes manifests that realize it.
//
// Manifests are Go text/templates embedded in the binary and executed with
// the Sprig function map. The order is fixed and significant: the namespace
// comes first, the Karpenter node class and node pool next, then the
// credential secret (only when credentials are supplied), the ClickHouse
// installation and keeper resources, the service, and the ingress last.
//
// Rendering is a pure function of its [Input]. Any failure aborts the whole
// set and is reported as an [*Error].
package render
