// Package controlplane is the HTTP client for the control-plane API that owns
// the desired state of an organization's ClickHouse clusters.
//
// The client fetches the organization, its install state (the outputs of the
// infrastructure pipeline) and the cluster list, and posts reconcile outcomes
// back through [Client.UpdateClusterStatus]. Non-2xx responses and transport
// failures surface as [*APIError].
//
// The install state is an opaque nested document; [InstallState.Outputs]
// extracts the few paths manifests depend on into typed structs and fails
// with [ErrRegionMissing] when the mandatory region is absent.
package controlplane
