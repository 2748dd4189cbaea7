// Package reconciler drives ClickHouse clusters toward the state held by the
// control plane.
//
// A pass fetches the organization, install state and cluster list once, then
// handles clusters one at a time:
//
//	deleting/deleted -> delete the namespace if it still exists
//	otherwise        -> render manifests, apply them in order, push status
//
// Namespace presence is the only existence test. Failures are returned as
// Result values; with fail-fast the first failed cluster aborts the pass.
package reconciler
