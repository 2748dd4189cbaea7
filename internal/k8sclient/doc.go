// Package k8sclient is the resource store the reconciler applies manifests
// through.
//
// [Store] dispatches by kind: Namespace, Service and Secret go through the
// typed core/v1 client, Ingress through networking/v1, and every other kind
// (Karpenter node classes and pools, ClickHouse installations and keepers)
// through the dynamic client, cluster-scoped or namespaced as appropriate.
//
// Apply is get-then-write: the object is read by identity, patched when it
// exists and created on 404. The sequence is not atomic; callers must not
// reconcile the same object concurrently. API failures are returned as
// [*StoreError] carrying the HTTP status and server message.
package k8sclient
