// Package config holds the process-wide configuration of the data-plane agent.
//
// A [Config] is built once per process by [Load] from an optional YAML file
// and environment overrides, then passed explicitly to the control-plane
// client, the Kubernetes store and the reconciler. [Timeouts] bound every
// outbound call.
package config
