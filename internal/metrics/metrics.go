// Package metrics records reconcile pass outcomes as Prometheus metrics and
// pushes them to a Pushgateway at the end of a pass.
package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// JobName is the Pushgateway job the agent pushes under.
const JobName = "acme_ch_dataplane"

// Registry is what a Recorder registers on and pushes from.
type Registry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

// Recorder holds the reconcile metrics. A nil *Recorder records nothing.
type Recorder struct {
	registry Registry

	clusterResults     *prometheus.CounterVec
	manifestResults    *prometheus.CounterVec
	passDuration       prometheus.Histogram
	statusPushFailures prometheus.Counter
	lastPass           prometheus.Gauge
}

// NewRecorder creates the metrics and registers them on reg.
func NewRecorder(reg Registry) (*Recorder, error) {
	r := &Recorder{
		registry: reg,
		clusterResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "acme_ch",
				Subsystem: "reconcile",
				Name:      "cluster_results_total",
				Help:      "Cluster reconcile outcomes by status and action",
			},
			[]string{"cluster", "status", "action"},
		),
		manifestResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "acme_ch",
				Subsystem: "reconcile",
				Name:      "manifest_results_total",
				Help:      "Manifest apply outcomes by kind and action",
			},
			[]string{"kind", "action"},
		),
		passDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "acme_ch",
				Subsystem: "reconcile",
				Name:      "pass_duration_seconds",
				Help:      "Duration of a full reconcile pass in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~51s
			},
		),
		statusPushFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "acme_ch",
				Subsystem: "controlplane",
				Name:      "status_push_failures_total",
				Help:      "Status updates that could not be delivered to the control plane",
			},
		),
		lastPass: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "acme_ch",
				Subsystem: "reconcile",
				Name:      "last_pass_timestamp_seconds",
				Help:      "Unix time the last reconcile pass finished",
			},
		),
	}

	for _, c := range []prometheus.Collector{
		r.clusterResults, r.manifestResults, r.passDuration, r.statusPushFailures, r.lastPass,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}
	return r, nil
}

// RecordCluster counts one cluster result.
func (r *Recorder) RecordCluster(cluster, status, action string) {
	if r == nil {
		return
	}
	r.clusterResults.WithLabelValues(cluster, status, action).Inc()
}

// RecordManifest counts one manifest result.
func (r *Recorder) RecordManifest(kind, action string) {
	if r == nil {
		return
	}
	r.manifestResults.WithLabelValues(kind, action).Inc()
}

// RecordStatusPushFailure counts a swallowed status push failure.
func (r *Recorder) RecordStatusPushFailure() {
	if r == nil {
		return
	}
	r.statusPushFailures.Inc()
}

// ObservePass records the duration of a finished pass.
func (r *Recorder) ObservePass(d time.Duration) {
	if r == nil {
		return
	}
	r.passDuration.Observe(d.Seconds())
	r.lastPass.SetToCurrentTime()
}

// Push sends everything gathered from the registry to the Pushgateway at
// url, grouped by organization. A positive timeout bounds the request.
func (r *Recorder) Push(ctx context.Context, url, orgID string, timeout time.Duration) error {
	if r == nil || url == "" {
		return nil
	}
	pusher := push.New(url, JobName).Gatherer(r.registry)
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
		pusher = pusher.Client(&http.Client{Timeout: timeout})
	}
	if orgID != "" {
		pusher = pusher.Grouping("org_id", orgID)
	}
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
