// Package metrics counts form activity and exposes it in the Prometheus text
// exposition format at GET /metrics.
//
// Registry implements form.Observer, so every Form wired to it reports its
// events, clamps and unavailable outputs. Gauges are sampled from callbacks
// at scrape time (session count, connected WebSocket clients).
package metrics
