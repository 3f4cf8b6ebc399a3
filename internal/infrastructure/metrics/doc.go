// Package metrics exports Prometheus counters and histograms for every
// facade operation and a gauge of the engine's live handles.
package metrics
