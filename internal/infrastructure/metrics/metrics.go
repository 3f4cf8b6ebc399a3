package metrics

import (
	"errors"
	"time"

	"github.com/MGTheTrain/crypto-facade/internal/domain/crypto"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "crypto_facade"

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeInvalid = "invalid"
	OutcomeFailure = "failure"
)

// HandleCounter is implemented by engines that report their live handles
type HandleCounter interface {
	LiveHandles() int
}

// Metrics holds the collectors of the facade
type Metrics struct {
	registry   *prometheus.Registry
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewMetrics registers the operation collectors, plus a live handle gauge
// when engine implements HandleCounter, on a fresh registry.
func NewMetrics(engine crypto.CryptoEngine) (*Metrics, error) {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Total number of cryptographic operations by algorithm and outcome",
		}, []string{"operation", "algorithm", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Time spent in cryptographic operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "algorithm"}),
	}

	collectors := []prometheus.Collector{m.operations, m.duration}
	if counter, ok := engine.(HandleCounter); ok {
		collectors = append(collectors, prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "engine_live_handles",
			Help:        "Engine handles created and not yet released",
			ConstLabels: prometheus.Labels{"engine": engine.Name()},
		}, func() float64 { return float64(counter.LiveHandles()) }))
	}
	for _, c := range collectors {
		if err := m.registry.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Gatherer returns the registry for export
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Observe records one finished operation
func (m *Metrics) Observe(operation, algorithm string, started time.Time, err error) {
	m.record(operation, algorithm, started, outcome(err))
}

func (m *Metrics) record(operation, algorithm string, started time.Time, outcome string) {
	m.duration.WithLabelValues(operation, algorithm).Observe(time.Since(started).Seconds())
	m.operations.WithLabelValues(operation, algorithm, outcome).Inc()
}

// outcome separates requests the capability table refused from engine failures
func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, crypto.ErrUnsupportedScope),
		errors.Is(err, crypto.ErrUnsupportedParameter),
		errors.Is(err, crypto.ErrKeyClosed):
		return OutcomeInvalid
	default:
		return OutcomeFailure
	}
}
