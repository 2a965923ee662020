package metric

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "userdir"

// Registry holds all application metrics.
type Registry struct {
	registry *prometheus.Registry

	// Record store metrics
	LiveRecords      *prometheus.GaugeVec
	RecordsInserted  *prometheus.CounterVec
	RecordsReleased  *prometheus.CounterVec
	SlotsCompacted   *prometheus.CounterVec
	ProtocolViolated *prometheus.CounterVec

	// Session metrics
	SessionsActive  prometheus.Gauge
	SessionsCreated prometheus.Counter
	SessionsExpired prometheus.Counter
	SessionsRevoked prometheus.Counter

	// Maintenance metrics
	Ticks      prometheus.Counter
	TickErrors prometheus.Counter
	LastDay    prometheus.Gauge
}

// NewRegistry creates a registry with every metric registered.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),

		LiveRecords: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records_live",
			Help:      "Number of live records per store.",
		}, []string{"store"}),
		RecordsInserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_inserted_total",
			Help:      "Records inserted per store.",
		}, []string{"store"}),
		RecordsReleased: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_released_total",
			Help:      "Records released per store and reason.",
		}, []string{"store", "reason"}),
		SlotsCompacted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slots_compacted_total",
			Help:      "Tombstoned slots reclaimed by compaction.",
		}, []string{"store"}),
		ProtocolViolated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "protocol_violations_total",
			Help:      "Rejected release, retag and borrow attempts by kind.",
		}, []string{"kind"}),

		SessionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of active sessions.",
		}),
		SessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Sessions created.",
		}),
		SessionsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_expired_total",
			Help:      "Sessions that crossed the idle threshold.",
		}),
		SessionsRevoked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_revoked_total",
			Help:      "Session entries tombstoned.",
		}),

		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "maintenance",
			Name:      "ticks_total",
			Help:      "Maintenance ticks run.",
		}),
		TickErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "maintenance",
			Name:      "tick_errors_total",
			Help:      "Maintenance ticks that reported at least one error.",
		}),
		LastDay: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "maintenance",
			Name:      "last_day",
			Help:      "Day number of the last maintenance tick.",
		}),
	}

	r.registry.MustRegister(
		r.LiveRecords,
		r.RecordsInserted,
		r.RecordsReleased,
		r.SlotsCompacted,
		r.ProtocolViolated,
		r.SessionsActive,
		r.SessionsCreated,
		r.SessionsExpired,
		r.SessionsRevoked,
		r.Ticks,
		r.TickErrors,
		r.LastDay,
	)

	return r
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteText writes all metrics in the Prometheus text format.
func (r *Registry) WriteText(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return err
	}

	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return err
		}
	}
	return nil
}
