// Package telemetry exports cast and status counters to Prometheus.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/udisondev/spellchain/internal/game/cast"
	"github.com/udisondev/spellchain/internal/translog"
)

// Metrics counts resolved casts and transition records. Labels are bounded:
// impacts, element names, effect types and transition kinds, never actor IDs.
type Metrics struct {
	casts          *prometheus.CounterVec
	injectionHits  *prometheus.CounterVec
	chainLookups   *prometheus.CounterVec
	enhanced       prometheus.Counter
	castDamage     prometheus.Histogram
	transitions    *prometheus.CounterVec
	blocked        *prometheus.CounterVec
	arenaActors    prometheus.Gauge
	arenaStepTotal prometheus.Counter
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		casts: f.NewCounterVec(prometheus.CounterOpts{
			Name: "spellchain_casts_total",
			Help: "Resolved casts by impact and injected element",
		}, []string{"impact", "element"}),

		injectionHits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "spellchain_injection_effects_total",
			Help: "Injection effect table hits by effect type",
		}, []string{"effect"}),

		chainLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "spellchain_chain_lookups_total",
			Help: "Chain effect lookups by stage and result",
		}, []string{"stage", "result"}),

		enhanced: f.NewCounter(prometheus.CounterOpts{
			Name: "spellchain_enhanced_ultimates_total",
			Help: "Ultimates cast through the enhanced branch",
		}),

		castDamage: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "spellchain_cast_damage",
			Help:    "Outgoing damage per cast before target multipliers",
			Buckets: []float64{5, 10, 25, 50, 100, 200, 400},
		}),

		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "spellchain_transitions_total",
			Help: "Transition log records by kind",
		}, []string{"kind"}),

		blocked: f.NewCounterVec(prometheus.CounterOpts{
			Name: "spellchain_blocked_total",
			Help: "Blocked transitions by reason",
		}, []string{"reason"}),

		arenaActors: f.NewGauge(prometheus.GaugeOpts{
			Name: "spellchain_arena_actors",
			Help: "Actors currently in the arena",
		}),

		arenaStepTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "spellchain_arena_steps_total",
			Help: "Arena simulation steps",
		}),
	}
}

// OnCastEffectResolved implements cast.Sink.
func (m *Metrics) OnCastEffectResolved(exec *cast.Execution, injection cast.InjectionResolution, chain cast.ChainResolution) {
	m.casts.WithLabelValues(exec.Impact.String(), exec.InjectedElement.String()).Inc()
	m.castDamage.Observe(exec.Damage)

	if injection.Hit {
		m.injectionHits.WithLabelValues(injection.Entry.EffectType.String()).Inc()
	}
	if exec.HasChainKey {
		result := "miss"
		if chain.Hit {
			result = "hit"
		}
		m.chainLookups.WithLabelValues(exec.ChainKey.Stage.String(), result).Inc()
	}
	if exec.Enhanced {
		m.enhanced.Inc()
	}
}

// Record implements translog.Recorder.
func (m *Metrics) Record(rec translog.Record) {
	m.transitions.WithLabelValues(string(rec.Kind)).Inc()
	if rec.Kind == translog.KindBlocked {
		m.blocked.WithLabelValues(rec.Reason).Inc()
	}
}

// ObserveStep records one arena step with the current actor count.
func (m *Metrics) ObserveStep(actors int) {
	m.arenaStepTotal.Inc()
	m.arenaActors.Set(float64(actors))
}
