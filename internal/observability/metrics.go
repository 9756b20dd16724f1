package observability

import "github.com/prometheus/client_golang/prometheus"

// Fetch outcome labels.
const (
	FetchOutcomeOK          = "ok"
	FetchOutcomeUnavailable = "unavailable"
	FetchOutcomeFailed      = "failed"
)

var (
	providerFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "steppet",
		Subsystem: "provider",
		Name:      "fetches_total",
		Help:      "Step provider fetches by outcome.",
	}, []string{"outcome"})
	cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "steppet",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Cumulative-total cache hits.",
	})
	cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "steppet",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Cumulative-total cache misses.",
	})
	currentPhase = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "steppet",
		Subsystem: "progress",
		Name:      "current_phase",
		Help:      "Currently unlocked evolution phase.",
	})
	phaseTransitions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "steppet",
		Subsystem: "progress",
		Name:      "phase_transitions_total",
		Help:      "Earned phase transitions observed.",
	})
	milestonesCrossed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "steppet",
		Subsystem: "progress",
		Name:      "milestones_total",
		Help:      "Milestones crossed.",
	})
	walkingState = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "steppet",
		Subsystem: "walker",
		Name:      "walking",
		Help:      "1 while the walking animation runs, 0 otherwise.",
	})
)

func init() {
	prometheus.MustRegister(
		providerFetches,
		cacheHits,
		cacheMisses,
		currentPhase,
		phaseTransitions,
		milestonesCrossed,
		walkingState,
	)
}

// RecordProviderFetch counts one provider fetch with the given outcome.
func RecordProviderFetch(outcome string) {
	providerFetches.WithLabelValues(outcome).Inc()
}

// RecordCacheHit counts a cache read served without a fetch.
func RecordCacheHit() { cacheHits.Inc() }

// RecordCacheMiss counts a cache read that required a fetch.
func RecordCacheMiss() { cacheMisses.Inc() }

// SetCurrentPhase updates the unlocked phase gauge.
func SetCurrentPhase(phase int) { currentPhase.Set(float64(phase)) }

// RecordPhaseTransition counts one earned phase transition.
func RecordPhaseTransition() { phaseTransitions.Inc() }

// RecordMilestone counts one crossed milestone.
func RecordMilestone() { milestonesCrossed.Inc() }

// SetWalking updates the walking animation gauge.
func SetWalking(walking bool) {
	if walking {
		walkingState.Set(1)
		return
	}
	walkingState.Set(0)
}
