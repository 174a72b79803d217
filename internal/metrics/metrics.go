package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector exports search progress per algorithm. It satisfies search.Observer.
type Collector struct {
	iterations        *prometheus.CounterVec
	evaluations       *prometheus.CounterVec
	bestScore         *prometheus.GaugeVec
	iterationDuration *prometheus.HistogramVec
}

func NewCollector(registerer prometheus.Registerer) *Collector {
	factory := promauto.With(registerer)
	return &Collector{
		iterations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "examtabling_search_iterations_total",
			Help: "Completed generations or colony iterations",
		}, []string{"algorithm"}),
		evaluations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "examtabling_search_evaluations_total",
			Help: "Schedules scored by the evaluator",
		}, []string{"algorithm"}),
		bestScore: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "examtabling_search_best_score",
			Help: "Best score found so far",
		}, []string{"algorithm"}),
		iterationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "examtabling_search_iteration_duration_seconds",
			Help:    "Duration of one generation or colony iteration",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}, []string{"algorithm"}),
	}
}

func (collector *Collector) ObserveIteration(algorithm string, best float64, duration time.Duration) {
	collector.iterations.WithLabelValues(algorithm).Inc()
	collector.bestScore.WithLabelValues(algorithm).Set(best)
	collector.iterationDuration.WithLabelValues(algorithm).Observe(duration.Seconds())
}

func (collector *Collector) ObserveEvaluations(algorithm string, count int) {
	collector.evaluations.WithLabelValues(algorithm).Add(float64(count))
}
