package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the game catalog.
type Metrics struct {
	GamesAdded        *prometheus.CounterVec
	GamesDeleted      prometheus.Counter
	StatusTransitions *prometheus.CounterVec
	ListDuration      prometheus.Histogram
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		GamesAdded: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gamelib_games_added_total",
			Help: "Games added to the collection by source (external or manual)",
		}, []string{"source"}),
		GamesDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "gamelib_games_deleted_total",
			Help: "Games deleted individually",
		}),
		StatusTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gamelib_game_status_transitions_total",
			Help: "Status changes by target status",
		}, []string{"status"}),
		ListDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gamelib_game_list_duration_seconds",
			Help:    "Duration of filtered game listings including the console join",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementAdded records a new game; source is "external" or "manual".
func (m *Metrics) IncrementAdded(source string) {
	m.GamesAdded.WithLabelValues(source).Inc()
}

func (m *Metrics) IncrementDeleted() {
	m.GamesDeleted.Inc()
}

func (m *Metrics) IncrementStatus(status string) {
	m.StatusTransitions.WithLabelValues(status).Inc()
}

// ObserveList records the duration of a List call.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveList(start time.Time) {
	m.ListDuration.Observe(time.Since(start).Seconds())
}
