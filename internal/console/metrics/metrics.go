package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the console module.
type Metrics struct {
	ConsolesRegistered prometheus.Counter
	ConsolesDeleted    prometheus.Counter
	DeleteRefused      prometheus.Counter
	GamesCleared       prometheus.Counter
	DeleteDuration     prometheus.Histogram
}

// New creates console metrics on the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers console metrics on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ConsolesRegistered: factory.NewCounter(prometheus.CounterOpts{
			Name: "gamelib_consoles_registered_total",
			Help: "Total number of consoles registered",
		}),
		ConsolesDeleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "gamelib_consoles_deleted_total",
			Help: "Total number of consoles deleted",
		}),
		DeleteRefused: factory.NewCounter(prometheus.CounterOpts{
			Name: "gamelib_console_delete_refused_total",
			Help: "Console deletions refused because games were still attached",
		}),
		GamesCleared: factory.NewCounter(prometheus.CounterOpts{
			Name: "gamelib_console_games_cleared_total",
			Help: "Games removed through bulk console clears",
		}),
		DeleteDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gamelib_console_delete_duration_seconds",
			Help:    "Duration of console delete and clear operations, including the transaction",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementRegistered() {
	m.ConsolesRegistered.Inc()
}

func (m *Metrics) IncrementDeleted() {
	m.ConsolesDeleted.Inc()
}

func (m *Metrics) IncrementDeleteRefused() {
	m.DeleteRefused.Inc()
}

// AddGamesCleared records how many games a clear removed.
func (m *Metrics) AddGamesCleared(n int) {
	m.GamesCleared.Add(float64(n))
}

// ObserveDelete records the duration of a delete or clear.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveDelete(start time.Time) {
	m.DeleteDuration.Observe(time.Since(start).Seconds())
}
