package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	fetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "board_fetches_total",
		Help: "Departure fetches against the VBB API, by result.",
	}, []string{"result"})

	fetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "board_fetch_duration_seconds",
		Help:    "Time spent fetching departures from the VBB API.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	})

	rotationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "board_rotations_total",
		Help: "Display rotations rendered.",
	})

	boardSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "board_departures",
		Help: "Departures on the current board.",
	})
)

func init() {
	prometheus.MustRegister(fetchesTotal, fetchDuration, rotationsTotal, boardSize)
}

// ObserveFetch records one fetch attempt and how long it took
func ObserveFetch(elapsed time.Duration, ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	fetchesTotal.WithLabelValues(result).Inc()
	fetchDuration.Observe(elapsed.Seconds())
}

// CountRotation records one rendered rotation
func CountRotation() {
	rotationsTotal.Inc()
}

// SetBoardSize records the size of the board after a successful fetch
func SetBoardSize(n int) {
	boardSize.Set(float64(n))
}

// Handler serves the default Prometheus registry
func Handler() http.Handler {
	return promhttp.Handler()
}
