package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
type Service struct {
	GamesCreated         prometheus.Counter
	GamesCompleted       prometheus.Counter
	GamesDeleted         prometheus.Counter
	SquadsCreated        prometheus.Counter
	RatingUpdateDuration prometheus.Histogram
	RosterLookupFailed   prometheus.Counter
	StartupTimeSeconds   prometheus.Gauge
}
