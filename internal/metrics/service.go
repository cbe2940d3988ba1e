package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		GamesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ladder_games_created_total",
			Help: "The total number of games created.",
		}),
		GamesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ladder_games_completed_total",
			Help: "The total number of games with a declared winner.",
		}),
		GamesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ladder_games_deleted_total",
			Help: "The total number of games deleted and reverted.",
		}),
		SquadsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ladder_squads_created_total",
			Help: "The total number of new squads formed.",
		}),
		RatingUpdateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ladder_rating_update_duration_seconds",
			Help:    "The duration of the declare winner transaction.",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		RosterLookupFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ladder_roster_lookup_failed_total",
			Help: "The total number of failed member or team label lookups.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ladder_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.GamesCreated,
		s.GamesCompleted,
		s.GamesDeleted,
		s.SquadsCreated,
		s.RatingUpdateDuration,
		s.RosterLookupFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncGamesCreated() {
	s.GamesCreated.Inc()
}

func (s *Service) IncGamesCompleted() {
	s.GamesCompleted.Inc()
}

func (s *Service) IncGamesDeleted() {
	s.GamesDeleted.Inc()
}

func (s *Service) IncSquadsCreated() {
	s.SquadsCreated.Inc()
}

func (s *Service) ObserveRatingUpdateDuration(duration float64) {
	s.RatingUpdateDuration.Observe(duration)
}

func (s *Service) IncRosterLookupFailed() {
	s.RosterLookupFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
