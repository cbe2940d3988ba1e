package metrics

// Metrics defines the interface for collecting application metrics.
type Metrics interface {
	IncGamesCreated()
	IncGamesCompleted()
	IncGamesDeleted()
	IncSquadsCreated()
	ObserveRatingUpdateDuration(duration float64)
	IncRosterLookupFailed()
	SetStartupTime(duration float64)
}
