package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                    sync.Mutex
	gamesCreated          int
	gamesCompleted        int
	gamesDeleted          int
	squadsCreated         int
	ratingUpdateDurations []float64
	rosterLookupFailed    int
	startupTime           float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		ratingUpdateDurations: make([]float64, 0),
	}
}

func (m *Mock) IncGamesCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gamesCreated++
}

func (m *Mock) IncGamesCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gamesCompleted++
}

func (m *Mock) IncGamesDeleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gamesDeleted++
}

func (m *Mock) IncSquadsCreated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.squadsCreated++
}

func (m *Mock) ObserveRatingUpdateDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ratingUpdateDurations = append(m.ratingUpdateDurations, duration)
}

func (m *Mock) IncRosterLookupFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rosterLookupFailed++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// GamesCreated returns the number of times IncGamesCreated was called.
func (m *Mock) GamesCreated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gamesCreated
}

// GamesCompleted returns the number of times IncGamesCompleted was called.
func (m *Mock) GamesCompleted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gamesCompleted
}

// GamesDeleted returns the number of times IncGamesDeleted was called.
func (m *Mock) GamesDeleted() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gamesDeleted
}

// SquadsCreated returns the number of times IncSquadsCreated was called.
func (m *Mock) SquadsCreated() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.squadsCreated
}

// RatingUpdateDurations returns every observed duration.
func (m *Mock) RatingUpdateDurations() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.ratingUpdateDurations...)
}

func (m *Mock) RosterLookupFailed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rosterLookupFailed
}
