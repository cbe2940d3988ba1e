package game

import (
	"time"

	"github.com/mauv0809/squad-ladder/internal/ladder"
	"github.com/mauv0809/squad-ladder/internal/metrics"
	"github.com/mauv0809/squad-ladder/internal/pubsub"
	"github.com/mauv0809/squad-ladder/internal/rating"
)

// Leaderboard thresholds. Below these counts the board falls back to a
// relaxed query so it is never near-empty.
const (
	MinPlayerStandings = 10
	MinSquadStandings  = 5
	MinSquadGames      = 2
)

// Service records games and keeps every rating in step with their results.
type Service struct {
	store     ladder.Store
	roster    Roster
	metrics   metrics.Metrics
	publisher pubsub.PubSubClient
	now       func() time.Time
}

// Participant is a member taking part in a game. Tribe optionally names the
// registered tribe the member picked for this game.
type Participant struct {
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	Nick       string `json:"nick,omitempty"`
	Tribe      string `json:"tribe,omitempty"`
}

// CreateGameRequest describes a game about to be played.
type CreateGameRequest struct {
	GuildID string
	Name    string
	Home    []Participant
	Away    []Participant
	// RequireTeams fails creation when a player cannot be matched to exactly
	// one registered team, instead of falling back to Home and Away.
	RequireTeams bool
	// PlayedAt dates the game. Zero means now.
	PlayedAt time.Time
}

// LeaderboardQuery selects a leaderboard.
type LeaderboardQuery struct {
	Kind    rating.Kind
	GuildID string
	Since   time.Time
}

// Outcome holds the deltas one result applies.
type Outcome struct {
	Players map[int64]int
	Squads  map[ladder.Side]int
	Teams   map[ladder.Side]int
}

// SideRatings is the pre-game rating snapshot of one side.
type SideRatings struct {
	Players []PlayerRating
	Squad   int
	Team    int
}

type PlayerRating struct {
	ID     int64
	Rating int
}
