package ladder

import (
	"database/sql"
	"sync"
	"time"

	"github.com/mauv0809/squad-ladder/internal/rating"
)

// store handles all database operations for the ladder.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// txStore is a Tx bound to one open database transaction.
type txStore struct {
	tx *sql.Tx
}

// Side is one of the two sides of a game.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SideHome {
		return SideAway
	}
	return SideHome
}

func (s Side) Valid() bool {
	return s == SideHome || s == SideAway
}

// GameStatus is where a game is in its lifecycle. Deleted games no longer have
// a row; StatusDeleted only appears in events.
type GameStatus string

const (
	StatusOpen      GameStatus = "OPEN"
	StatusCompleted GameStatus = "COMPLETED"
	StatusDeleted   GameStatus = "DELETED"
)

// Placeholder team names used when a side does not map to one registered team.
const (
	HomeTeamName = "Home"
	AwayTeamName = "Away"
)

// Member is a chat platform identity.
type Member struct {
	ID         int64  `json:"id"`
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
}

// Player is a member's presence in one guild. The rating lives here.
type Player struct {
	ID         int64  `json:"id"`
	MemberID   int64  `json:"member_id"`
	ExternalID string `json:"external_id"`
	Name       string `json:"name"`
	GuildID    string `json:"guild_id"`
	Nick       string `json:"nick,omitempty"`
	TeamID     *int64 `json:"team_id,omitempty"`
	Rating     int    `json:"rating"`
}

// DisplayName prefers the guild nick over the platform name.
func (p Player) DisplayName() string {
	if p.Nick != "" {
		return p.Nick
	}
	return p.Name
}

// Team is a persistent named group of players in a guild.
type Team struct {
	ID          int64   `json:"id"`
	GuildID     string  `json:"guild_id"`
	Name        string  `json:"name"`
	Rating      int     `json:"rating"`
	Emoji       string  `json:"emoji,omitempty"`
	ImageURL    *string `json:"image_url,omitempty"`
	Placeholder bool    `json:"placeholder"`
}

// Squad is an exact set of players that played one side together.
type Squad struct {
	ID        int64   `json:"id"`
	Rating    int     `json:"rating"`
	PlayerIDs []int64 `json:"player_ids"`
}

// Game is one match between two sides.
type Game struct {
	ID          int64      `json:"id"`
	GuildID     string     `json:"guild_id"`
	Name        string     `json:"name,omitempty"`
	Size        int        `json:"size"`
	Status      GameStatus `json:"status"`
	WinnerSide  *Side      `json:"winner_side,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Sides       []GameSide `json:"sides"`
	Lineups     []Lineup   `json:"lineups"`
}

// GameSide links a side of a game to its squad and team and records the
// squad and team deltas that game applied.
type GameSide struct {
	GameID            int64 `json:"game_id"`
	Side              Side  `json:"side"`
	SquadID           int64 `json:"squad_id"`
	TeamID            int64 `json:"team_id"`
	SquadRatingChange int   `json:"squad_rating_change"`
	TeamRatingChange  int   `json:"team_rating_change"`
	IsWinner          bool  `json:"is_winner"`
}

// Lineup links a player to a game and records the delta that game applied.
// TribeID is the tribe the player picked for the game, if any; Tribe and
// TribeEmoji are filled in on read, the emoji from the game guild's flair.
type Lineup struct {
	GameID       int64  `json:"game_id"`
	PlayerID     int64  `json:"player_id"`
	Side         Side   `json:"side"`
	RatingChange int    `json:"rating_change"`
	TribeID      *int64 `json:"tribe_id,omitempty"`
	Tribe        string `json:"tribe,omitempty"`
	TribeEmoji   string `json:"tribe_emoji,omitempty"`
}

// Tribe is a faction a player can pick for a game. Tribes are shared by every
// guild; Emoji is the flair of the guild it was read for.
type Tribe struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

// Participant references a rated entity of any kind.
type Participant struct {
	Kind rating.Kind `json:"kind"`
	ID   int64       `json:"id"`
}

// Standing is one row of a leaderboard.
type Standing struct {
	Kind   rating.Kind `json:"kind"`
	ID     int64       `json:"id"`
	Name   string      `json:"name"`
	Rating int         `json:"rating"`
	Games  int         `json:"games"`
}

// Record is the win/loss tally of an entity over completed games.
type Record struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
}
