package ladder

import (
	"context"
	"time"

	"github.com/mauv0809/squad-ladder/internal/rating"
	"github.com/mauv0809/squad-ladder/internal/squad"
)

// Store defines the interface for interacting with the ladder's data.
type Store interface {
	// WithTx runs fn as one unit of work. Writers are serialised and any error
	// returned by fn rolls back everything fn did.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	GetGame(ctx context.Context, gameID int64) (*Game, error)
	GetPlayer(ctx context.Context, playerID int64) (*Player, error)
	GetTeam(ctx context.Context, teamID int64) (*Team, error)
	GetSquad(ctx context.Context, squadID int64) (*Squad, error)
	ListTeams(ctx context.Context, guildID string) ([]Team, error)
	// ListTribes returns every tribe by name with the guild's flair emoji.
	ListTribes(ctx context.Context, guildID string) ([]Tribe, error)
	RatingChange(ctx context.Context, gameID, playerID int64) (int, error)
	Record(ctx context.Context, kind rating.Kind, id int64) (Record, error)

	// PlayersWithGamesSince ranks guild players with at least one game dated after since.
	PlayersWithGamesSince(ctx context.Context, guildID string, since time.Time) ([]Standing, error)
	// AllPlayers ranks every registered player of the guild.
	AllPlayers(ctx context.Context, guildID string) ([]Standing, error)
	// SquadsWithGames ranks squads with at least minGames games in the guild dated after since.
	SquadsWithGames(ctx context.Context, guildID string, since time.Time, minGames int) ([]Standing, error)
	// TeamsWithGames ranks registered teams with at least one team game (more
	// than one player per side) dated after since.
	TeamsWithGames(ctx context.Context, guildID string, since time.Time) ([]Standing, error)
}

// Tx is a transaction-scoped handle. It is only valid inside WithTx.
type Tx interface {
	squad.Store

	UpsertMember(ctx context.Context, externalID, name string) (int64, error)
	UpsertPlayer(ctx context.Context, memberID int64, guildID, nick string, teamID *int64) (*Player, error)
	UpsertTeam(ctx context.Context, team Team) (*Team, error)
	ListTeams(ctx context.Context, guildID string) ([]Team, error)
	PlaceholderTeam(ctx context.Context, guildID string, side Side) (*Team, error)

	// TribeByName looks a tribe up case-insensitively. Emoji is left empty.
	TribeByName(ctx context.Context, name string) (*Tribe, error)
	UpsertTribe(ctx context.Context, name string) (*Tribe, error)
	SetTribeFlair(ctx context.Context, tribeID int64, guildID, emoji string) error

	CreateGame(ctx context.Context, guildID, name string, size int, at time.Time) (int64, error)
	AddGameSide(ctx context.Context, side GameSide) error
	AddLineup(ctx context.Context, lineup Lineup) error
	GetGame(ctx context.Context, gameID int64) (*Game, error)

	// Ratings returns current ratings of the given entities keyed by id.
	Ratings(ctx context.Context, kind rating.Kind, ids []int64) (map[int64]int, error)
	// AdjustRating adds delta to the entity's stored rating.
	AdjustRating(ctx context.Context, kind rating.Kind, id int64, delta int) error
	SetLineupRatingChange(ctx context.Context, gameID, playerID int64, delta int) error
	SetSideResult(ctx context.Context, gameID int64, side Side, isWinner bool, squadDelta, teamDelta int) error
	// CompleteGame flips an open game to completed; a completed game yields ErrGameCompleted.
	CompleteGame(ctx context.Context, gameID int64, winner Side, at time.Time) error
	DeleteGame(ctx context.Context, gameID int64) error
}
