package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/squad-ladder/internal/ladder"
	"github.com/mauv0809/squad-ladder/internal/rating"
)

// Leaderboard ranks the guild's players, squads or teams by rating.
//
// Players with a game after Since rank first; with fewer than
// MinPlayerStandings of them every registered player is listed. Squads are
// ranked on game count alone, whatever Since says: MinSquadGames games, or any
// game when fewer than MinSquadStandings squads qualify. Teams have no fallback.
func (s *Service) Leaderboard(ctx context.Context, q LeaderboardQuery) ([]ladder.Standing, error) {
	switch q.Kind {
	case rating.KindPlayer:
		standings, err := s.store.PlayersWithGamesSince(ctx, q.GuildID, q.Since)
		if err != nil {
			return nil, err
		}
		if len(standings) >= MinPlayerStandings {
			return standings, nil
		}
		log.Debug("Too few active players, listing everyone", "guildID", q.GuildID, "active", len(standings))
		return s.store.AllPlayers(ctx, q.GuildID)

	case rating.KindSquad:
		standings, err := s.store.SquadsWithGames(ctx, q.GuildID, time.Time{}, MinSquadGames)
		if err != nil {
			return nil, err
		}
		if len(standings) >= MinSquadStandings {
			return standings, nil
		}
		log.Debug("Too few active squads, relaxing filter", "guildID", q.GuildID, "active", len(standings))
		return s.store.SquadsWithGames(ctx, q.GuildID, time.Time{}, 1)

	case rating.KindTeam:
		return s.store.TeamsWithGames(ctx, q.GuildID, q.Since)
	}
	return nil, fmt.Errorf("%w: %q", ladder.ErrInvalidKind, q.Kind)
}

// RatingChange returns the delta a game applied to a player. ok is false when
// the player did not play in the game.
func (s *Service) RatingChange(ctx context.Context, gameID, playerID int64) (delta int, ok bool, err error) {
	delta, err = s.store.RatingChange(ctx, gameID, playerID)
	if errors.Is(err, ladder.ErrNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return delta, true, nil
}

func (s *Service) GetGame(ctx context.Context, gameID int64) (*ladder.Game, error) {
	return s.store.GetGame(ctx, gameID)
}

// Record returns the wins and losses of a player, squad or team.
func (s *Service) Record(ctx context.Context, kind rating.Kind, id int64) (ladder.Record, error) {
	if !kind.Valid() {
		return ladder.Record{}, fmt.Errorf("%w: %q", ladder.ErrInvalidKind, kind)
	}
	return s.store.Record(ctx, kind, id)
}

// ListTeams returns the guild's teams by name, placeholders included.
func (s *Service) ListTeams(ctx context.Context, guildID string) ([]ladder.Team, error) {
	teams, err := s.store.ListTeams(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if teams == nil {
		teams = []ladder.Team{}
	}
	return teams, nil
}

// ListTribes returns every tribe with the guild's flair emoji.
func (s *Service) ListTribes(ctx context.Context, guildID string) ([]ladder.Tribe, error) {
	return s.store.ListTribes(ctx, guildID)
}

// SetTribeFlair registers the tribe if it is new and sets the emoji the guild
// shows next to it.
func (s *Service) SetTribeFlair(ctx context.Context, guildID, name, emoji string) (*ladder.Tribe, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ladder.ErrTribeNameRequired
	}
	var tribe *ladder.Tribe
	err := s.store.WithTx(ctx, func(tx ladder.Tx) error {
		var err error
		tribe, err = tx.UpsertTribe(ctx, name)
		if err != nil {
			return err
		}
		return tx.SetTribeFlair(ctx, tribe.ID, guildID, emoji)
	})
	if err != nil {
		return nil, err
	}
	tribe.Emoji = emoji
	log.Info("Set tribe flair", "guildID", guildID, "tribe", tribe.Name, "emoji", emoji)
	return tribe, nil
}

// RegisterTeam adds a team to the guild, or updates its emoji and image when
// it already exists. Home and Away are reserved for placeholder teams.
func (s *Service) RegisterTeam(ctx context.Context, guildID, name, emoji, imageURL string) (*ladder.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ladder.ErrTeamNameRequired
	}
	if strings.EqualFold(name, ladder.HomeTeamName) || strings.EqualFold(name, ladder.AwayTeamName) {
		return nil, fmt.Errorf("%w: %s", ladder.ErrReservedTeamName, name)
	}

	team := ladder.Team{GuildID: guildID, Name: name, Emoji: emoji}
	if imageURL != "" {
		team.ImageURL = &imageURL
	}

	var saved *ladder.Team
	err := s.store.WithTx(ctx, func(tx ladder.Tx) error {
		var err error
		saved, err = tx.UpsertTeam(ctx, team)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Info("Registered team", "guildID", guildID, "team", saved.Name, "teamID", saved.ID)
	return saved, nil
}
