package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/squad-ladder/internal/ladder"
	"github.com/mauv0809/squad-ladder/internal/metrics"
	"github.com/mauv0809/squad-ladder/internal/pubsub"
	"github.com/mauv0809/squad-ladder/internal/squad"
)

// New creates a game Service. publisher may be nil, in which case no events
// are sent.
func New(store ladder.Store, roster Roster, metrics metrics.Metrics, publisher pubsub.PubSubClient) *Service {
	return &Service{
		store:     store,
		roster:    roster,
		metrics:   metrics,
		publisher: publisher,
		now:       time.Now,
	}
}

// CreateGame registers the players of both sides, works out which teams the
// sides play for, resolves each side's squad and stores an open game.
func (s *Service) CreateGame(ctx context.Context, req CreateGameRequest) (*ladder.Game, error) {
	if err := validateLineup(req.Home, req.Away); err != nil {
		return nil, err
	}

	labels := make(map[string][]string, len(req.Home)+len(req.Away))
	for _, p := range append(append([]Participant{}, req.Home...), req.Away...) {
		l, err := s.roster.TeamLabels(ctx, p.ExternalID)
		if err != nil {
			s.metrics.IncRosterLookupFailed()
			return nil, fmt.Errorf("failed to look up teams of %s: %w", p.ExternalID, err)
		}
		labels[p.ExternalID] = l
	}

	playedAt := req.PlayedAt
	if playedAt.IsZero() {
		playedAt = s.now()
	}

	var game *ladder.Game
	var squadsCreated int
	err := s.store.WithTx(ctx, func(tx ladder.Tx) error {
		teams, err := tx.ListTeams(ctx, req.GuildID)
		if err != nil {
			return err
		}
		byName := make(map[string]int64, len(teams))
		for _, t := range teams {
			if !t.Placeholder {
				byName[strings.ToLower(t.Name)] = t.ID
			}
		}

		sides := map[ladder.Side][]Participant{ladder.SideHome: req.Home, ladder.SideAway: req.Away}
		playerTeams := make(map[ladder.Side][]*int64, 2)
		for side, participants := range sides {
			for _, p := range participants {
				playerTeams[side] = append(playerTeams[side], matchTeam(labels[p.ExternalID], byName))
			}
		}

		sideTeams, err := s.sideTeams(ctx, tx, req, playerTeams)
		if err != nil {
			return err
		}

		gameID, err := tx.CreateGame(ctx, req.GuildID, req.Name, len(req.Home), playedAt)
		if err != nil {
			return fmt.Errorf("failed to create game: %w", err)
		}

		for _, side := range []ladder.Side{ladder.SideHome, ladder.SideAway} {
			members := make([]squad.Member, 0, len(sides[side]))
			tribes := make([]*int64, 0, len(sides[side]))
			for i, p := range sides[side] {
				tribeID, err := lookupTribe(ctx, tx, p.Tribe)
				if err != nil {
					return err
				}
				tribes = append(tribes, tribeID)
				memberID, err := tx.UpsertMember(ctx, p.ExternalID, displayName(p))
				if err != nil {
					return fmt.Errorf("failed to upsert member %s: %w", p.ExternalID, err)
				}
				player, err := tx.UpsertPlayer(ctx, memberID, req.GuildID, p.Nick, playerTeams[side][i])
				if err != nil {
					return fmt.Errorf("failed to upsert player %s: %w", p.ExternalID, err)
				}
				members = append(members, squad.Member{PlayerID: player.ID, Rating: player.Rating})
			}

			res, err := squad.Resolve(ctx, tx, members)
			if err != nil {
				return err
			}
			if res.Created {
				squadsCreated++
			}
			if err := tx.AddGameSide(ctx, ladder.GameSide{GameID: gameID, Side: side, SquadID: res.SquadID, TeamID: sideTeams[side]}); err != nil {
				return fmt.Errorf("failed to add %s side: %w", side, err)
			}
			for i, m := range members {
				if err := tx.AddLineup(ctx, ladder.Lineup{GameID: gameID, PlayerID: m.PlayerID, Side: side, TribeID: tribes[i]}); err != nil {
					return fmt.Errorf("failed to add player %d to game: %w", m.PlayerID, err)
				}
			}
		}

		game, err = tx.GetGame(ctx, gameID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncGamesCreated()
	for range squadsCreated {
		s.metrics.IncSquadsCreated()
	}
	log.Info("Created game", "gameID", game.ID, "guildID", game.GuildID, "size", game.Size)
	s.publish(pubsub.EventGameCreated, gameEvent(game, nil))
	return game, nil
}

// sideTeams picks the team each side plays for. Both sides use their shared
// team only when every player maps to a team, each side is uniform and the
// two teams differ. Anything else is a Home vs Away game.
func (s *Service) sideTeams(ctx context.Context, tx ladder.Tx, req CreateGameRequest, playerTeams map[ladder.Side][]*int64) (map[ladder.Side]int64, error) {
	home, homeOK := uniformTeam(playerTeams[ladder.SideHome])
	away, awayOK := uniformTeam(playerTeams[ladder.SideAway])

	if hasUnassigned(playerTeams[ladder.SideHome]) || hasUnassigned(playerTeams[ladder.SideAway]) {
		if req.RequireTeams {
			return nil, ladder.ErrTeamsRequired
		}
		homeOK, awayOK = false, false
	}

	if homeOK && awayOK && home != away {
		return map[ladder.Side]int64{ladder.SideHome: home, ladder.SideAway: away}, nil
	}

	teams := make(map[ladder.Side]int64, 2)
	for _, side := range []ladder.Side{ladder.SideHome, ladder.SideAway} {
		t, err := tx.PlaceholderTeam(ctx, req.GuildID, side)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s team: %w", side, err)
		}
		teams[side] = t.ID
	}
	log.Debug("Using placeholder teams", "guildID", req.GuildID)
	return teams, nil
}

// lookupTribe maps a tribe name to its id. An empty name means no tribe.
func lookupTribe(ctx context.Context, tx ladder.Tx, name string) (*int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	tribe, err := tx.TribeByName(ctx, name)
	if errors.Is(err, ladder.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ladder.ErrUnknownTribe, name)
	}
	if err != nil {
		return nil, err
	}
	return &tribe.ID, nil
}

func validateLineup(home, away []Participant) error {
	if len(home) == 0 || len(away) == 0 {
		return fmt.Errorf("%w: both sides need players", ladder.ErrInvalidLineup)
	}
	if len(home) != len(away) {
		return fmt.Errorf("%w: sides have %d and %d players", ladder.ErrInvalidLineup, len(home), len(away))
	}
	seen := make(map[string]bool, len(home)+len(away))
	for _, p := range append(append([]Participant{}, home...), away...) {
		if p.ExternalID == "" {
			return fmt.Errorf("%w: player without id", ladder.ErrInvalidLineup)
		}
		if seen[p.ExternalID] {
			return fmt.Errorf("%w: %s listed more than once", ladder.ErrInvalidLineup, p.ExternalID)
		}
		seen[p.ExternalID] = true
	}
	return nil
}

// matchTeam maps labels to a registered team. Zero or several matches mean
// no team.
func matchTeam(labels []string, byName map[string]int64) *int64 {
	var found *int64
	for _, l := range labels {
		id, ok := byName[strings.ToLower(strings.TrimSpace(l))]
		if !ok {
			continue
		}
		if found != nil && *found != id {
			return nil
		}
		found = &id
	}
	return found
}

func uniformTeam(teams []*int64) (int64, bool) {
	if len(teams) == 0 || teams[0] == nil {
		return 0, false
	}
	for _, t := range teams[1:] {
		if t == nil || *t != *teams[0] {
			return 0, false
		}
	}
	return *teams[0], true
}

func hasUnassigned(teams []*int64) bool {
	for _, t := range teams {
		if t == nil {
			return true
		}
	}
	return false
}

func displayName(p Participant) string {
	if p.Name != "" {
		return p.Name
	}
	return p.ExternalID
}
