package game

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/squad-ladder/internal/ladder"
	"github.com/mauv0809/squad-ladder/internal/pubsub"
	"github.com/mauv0809/squad-ladder/internal/rating"
)

// Settle computes the deltas of a result from the pre-game ratings of both
// sides. In a 1v1 game only the two players move. Otherwise each player is
// rated against the opposing side's average, and squads and teams are rated
// against each other.
func Settle(size int, winner ladder.Side, home, away SideRatings) Outcome {
	sides := map[ladder.Side]SideRatings{ladder.SideHome: home, ladder.SideAway: away}
	out := Outcome{
		Players: make(map[int64]int, len(home.Players)+len(away.Players)),
		Squads:  make(map[ladder.Side]int, 2),
		Teams:   make(map[ladder.Side]int, 2),
	}

	for side, own := range sides {
		opp := sides[side.Opponent()]
		won := side == winner

		if size == 1 {
			out.Players[own.Players[0].ID] = rating.Adjust(rating.KindPlayer, own.Players[0].Rating, opp.Players[0].Rating, won)
			out.Squads[side] = 0
			out.Teams[side] = 0
			continue
		}

		oppRatings := make([]int, len(opp.Players))
		for i, p := range opp.Players {
			oppRatings[i] = p.Rating
		}
		oppAverage := rating.Average(oppRatings)
		for _, p := range own.Players {
			out.Players[p.ID] = rating.Adjust(rating.KindPlayer, p.Rating, oppAverage, won)
		}
		out.Squads[side] = rating.Adjust(rating.KindSquad, own.Squad, opp.Squad, won)
		out.Teams[side] = rating.Adjust(rating.KindTeam, own.Team, opp.Team, won)
	}
	return out
}

// DeclareWinner completes an open game and applies its rating changes.
func (s *Service) DeclareWinner(ctx context.Context, gameID int64, winner ladder.Side) (*ladder.Game, error) {
	if !winner.Valid() {
		return nil, fmt.Errorf("%w: %q", ladder.ErrInvalidSide, winner)
	}
	start := time.Now()

	var game *ladder.Game
	err := s.store.WithTx(ctx, func(tx ladder.Tx) error {
		g, err := tx.GetGame(ctx, gameID)
		if err != nil {
			return err
		}
		if g.Status != ladder.StatusOpen {
			return fmt.Errorf("game %d: %w", gameID, ladder.ErrGameCompleted)
		}

		home, err := snapshot(ctx, tx, g, ladder.SideHome)
		if err != nil {
			return err
		}
		away, err := snapshot(ctx, tx, g, ladder.SideAway)
		if err != nil {
			return err
		}
		out := Settle(g.Size, winner, home, away)

		for _, l := range g.Lineups {
			delta := out.Players[l.PlayerID]
			if err := tx.SetLineupRatingChange(ctx, gameID, l.PlayerID, delta); err != nil {
				return err
			}
			if err := tx.AdjustRating(ctx, rating.KindPlayer, l.PlayerID, delta); err != nil {
				return err
			}
		}
		for _, gs := range g.Sides {
			squadDelta, teamDelta := out.Squads[gs.Side], out.Teams[gs.Side]
			if err := tx.SetSideResult(ctx, gameID, gs.Side, gs.Side == winner, squadDelta, teamDelta); err != nil {
				return err
			}
			if g.Size == 1 {
				continue
			}
			if err := tx.AdjustRating(ctx, rating.KindSquad, gs.SquadID, squadDelta); err != nil {
				return err
			}
			if err := tx.AdjustRating(ctx, rating.KindTeam, gs.TeamID, teamDelta); err != nil {
				return err
			}
		}

		if err := tx.CompleteGame(ctx, gameID, winner, s.now()); err != nil {
			return err
		}
		game, err = tx.GetGame(ctx, gameID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ObserveRatingUpdateDuration(time.Since(start).Seconds())
	s.metrics.IncGamesCompleted()
	log.Info("Declared winner", "gameID", gameID, "winner", winner)
	s.publish(pubsub.EventGameCompleted, gameEvent(game, appliedChanges(game, 1)))
	return game, nil
}

// DeleteGame reverts every delta the game applied and removes it. Open games
// carry no deltas and are simply removed.
func (s *Service) DeleteGame(ctx context.Context, gameID int64) error {
	var game *ladder.Game
	err := s.store.WithTx(ctx, func(tx ladder.Tx) error {
		g, err := tx.GetGame(ctx, gameID)
		if err != nil {
			return err
		}
		for _, l := range g.Lineups {
			if l.RatingChange == 0 {
				continue
			}
			if err := tx.AdjustRating(ctx, rating.KindPlayer, l.PlayerID, -l.RatingChange); err != nil {
				return err
			}
		}
		for _, gs := range g.Sides {
			if gs.SquadRatingChange != 0 {
				if err := tx.AdjustRating(ctx, rating.KindSquad, gs.SquadID, -gs.SquadRatingChange); err != nil {
					return err
				}
			}
			if gs.TeamRatingChange != 0 {
				if err := tx.AdjustRating(ctx, rating.KindTeam, gs.TeamID, -gs.TeamRatingChange); err != nil {
					return err
				}
			}
		}
		game = g
		return tx.DeleteGame(ctx, gameID)
	})
	if err != nil {
		return err
	}

	s.metrics.IncGamesDeleted()
	log.Info("Deleted game", "gameID", gameID, "status", game.Status)
	game.Status = ladder.StatusDeleted
	s.publish(pubsub.EventGameDeleted, gameEvent(game, appliedChanges(game, -1)))
	return nil
}

func snapshot(ctx context.Context, tx ladder.Tx, g *ladder.Game, side ladder.Side) (SideRatings, error) {
	gs := g.Side(side)
	lineups := g.PlayersOn(side)
	if gs == nil || len(lineups) == 0 {
		return SideRatings{}, fmt.Errorf("%w: game %d has no %s side", ladder.ErrInvalidLineup, g.ID, side)
	}

	ids := make([]int64, len(lineups))
	for i, l := range lineups {
		ids[i] = l.PlayerID
	}
	players, err := tx.Ratings(ctx, rating.KindPlayer, ids)
	if err != nil {
		return SideRatings{}, err
	}
	squads, err := tx.Ratings(ctx, rating.KindSquad, []int64{gs.SquadID})
	if err != nil {
		return SideRatings{}, err
	}
	teams, err := tx.Ratings(ctx, rating.KindTeam, []int64{gs.TeamID})
	if err != nil {
		return SideRatings{}, err
	}

	out := SideRatings{Squad: squads[gs.SquadID], Team: teams[gs.TeamID]}
	for _, id := range ids {
		out.Players = append(out.Players, PlayerRating{ID: id, Rating: players[id]})
	}
	return out, nil
}
