package game

import (
	"github.com/charmbracelet/log"
	"github.com/mauv0809/squad-ladder/internal/ladder"
	"github.com/mauv0809/squad-ladder/internal/pubsub"
	"github.com/mauv0809/squad-ladder/internal/rating"
)

// publish sends an event after a committed transition. Failures are logged and
// never undo the transition.
func (s *Service) publish(topic pubsub.EventType, event pubsub.GameEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.SendMessage(topic, event); err != nil {
		log.Error("Failed to publish game event", "topic", topic, "gameID", event.GameID, "error", err)
	}
}

func gameEvent(g *ladder.Game, changes []pubsub.RatingDelta) pubsub.GameEvent {
	e := pubsub.GameEvent{
		GameID:  g.ID,
		GuildID: g.GuildID,
		Status:  string(g.Status),
		Changes: changes,
	}
	if g.WinnerSide != nil {
		e.WinnerSide = string(*g.WinnerSide)
	}
	return e
}

// appliedChanges lists the non-zero deltas stored on the game, multiplied by sign.
func appliedChanges(g *ladder.Game, sign int) []pubsub.RatingDelta {
	var changes []pubsub.RatingDelta
	add := func(kind rating.Kind, id int64, delta int) {
		if delta != 0 {
			changes = append(changes, pubsub.RatingDelta{Kind: string(kind), ID: id, Delta: sign * delta})
		}
	}
	for _, l := range g.Lineups {
		add(rating.KindPlayer, l.PlayerID, l.RatingChange)
	}
	for _, gs := range g.Sides {
		add(rating.KindSquad, gs.SquadID, gs.SquadRatingChange)
		add(rating.KindTeam, gs.TeamID, gs.TeamRatingChange)
	}
	return changes
}
