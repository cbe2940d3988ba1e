package ladder

import "github.com/mauv0809/squad-ladder/internal/rating"

// Side returns the row for side s, or nil if the game has none.
func (g *Game) Side(s Side) *GameSide {
	for i := range g.Sides {
		if g.Sides[i].Side == s {
			return &g.Sides[i]
		}
	}
	return nil
}

// PlayersOn returns the lineups of side s in the order they were stored.
func (g *Game) PlayersOn(s Side) []Lineup {
	var out []Lineup
	for _, l := range g.Lineups {
		if l.Side == s {
			out = append(out, l)
		}
	}
	return out
}

// SideParticipant is what a side counts as for results: the single player in a
// 1v1 game and the team otherwise.
func (g *Game) SideParticipant(s Side) (Participant, bool) {
	if g.Size == 1 {
		players := g.PlayersOn(s)
		if len(players) != 1 {
			return Participant{}, false
		}
		return Participant{Kind: rating.KindPlayer, ID: players[0].PlayerID}, true
	}
	side := g.Side(s)
	if side == nil {
		return Participant{}, false
	}
	return Participant{Kind: rating.KindTeam, ID: side.TeamID}, true
}

// Winner returns the winning participant of a completed game.
func (g *Game) Winner() (Participant, bool) {
	if g.WinnerSide == nil {
		return Participant{}, false
	}
	return g.SideParticipant(*g.WinnerSide)
}

// Loser returns the losing participant of a completed game.
func (g *Game) Loser() (Participant, bool) {
	if g.WinnerSide == nil {
		return Participant{}, false
	}
	return g.SideParticipant(g.WinnerSide.Opponent())
}
