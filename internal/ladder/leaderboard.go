package ladder

import (
	"context"
	"time"

	"github.com/mauv0809/squad-ladder/internal/rating"
)

func (s *store) PlayersWithGamesSince(ctx context.Context, guildID string, since time.Time) ([]Standing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.standings(ctx, rating.KindPlayer, `
		SELECT p.id, COALESCE(NULLIF(p.nick, ''), m.name), p.rating, COUNT(l.game_id)
		FROM players p
		JOIN members m ON m.id = p.member_id
		JOIN lineups l ON l.player_id = p.id
		JOIN games g ON g.id = l.game_id
		WHERE p.guild_id = ? AND g.created_at > ?
		GROUP BY p.id
		ORDER BY p.rating DESC, p.id ASC`, guildID, since.Unix())
}

func (s *store) AllPlayers(ctx context.Context, guildID string) ([]Standing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.standings(ctx, rating.KindPlayer, `
		SELECT p.id, COALESCE(NULLIF(p.nick, ''), m.name), p.rating,
			(SELECT COUNT(*) FROM lineups l WHERE l.player_id = p.id)
		FROM players p
		JOIN members m ON m.id = p.member_id
		WHERE p.guild_id = ?
		ORDER BY p.rating DESC, p.id ASC`, guildID)
}

// SquadsWithGames names each squad after its members, joined by " & ".
func (s *store) SquadsWithGames(ctx context.Context, guildID string, since time.Time, minGames int) ([]Standing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.standings(ctx, rating.KindSquad, `
		SELECT sq.id,
			(SELECT GROUP_CONCAT(name, ' & ') FROM (
				SELECT COALESCE(NULLIF(p.nick, ''), m.name) AS name
				FROM squad_members sm
				JOIN players p ON p.id = sm.player_id
				JOIN members m ON m.id = p.member_id
				WHERE sm.squad_id = sq.id
				ORDER BY p.id)),
			sq.rating, COUNT(gs.game_id)
		FROM squads sq
		JOIN game_sides gs ON gs.squad_id = sq.id
		JOIN games g ON g.id = gs.game_id
		WHERE g.guild_id = ? AND g.created_at > ?
		GROUP BY sq.id
		HAVING COUNT(gs.game_id) >= ?
		ORDER BY sq.rating DESC, sq.id ASC`, guildID, since.Unix(), minGames)
}

func (s *store) TeamsWithGames(ctx context.Context, guildID string, since time.Time) ([]Standing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.standings(ctx, rating.KindTeam, `
		SELECT t.id, t.name, t.rating, COUNT(gs.game_id)
		FROM teams t
		JOIN game_sides gs ON gs.team_id = t.id
		JOIN games g ON g.id = gs.game_id
		WHERE t.guild_id = ? AND t.is_placeholder = 0 AND g.size > 1 AND g.created_at > ?
		GROUP BY t.id
		ORDER BY t.rating DESC, t.id ASC`, guildID, since.Unix())
}

func (s *store) standings(ctx context.Context, kind rating.Kind, query string, args ...any) ([]Standing, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	standings := []Standing{}
	for rows.Next() {
		st := Standing{Kind: kind}
		if err := rows.Scan(&st.ID, &st.Name, &st.Rating, &st.Games); err != nil {
			return nil, err
		}
		standings = append(standings, st)
	}
	return standings, rows.Err()
}
