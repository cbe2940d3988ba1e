package ladder

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/squad-ladder/internal/rating"
)

// querier is what *sql.DB and *sql.Tx have in common.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New creates a new ladder Store.
func New(db *sql.DB) Store {
	return &store{
		db: db,
	}
}

// WithTx runs fn inside a database transaction while holding the write lock.
func (s *store) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&txStore{tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Error("Failed to roll back transaction", "error", rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *store) GetGame(ctx context.Context, gameID int64) (*Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getGame(ctx, s.db, gameID)
}

func (s *store) GetPlayer(ctx context.Context, playerID int64) (*Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getPlayer(ctx, s.db, playerID)
}

func (s *store) GetTeam(ctx context.Context, teamID int64) (*Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx, `SELECT id, guild_id, name, rating, emoji, image_url, is_placeholder FROM teams WHERE id = ?`, teamID)
	team, err := scanTeam(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("team %d: %w", teamID, ErrNotFound)
	}
	return team, err
}

func (s *store) GetSquad(ctx context.Context, squadID int64) (*Squad, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sq := Squad{ID: squadID}
	err := s.db.QueryRowContext(ctx, `SELECT rating FROM squads WHERE id = ?`, squadID).Scan(&sq.Rating)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("squad %d: %w", squadID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT player_id FROM squad_members WHERE squad_id = ? ORDER BY player_id`, squadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		sq.PlayerIDs = append(sq.PlayerIDs, id)
	}
	return &sq, rows.Err()
}

func (s *store) ListTeams(ctx context.Context, guildID string) ([]Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listTeams(ctx, s.db, guildID)
}

func (s *store) ListTribes(ctx context.Context, guildID string) ([]Tribe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT t.id, t.name, COALESCE(tf.emoji, '')
		FROM tribes t
		LEFT JOIN tribe_flairs tf ON tf.tribe_id = t.id AND tf.guild_id = ?
		ORDER BY t.name`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tribes := []Tribe{}
	for rows.Next() {
		var t Tribe
		if err := rows.Scan(&t.ID, &t.Name, &t.Emoji); err != nil {
			return nil, err
		}
		tribes = append(tribes, t)
	}
	return tribes, rows.Err()
}

// RatingChange returns the delta a game applied to a player. ErrNotFound means
// the player did not take part in that game.
func (s *store) RatingChange(ctx context.Context, gameID, playerID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var delta int
	err := s.db.QueryRowContext(ctx, `SELECT rating_change FROM lineups WHERE game_id = ? AND player_id = ?`, gameID, playerID).Scan(&delta)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("player %d in game %d: %w", playerID, gameID, ErrNotFound)
	}
	return delta, err
}

// Record counts wins and losses over completed games. Team records only count
// games with more than one player per side, the only games that rate teams.
func (s *store) Record(ctx context.Context, kind rating.Kind, id int64) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var query string
	switch kind {
	case rating.KindPlayer:
		query = `
		SELECT COALESCE(SUM(gs.is_winner), 0), COALESCE(SUM(1 - gs.is_winner), 0)
		FROM lineups l
		JOIN game_sides gs ON gs.game_id = l.game_id AND gs.side = l.side
		JOIN games g ON g.id = l.game_id
		WHERE l.player_id = ? AND g.status = 'COMPLETED'`
	case rating.KindSquad:
		query = `
		SELECT COALESCE(SUM(gs.is_winner), 0), COALESCE(SUM(1 - gs.is_winner), 0)
		FROM game_sides gs
		JOIN games g ON g.id = gs.game_id
		WHERE gs.squad_id = ? AND g.status = 'COMPLETED'`
	case rating.KindTeam:
		query = `
		SELECT COALESCE(SUM(gs.is_winner), 0), COALESCE(SUM(1 - gs.is_winner), 0)
		FROM game_sides gs
		JOIN games g ON g.id = gs.game_id
		WHERE gs.team_id = ? AND g.status = 'COMPLETED' AND g.size > 1`
	default:
		return Record{}, fmt.Errorf("unknown entity kind %q", kind)
	}

	var rec Record
	if err := s.db.QueryRowContext(ctx, query, id).Scan(&rec.Wins, &rec.Losses); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func getGame(ctx context.Context, q querier, gameID int64) (*Game, error) {
	var g Game
	var name, winner sql.NullString
	var status string
	var createdAt int64
	var completedAt sql.NullInt64

	err := q.QueryRowContext(ctx, `
		SELECT id, guild_id, name, size, status, winner_side, created_at, completed_at
		FROM games WHERE id = ?`, gameID,
	).Scan(&g.ID, &g.GuildID, &name, &g.Size, &status, &winner, &createdAt, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("game %d: %w", gameID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	g.Name = name.String
	g.Status = GameStatus(status)
	g.CreatedAt = time.Unix(createdAt, 0)
	if winner.Valid {
		side := Side(winner.String)
		g.WinnerSide = &side
	}
	if completedAt.Valid {
		t := time.Unix(completedAt.Int64, 0)
		g.CompletedAt = &t
	}

	sideRows, err := q.QueryContext(ctx, `
		SELECT game_id, side, squad_id, team_id, squad_rating_change, team_rating_change, is_winner
		FROM game_sides WHERE game_id = ?
		ORDER BY CASE side WHEN 'home' THEN 0 ELSE 1 END`, gameID)
	if err != nil {
		return nil, err
	}
	for sideRows.Next() {
		var gs GameSide
		var side string
		if err := sideRows.Scan(&gs.GameID, &side, &gs.SquadID, &gs.TeamID, &gs.SquadRatingChange, &gs.TeamRatingChange, &gs.IsWinner); err != nil {
			sideRows.Close()
			return nil, err
		}
		gs.Side = Side(side)
		g.Sides = append(g.Sides, gs)
	}
	sideRows.Close()
	if err := sideRows.Err(); err != nil {
		return nil, err
	}

	lineupRows, err := q.QueryContext(ctx, `
		SELECT l.game_id, l.player_id, l.side, l.rating_change, l.tribe_id, COALESCE(t.name, ''), COALESCE(tf.emoji, '')
		FROM lineups l
		LEFT JOIN tribes t ON t.id = l.tribe_id
		LEFT JOIN tribe_flairs tf ON tf.tribe_id = l.tribe_id AND tf.guild_id = ?
		WHERE l.game_id = ?
		ORDER BY CASE l.side WHEN 'home' THEN 0 ELSE 1 END, l.rowid`, g.GuildID, gameID)
	if err != nil {
		return nil, err
	}
	defer lineupRows.Close()
	for lineupRows.Next() {
		var l Lineup
		var side string
		var tribeID sql.NullInt64
		if err := lineupRows.Scan(&l.GameID, &l.PlayerID, &side, &l.RatingChange, &tribeID, &l.Tribe, &l.TribeEmoji); err != nil {
			return nil, err
		}
		l.Side = Side(side)
		if tribeID.Valid {
			id := tribeID.Int64
			l.TribeID = &id
		}
		g.Lineups = append(g.Lineups, l)
	}
	return &g, lineupRows.Err()
}

func getPlayer(ctx context.Context, q querier, playerID int64) (*Player, error) {
	var p Player
	var nick sql.NullString
	var teamID sql.NullInt64
	err := q.QueryRowContext(ctx, `
		SELECT p.id, p.member_id, m.external_id, m.name, p.guild_id, p.nick, p.team_id, p.rating
		FROM players p JOIN members m ON m.id = p.member_id
		WHERE p.id = ?`, playerID,
	).Scan(&p.ID, &p.MemberID, &p.ExternalID, &p.Name, &p.GuildID, &nick, &teamID, &p.Rating)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("player %d: %w", playerID, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	p.Nick = nick.String
	if teamID.Valid {
		id := teamID.Int64
		p.TeamID = &id
	}
	return &p, nil
}

func listTeams(ctx context.Context, q querier, guildID string) ([]Team, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, guild_id, name, rating, emoji, image_url, is_placeholder
		FROM teams WHERE guild_id = ? ORDER BY name`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var teams []Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		teams = append(teams, *team)
	}
	return teams, rows.Err()
}

// scanTeam is a helper function to scan a single team row.
func scanTeam(scanner interface{ Scan(...any) error }) (*Team, error) {
	var t Team
	var imageURL sql.NullString
	if err := scanner.Scan(&t.ID, &t.GuildID, &t.Name, &t.Rating, &t.Emoji, &imageURL, &t.Placeholder); err != nil {
		return nil, err
	}
	if imageURL.Valid {
		t.ImageURL = &imageURL.String
	}
	return &t, nil
}

func tableFor(kind rating.Kind) (string, error) {
	switch kind {
	case rating.KindPlayer:
		return "players", nil
	case rating.KindSquad:
		return "squads", nil
	case rating.KindTeam:
		return "teams", nil
	}
	return "", fmt.Errorf("unknown entity kind %q", kind)
}

// inClause returns "?, ?, ?" for n arguments and the ids as query args.
func inClause(ids []int64) (string, []any) {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", "), args
}
