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
	"github.com/mauv0809/squad-ladder/internal/squad"
)

var _ Tx = (*txStore)(nil)

// SquadsWithAnyMember returns the squads containing any of the players, with
// their total member count and how many of those members are in playerIDs.
func (t *txStore) SquadsWithAnyMember(ctx context.Context, playerIDs []int64) ([]squad.Candidate, error) {
	if len(playerIDs) == 0 {
		return nil, nil
	}
	in, args := inClause(playerIDs)
	query := fmt.Sprintf(`
		SELECT s.id, s.rating, COUNT(*),
			SUM(CASE WHEN sm.player_id IN (%s) THEN 1 ELSE 0 END)
		FROM squads s
		JOIN squad_members sm ON sm.squad_id = s.id
		WHERE s.id IN (SELECT squad_id FROM squad_members WHERE player_id IN (%s))
		GROUP BY s.id
		ORDER BY s.id`, in, in)

	rows, err := t.tx.QueryContext(ctx, query, append(args, args...)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []squad.Candidate
	for rows.Next() {
		var c squad.Candidate
		if err := rows.Scan(&c.SquadID, &c.Rating, &c.MemberCount, &c.MatchedCount); err != nil {
			return nil, err
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// CreateSquad inserts a squad and its membership rows.
func (t *txStore) CreateSquad(ctx context.Context, r int, playerIDs []int64) (int64, error) {
	res, err := t.tx.ExecContext(ctx, `INSERT INTO squads (rating, created_at) VALUES (?, ?)`, r, time.Now().Unix())
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, p := range playerIDs {
		if _, err := t.tx.ExecContext(ctx, `INSERT INTO squad_members (squad_id, player_id) VALUES (?, ?)`, id, p); err != nil {
			return 0, fmt.Errorf("failed to add player %d to squad %d: %w", p, id, err)
		}
	}
	return id, nil
}

// UpsertMember creates the member on first sight and refreshes its name after.
func (t *txStore) UpsertMember(ctx context.Context, externalID, name string) (int64, error) {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO members (external_id, name) VALUES (?, ?)
		ON CONFLICT(external_id) DO UPDATE SET name = excluded.name`, externalID, name)
	if err != nil {
		return 0, err
	}
	var id int64
	err = t.tx.QueryRowContext(ctx, `SELECT id FROM members WHERE external_id = ?`, externalID).Scan(&id)
	return id, err
}

// UpsertPlayer creates the member's player in the guild, or refreshes its nick
// and team. The rating is never touched.
func (t *txStore) UpsertPlayer(ctx context.Context, memberID int64, guildID, nick string, teamID *int64) (*Player, error) {
	var nickArg any
	if nick != "" {
		nickArg = nick
	}
	var teamArg any
	if teamID != nil {
		teamArg = *teamID
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO players (member_id, guild_id, nick, team_id) VALUES (?, ?, ?, ?)
		ON CONFLICT(member_id, guild_id) DO UPDATE SET
			nick = excluded.nick,
			team_id = excluded.team_id`, memberID, guildID, nickArg, teamArg)
	if err != nil {
		return nil, err
	}
	var id int64
	if err := t.tx.QueryRowContext(ctx, `SELECT id FROM players WHERE member_id = ? AND guild_id = ?`, memberID, guildID).Scan(&id); err != nil {
		return nil, err
	}
	return getPlayer(ctx, t.tx, id)
}

// UpsertTeam registers a team or updates its emoji and image.
func (t *txStore) UpsertTeam(ctx context.Context, team Team) (*Team, error) {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO teams (guild_id, name, emoji, image_url, is_placeholder) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(guild_id, name) DO UPDATE SET
			emoji = excluded.emoji,
			image_url = excluded.image_url`,
		team.GuildID, team.Name, team.Emoji, team.ImageURL, team.Placeholder)
	if err != nil {
		return nil, err
	}
	return t.teamByName(ctx, team.GuildID, team.Name)
}

func (t *txStore) ListTeams(ctx context.Context, guildID string) ([]Team, error) {
	return listTeams(ctx, t.tx, guildID)
}

// PlaceholderTeam returns the guild's Home or Away team, creating it if needed.
func (t *txStore) PlaceholderTeam(ctx context.Context, guildID string, side Side) (*Team, error) {
	name, emoji := HomeTeamName, ":stadium:"
	if side == SideAway {
		name, emoji = AwayTeamName, ":airplane:"
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO teams (guild_id, name, emoji, is_placeholder) VALUES (?, ?, ?, 1)
		ON CONFLICT(guild_id, name) DO NOTHING`, guildID, name, emoji)
	if err != nil {
		return nil, err
	}
	return t.teamByName(ctx, guildID, name)
}

func (t *txStore) teamByName(ctx context.Context, guildID, name string) (*Team, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT id, guild_id, name, rating, emoji, image_url, is_placeholder
		FROM teams WHERE guild_id = ? AND name = ?`, guildID, name)
	team, err := scanTeam(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("team %q: %w", name, ErrNotFound)
	}
	return team, err
}

func (t *txStore) CreateGame(ctx context.Context, guildID, name string, size int, at time.Time) (int64, error) {
	var nameArg any
	if name != "" {
		nameArg = name
	}
	res, err := t.tx.ExecContext(ctx, `
		INSERT INTO games (guild_id, name, size, status, created_at) VALUES (?, ?, ?, ?, ?)`,
		guildID, nameArg, size, StatusOpen, at.Unix())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (t *txStore) AddGameSide(ctx context.Context, side GameSide) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO game_sides (game_id, side, squad_id, team_id) VALUES (?, ?, ?, ?)`,
		side.GameID, side.Side, side.SquadID, side.TeamID)
	return err
}

func (t *txStore) AddLineup(ctx context.Context, lineup Lineup) error {
	var tribeArg any
	if lineup.TribeID != nil {
		tribeArg = *lineup.TribeID
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO lineups (game_id, player_id, side, tribe_id) VALUES (?, ?, ?, ?)`,
		lineup.GameID, lineup.PlayerID, lineup.Side, tribeArg)
	return err
}

func (t *txStore) TribeByName(ctx context.Context, name string) (*Tribe, error) {
	var tribe Tribe
	err := t.tx.QueryRowContext(ctx, `SELECT id, name FROM tribes WHERE name = ?`, name).Scan(&tribe.ID, &tribe.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tribe %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &tribe, nil
}

// UpsertTribe returns the tribe, creating it on first use. The stored
// spelling of an existing tribe is kept.
func (t *txStore) UpsertTribe(ctx context.Context, name string) (*Tribe, error) {
	if _, err := t.tx.ExecContext(ctx, `INSERT INTO tribes (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, name); err != nil {
		return nil, err
	}
	return t.TribeByName(ctx, name)
}

func (t *txStore) SetTribeFlair(ctx context.Context, tribeID int64, guildID, emoji string) error {
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO tribe_flairs (tribe_id, guild_id, emoji) VALUES (?, ?, ?)
		ON CONFLICT(tribe_id, guild_id) DO UPDATE SET emoji = excluded.emoji`, tribeID, guildID, emoji)
	return err
}

func (t *txStore) GetGame(ctx context.Context, gameID int64) (*Game, error) {
	return getGame(ctx, t.tx, gameID)
}

func (t *txStore) Ratings(ctx context.Context, kind rating.Kind, ids []int64) (map[int64]int, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	ratings := make(map[int64]int, len(ids))
	if len(ids) == 0 {
		return ratings, nil
	}
	in, args := inClause(ids)
	rows, err := t.tx.QueryContext(ctx, fmt.Sprintf(`SELECT id, rating FROM %s WHERE id IN (%s)`, table, in), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var id int64
		var r int
		if err := rows.Scan(&id, &r); err != nil {
			return nil, err
		}
		ratings[id] = r
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, id := range ids {
		if _, ok := ratings[id]; !ok {
			return nil, fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
		}
	}
	return ratings, nil
}

func (t *txStore) AdjustRating(ctx context.Context, kind rating.Kind, id int64, delta int) error {
	table, err := tableFor(kind)
	if err != nil {
		return err
	}
	res, err := t.tx.ExecContext(ctx, fmt.Sprintf(`UPDATE %s SET rating = rating + ? WHERE id = ?`, table), delta, id)
	if err != nil {
		return err
	}
	return expectOneRow(res, fmt.Sprintf("%s %d", kind, id))
}

func (t *txStore) SetLineupRatingChange(ctx context.Context, gameID, playerID int64, delta int) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE lineups SET rating_change = ? WHERE game_id = ? AND player_id = ?`, delta, gameID, playerID)
	if err != nil {
		return err
	}
	return expectOneRow(res, fmt.Sprintf("player %d in game %d", playerID, gameID))
}

func (t *txStore) SetSideResult(ctx context.Context, gameID int64, side Side, isWinner bool, squadDelta, teamDelta int) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE game_sides SET is_winner = ?, squad_rating_change = ?, team_rating_change = ?
		WHERE game_id = ? AND side = ?`, isWinner, squadDelta, teamDelta, gameID, side)
	if err != nil {
		return err
	}
	return expectOneRow(res, fmt.Sprintf("%s side of game %d", side, gameID))
}

func (t *txStore) CompleteGame(ctx context.Context, gameID int64, winner Side, at time.Time) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE games SET status = ?, winner_side = ?, completed_at = ?
		WHERE id = ? AND status = ?`, StatusCompleted, winner, at.Unix(), gameID, StatusOpen)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("game %d: %w", gameID, ErrGameCompleted)
	}
	return nil
}

// DeleteGame removes the game row; lineups and sides go with it.
func (t *txStore) DeleteGame(ctx context.Context, gameID int64) error {
	res, err := t.tx.ExecContext(ctx, `DELETE FROM games WHERE id = ?`, gameID)
	if err != nil {
		return err
	}
	if err := expectOneRow(res, fmt.Sprintf("game %d", gameID)); err != nil {
		return err
	}
	log.Debug("Deleted game row", "gameID", gameID)
	return nil
}

func expectOneRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", strings.TrimSpace(what), ErrNotFound)
	}
	return nil
}
