package ladder_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/mauv0809/squad-ladder/internal/database"
	"github.com/mauv0809/squad-ladder/internal/ladder"
	"github.com/mauv0809/squad-ladder/internal/rating"
	"github.com/mauv0809/squad-ladder/internal/squad"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const guild = "G1"

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (ladder.Store, *sql.DB, func()) {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)

	return ladder.New(db), db, teardown
}

func addPlayer(t *testing.T, store ladder.Store, externalID, name string) *ladder.Player {
	t.Helper()
	var p *ladder.Player
	err := store.WithTx(context.Background(), func(tx ladder.Tx) error {
		memberID, err := tx.UpsertMember(context.Background(), externalID, name)
		if err != nil {
			return err
		}
		p, err = tx.UpsertPlayer(context.Background(), memberID, guild, "", nil)
		return err
	})
	require.NoError(t, err)
	return p
}

// addGame stores an open game between two single-player squads.
func addGame(t *testing.T, store ladder.Store, home, away *ladder.Player, at time.Time) int64 {
	t.Helper()
	ctx := context.Background()
	var gameID int64
	err := store.WithTx(ctx, func(tx ladder.Tx) error {
		var err error
		gameID, err = tx.CreateGame(ctx, guild, "", 1, at)
		if err != nil {
			return err
		}
		for _, s := range []struct {
			side   ladder.Side
			player *ladder.Player
		}{{ladder.SideHome, home}, {ladder.SideAway, away}} {
			res, err := squad.Resolve(ctx, tx, []squad.Member{{PlayerID: s.player.ID, Rating: s.player.Rating}})
			if err != nil {
				return err
			}
			team, err := tx.PlaceholderTeam(ctx, guild, s.side)
			if err != nil {
				return err
			}
			if err := tx.AddGameSide(ctx, ladder.GameSide{GameID: gameID, Side: s.side, SquadID: res.SquadID, TeamID: team.ID}); err != nil {
				return err
			}
			if err := tx.AddLineup(ctx, ladder.Lineup{GameID: gameID, PlayerID: s.player.ID, Side: s.side}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
	return gameID
}

func TestUpsertPlayer_RefreshesNickAndTeamButNotRating(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	p := addPlayer(t, store, "U1", "alice")
	assert.Equal(t, rating.Default, p.Rating)
	assert.Nil(t, p.TeamID)
	assert.Equal(t, "alice", p.DisplayName())

	_, err := db.Exec(`UPDATE players SET rating = 1234 WHERE id = ?`, p.ID)
	require.NoError(t, err)

	var updated *ladder.Player
	err = store.WithTx(ctx, func(tx ladder.Tx) error {
		team, err := tx.UpsertTeam(ctx, ladder.Team{GuildID: guild, Name: "Red"})
		if err != nil {
			return err
		}
		memberID, err := tx.UpsertMember(ctx, "U1", "alice2")
		if err != nil {
			return err
		}
		updated, err = tx.UpsertPlayer(ctx, memberID, guild, "Ali", &team.ID)
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, p.ID, updated.ID)
	assert.Equal(t, 1234, updated.Rating)
	assert.Equal(t, "alice2", updated.Name)
	assert.Equal(t, "Ali", updated.DisplayName())
	require.NotNil(t, updated.TeamID)
}

func TestUpsertTeam_NameIsCaseInsensitive(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	var first, second *ladder.Team
	err := store.WithTx(ctx, func(tx ladder.Tx) error {
		var err error
		if first, err = tx.UpsertTeam(ctx, ladder.Team{GuildID: guild, Name: "Lions", Emoji: ":lion:"}); err != nil {
			return err
		}
		second, err = tx.UpsertTeam(ctx, ladder.Team{GuildID: guild, Name: "LIONS", Emoji: ":cat:"})
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, ":cat:", second.Emoji)
	assert.Equal(t, "Lions", second.Name)

	teams, err := store.ListTeams(ctx, guild)
	require.NoError(t, err)
	assert.Len(t, teams, 1)
}

func TestPlaceholderTeam_CreatedOnce(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	var a, b, away *ladder.Team
	err := store.WithTx(ctx, func(tx ladder.Tx) error {
		var err error
		if a, err = tx.PlaceholderTeam(ctx, guild, ladder.SideHome); err != nil {
			return err
		}
		if b, err = tx.PlaceholderTeam(ctx, guild, ladder.SideHome); err != nil {
			return err
		}
		away, err = tx.PlaceholderTeam(ctx, guild, ladder.SideAway)
		return err
	})
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.True(t, a.Placeholder)
	assert.Equal(t, ladder.HomeTeamName, a.Name)
	assert.Equal(t, ":stadium:", a.Emoji)
	assert.Equal(t, ladder.AwayTeamName, away.Name)
	assert.Equal(t, ":airplane:", away.Emoji)
	assert.NotEqual(t, a.ID, away.ID)
}

func TestSquadsWithAnyMember_CountsMembers(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	p1 := addPlayer(t, store, "U1", "a")
	p2 := addPlayer(t, store, "U2", "b")
	p3 := addPlayer(t, store, "U3", "c")

	var pair, trio int64
	var candidates []squad.Candidate
	err := store.WithTx(ctx, func(tx ladder.Tx) error {
		var err error
		if pair, err = tx.CreateSquad(ctx, 1000, []int64{p1.ID, p2.ID}); err != nil {
			return err
		}
		if trio, err = tx.CreateSquad(ctx, 1100, []int64{p1.ID, p2.ID, p3.ID}); err != nil {
			return err
		}
		candidates, err = tx.SquadsWithAnyMember(ctx, []int64{p1.ID, p2.ID})
		return err
	})
	require.NoError(t, err)

	require.Len(t, candidates, 2)
	assert.Equal(t, squad.Candidate{SquadID: pair, Rating: 1000, MemberCount: 2, MatchedCount: 2}, candidates[0])
	assert.Equal(t, squad.Candidate{SquadID: trio, Rating: 1100, MemberCount: 3, MatchedCount: 2}, candidates[1])

	sq, err := store.GetSquad(ctx, trio)
	require.NoError(t, err)
	assert.Equal(t, []int64{p1.ID, p2.ID, p3.ID}, sq.PlayerIDs)
}

func TestResolveAgainstStore_ReusesExactSquad(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	p1 := addPlayer(t, store, "U1", "a")
	p2 := addPlayer(t, store, "U2", "b")
	p3 := addPlayer(t, store, "U3", "c")

	resolve := func(players ...*ladder.Player) squad.Resolution {
		var res squad.Resolution
		err := store.WithTx(ctx, func(tx ladder.Tx) error {
			members := make([]squad.Member, len(players))
			for i, p := range players {
				members[i] = squad.Member{PlayerID: p.ID, Rating: p.Rating}
			}
			var err error
			res, err = squad.Resolve(ctx, tx, members)
			return err
		})
		require.NoError(t, err)
		return res
	}

	ab := resolve(p1, p2)
	abc := resolve(p1, p2, p3)
	ba := resolve(p2, p1)
	a := resolve(p1)

	assert.True(t, ab.Created)
	assert.True(t, abc.Created)
	assert.False(t, ba.Created)
	assert.Equal(t, ab.SquadID, ba.SquadID)
	assert.NotEqual(t, ab.SquadID, abc.SquadID)
	assert.NotEqual(t, ab.SquadID, a.SquadID)
	assert.NotEqual(t, abc.SquadID, a.SquadID)
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	p := addPlayer(t, store, "U1", "a")
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(tx ladder.Tx) error {
		if err := tx.AdjustRating(ctx, rating.KindPlayer, p.ID, 50); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := store.GetPlayer(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, rating.Default, got.Rating)
}

func TestRatings_MissingEntity(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	p := addPlayer(t, store, "U1", "a")
	err := store.WithTx(ctx, func(tx ladder.Tx) error {
		ratings, err := tx.Ratings(ctx, rating.KindPlayer, []int64{p.ID})
		require.NoError(t, err)
		assert.Equal(t, map[int64]int{p.ID: rating.Default}, ratings)

		_, err = tx.Ratings(ctx, rating.KindPlayer, []int64{p.ID, 999})
		return err
	})
	assert.ErrorIs(t, err, ladder.ErrNotFound)

	err = store.WithTx(ctx, func(tx ladder.Tx) error {
		return tx.AdjustRating(ctx, rating.KindSquad, 999, 10)
	})
	assert.ErrorIs(t, err, ladder.ErrNotFound)
}

func TestGameLifecycle(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	alice := addPlayer(t, store, "U1", "alice")
	bob := addPlayer(t, store, "U2", "bob")
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	gameID := addGame(t, store, alice, bob, at)

	game, err := store.GetGame(ctx, gameID)
	require.NoError(t, err)
	assert.Equal(t, ladder.StatusOpen, game.Status)
	assert.Equal(t, at.Unix(), game.CreatedAt.Unix())
	require.Len(t, game.Sides, 2)
	assert.Equal(t, ladder.SideHome, game.Sides[0].Side)
	require.Len(t, game.PlayersOn(ladder.SideAway), 1)
	assert.Equal(t, bob.ID, game.PlayersOn(ladder.SideAway)[0].PlayerID)
	_, ok := game.Winner()
	assert.False(t, ok)

	err = store.WithTx(ctx, func(tx ladder.Tx) error {
		if err := tx.SetLineupRatingChange(ctx, gameID, alice.ID, 16); err != nil {
			return err
		}
		if err := tx.SetSideResult(ctx, gameID, ladder.SideHome, true, 38, 0); err != nil {
			return err
		}
		if err := tx.SetSideResult(ctx, gameID, ladder.SideAway, false, -37, 0); err != nil {
			return err
		}
		return tx.CompleteGame(ctx, gameID, ladder.SideHome, at.Add(time.Hour))
	})
	require.NoError(t, err)

	game, err = store.GetGame(ctx, gameID)
	require.NoError(t, err)
	assert.Equal(t, ladder.StatusCompleted, game.Status)
	require.NotNil(t, game.CompletedAt)
	winner, ok := game.Winner()
	require.True(t, ok)
	assert.Equal(t, ladder.Participant{Kind: rating.KindPlayer, ID: alice.ID}, winner)
	loser, ok := game.Loser()
	require.True(t, ok)
	assert.Equal(t, bob.ID, loser.ID)
	assert.Equal(t, 38, game.Side(ladder.SideHome).SquadRatingChange)

	delta, err := store.RatingChange(ctx, gameID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 16, delta)

	rec, err := store.Record(ctx, rating.KindPlayer, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, ladder.Record{Wins: 1, Losses: 0}, rec)
	rec, err = store.Record(ctx, rating.KindPlayer, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, ladder.Record{Wins: 0, Losses: 1}, rec)
	rec, err = store.Record(ctx, rating.KindTeam, game.Side(ladder.SideHome).TeamID)
	require.NoError(t, err)
	assert.Equal(t, ladder.Record{}, rec, "1v1 games do not count for teams")

	err = store.WithTx(ctx, func(tx ladder.Tx) error {
		return tx.CompleteGame(ctx, gameID, ladder.SideAway, at)
	})
	assert.ErrorIs(t, err, ladder.ErrGameCompleted)

	err = store.WithTx(ctx, func(tx ladder.Tx) error {
		return tx.DeleteGame(ctx, gameID)
	})
	require.NoError(t, err)

	_, err = store.GetGame(ctx, gameID)
	assert.ErrorIs(t, err, ladder.ErrNotFound)
	_, err = store.RatingChange(ctx, gameID, alice.ID)
	assert.ErrorIs(t, err, ladder.ErrNotFound)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM game_sides WHERE game_id = ?`, gameID).Scan(&n))
	assert.Zero(t, n, "sides are removed with the game")
}

func TestPlayerStandings(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	alice := addPlayer(t, store, "U1", "alice")
	bob := addPlayer(t, store, "U2", "bob")
	carol := addPlayer(t, store, "U3", "carol")
	_, err := db.Exec(`UPDATE players SET rating = 1100 WHERE id IN (?, ?)`, alice.ID, carol.ID)
	require.NoError(t, err)

	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	addGame(t, store, alice, bob, since.Add(24*time.Hour))
	addGame(t, store, carol, bob, since.Add(-24*time.Hour))

	active, err := store.PlayersWithGamesSince(ctx, guild, since)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, alice.ID, active[0].ID)
	assert.Equal(t, "alice", active[0].Name)
	assert.Equal(t, 1, active[0].Games)
	assert.Equal(t, bob.ID, active[1].ID)

	all, err := store.AllPlayers(ctx, guild)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int64{alice.ID, carol.ID, bob.ID}, []int64{all[0].ID, all[1].ID, all[2].ID}, "ties are broken by id")
	assert.Equal(t, 2, all[2].Games)

	other, err := store.AllPlayers(ctx, "other-guild")
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestSquadAndTeamStandings(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	alice := addPlayer(t, store, "U1", "alice")
	bob := addPlayer(t, store, "U2", "bob")

	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	addGame(t, store, alice, bob, since.Add(time.Hour))
	addGame(t, store, alice, bob, since.Add(2*time.Hour))

	squads, err := store.SquadsWithGames(ctx, guild, since, 2)
	require.NoError(t, err)
	require.Len(t, squads, 2)
	assert.Equal(t, "alice", squads[0].Name)
	assert.Equal(t, 2, squads[0].Games)

	squads, err = store.SquadsWithGames(ctx, guild, since.Add(90*time.Minute), 2)
	require.NoError(t, err)
	assert.Empty(t, squads)

	teams, err := store.TeamsWithGames(ctx, guild, since)
	require.NoError(t, err)
	assert.Empty(t, teams, "placeholder teams never rank")
}

func TestTribes_FlairIsPerGuild(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	var bardur *ladder.Tribe
	err := store.WithTx(ctx, func(tx ladder.Tx) error {
		var err error
		bardur, err = tx.UpsertTribe(ctx, "Bardur")
		if err != nil {
			return err
		}
		again, err := tx.UpsertTribe(ctx, "BARDUR")
		if err != nil {
			return err
		}
		assert.Equal(t, bardur.ID, again.ID)
		assert.Equal(t, "Bardur", again.Name)
		if _, err := tx.UpsertTribe(ctx, "Imperius"); err != nil {
			return err
		}
		if err := tx.SetTribeFlair(ctx, bardur.ID, guild, ":tree:"); err != nil {
			return err
		}
		return tx.SetTribeFlair(ctx, bardur.ID, guild, ":evergreen_tree:")
	})
	require.NoError(t, err)

	tribes, err := store.ListTribes(ctx, guild)
	require.NoError(t, err)
	require.Len(t, tribes, 2)
	assert.Equal(t, ladder.Tribe{ID: bardur.ID, Name: "Bardur", Emoji: ":evergreen_tree:"}, tribes[0])
	assert.Equal(t, "Imperius", tribes[1].Name)
	assert.Empty(t, tribes[1].Emoji)

	other, err := store.ListTribes(ctx, "G2")
	require.NoError(t, err)
	require.Len(t, other, 2)
	assert.Empty(t, other[0].Emoji, "flair belongs to the guild that set it")

	err = store.WithTx(ctx, func(tx ladder.Tx) error {
		_, err := tx.TribeByName(ctx, "Oumaji")
		return err
	})
	assert.ErrorIs(t, err, ladder.ErrNotFound)
}

func TestGetGame_ReturnsLineupTribes(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	ctx := context.Background()

	alice := addPlayer(t, store, "U1", "alice")
	bob := addPlayer(t, store, "U2", "bob")

	var gameID int64
	var imperius *ladder.Tribe
	err := store.WithTx(ctx, func(tx ladder.Tx) error {
		var err error
		imperius, err = tx.UpsertTribe(ctx, "Imperius")
		if err != nil {
			return err
		}
		if err := tx.SetTribeFlair(ctx, imperius.ID, guild, ":crown:"); err != nil {
			return err
		}
		gameID, err = tx.CreateGame(ctx, guild, "", 1, time.Now())
		if err != nil {
			return err
		}
		for _, l := range []struct {
			side   ladder.Side
			player *ladder.Player
			tribe  *int64
		}{{ladder.SideHome, alice, &imperius.ID}, {ladder.SideAway, bob, nil}} {
			res, err := squad.Resolve(ctx, tx, []squad.Member{{PlayerID: l.player.ID, Rating: l.player.Rating}})
			if err != nil {
				return err
			}
			team, err := tx.PlaceholderTeam(ctx, guild, l.side)
			if err != nil {
				return err
			}
			if err := tx.AddGameSide(ctx, ladder.GameSide{GameID: gameID, Side: l.side, SquadID: res.SquadID, TeamID: team.ID}); err != nil {
				return err
			}
			if err := tx.AddLineup(ctx, ladder.Lineup{GameID: gameID, PlayerID: l.player.ID, Side: l.side, TribeID: l.tribe}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	g, err := store.GetGame(ctx, gameID)
	require.NoError(t, err)
	require.Len(t, g.Lineups, 2)

	home := g.Lineups[0]
	require.NotNil(t, home.TribeID)
	assert.Equal(t, imperius.ID, *home.TribeID)
	assert.Equal(t, "Imperius", home.Tribe)
	assert.Equal(t, ":crown:", home.TribeEmoji)

	away := g.Lineups[1]
	assert.Nil(t, away.TribeID)
	assert.Empty(t, away.Tribe)
	assert.Empty(t, away.TribeEmoji)
}
