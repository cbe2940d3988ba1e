package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDB_CreatesTables(t *testing.T) {
	db, teardown, err := InitDB(":memory:", "", "")
	require.NoError(t, err, "InitDB should not return an error")
	defer teardown()

	for _, table := range []string{"members", "players", "teams", "squads", "squad_members", "games", "game_sides", "lineups", "tribes", "tribe_flairs"} {
		var name string
		err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, "Querying for %s table should not produce an error", table)
		assert.Equal(t, table, name)
	}
}

func TestInitDB_ForeignKeysEnabled(t *testing.T) {
	db, teardown, err := InitDB(":memory:", "", "")
	require.NoError(t, err)
	defer teardown()

	var enabled int
	require.NoError(t, db.QueryRow("PRAGMA foreign_keys").Scan(&enabled))
	assert.Equal(t, 1, enabled)

	_, err = db.Exec("INSERT INTO lineups (game_id, player_id, side) VALUES (99, 99, 'home')")
	assert.Error(t, err, "lineup without game should violate the foreign key")

	_, err = db.Exec("INSERT INTO tribe_flairs (tribe_id, guild_id, emoji) VALUES (99, 'G1', ':x:')")
	assert.Error(t, err, "flair without tribe should violate the foreign key")
}

func TestInitDB_IsIdempotent(t *testing.T) {
	path := t.TempDir() + "/ladder.db"

	_, teardown, err := InitDB(path, "", "")
	require.NoError(t, err)
	teardown()

	db, teardown, err := InitDB(path, "", "")
	require.NoError(t, err, "running migrations twice should be a no-op")
	defer teardown()

	var version int64
	require.NoError(t, db.QueryRow("SELECT MAX(version_id) FROM goose_db_version").Scan(&version))
	assert.Equal(t, int64(2), version)
}
