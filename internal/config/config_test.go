package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	t.Setenv("DB_NAME", "ladder.db")
	t.Setenv("PORT", "8080")
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "ladder.db", cfg.DBName)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "xoxb-test", cfg.Slack.Token)
	assert.Equal(t, "default", cfg.GuildID)
	assert.False(t, cfg.RequireTeams)
	assert.Equal(t, 90, cfg.LeaderboardDays)
	assert.Empty(t, cfg.Turso.PrimaryURL)
}

func TestParse_Overrides(t *testing.T) {
	t.Setenv("DB_NAME", "ladder.db")
	t.Setenv("PORT", "9000")
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	t.Setenv("REQUIRE_TEAMS", "true")
	t.Setenv("LEADERBOARD_DAYS", "30")
	t.Setenv("TURSO_PRIMARY_URL", "libsql://ladder.turso.io")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.True(t, cfg.RequireTeams)
	assert.Equal(t, 30, cfg.LeaderboardDays)
	assert.Equal(t, "libsql://ladder.turso.io", cfg.Turso.PrimaryURL)
}

func TestParse_MissingRequired(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("SLACK_BOT_TOKEN", "xoxb-test")
	// Setenv first so the variable is restored after the test.
	t.Setenv("DB_NAME", "")
	require.NoError(t, os.Unsetenv("DB_NAME"))

	_, err := Parse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_NAME")
}
