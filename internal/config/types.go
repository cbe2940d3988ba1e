package config

// Config holds all configuration for the application.
type Config struct {
	DBName    string `env:"DB_NAME,required"`
	Port      string `env:"PORT,required"`
	GuildID   string `env:"GUILD_ID" envDefault:"default"`
	ProjectID string `env:"GCP_PROJECT"`

	// RequireTeams rejects games where a player has no single matching team.
	RequireTeams bool `env:"REQUIRE_TEAMS" envDefault:"false"`
	// LeaderboardDays is the activity window used when no since date is given.
	LeaderboardDays int `env:"LEADERBOARD_DAYS" envDefault:"90"`

	Slack SlackConfig
	Turso TursoConfig
}

type SlackConfig struct {
	Token string `env:"SLACK_BOT_TOKEN,required"`
}

type TursoConfig struct {
	PrimaryURL string `env:"TURSO_PRIMARY_URL"`
	AuthToken  string `env:"TURSO_AUTH_TOKEN"`
}
