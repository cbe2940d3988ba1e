package http

import (
	"net/http"

	"github.com/mauv0809/squad-ladder/internal/config"
	"github.com/mauv0809/squad-ladder/internal/game"
	"github.com/mauv0809/squad-ladder/internal/pubsub"
	"github.com/mauv0809/squad-ladder/internal/roster"
)

type Server struct {
	Games          *game.Service
	Roster         roster.Directory
	MetricsHandler http.Handler
	Cfg            config.Config
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}

type registerTeamRequest struct {
	GuildID  string `json:"guild_id"`
	Name     string `json:"name"`
	Emoji    string `json:"emoji"`
	ImageURL string `json:"image_url"`
}

type createGameRequest struct {
	GuildID string   `json:"guild_id"`
	Name    string   `json:"name"`
	Home    []string `json:"home"`
	Away    []string `json:"away"`
	// RequireTeams overrides the configured default when set.
	RequireTeams *bool `json:"require_teams"`
	// Tribes maps a handle from Home or Away to the tribe picked for this game.
	Tribes map[string]string `json:"tribes"`
}

type tribeFlairRequest struct {
	GuildID string `json:"guild_id"`
	Name    string `json:"name"`
	Emoji   string `json:"emoji"`
}

type ratingChangeResponse struct {
	GameID       int64 `json:"game_id"`
	PlayerID     int64 `json:"player_id"`
	RatingChange int   `json:"rating_change"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// pushEnvelope is the body Pub/Sub push subscriptions deliver.
type pushEnvelope struct {
	Subscription string `json:"subscription"`
	Message      struct {
		Data      string `json:"data"`
		MessageID string `json:"messageId"`
	} `json:"message"`
}
