package http

import (
	"net/http"

	"github.com/mauv0809/squad-ladder/internal/config"
	"github.com/mauv0809/squad-ladder/internal/game"
	"github.com/mauv0809/squad-ladder/internal/pubsub"
	"github.com/mauv0809/squad-ladder/internal/roster"
)

func NewServer(games *game.Service, directory roster.Directory, metricsHandler http.Handler, cfg config.Config, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Games:          games,
		Roster:         directory,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("GET /health", Chain(s.HealthCheckHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("POST /teams", Chain(s.RegisterTeamHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("GET /teams", Chain(s.ListTeamsHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("GET /tribes", Chain(s.ListTribesHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("PUT /tribes", Chain(s.TribeFlairHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("POST /games", Chain(s.CreateGameHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("GET /games", Chain(s.GetGameHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("POST /games/winner", Chain(s.DeclareWinnerHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("POST /games/delete", Chain(s.DeleteGameHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("GET /leaderboard", Chain(s.LeaderboardHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("GET /rating-change", Chain(s.RatingChangeHandler(), requestIDMiddleware, paramsMiddleware))
	s.Router.Handle("GET /record", Chain(s.RecordHandler(), requestIDMiddleware, paramsMiddleware))
	if s.pubsub != nil {
		s.Router.Handle("POST /pubsub/declare-winner", Chain(s.DeclareWinnerPushHandler(), requestIDMiddleware, paramsMiddleware))
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
