package http

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/squad-ladder/internal/game"
	"github.com/mauv0809/squad-ladder/internal/ladder"
	"github.com/mauv0809/squad-ladder/internal/pubsub"
	"github.com/mauv0809/squad-ladder/internal/rating"
)

const dateLayout = "2006-01-02"

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) RegisterTeamHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerTeamRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		team, err := s.Games.RegisterTeam(r.Context(), s.guildID(req.GuildID), req.Name, req.Emoji, req.ImageURL)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, team)
	}
}

func (s *Server) ListTeamsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teams, err := s.Games.ListTeams(r.Context(), s.guildID(r.URL.Query().Get("guildID")))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, teams)
	}
}

func (s *Server) ListTribesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tribes, err := s.Games.ListTribes(r.Context(), s.guildID(r.URL.Query().Get("guildID")))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tribes)
	}
}

// TribeFlairHandler registers a tribe and sets the guild's emoji for it.
func (s *Server) TribeFlairHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tribeFlairRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		tribe, err := s.Games.SetTribeFlair(r.Context(), s.guildID(req.GuildID), req.Name, req.Emoji)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tribe)
	}
}

func (s *Server) CreateGameHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createGameRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		home, err := s.participants(r, req.Home, req.Tribes)
		if err != nil {
			writeError(w, r, err)
			return
		}
		away, err := s.participants(r, req.Away, req.Tribes)
		if err != nil {
			writeError(w, r, err)
			return
		}

		requireTeams := s.Cfg.RequireTeams
		if req.RequireTeams != nil {
			requireTeams = *req.RequireTeams
		}

		g, err := s.Games.CreateGame(r.Context(), game.CreateGameRequest{
			GuildID:      s.guildID(req.GuildID),
			Name:         req.Name,
			Home:         home,
			Away:         away,
			RequireTeams: requireTeams,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, g)
	}
}

func (s *Server) GetGameHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, ok := int64Param(w, r, "gameID")
		if !ok {
			return
		}
		g, err := s.Games.GetGame(r.Context(), gameID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}

func (s *Server) DeclareWinnerHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, ok := int64Param(w, r, "gameID")
		if !ok {
			return
		}
		side := ladder.Side(r.URL.Query().Get("side"))
		g, err := s.Games.DeclareWinner(r.Context(), gameID, side)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, g)
	}
}

func (s *Server) DeleteGameHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, ok := int64Param(w, r, "gameID")
		if !ok {
			return
		}
		if err := s.Games.DeleteGame(r.Context(), gameID); err != nil {
			writeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// LeaderboardHandler serves ?guildID=&kind=player|squad|team&since=YYYY-MM-DD.
// kind defaults to player and since to the configured activity window.
func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		kind := rating.Kind(q.Get("kind"))
		if kind == "" {
			kind = rating.KindPlayer
		}

		since := time.Now().AddDate(0, 0, -s.Cfg.LeaderboardDays)
		if raw := q.Get("since"); raw != "" {
			parsed, err := time.Parse(dateLayout, raw)
			if err != nil {
				http.Error(w, "Invalid 'since' parameter, expected YYYY-MM-DD", http.StatusBadRequest)
				return
			}
			since = parsed
		}

		standings, err := s.Games.Leaderboard(r.Context(), game.LeaderboardQuery{
			Kind:    kind,
			GuildID: s.guildID(q.Get("guildID")),
			Since:   since,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, standings)
	}
}

func (s *Server) RatingChangeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID, ok := int64Param(w, r, "gameID")
		if !ok {
			return
		}
		playerID, ok := int64Param(w, r, "playerID")
		if !ok {
			return
		}
		delta, found, err := s.Games.RatingChange(r.Context(), gameID, playerID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if !found {
			writeJSON(w, http.StatusNotFound, errorResponse{Error: "player did not play in this game"})
			return
		}
		writeJSON(w, http.StatusOK, ratingChangeResponse{GameID: gameID, PlayerID: playerID, RatingChange: delta})
	}
}

func (s *Server) RecordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := int64Param(w, r, "id")
		if !ok {
			return
		}
		rec, err := s.Games.Record(r.Context(), rating.Kind(r.URL.Query().Get("kind")), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// DeclareWinnerPushHandler consumes a Pub/Sub push delivery carrying a
// msgpack encoded DeclareWinnerMessage. A game that already has a winner is
// acknowledged so the message is not redelivered.
func (s *Server) DeclareWinnerPushHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.FromContext(r.Context())
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read body", http.StatusBadRequest)
			return
		}
		var envelope pushEnvelope
		if err := json.Unmarshal(bodyBytes, &envelope); err != nil {
			logger.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}
		rawData, err := base64.StdEncoding.DecodeString(envelope.Message.Data)
		if err != nil {
			logger.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		var msg pubsub.DeclareWinnerMessage
		if err := s.pubsub.ProcessMessage(rawData, &msg); err != nil {
			http.Error(w, "Invalid message payload", http.StatusBadRequest)
			return
		}
		logger.Info("Received declare winner message", "gameID", msg.GameID, "side", msg.Side, "messageID", envelope.Message.MessageID)

		_, err = s.Games.DeclareWinner(r.Context(), msg.GameID, ladder.Side(msg.Side))
		if err != nil && !isTerminal(err) {
			writeError(w, r, err)
			return
		}
		if err != nil {
			logger.Warn("Dropping declare winner message", "gameID", msg.GameID, "error", err)
		}
		w.Write([]byte("OK"))
	}
}

func (s *Server) participants(r *http.Request, handles []string, tribes map[string]string) ([]game.Participant, error) {
	out := make([]game.Participant, 0, len(handles))
	for _, h := range handles {
		m, err := s.Roster.Resolve(r.Context(), h)
		if err != nil {
			return nil, err
		}
		out = append(out, game.Participant{ExternalID: m.ExternalID, Name: m.Name, Nick: m.Nick, Tribe: tribes[h]})
	}
	return out, nil
}

func (s *Server) guildID(requested string) string {
	if requested != "" {
		return requested
	}
	return s.Cfg.GuildID
}

func int64Param(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := r.URL.Query().Get(name)
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		http.Error(w, fmt.Sprintf("Invalid or missing '%s' parameter", name), http.StatusBadRequest)
		return 0, false
	}
	return v, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}
