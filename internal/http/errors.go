package http

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/squad-ladder/internal/ladder"
	"github.com/mauv0809/squad-ladder/internal/roster"
	"github.com/mauv0809/squad-ladder/internal/squad"
)

// statusFor maps domain errors to HTTP status codes. Anything unknown is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ladder.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ladder.ErrGameCompleted):
		return http.StatusConflict
	case errors.Is(err, ladder.ErrTeamsRequired):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ladder.ErrInvalidLineup),
		errors.Is(err, ladder.ErrInvalidSide),
		errors.Is(err, ladder.ErrInvalidKind),
		errors.Is(err, ladder.ErrReservedTeamName),
		errors.Is(err, ladder.ErrTeamNameRequired),
		errors.Is(err, ladder.ErrUnknownTribe),
		errors.Is(err, ladder.ErrTribeNameRequired),
		errors.Is(err, squad.ErrEmptySquad),
		errors.Is(err, squad.ErrDuplicateMember),
		errors.Is(err, roster.ErrUnknownMember):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// isTerminal reports whether retrying the request can never succeed.
func isTerminal(err error) bool {
	status := statusFor(err)
	return status >= 400 && status < 500
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	logger := log.FromContext(r.Context())
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "url", r.URL.String(), "error", err)
		writeJSON(w, status, errorResponse{Error: "internal error"})
		return
	}
	logger.Info("Request rejected", "url", r.URL.String(), "status", status, "error", err)
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
