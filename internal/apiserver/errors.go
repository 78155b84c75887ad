package apiserver

import (
	"errors"
	"net/http"

	"github.com/yooncheol/bapsang/internal/agent"
	"github.com/yooncheol/bapsang/internal/session"
)

// writeEngineError maps engine errors onto HTTP statuses. Anything the
// taxonomy does not name is a 500.
func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		WriteError(w, http.StatusNotFound, "SESSION_NOT_FOUND", err.Error())
	case errors.Is(err, session.ErrTurnInFlight):
		WriteError(w, http.StatusConflict, "TURN_IN_FLIGHT", err.Error())
	case errors.Is(err, agent.ErrNoInterrupt):
		WriteError(w, http.StatusConflict, "NO_INTERRUPT", err.Error())
	case errors.Is(err, agent.ErrUnknownChoice):
		WriteError(w, http.StatusBadRequest, "UNKNOWN_CHOICE", err.Error())
	case agent.IsGenerationFailure(err):
		WriteError(w, http.StatusBadGateway, "GENERATION_FAILED", err.Error())
	default:
		s.logger.Error("request failed: %v", err)
		WriteError(w, http.StatusInternalServerError, "INTERNAL", err.Error())
	}
}
