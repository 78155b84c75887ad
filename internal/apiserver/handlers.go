package apiserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/yooncheol/bapsang/internal/agent"
)

// validate checks request DTOs against their struct tags.
var validate = validator.New()

// turnRequest is the POST /v1/sessions/{id}/turns payload.
type turnRequest struct {
	UserID string `json:"user_id" validate:"omitempty,max=128"`
	Text   string `json:"text" validate:"required,max=4096"`
	Budget int64  `json:"budget" validate:"gte=0"`
}

// resolveRequest is the POST /v1/sessions/{id}/interrupt payload.
type resolveRequest struct {
	Choice string `json:"choice" validate:"required,max=64"`
}

// decodeBody parses and validates a JSON request body.
func decodeBody(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// handleSubmitTurn runs one conversational turn. A turn suspended on a
// budget interrupt answers 202 with the interrupt prompt; a completed
// turn answers 200.
func (s *Server) handleSubmitTurn(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	var req turnRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	res, err := s.engine.SubmitTurn(r.Context(), agent.TurnRequest{
		SessionID: sessionID,
		UserID:    req.UserID,
		Text:      req.Text,
		Budget:    req.Budget,
	})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}

	status := http.StatusOK
	if res.Interrupt != nil {
		status = http.StatusAccepted
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = WriteJSON(w, res)
}

// handleResolveInterrupt applies the user's choice to a suspended turn
// and returns the completed result.
func (s *Server) handleResolveInterrupt(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	var req resolveRequest
	if err := decodeBody(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	res, err := s.engine.ResolveInterrupt(r.Context(), sessionID, req.Choice)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	_ = WriteSuccess(w, res)
}

// handleHistory lists the session's exchanges, oldest first.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	exchanges, err := s.engine.History(sessionID)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	_ = WriteSuccess(w, map[string]interface{}{
		"session_id": sessionID,
		"exchanges":  exchanges,
	})
}

// handleClearSession drops the session and its turn state.
func (s *Server) handleClearSession(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")

	if err := s.engine.ClearSession(sessionID); err != nil {
		s.writeEngineError(w, err)
		return
	}
	WriteNoContent(w)
}

// handleMemory lists the user's long-term facts.
func (s *Server) handleMemory(w http.ResponseWriter, r *http.Request) {
	userID := r.PathValue("id")

	facts, err := s.engine.Memory(r.Context(), userID)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	_ = WriteSuccess(w, map[string]interface{}{
		"user_id": userID,
		"facts":   facts,
	})
}
