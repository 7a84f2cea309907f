package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/xiayeah-xy/love-yumi/internal/engine"
	"github.com/xiayeah-xy/love-yumi/internal/storage"
	"github.com/xiayeah-xy/love-yumi/pkg/scene"
	"github.com/xiayeah-xy/love-yumi/pkg/state"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// ChooseRequest is the body for selecting an option on an active session.
type ChooseRequest struct {
	Option scene.Option `json:"option"`
}

// AdventureHandler exposes the adventure session lifecycle.
// Routes:
// POST /v1/adventure               - Create a session and run the opening turn
// GET /v1/adventure/{id}           - Read the committed session snapshot
// POST /v1/adventure/{id}/choose   - Run one turn for the chosen option
// DELETE /v1/adventure/{id}        - Discard the session (full reset)
type AdventureHandler struct {
	engine  *engine.TurnEngine
	storage storage.Storage
	logger  *slog.Logger

	// sessionLocks serializes turns per session, so a second
	// turn-initiating request during an in-flight turn is rejected
	// instead of racing the load/commit cycle.
	sessionLocks sync.Map // uuid.UUID -> *sync.Mutex
}

func NewAdventureHandler(e *engine.TurnEngine, storage storage.Storage, logger *slog.Logger) *AdventureHandler {
	return &AdventureHandler{
		engine:  e,
		storage: storage,
		logger:  logger,
	}
}

func (h *AdventureHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	path := strings.TrimPrefix(r.URL.Path, "/v1/adventure")
	path = strings.Trim(path, "/")

	if path == "" {
		if r.Method != http.MethodPost {
			h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed. Use POST to create an adventure.")
			return
		}
		h.handleCreate(w, r)
		return
	}

	parts := strings.Split(path, "/")
	sessionID, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", parts[0], "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.handleRead(w, r, sessionID)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		h.handleDelete(w, r, sessionID)
	case len(parts) == 2 && parts[1] == "choose" && r.Method == http.MethodPost:
		h.handleChoose(w, r, sessionID)
	default:
		h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed for this path")
	}
}

// handleCreate starts a fresh session and runs the opening turn. A failed
// opening turn still creates the session: the client re-renders the intro
// with the recovery message from the state.
func (h *AdventureHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	gs := state.NewGameState()

	if err := h.engine.StartAdventure(r.Context(), gs); err != nil {
		// Guard errors cannot happen on a fresh session; anything else is
		// a generation failure already recorded in the state.
		h.logger.Warn("Opening turn failed", "session_id", gs.ID, "error", err)
	}

	if err := h.storage.SaveGameState(r.Context(), gs.ID, gs); err != nil {
		h.logger.Error("Failed to save new session", "session_id", gs.ID, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to save session. Please try again.")
		return
	}

	h.writeState(w, http.StatusCreated, gs)
}

func (h *AdventureHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	gs, err := h.storage.LoadGameState(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load session", "session_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to load session")
		return
	}
	if gs == nil {
		h.writeError(w, http.StatusNotFound, "Session not found")
		return
	}
	h.writeState(w, http.StatusOK, gs)
}

func (h *AdventureHandler) handleChoose(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	var req ChooseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Invalid request body", "session_id", id, "error", err)
		h.writeError(w, http.StatusBadRequest, "Invalid request body. Expected JSON with 'option' field.")
		return
	}

	lock := h.lockFor(id)
	if !lock.TryLock() {
		// A turn is already resolving for this session; the event is a no-op.
		h.writeError(w, http.StatusConflict, "A turn is already in progress for this session")
		return
	}
	defer lock.Unlock()

	gs, err := h.storage.LoadGameState(r.Context(), id)
	if err != nil {
		h.logger.Error("Failed to load session", "session_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to load session")
		return
	}
	if gs == nil {
		h.writeError(w, http.StatusNotFound, "Session not found")
		return
	}

	err = h.engine.SelectOption(r.Context(), gs, req.Option)
	switch {
	case errors.Is(err, engine.ErrTurnInFlight):
		h.writeError(w, http.StatusConflict, "A turn is already in progress for this session")
		return
	case errors.Is(err, engine.ErrNotStarted):
		h.writeError(w, http.StatusConflict, "Adventure has not started yet")
		return
	case errors.Is(err, engine.ErrEmptyOption):
		h.writeError(w, http.StatusBadRequest, "Option cannot be empty")
		return
	case err != nil:
		// Generation failure: the turn was abandoned and the recovery
		// message committed. Persist it and return the state so the
		// client can offer a retry.
		h.logger.Warn("Turn failed", "session_id", id, "error", err)
	}

	if err := h.storage.SaveGameState(r.Context(), id, gs); err != nil {
		h.logger.Error("Failed to save session", "session_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to save session. Please try again.")
		return
	}

	h.writeState(w, http.StatusOK, gs)
}

func (h *AdventureHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.storage.DeleteGameState(r.Context(), id); err != nil {
		h.logger.Error("Failed to delete session", "session_id", id, "error", err)
		h.writeError(w, http.StatusInternalServerError, "Failed to delete session")
		return
	}
	h.sessionLocks.Delete(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdventureHandler) lockFor(id uuid.UUID) *sync.Mutex {
	lock, _ := h.sessionLocks.LoadOrStore(id, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func (h *AdventureHandler) writeState(w http.ResponseWriter, status int, gs *state.GameState) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(gs); err != nil {
		h.logger.Error("Failed to encode session response", "session_id", gs.ID, "error", err)
	}
}

func (h *AdventureHandler) writeError(w http.ResponseWriter, status int, msg string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: msg}); err != nil {
		h.logger.Error("Failed to encode error response", "error", err)
	}
}
