package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiayeah-xy/love-yumi/internal/engine"
	"github.com/xiayeah-xy/love-yumi/internal/services"
	"github.com/xiayeah-xy/love-yumi/internal/storage"
	"github.com/xiayeah-xy/love-yumi/pkg/prompts"
	"github.com/xiayeah-xy/love-yumi/pkg/scene"
	"github.com/xiayeah-xy/love-yumi/pkg/state"
)

func setupAdventureHandler() (*AdventureHandler, *services.MockGenerator, *storage.MockStorage) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))

	mockGen := services.NewMockGenerator()
	mockStorage := storage.NewMockStorage()
	eng := engine.New(mockGen, logger)
	return NewAdventureHandler(eng, mockStorage, logger), mockGen, mockStorage
}

func createSession(t *testing.T, handler *AdventureHandler) *state.GameState {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/adventure", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code, "Response body: %s", rr.Body.String())

	var gs state.GameState
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&gs))
	return &gs
}

func TestAdventureHandler_Create(t *testing.T) {
	handler, mockGen, _ := setupAdventureHandler()

	req := httptest.NewRequest(http.MethodPost, "/v1/adventure", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var gs state.GameState
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&gs))

	assert.NotEqual(t, uuid.Nil, gs.ID)
	assert.NotNil(t, gs.CurrentScene)
	assert.Equal(t, "Mock story", gs.CurrentScene.Story)
	assert.Equal(t, state.LoveScoreBaseline+state.StartLoveDelta, gs.LoveScore)
	assert.Equal(t, state.FirstWaypoint, gs.CurrentMapIndex)
	assert.False(t, gs.IsLoading)
	assert.Empty(t, gs.Error)

	sceneCalls, _ := mockGen.GetCalls()
	require.Len(t, sceneCalls, 1)
	assert.Equal(t, prompts.InitialPrompt, sceneCalls[0].PlayerInput)
}

func TestAdventureHandler_Create_GenerationFailure(t *testing.T) {
	handler, mockGen, mockStorage := setupAdventureHandler()
	mockGen.SetGenerateSceneError(errors.New("model unavailable"))

	req := httptest.NewRequest(http.MethodPost, "/v1/adventure", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	// The session is still created so the client can render the
	// recovery message and offer a retry.
	assert.Equal(t, http.StatusCreated, rr.Code)

	var gs state.GameState
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&gs))

	assert.Nil(t, gs.CurrentScene)
	assert.Equal(t, prompts.MsgStartFailed, gs.Error)
	assert.False(t, gs.IsLoading)

	saved, err := mockStorage.LoadGameState(req.Context(), gs.ID)
	require.NoError(t, err)
	require.NotNil(t, saved, "failed opening turn should still be persisted")
	assert.Equal(t, prompts.MsgStartFailed, saved.Error)
}

func TestAdventureHandler_Create_SaveFailure(t *testing.T) {
	handler, _, mockStorage := setupAdventureHandler()
	mockStorage.SetSaveError(errors.New("redis down"))

	req := httptest.NewRequest(http.MethodPost, "/v1/adventure", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestAdventureHandler_Read(t *testing.T) {
	handler, _, _ := setupAdventureHandler()
	gs := createSession(t, handler)

	req := httptest.NewRequest(http.MethodGet, "/v1/adventure/"+gs.ID.String(), nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)

	var loaded state.GameState
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&loaded))
	assert.Equal(t, gs.ID, loaded.ID)
	assert.Equal(t, gs.LoveScore, loaded.LoveScore)
}

func TestAdventureHandler_Read_NotFound(t *testing.T) {
	handler, _, _ := setupAdventureHandler()

	req := httptest.NewRequest(http.MethodGet, "/v1/adventure/"+uuid.NewString(), nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code)

	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&errResp))
	assert.Equal(t, "Session not found", errResp.Error)
}

func TestAdventureHandler_Read_InvalidID(t *testing.T) {
	handler, _, _ := setupAdventureHandler()

	req := httptest.NewRequest(http.MethodGet, "/v1/adventure/not-a-uuid", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAdventureHandler_Choose(t *testing.T) {
	handler, mockGen, _ := setupAdventureHandler()
	gs := createSession(t, handler)

	mockGen.SetGenerateSceneResponse(&scene.Scene{
		Story:       "She laughs and pulls you toward the gate.",
		Options:     []scene.Option{{ID: "A", Text: "Follow her"}},
		Location:    "Cat Kingdom",
		Tone:        scene.ToneCute,
		ImagePrompt: "a cat kingdom gate",
	})

	body := `{"option":{"id":"A","text":"Board the bus"}}`
	req := httptest.NewRequest(http.MethodPost, "/v1/adventure/"+gs.ID.String()+"/choose", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code, "Response body: %s", rr.Body.String())

	var updated state.GameState
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&updated))

	assert.Equal(t, "She laughs and pulls you toward the gate.", updated.CurrentScene.Story)
	assert.Equal(t, gs.LoveScore+state.TurnLoveDelta, updated.LoveScore)
	assert.Equal(t, gs.CurrentMapIndex+1, updated.CurrentMapIndex)
	require.Len(t, updated.History, 1)
	assert.Equal(t, "Board the bus", updated.History[0].Action)
	assert.Equal(t, "Mock story", updated.History[0].Story)
}

func TestAdventureHandler_Choose_GenerationFailure(t *testing.T) {
	handler, mockGen, _ := setupAdventureHandler()
	gs := createSession(t, handler)

	mockGen.SetGenerateSceneError(errors.New("model unavailable"))

	body := `{"option":{"id":"A","text":"Board the bus"}}`
	req := httptest.NewRequest(http.MethodPost, "/v1/adventure/"+gs.ID.String()+"/choose", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	// Failed turns come back 200 with the recovery message in the
	// state. The committed scene is unchanged.
	assert.Equal(t, http.StatusOK, rr.Code)

	var updated state.GameState
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&updated))

	assert.Equal(t, prompts.MsgTurnFailed, updated.Error)
	assert.Equal(t, "Mock story", updated.CurrentScene.Story)
	assert.Equal(t, gs.LoveScore, updated.LoveScore)
	assert.Empty(t, updated.History)
	assert.False(t, updated.IsLoading)
}

func TestAdventureHandler_Choose_Validation(t *testing.T) {
	handler, _, _ := setupAdventureHandler()
	gs := createSession(t, handler)

	tests := []struct {
		name           string
		sessionID      string
		requestBody    string
		expectedStatus int
	}{
		{
			name:           "empty option text",
			sessionID:      gs.ID.String(),
			requestBody:    `{"option":{"id":"A","text":""}}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "malformed body",
			sessionID:      gs.ID.String(),
			requestBody:    `{"option":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown session",
			sessionID:      uuid.NewString(),
			requestBody:    `{"option":{"id":"A","text":"go"}}`,
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/adventure/"+tc.sessionID+"/choose", strings.NewReader(tc.requestBody))
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedStatus, rr.Code, "Response body: %s", rr.Body.String())
		})
	}
}

func TestAdventureHandler_Choose_ConcurrentTurnRejected(t *testing.T) {
	handler, mockGen, _ := setupAdventureHandler()
	gs := createSession(t, handler)

	turnStarted := make(chan struct{})
	turnRelease := make(chan struct{})
	mockGen.GenerateSceneFunc = func(ctx context.Context, playerInput, historySummary string) (*scene.Scene, error) {
		close(turnStarted)
		<-turnRelease
		return &scene.Scene{Story: "slow scene", Options: []scene.Option{{ID: "A", Text: "go"}}}, nil
	}

	body := `{"option":{"id":"A","text":"go"}}`
	firstDone := make(chan *httptest.ResponseRecorder, 1)
	go func() {
		req := httptest.NewRequest(http.MethodPost, "/v1/adventure/"+gs.ID.String()+"/choose", strings.NewReader(body))
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		firstDone <- rr
	}()

	<-turnStarted

	// Second turn for the same session while the first is resolving.
	req := httptest.NewRequest(http.MethodPost, "/v1/adventure/"+gs.ID.String()+"/choose", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusConflict, rr.Code)

	close(turnRelease)
	first := <-firstDone
	assert.Equal(t, http.StatusOK, first.Code)
}

func TestAdventureHandler_Delete(t *testing.T) {
	handler, _, _ := setupAdventureHandler()
	gs := createSession(t, handler)

	req := httptest.NewRequest(http.MethodDelete, "/v1/adventure/"+gs.ID.String(), nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/adventure/"+gs.ID.String(), nil)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAdventureHandler_MethodNotAllowed(t *testing.T) {
	handler, _, _ := setupAdventureHandler()

	tests := []struct {
		name   string
		method string
		path   string
	}{
		{name: "get on collection", method: http.MethodGet, path: "/v1/adventure"},
		{name: "put on session", method: http.MethodPut, path: "/v1/adventure/" + uuid.NewString()},
		{name: "get on choose", method: http.MethodGet, path: "/v1/adventure/" + uuid.NewString() + "/choose"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
		})
	}
}
