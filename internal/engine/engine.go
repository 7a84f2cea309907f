package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/xiayeah-xy/love-yumi/internal/services"
	"github.com/xiayeah-xy/love-yumi/pkg/prompts"
	"github.com/xiayeah-xy/love-yumi/pkg/scene"
	"github.com/xiayeah-xy/love-yumi/pkg/state"
)

var (
	// ErrTurnInFlight is returned when a turn-initiating event arrives
	// while another turn is still resolving. The event has no effect on
	// state; callers treat it as a no-op.
	ErrTurnInFlight = errors.New("a turn is already in flight")

	// ErrAdventureStarted is returned when StartAdventure is called on a
	// session that already left the intro. There is no path back to the
	// intro except discarding the session.
	ErrAdventureStarted = errors.New("adventure already started")

	// ErrNotStarted is returned when an option is selected before the
	// opening scene exists.
	ErrNotStarted = errors.New("adventure not started")

	// ErrEmptyOption is returned when the selected option has no text.
	ErrEmptyOption = errors.New("option is empty")
)

// TurnEngine sequences one turn at a time: scene request, then image
// request, then a single state commit. It owns all GameState mutation;
// everything outside the engine only dispatches events and reads
// committed snapshots.
type TurnEngine struct {
	generator services.SceneGenerator
	logger    *slog.Logger

	// mu makes the loading guard check-and-set atomic. It is never held
	// across the external calls, so a blocked generator cannot block the
	// guard itself.
	mu sync.Mutex
}

// New creates a turn engine backed by the given scene generator.
func New(generator services.SceneGenerator, logger *slog.Logger) *TurnEngine {
	return &TurnEngine{
		generator: generator,
		logger:    logger,
	}
}

// beginTurn flips the session into the turn-in-flight state, clearing any
// error from a previous attempt. It fails without touching state when a
// turn is already resolving.
func (e *TurnEngine) beginTurn(gs *state.GameState) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if gs.IsLoading {
		return ErrTurnInFlight
	}
	gs.IsLoading = true
	gs.Error = ""
	return nil
}

// failTurn abandons the in-flight turn, leaving all prior state untouched
// except the user-facing recovery message.
func (e *TurnEngine) failTurn(gs *state.GameState, msg string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	gs.Error = msg
	gs.IsLoading = false
	gs.UpdatedAt = time.Now()
}

// StartAdventure runs the opening turn: the fixed opening prompt produces
// the first scene and its image, moving the session from Intro to
// Adventure. On failure the session stays in Intro with a recovery
// message, ready for another attempt.
func (e *TurnEngine) StartAdventure(ctx context.Context, gs *state.GameState) error {
	if gs.Started() {
		return ErrAdventureStarted
	}
	if err := e.beginTurn(gs); err != nil {
		return err
	}

	s, err := e.generator.GenerateScene(ctx, prompts.InitialPrompt, prompts.OpeningHistory)
	if err != nil {
		e.logger.Error("Opening scene request failed", "session_id", gs.ID, "error", err)
		e.failTurn(gs, prompts.MsgStartFailed)
		return fmt.Errorf("start adventure: %w", err)
	}

	imageURL := e.requestImage(ctx, gs, s)

	e.mu.Lock()
	defer e.mu.Unlock()
	gs.CurrentScene = s
	gs.CurrentImageURL = imageURL
	gs.CurrentMapIndex = openingWaypoint(s)
	gs.LoveScore = state.ClampLoveScore(gs.LoveScore + state.StartLoveDelta)
	gs.IsLoading = false
	gs.UpdatedAt = time.Now()

	e.logger.Info("Adventure started",
		"session_id", gs.ID,
		"location", s.Location,
		"map_index", gs.CurrentMapIndex)
	return nil
}

// SelectOption runs one mid-adventure turn for the chosen option. The
// history entry records the pre-turn story (the one the player just read).
// Nothing is committed unless the scene request succeeds.
func (e *TurnEngine) SelectOption(ctx context.Context, gs *state.GameState, opt scene.Option) error {
	if !gs.Started() {
		return ErrNotStarted
	}
	if opt.Text == "" {
		return ErrEmptyOption
	}
	if err := e.beginTurn(gs); err != nil {
		return err
	}

	prevStory := gs.CurrentScene.Story
	summary := gs.HistorySummary()

	s, err := e.generator.GenerateScene(ctx, opt.Text, summary)
	if err != nil {
		e.logger.Error("Scene request failed", "session_id", gs.ID, "option", opt.ID, "error", err)
		e.failTurn(gs, prompts.MsgTurnFailed)
		return fmt.Errorf("select option: %w", err)
	}

	imageURL := e.requestImage(ctx, gs, s)

	e.mu.Lock()
	defer e.mu.Unlock()
	gs.History = append(gs.History, state.HistoryEntry{Action: opt.Text, Story: prevStory})
	gs.CurrentScene = s
	gs.CurrentImageURL = imageURL
	gs.CurrentMapIndex = nextWaypoint(gs.CurrentMapIndex, s)
	gs.LoveScore = state.ClampLoveScore(gs.LoveScore + state.TurnLoveDelta)
	gs.IsLoading = false
	gs.UpdatedAt = time.Now()

	e.logger.Info("Turn committed",
		"session_id", gs.ID,
		"turns", len(gs.History),
		"map_index", gs.CurrentMapIndex,
		"love_score", gs.LoveScore)
	return nil
}

// requestImage fetches the scene image. The image call only exists once
// the scene call has succeeded, and its failure never fails the turn: the
// scene commits with an empty image reference.
func (e *TurnEngine) requestImage(ctx context.Context, gs *state.GameState, s *scene.Scene) string {
	imageURL, err := e.generator.GenerateImage(ctx, s.ImagePrompt)
	if err != nil {
		e.logger.Warn("Image request failed, committing scene without image",
			"session_id", gs.ID, "error", err)
		return ""
	}
	return imageURL
}

// openingWaypoint resolves the first map position: the scene-declared
// waypoint when present, else the first stop.
func openingWaypoint(s *scene.Scene) int {
	if s.MapIndex > 0 {
		return state.ClampWaypoint(s.MapIndex)
	}
	return state.FirstWaypoint
}

// nextWaypoint advances the map position. A scene-declared waypoint wins
// when present, but the position never moves backwards; otherwise the
// position advances by one stop, capped at the final one.
func nextWaypoint(current int, s *scene.Scene) int {
	if s.MapIndex > 0 {
		declared := state.ClampWaypoint(s.MapIndex)
		if declared > current {
			return declared
		}
		return current
	}
	return state.ClampWaypoint(current + 1)
}
