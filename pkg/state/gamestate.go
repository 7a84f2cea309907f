package state

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xiayeah-xy/love-yumi/pkg/scene"
)

const (
	// LoveScoreBaseline is the score a fresh session starts from.
	LoveScoreBaseline = 52

	// LoveScoreMax caps the score for a session.
	LoveScoreMax = 100

	// StartLoveDelta is added on the opening turn.
	StartLoveDelta = 1

	// TurnLoveDelta is added on every later successful turn.
	TurnLoveDelta = 4

	// FirstWaypoint and LastWaypoint bound the adventure map.
	FirstWaypoint = 1
	LastWaypoint  = 6

	// historySeparator joins prior actions into the history summary.
	historySeparator = " -> "
)

// Waypoints are the six fixed stops of the adventure map, in order.
var Waypoints = []string{"起点", "猫咪王国", "伦敦", "老君山", "伊犁", "终点"}

// HistoryEntry records one completed choice: the option text the player
// picked and the story that was on screen when they picked it.
// Entries are appended in turn order and never mutated.
type HistoryEntry struct {
	Action string `json:"action"`
	Story  string `json:"story"`
}

// GameState is the full state of one adventure session. It is owned by the
// turn engine: all mutation happens at the engine's commit points, and
// readers only ever see a fully-committed snapshot.
type GameState struct {
	ID              uuid.UUID      `json:"id"`
	CurrentScene    *scene.Scene   `json:"current_scene,omitempty"`
	History         []HistoryEntry `json:"history"`
	LoveScore       int            `json:"love_score"`
	IsLoading       bool           `json:"is_loading"`
	Error           string         `json:"error,omitempty"`
	CurrentImageURL string         `json:"current_image_url,omitempty"`
	CurrentMapIndex int            `json:"current_map_index"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// NewGameState creates a fresh session in the Intro state.
func NewGameState() *GameState {
	return &GameState{
		ID:              uuid.New(),
		History:         make([]HistoryEntry, 0),
		LoveScore:       LoveScoreBaseline,
		CurrentMapIndex: FirstWaypoint,
		CreatedAt:       time.Now(),
	}
}

// Started reports whether the session has left the Intro state.
func (gs *GameState) Started() bool {
	return gs.CurrentScene != nil
}

// HistorySummary joins all prior actions, oldest first, into the summary
// string sent to the scene generator.
func (gs *GameState) HistorySummary() string {
	if len(gs.History) == 0 {
		return ""
	}
	actions := make([]string, len(gs.History))
	for i, h := range gs.History {
		actions[i] = h.Action
	}
	return strings.Join(actions, historySeparator)
}

// ClampWaypoint bounds an index to the adventure map.
func ClampWaypoint(idx int) int {
	if idx < FirstWaypoint {
		return FirstWaypoint
	}
	if idx > LastWaypoint {
		return LastWaypoint
	}
	return idx
}

// ClampLoveScore caps a score at the session maximum.
func ClampLoveScore(score int) int {
	if score > LoveScoreMax {
		return LoveScoreMax
	}
	return score
}
