package state

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/xiayeah-xy/love-yumi/pkg/scene"
)

func TestNewGameState(t *testing.T) {
	gs := NewGameState()

	if gs.ID == uuid.Nil {
		t.Error("Expected a session ID")
	}
	if gs.Started() {
		t.Error("Fresh session should be in the intro state")
	}
	if gs.LoveScore != LoveScoreBaseline {
		t.Errorf("Expected baseline love score %d, got %d", LoveScoreBaseline, gs.LoveScore)
	}
	if gs.CurrentMapIndex != FirstWaypoint {
		t.Errorf("Expected map index %d, got %d", FirstWaypoint, gs.CurrentMapIndex)
	}
	if gs.IsLoading {
		t.Error("Fresh session should not be loading")
	}
	if len(gs.History) != 0 {
		t.Errorf("Expected empty history, got %d entries", len(gs.History))
	}
}

func TestGameState_HistorySummary(t *testing.T) {
	tests := []struct {
		name     string
		history  []HistoryEntry
		expected string
	}{
		{
			name:     "empty history",
			history:  nil,
			expected: "",
		},
		{
			name: "single entry",
			history: []HistoryEntry{
				{Action: "board the bus", Story: "s1"},
			},
			expected: "board the bus",
		},
		{
			name: "order preserved",
			history: []HistoryEntry{
				{Action: "board the bus", Story: "s1"},
				{Action: "watch the stars", Story: "s2"},
				{Action: "hold hands", Story: "s3"},
			},
			expected: "board the bus -> watch the stars -> hold hands",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gs := NewGameState()
			gs.History = tt.history
			if got := gs.HistorySummary(); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestClampWaypoint(t *testing.T) {
	tests := []struct {
		in       int
		expected int
	}{
		{-3, FirstWaypoint},
		{0, FirstWaypoint},
		{1, 1},
		{4, 4},
		{6, 6},
		{7, LastWaypoint},
		{99, LastWaypoint},
	}

	for _, tt := range tests {
		if got := ClampWaypoint(tt.in); got != tt.expected {
			t.Errorf("ClampWaypoint(%d): expected %d, got %d", tt.in, tt.expected, got)
		}
	}
}

func TestClampLoveScore(t *testing.T) {
	if got := ClampLoveScore(98); got != 98 {
		t.Errorf("Expected 98, got %d", got)
	}
	if got := ClampLoveScore(104); got != LoveScoreMax {
		t.Errorf("Expected %d, got %d", LoveScoreMax, got)
	}
}

func TestGameState_JSONRoundTrip(t *testing.T) {
	gs := NewGameState()
	gs.CurrentScene = &scene.Scene{
		Story:       "A sunset.",
		Options:     []scene.Option{{ID: "A", Text: "go"}},
		Location:    "Harbor",
		Tone:        scene.ToneCute,
		ImagePrompt: "harbor",
	}
	gs.History = append(gs.History, HistoryEntry{Action: "go", Story: "prev"})
	gs.LoveScore = 60
	gs.CurrentMapIndex = 2

	data, err := json.Marshal(gs)
	if err != nil {
		t.Fatalf("Failed to marshal gamestate: %v", err)
	}

	var loaded GameState
	if err := json.Unmarshal(data, &loaded); err != nil {
		t.Fatalf("Failed to unmarshal gamestate: %v", err)
	}

	if loaded.ID != gs.ID {
		t.Errorf("Expected ID %v, got %v", gs.ID, loaded.ID)
	}
	if loaded.CurrentScene == nil || loaded.CurrentScene.Story != "A sunset." {
		t.Error("Scene did not survive the round trip")
	}
	if len(loaded.History) != 1 || loaded.History[0].Action != "go" {
		t.Error("History did not survive the round trip")
	}
	if loaded.LoveScore != 60 || loaded.CurrentMapIndex != 2 {
		t.Errorf("Progress did not survive the round trip: score=%d map=%d",
			loaded.LoveScore, loaded.CurrentMapIndex)
	}
}
