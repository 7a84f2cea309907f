package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/xiayeah-xy/love-yumi/pkg/state"
)

func TestGetAdventure(t *testing.T) {
	gs := state.NewGameState()
	gs.LoveScore = 60
	gs.CurrentMapIndex = 3

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/v1/adventure/"+gs.ID.String() {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Session not found"})
			return
		}
		_ = json.NewEncoder(w).Encode(gs)
	}))
	defer server.Close()

	client := &http.Client{Timeout: 5 * time.Second}

	got, err := getAdventure(client, server.URL, gs.ID)
	if err != nil {
		t.Fatalf("getAdventure failed: %v", err)
	}
	if got.ID != gs.ID {
		t.Errorf("Expected ID %s, got %s", gs.ID, got.ID)
	}
	if got.LoveScore != 60 || got.CurrentMapIndex != 3 {
		t.Errorf("Snapshot not preserved: score=%d map=%d", got.LoveScore, got.CurrentMapIndex)
	}
}

func TestGetAdventure_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(ErrorResponse{Error: "Session not found"})
	}))
	defer server.Close()

	client := &http.Client{Timeout: 5 * time.Second}

	_, err := getAdventure(client, server.URL, state.NewGameState().ID)
	if err == nil {
		t.Fatal("Expected error for unknown session")
	}
}

func TestRefreshCmd_ReadsCommittedSnapshot(t *testing.T) {
	gs := state.NewGameState()
	gs.LoveScore = 72

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(gs)
	}))
	defer server.Close()

	client := &http.Client{Timeout: 5 * time.Second}
	cfg := &ConsoleConfig{APIBaseURL: server.URL, Timeout: 5 * time.Second}

	m := NewConsoleUI(cfg, client)
	m.gs = gs

	msg, ok := m.refreshCmd()().(refreshMsg)
	if !ok {
		t.Fatal("Expected a refreshMsg")
	}
	if msg.err != nil {
		t.Fatalf("Refresh failed: %v", msg.err)
	}
	if msg.gs == nil || msg.gs.LoveScore != 72 {
		t.Errorf("Expected the committed snapshot, got %+v", msg.gs)
	}
}
