package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/xiayeah-xy/love-yumi/pkg/state"
)

// Storage holds adventure session snapshots. Sessions are ephemeral: the
// backing store expires them, and a deleted session is a full reset.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// Session snapshot operations
	SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error
	// LoadGameState returns nil (without error) when the session is
	// unknown or expired.
	LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error)
	DeleteGameState(ctx context.Context, id uuid.UUID) error
}
