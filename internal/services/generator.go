package services

import (
	"context"
	"fmt"

	"github.com/xiayeah-xy/love-yumi/pkg/scene"
)

// SceneGenerator defines the interface to the external generative
// capabilities: one call for the next narrative scene, one for its image.
type SceneGenerator interface {
	// GenerateScene requests the next narrative scene for the player's
	// input and the running history summary. Transport and service
	// failures are returned as *RequestError; replies that are not
	// well-formed scene JSON are returned as *scene.ParseError.
	GenerateScene(ctx context.Context, playerInput, historySummary string) (*scene.Scene, error)

	// GenerateImage requests an image for a scene's image description and
	// returns it as a displayable data URI. Image generation is
	// best-effort: failures are recovered locally and reported as an
	// empty reference, never as an error the turn has to handle.
	GenerateImage(ctx context.Context, imagePrompt string) (string, error)
}

// RequestError indicates the scene request itself failed
// (transport, auth, or quota), as opposed to an unparseable reply.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("scene request failed: %v", e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}
