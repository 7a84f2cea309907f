package services

import (
	"context"
	"sync"

	"github.com/xiayeah-xy/love-yumi/pkg/scene"
)

// MockGenerator is a mock implementation of SceneGenerator for testing
type MockGenerator struct {
	GenerateSceneFunc func(ctx context.Context, playerInput, historySummary string) (*scene.Scene, error)
	GenerateImageFunc func(ctx context.Context, imagePrompt string) (string, error)

	// Track calls for testing
	GenerateSceneCalls []GenerateSceneCall
	GenerateImageCalls []string

	mu sync.Mutex // protects all fields above
}

type GenerateSceneCall struct {
	PlayerInput    string
	HistorySummary string
}

// NewMockGenerator creates a new mock scene generator
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{
		GenerateSceneCalls: make([]GenerateSceneCall, 0),
		GenerateImageCalls: make([]string, 0),
	}
}

// GenerateScene mocks scene generation
func (m *MockGenerator) GenerateScene(ctx context.Context, playerInput, historySummary string) (*scene.Scene, error) {
	m.mu.Lock()
	m.GenerateSceneCalls = append(m.GenerateSceneCalls, GenerateSceneCall{
		PlayerInput:    playerInput,
		HistorySummary: historySummary,
	})
	fn := m.GenerateSceneFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, playerInput, historySummary)
	}

	// Default behavior - a minimal valid scene
	return &scene.Scene{
		Story:       "Mock story",
		Options:     []scene.Option{{ID: "A", Text: "continue"}},
		Location:    "Mock location",
		Tone:        scene.ToneCute,
		ImagePrompt: "mock image prompt",
	}, nil
}

// GenerateImage mocks image generation
func (m *MockGenerator) GenerateImage(ctx context.Context, imagePrompt string) (string, error) {
	m.mu.Lock()
	m.GenerateImageCalls = append(m.GenerateImageCalls, imagePrompt)
	fn := m.GenerateImageFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, imagePrompt)
	}

	return "data:image/png;base64,bW9jaw==", nil
}

// Reset clears all call tracking
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateSceneCalls = make([]GenerateSceneCall, 0)
	m.GenerateImageCalls = make([]string, 0)
}

// SetGenerateSceneError sets up the mock to return an error on GenerateScene
func (m *MockGenerator) SetGenerateSceneError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateSceneFunc = func(ctx context.Context, playerInput, historySummary string) (*scene.Scene, error) {
		return nil, err
	}
}

// SetGenerateSceneResponse sets up the mock to return a fixed scene
func (m *MockGenerator) SetGenerateSceneResponse(s *scene.Scene) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateSceneFunc = func(ctx context.Context, playerInput, historySummary string) (*scene.Scene, error) {
		return s, nil
	}
}

// SetGenerateImageEmpty sets up the mock to behave like a failed image
// request: empty reference, no error.
func (m *MockGenerator) SetGenerateImageEmpty() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateImageFunc = func(ctx context.Context, imagePrompt string) (string, error) {
		return "", nil
	}
}

// GetCalls returns a copy of the call tracking data in a thread-safe way
func (m *MockGenerator) GetCalls() ([]GenerateSceneCall, []string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sceneCalls := make([]GenerateSceneCall, len(m.GenerateSceneCalls))
	copy(sceneCalls, m.GenerateSceneCalls)

	imageCalls := make([]string, len(m.GenerateImageCalls))
	copy(imageCalls, m.GenerateImageCalls)

	return sceneCalls, imageCalls
}
