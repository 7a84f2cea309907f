package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/xiayeah-xy/love-yumi/pkg/prompts"
	"github.com/xiayeah-xy/love-yumi/pkg/scene"
)

const (
	geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	DefaultGeminiTemperature = 1.0

	DefaultTextModel  = "gemini-3-pro-preview"
	DefaultImageModel = "gemini-2.5-flash-image"
)

// GeminiService implements SceneGenerator against the Gemini API, using
// one model for structured scene text and another for scene images.
type GeminiService struct {
	apiKey     string
	textModel  string
	imageModel string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type geminiGenerationConfig struct {
	ResponseMimeType string             `json:"responseMimeType,omitempty"`
	Temperature      *float64           `json:"temperature,omitempty"`
	ImageConfig      *geminiImageConfig `json:"imageConfig,omitempty"`
}

type geminiGenerateRequest struct {
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	Contents          []geminiContent         `json:"contents"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiGenerateResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
	Error      *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// NewGeminiService creates a Gemini-backed scene generator.
func NewGeminiService(apiKey, textModel, imageModel string, logger *slog.Logger) *GeminiService {
	if textModel == "" {
		textModel = DefaultTextModel
	}
	if imageModel == "" {
		imageModel = DefaultImageModel
	}
	return &GeminiService{
		apiKey:     apiKey,
		textModel:  textModel,
		imageModel: imageModel,
		baseURL:    geminiBaseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: logger,
	}
}

// generateContent makes one generateContent request to the given model.
func (g *GeminiService) generateContent(ctx context.Context, modelName string, req geminiGenerateRequest) (*geminiGenerateResponse, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, modelName)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("x-goog-api-key", g.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var geminiResp geminiGenerateResponse
	if err := json.Unmarshal(body, &geminiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if geminiResp.Error != nil {
		return nil, fmt.Errorf("API error: %s", geminiResp.Error.Message)
	}

	return &geminiResp, nil
}

// firstText returns the first non-empty text part of a reply, or "" when
// the reply carries no text at all.
func firstText(resp *geminiGenerateResponse) string {
	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.Text != "" {
				return part.Text
			}
		}
	}
	return ""
}

// GenerateScene requests the next scene as structured JSON and validates
// it into a Scene, substituting defaults for missing fields.
func (g *GeminiService) GenerateScene(ctx context.Context, playerInput, historySummary string) (*scene.Scene, error) {
	temperature := DefaultGeminiTemperature
	req := geminiGenerateRequest{
		SystemInstruction: &geminiContent{
			Parts: []geminiPart{{Text: prompts.SystemInstruction}},
		},
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompts.BuildScenePrompt(playerInput, historySummary)}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			ResponseMimeType: "application/json",
			Temperature:      &temperature,
		},
	}

	resp, err := g.generateContent(ctx, g.textModel, req)
	if err != nil {
		return nil, &RequestError{Err: err}
	}

	text := firstText(resp)
	if text == "" {
		return nil, &scene.ParseError{Err: fmt.Errorf("reply contains no text content")}
	}

	s, err := scene.Parse([]byte(text))
	if err != nil {
		return nil, err
	}
	return s, nil
}

// GenerateImage requests a scene image and returns it as a PNG data URI.
// Failures are swallowed: an empty reference is a normal outcome, and the
// caller commits the turn without an image.
func (g *GeminiService) GenerateImage(ctx context.Context, imagePrompt string) (string, error) {
	req := geminiGenerateRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompts.BuildImagePrompt(imagePrompt)}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			ImageConfig: &geminiImageConfig{AspectRatio: prompts.ImageAspectRatio},
		},
	}

	resp, err := g.generateContent(ctx, g.imageModel, req)
	if err != nil {
		g.logger.Warn("Image generation failed, continuing without image", "error", err)
		return "", nil
	}

	for _, candidate := range resp.Candidates {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				return "data:image/png;base64," + part.InlineData.Data, nil
			}
		}
	}

	g.logger.Debug("Image reply contained no inline image data")
	return "", nil
}
