package scene

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Tone values the narrative engine may declare for a scene.
const (
	ToneCute      = "cute"
	ToneGentleman = "gentleman"
)

// Defaults substituted for missing or malformed non-required fields.
const (
	DefaultLocation    = "神秘的时空角落"
	DefaultImagePrompt = "A beautiful romantic scenery in 3D anime style"
)

// Option is one player choice offered by a scene. IDs are only unique
// within a single scene's option list.
type Option struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Scene is the narrative payload produced for one turn. It is immutable
// once constructed and superseded wholesale by the next turn's scene.
type Scene struct {
	Story        string   `json:"story"`
	Options      []Option `json:"options"`
	Location     string   `json:"location"`
	Tone         string   `json:"tone"`
	HeartMessage string   `json:"heart_message,omitempty"`
	ImagePrompt  string   `json:"image_prompt"`

	// MapIndex is the scene-declared waypoint index, 0 when the model
	// did not declare one.
	MapIndex int `json:"map_index,omitempty"`
}

// ParseError indicates the model reply could not be interpreted as a scene.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse scene reply: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// rawScene matches the model's reply schema. Fields are loosely typed so a
// sloppy reply degrades to defaults instead of failing the turn.
type rawScene struct {
	Story        any `json:"story"`
	Options      any `json:"options"`
	Location     any `json:"location"`
	Tone         any `json:"tone"`
	HeartMessage any `json:"heartMessage"`
	ImagePrompt  any `json:"imagePrompt"`
	MapIndex     any `json:"mapIndex"`
}

// Parse validates a model reply and produces a fully-typed Scene. A reply
// that is not well-formed JSON fails with a *ParseError; individual fields
// that are missing or of the wrong shape are replaced with documented
// defaults rather than failing.
func Parse(data []byte) (*Scene, error) {
	var raw rawScene
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &ParseError{Err: err}
	}

	s := &Scene{
		Story:        asString(raw.Story, ""),
		Location:     asString(raw.Location, DefaultLocation),
		Tone:         normalizeTone(raw.Tone),
		HeartMessage: asString(raw.HeartMessage, ""),
		ImagePrompt:  asString(raw.ImagePrompt, DefaultImagePrompt),
		MapIndex:     asInt(raw.MapIndex),
		Options:      parseOptions(raw.Options),
	}
	return s, nil
}

func parseOptions(v any) []Option {
	items, ok := v.([]any)
	if !ok {
		return []Option{}
	}

	options := make([]Option, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		options = append(options, Option{
			ID:   asString(m["id"], ""),
			Text: asString(m["text"], ""),
		})
	}
	return options
}

// normalizeTone accepts only the two known tones; anything else is cute.
func normalizeTone(v any) string {
	if s, ok := v.(string); ok && s == ToneGentleman {
		return ToneGentleman
	}
	return ToneCute
}

func asString(v any, fallback string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return fallback
}

func asInt(v any) int {
	switch n := v.(type) {
	case float64:
		return int(n)
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i
		}
	}
	return 0
}
