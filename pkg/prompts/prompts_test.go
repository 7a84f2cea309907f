package prompts

import (
	"strings"
	"testing"
)

func TestBuildScenePrompt(t *testing.T) {
	prompt := BuildScenePrompt("board the bus", "start -> harbor")

	if !strings.Contains(prompt, "board the bus") {
		t.Error("Prompt should contain the player input")
	}
	if !strings.Contains(prompt, "start -> harbor") {
		t.Error("Prompt should contain the history summary")
	}
}

func TestBuildScenePrompt_EmptyHistoryUsesOpening(t *testing.T) {
	prompt := BuildScenePrompt(InitialPrompt, "")

	if !strings.Contains(prompt, OpeningHistory) {
		t.Error("Empty history should fall back to the opening context")
	}
}

func TestBuildImagePrompt(t *testing.T) {
	prompt := BuildImagePrompt("a harbor at sunset")

	if !strings.HasPrefix(prompt, ImageStylePrefix) {
		t.Error("Image prompt should start with the style preamble")
	}
	if !strings.HasSuffix(prompt, ImageStyleSuffix) {
		t.Error("Image prompt should end with the style suffix")
	}
	if !strings.Contains(prompt, "a harbor at sunset") {
		t.Error("Image prompt should contain the scene description")
	}
}

func TestSystemInstruction_DescribesSchemaAndMap(t *testing.T) {
	if !strings.Contains(SystemInstruction, "Response Schema") {
		t.Error("System instruction should pin the reply schema")
	}
	if !strings.Contains(SystemInstruction, "mapIndex") {
		t.Error("System instruction should mention the waypoint index field")
	}
	if !strings.Contains(SystemInstruction, "6 站") {
		t.Error("System instruction should describe the six-stop map")
	}
}
