package prompts

import (
	"fmt"
	"strings"
)

// BuildScenePrompt assembles the user content for one scene request from
// the player's input and the running history summary.
func BuildScenePrompt(playerInput, historySummary string) string {
	if historySummary == "" {
		historySummary = OpeningHistory
	}
	return fmt.Sprintf("历史剧情背景: %s\n\n北北的选择: %s\n\n请生成下一个浪漫场景。", historySummary, playerInput)
}

// BuildImagePrompt wraps a scene's image description in the fixed
// aesthetic framing.
func BuildImagePrompt(imagePrompt string) string {
	var sb strings.Builder
	sb.WriteString(ImageStylePrefix)
	sb.WriteString(imagePrompt)
	sb.WriteString(ImageStyleSuffix)
	return sb.String()
}
