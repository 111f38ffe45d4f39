package chat

import (
	"strings"

	"github.com/akolanti/DocFlowAPI/internal/config"
	"github.com/akolanti/DocFlowAPI/internal/domain/commonModels"
)

const (
	DefaultHistoryWindow = 5

	historyHeader  = "\n\nPrevious conversation:\n"
	questionHeader = "\n\nCurrent question: "
)

// PreparePrompt pairs the profile's system prompt with the recent turns and the question.
func PreparePrompt(history []commonModels.ChatTurn, question string, profile config.ProfileConfig, window int) commonModels.Prompt {
	if window <= 0 {
		window = DefaultHistoryWindow
	}

	var b strings.Builder
	if turns := commonModels.LastTurns(history, window); len(turns) > 0 {
		b.WriteString(historyHeader)
		for _, t := range turns {
			b.WriteString(t.Line())
		}
	}
	b.WriteString(questionHeader)
	b.WriteString(question)

	return commonModels.Prompt{
		System: profile.SystemPrompt,
		User:   strings.TrimSpace(b.String()),
	}
}
