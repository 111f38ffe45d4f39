package docqa

import (
	"fmt"

	"github.com/akolanti/DocFlowAPI/internal/domain/commonModels"
)

const userPromptTemplate = `Context from document:
%s

%s

Question: %s

Please provide a comprehensive answer based on the context above. If the context is insufficient to fully answer the question, please explain what additional information would be needed.`

// BuildPrompt embeds the extracted context, recent history and question.
func BuildPrompt(systemPrompt string, bundle commonModels.ContextBundle, question string) commonModels.Prompt {
	return commonModels.Prompt{
		System: systemPrompt,
		User:   fmt.Sprintf(userPromptTemplate, bundle.Context, bundle.FormattedHistory, question),
	}
}
