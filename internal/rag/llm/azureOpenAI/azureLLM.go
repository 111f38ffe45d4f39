package azureOpenAI

import (
	"context"
	"fmt"
	"sync"

	"github.com/akolanti/DocFlowAPI/internal/customHttpClient"
	"github.com/akolanti/DocFlowAPI/internal/domain/commonModels"
	"github.com/akolanti/DocFlowAPI/internal/domain/flowModel"
	"github.com/akolanti/DocFlowAPI/internal/rag/llm"
	"github.com/akolanti/DocFlowAPI/pkg/logger_i"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"
)

type Settings struct {
	Endpoint   string
	APIKey     string
	Deployment string
	APIVersion string
}

func (s Settings) validate() error {
	switch {
	case s.Endpoint == "":
		return fmt.Errorf("%w: AZURE_OPENAI_ENDPOINT is not set", flowModel.ErrProviderNotConfigured)
	case s.APIKey == "":
		return fmt.Errorf("%w: AZURE_OPENAI_API_KEY is not set", flowModel.ErrProviderNotConfigured)
	case s.Deployment == "":
		return fmt.Errorf("%w: AZURE_OPENAI_DEPLOYMENT_NAME is not set", flowModel.ErrProviderNotConfigured)
	}
	return nil
}

// provider creates its client on the first completion and reuses it afterwards.
type provider struct {
	settings Settings
	logger   *logger_i.Logger

	once   sync.Once
	client openai.Client
}

// NewProvider checks the deployment settings; the client itself is built lazily.
func NewProvider(s Settings) (llm.Provider, error) {
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &provider{settings: s, logger: logger_i.NewLogger("llm_azure_openai")}, nil
}

func (p *provider) getClient() openai.Client {
	p.once.Do(func() {
		p.client = openai.NewClient(
			azure.WithEndpoint(p.settings.Endpoint, p.settings.APIVersion),
			azure.WithAPIKey(p.settings.APIKey),
			option.WithMaxRetries(0),
			option.WithHTTPClient(customHttpClient.Pooled()),
		)
		p.logger.Info("Azure OpenAI client created", "deployment", p.settings.Deployment)
	})
	return p.client
}

func (p *provider) Complete(ctx context.Context, messages []commonModels.ChatTurn, temperature float32, maxTokens int) (string, error) {
	log := p.logger.FromContext(ctx)
	client := p.getClient()

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(p.settings.Deployment),
		Messages:    toMessages(messages),
		Temperature: openai.Float(float64(temperature)),
		MaxTokens:   openai.Int(int64(maxTokens)),
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		log.Error("Azure OpenAI completion failed", "error", err)
		return "", fmt.Errorf("azure openai completion: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", llm.ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

func toMessages(turns []commonModels.ChatTurn) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, 0, len(turns))
	for _, t := range turns {
		switch t.Role {
		case commonModels.RoleSystem:
			out = append(out, openai.SystemMessage(t.Content))
		case commonModels.RoleAssistant:
			out = append(out, openai.AssistantMessage(t.Content))
		default:
			out = append(out, openai.UserMessage(t.Content))
		}
	}
	return out
}
