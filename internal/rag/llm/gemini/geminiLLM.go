package gemini

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/akolanti/DocFlowAPI/internal/customHttpClient"
	"github.com/akolanti/DocFlowAPI/internal/domain/commonModels"
	"github.com/akolanti/DocFlowAPI/internal/domain/flowModel"
	"github.com/akolanti/DocFlowAPI/internal/rag/llm"
	"github.com/akolanti/DocFlowAPI/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client    *genai.Client
	modelName string
}

var logger *logger_i.Logger
var geminiClient *llmClient
var initErr error
var once sync.Once

// GetGeminiClient builds the shared client on first use and hands out the same one afterwards.
func GetGeminiClient(ctx context.Context, apiKey string, modelName string) (llm.Provider, error) {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		initErr = newGeminiClient(ctx, apiKey, modelName)
	})

	if initErr != nil {
		return nil, initErr
	}
	return geminiClient, nil
}

func newGeminiClient(ctx context.Context, apiKey string, modelName string) error {
	if apiKey == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY is not set", flowModel.ErrProviderNotConfigured)
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: customHttpClient.Pooled(),
	})
	if err != nil {
		logger.Error("Error creating Gemini client:", "error", err)
		return err
	}
	geminiClient = &llmClient{client: c, modelName: modelName}
	logger.Info("Gemini client created", "model", modelName)
	return nil
}

func (c *llmClient) Complete(ctx context.Context, messages []commonModels.ChatTurn, temperature float32, maxTokens int) (string, error) {
	log := logger.FromContext(ctx)

	var system []string
	contents := make([]*genai.Content, 0, len(messages))
	for _, m := range messages {
		switch m.Role {
		case commonModels.RoleSystem:
			system = append(system, m.Content)
		case commonModels.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	contentConfig := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(temperature),
		MaxOutputTokens: int32(maxTokens),
	}
	if len(system) > 0 {
		contentConfig.SystemInstruction = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}

	result, err := c.client.Models.GenerateContent(ctx, c.modelName, contents, contentConfig)
	if err != nil {
		log.Error("Gemini generate failed", "error", err)
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	text := result.Text()
	if text == "" {
		return "", llm.ErrEmptyCompletion
	}
	log.Debug("Gemini completion", "chars", len(text))
	return text, nil
}
