package flow

import (
	"context"
	"fmt"
	"time"

	"github.com/akolanti/DocFlowAPI/internal/config"
	"github.com/akolanti/DocFlowAPI/internal/domain/commonModels"
	"github.com/akolanti/DocFlowAPI/internal/domain/flowModel"
	"github.com/akolanti/DocFlowAPI/internal/metrics"
	"github.com/akolanti/DocFlowAPI/internal/rag/chat"
	"github.com/akolanti/DocFlowAPI/internal/rag/docqa"
	"github.com/akolanti/DocFlowAPI/internal/rag/llm"
	"github.com/akolanti/DocFlowAPI/pkg/logger_i"
)

// RegistrySource hands out the configuration snapshot for one invocation.
type RegistrySource interface {
	Current() *config.Registry
}

type DocumentQASteps struct {
	Preprocess     func(content, question string, maxWords int) commonModels.ProcessedDocument
	ExtractContext func(doc commonModels.ProcessedDocument, question string, history []commonModels.ChatTurn, opts docqa.ContextOptions) commonModels.ContextBundle
	BuildPrompt    func(systemPrompt string, bundle commonModels.ContextBundle, question string) commonModels.Prompt
	Relevance      func(question, answer, context string, stop []string) string
	Sources        func(doc commonModels.ProcessedDocument, context, answer string) string
}

type ChatAssistantSteps struct {
	PreparePrompt  func(history []commonModels.ChatTurn, question string, profile config.ProfileConfig, window int) commonModels.Prompt
	FormatResponse func(output string, profile config.ProfileConfig) (string, string)
}

func DefaultDocumentQASteps() DocumentQASteps {
	return DocumentQASteps{
		Preprocess:     docqa.PreprocessDocument,
		ExtractContext: docqa.ExtractContext,
		BuildPrompt:    docqa.BuildPrompt,
		Relevance:      docqa.CalculateRelevance,
		Sources:        docqa.ExtractSources,
	}
}

func DefaultChatAssistantSteps() ChatAssistantSteps {
	return ChatAssistantSteps{
		PreparePrompt:  chat.PreparePrompt,
		FormatResponse: chat.FormatResponse,
	}
}

const (
	outcomeOK       = "ok"
	outcomeDegraded = "degraded"
	outcomeError    = "error"
)

type Executor struct {
	registry RegistrySource
	provider llm.Provider
	docQA    DocumentQASteps
	chat     ChatAssistantSteps
	logger   *logger_i.Logger
}

func NewExecutor(registry RegistrySource, provider llm.Provider) *Executor {
	return &Executor{
		registry: registry,
		provider: provider,
		docQA:    DefaultDocumentQASteps(),
		chat:     DefaultChatAssistantSteps(),
		logger:   logger_i.NewLogger("flow_executor"),
	}
}

// WithSteps swaps the step functions, mostly for tests.
func (e *Executor) WithSteps(docQA DocumentQASteps, chatSteps ChatAssistantSteps) *Executor {
	e.docQA = docQA
	e.chat = chatSteps
	return e
}

// Execute runs the named flow once. Nothing is retried and no partial result
// is returned: any failing step fails the invocation.
func (e *Executor) Execute(ctx context.Context, name string, in flowModel.Input) (result flowModel.FlowResult, err error) {
	log := e.logger.FromContext(ctx).With("flow", name)
	outcome := outcomeOK
	defer func() {
		if err != nil {
			outcome = outcomeError
			log.Warn("flow failed", "error", err)
		}
		metrics.CaptureFlowOutcome(name, outcome)
	}()

	reg := e.registry.Current()
	if reg == nil {
		return flowModel.FlowResult{}, fmt.Errorf("%w: %s", flowModel.ErrFlowNotConfigured, name)
	}
	cfg, err := reg.Flow(name)
	if err != nil {
		return flowModel.FlowResult{}, err
	}
	if err := checkInputs(cfg, in); err != nil {
		return flowModel.FlowResult{}, err
	}

	log.Debug("executing flow", "kind", cfg.Kind.String())
	switch cfg.Kind {
	case flowModel.KindDocumentQA:
		var degraded bool
		result, degraded, err = e.runDocumentQA(ctx, cfg, reg.StopWords(), in)
		if degraded {
			outcome = outcomeDegraded
		}
		return result, err
	case flowModel.KindChatAssistant:
		profile, err := reg.Profile(in.Profile)
		if err != nil {
			return flowModel.FlowResult{}, err
		}
		return e.runChatAssistant(ctx, cfg, profile, in)
	default:
		return flowModel.FlowResult{}, fmt.Errorf("%w: %s", flowModel.ErrUnsupportedFlow, name)
	}
}

func checkInputs(cfg config.FlowConfig, in flowModel.Input) error {
	for _, spec := range cfg.Inputs {
		if spec.Required && !in.Provided(spec.Name) {
			return fmt.Errorf("%w: %q for flow %s", flowModel.ErrMissingInput, spec.Name, cfg.Key)
		}
	}
	return nil
}

func (e *Executor) runDocumentQA(ctx context.Context, cfg config.FlowConfig, stop []string, in flowModel.Input) (flowModel.FlowResult, bool, error) {
	steps := e.docQA
	content := ""
	if in.Document != nil {
		content = in.Document.Content
	}

	var doc commonModels.ProcessedDocument
	measure(cfg.Key, "preprocess", func() {
		doc = steps.Preprocess(content, in.Question, cfg.Chunking.MaxWords)
	})
	var bundle commonModels.ContextBundle
	measure(cfg.Key, "extract_context", func() {
		bundle = steps.ExtractContext(doc, in.Question, in.History, docqa.ContextOptions{
			TopChunks:     cfg.Chunking.TopChunks,
			HistoryWindow: cfg.HistoryWindow,
		})
	})

	if len(doc.Chunks) == 0 {
		sources := e.report(ctx, cfg.Key, "sources", docqa.SourcesErrorPrefix, func() string {
			return steps.Sources(doc, bundle.Context, "")
		})
		return flowModel.FlowResult{
			Flow:      cfg.Key,
			Answer:    bundle.Context,
			Relevance: docqa.RelevanceScore{}.String(),
			Sources:   sources,
		}, true, nil
	}

	prompt := steps.BuildPrompt(cfg.SystemPrompt, bundle, in.Question)
	answer, err := e.complete(ctx, cfg.Key, prompt, cfg.Temperature(), cfg.MaxTokens())
	if err != nil {
		return flowModel.FlowResult{}, false, err
	}

	relevance := e.report(ctx, cfg.Key, "relevance", docqa.RelevanceErrorPrefix, func() string {
		return steps.Relevance(in.Question, answer, bundle.Context, stop)
	})
	sources := e.report(ctx, cfg.Key, "sources", docqa.SourcesErrorPrefix, func() string {
		return steps.Sources(doc, bundle.Context, answer)
	})

	return flowModel.FlowResult{
		Flow:      cfg.Key,
		Answer:    answer,
		Relevance: relevance,
		Sources:   sources,
	}, false, nil
}

func (e *Executor) runChatAssistant(ctx context.Context, cfg config.FlowConfig, profile config.ProfileConfig, in flowModel.Input) (flowModel.FlowResult, error) {
	steps := e.chat
	prompt := steps.PreparePrompt(in.History, in.Question, profile, cfg.HistoryWindow)

	maxTokens := profile.MaxTokens
	if maxTokens == 0 {
		maxTokens = cfg.MaxTokens()
	}
	output, err := e.complete(ctx, cfg.Key, prompt, *profile.Temperature, maxTokens)
	if err != nil {
		return flowModel.FlowResult{}, err
	}

	var answer, citations string
	measure(cfg.Key, "format", func() {
		answer, citations = steps.FormatResponse(output, profile)
	})

	return flowModel.FlowResult{
		Flow:    cfg.Key,
		Answer:  answer,
		Sources: citations,
	}, nil
}

// complete returns the provider's error as is.
func (e *Executor) complete(ctx context.Context, flowName string, prompt commonModels.Prompt, temperature float32, maxTokens int) (string, error) {
	if e.provider == nil {
		return "", flowModel.ErrProviderNotConfigured
	}
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics(flowName+"_completion", time.Since(start)) }()

	callCtx, cancel := context.WithTimeout(ctx, completionTimeout)
	defer cancel()
	return e.provider.Complete(callCtx, prompt.Messages(), temperature, maxTokens)
}

var completionTimeout = config.CompletionTimeout

// report runs a scoring or reporting step after the answer exists. A panic in
// the step becomes prefix plus the panic value, so the answer still goes out.
func (e *Executor) report(ctx context.Context, flowName, step, prefix string, fn func() string) (out string) {
	measure(flowName, step, func() {
		defer func() {
			if r := recover(); r != nil {
				e.logger.FromContext(ctx).Error("flow step failed", "flow", flowName, "step", step, "panic", r)
				out = fmt.Sprintf("%s%v", prefix, r)
			}
		}()
		out = fn()
	})
	return out
}

func measure(flowName, step string, fn func()) {
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics(flowName+"_"+step, time.Since(start)) }()
	fn()
}
