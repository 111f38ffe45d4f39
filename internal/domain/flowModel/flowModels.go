package flowModel

import (
	"errors"

	"github.com/akolanti/DocFlowAPI/internal/domain/commonModels"
)

// Kind is the closed set of pipelines the executor knows how to run.
type Kind int

const (
	KindUnsupported Kind = iota
	KindDocumentQA
	KindChatAssistant
)

const (
	DocumentQAName    = "document_qa"
	ChatAssistantName = "chat_assistant"

	InputQuestion = "question"
	InputDocument = "document_content"
	InputHistory  = "chat_history"
	InputProfile  = "profile_name"
)

func ParseKind(name string) Kind {
	switch name {
	case DocumentQAName:
		return KindDocumentQA
	case ChatAssistantName:
		return KindChatAssistant
	default:
		return KindUnsupported
	}
}

func (k Kind) String() string {
	switch k {
	case KindDocumentQA:
		return DocumentQAName
	case KindChatAssistant:
		return ChatAssistantName
	default:
		return "unsupported"
	}
}

var (
	ErrFlowNotConfigured     = errors.New("flow configuration not found")
	ErrFlowDisabled          = errors.New("flow is disabled")
	ErrUnsupportedFlow       = errors.New("unsupported flow type")
	ErrMissingInput          = errors.New("missing required flow input")
	ErrUnknownProfile        = errors.New("unknown chat profile")
	ErrProviderNotConfigured = errors.New("completion provider not configured")
)

// IsConfigError reports whether err is fatal configuration trouble rather than a service failure.
func IsConfigError(err error) bool {
	return errors.Is(err, ErrFlowNotConfigured) ||
		errors.Is(err, ErrFlowDisabled) ||
		errors.Is(err, ErrUnsupportedFlow) ||
		errors.Is(err, ErrUnknownProfile) ||
		errors.Is(err, ErrProviderNotConfigured)
}

// Input is what a caller hands to one flow invocation. Document is nil when
// no document was supplied at all; a supplied but blank document is valid input.
type Input struct {
	Question string
	Document *commonModels.Document
	History  []commonModels.ChatTurn
	Profile  string
}

// Provided reports which named inputs are present, for required-input checks.
func (in Input) Provided(name string) bool {
	switch name {
	case InputQuestion:
		return in.Question != ""
	case InputDocument:
		return in.Document != nil
	case InputHistory:
		return in.History != nil
	case InputProfile:
		return in.Profile != ""
	default:
		return false
	}
}

type FlowResult struct {
	Flow      string `json:"flow"`
	Answer    string `json:"answer"`
	Relevance string `json:"relevance_score,omitempty"`
	Sources   string `json:"sources,omitempty"`
}
