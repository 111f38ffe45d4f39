package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/akolanti/DocFlowAPI/internal/domain/flowModel"
)

const minimalFlows = `
default_profile: Assistant
flows:
  document_qa:
    type: document_qa
    description: docs
    system_prompt: analyst
    settings:
      temperature: 0.3
      max_tokens: 1500
  chat_assistant:
    type: chat_assistant
    enabled: false
profiles:
  Assistant:
    system_prompt: helpful
    temperature: 0.7
`

func TestLoadRegistry_EmbeddedDefaults(t *testing.T) {
	reg, err := LoadRegistry("")
	if err != nil {
		t.Fatalf("embedded config should load: %v", err)
	}

	qa, err := reg.Flow(flowModel.DocumentQAName)
	if err != nil {
		t.Fatalf("document_qa missing: %v", err)
	}
	if qa.Kind != flowModel.KindDocumentQA {
		t.Errorf("kind = %v, want document_qa", qa.Kind)
	}
	if qa.Temperature() != 0.3 || qa.MaxTokens() != 1500 {
		t.Errorf("settings = %v/%d, want 0.3/1500", qa.Temperature(), qa.MaxTokens())
	}
	if qa.HistoryWindow != 3 || qa.Chunking.MaxWords != 200 || qa.Chunking.TopChunks != 3 {
		t.Errorf("unexpected doc-qa tuning: %+v", qa)
	}

	chat, err := reg.Flow(flowModel.ChatAssistantName)
	if err != nil {
		t.Fatalf("chat_assistant missing: %v", err)
	}
	if chat.HistoryWindow != 5 {
		t.Errorf("chat history window = %d, want 5", chat.HistoryWindow)
	}

	wantTemps := map[string]float32{
		"Assistant":  0.7,
		"Creative":   0.9,
		"Analytical": 0.3,
		"Technical":  0.5,
		"Business":   0.6,
	}
	for name, temp := range wantTemps {
		p, err := reg.Profile(name)
		if err != nil {
			t.Errorf("profile %s: %v", name, err)
			continue
		}
		if *p.Temperature != temp {
			t.Errorf("profile %s temperature = %v, want %v", name, *p.Temperature, temp)
		}
	}

	if got := len(reg.StopWords()); got != 14 {
		t.Errorf("stop words = %d, want 14", got)
	}
}

func TestRegistry_FlowLookup(t *testing.T) {
	reg, err := ParseRegistry([]byte(minimalFlows))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	tests := []struct {
		name    string
		flow    string
		wantErr error
	}{
		{"enabled flow", flowModel.DocumentQAName, nil},
		{"disabled flow", flowModel.ChatAssistantName, flowModel.ErrFlowDisabled},
		{"unknown flow", "summarize", flowModel.ErrFlowNotConfigured},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.Flow(tt.flow)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Flow(%q) error = %v, want %v", tt.flow, err, tt.wantErr)
			}
		})
	}

	if flows := reg.Flows(); len(flows) != 1 || flows[0].Key != flowModel.DocumentQAName {
		t.Errorf("Flows() should list only enabled flows, got %+v", flows)
	}
}

func TestRegistry_FlowByKind(t *testing.T) {
	const renamed = `
flows:
  handbook_qa:
    type: document_qa
    system_prompt: analyst
  zz_qa:
    type: document_qa
    system_prompt: second analyst
  helper:
    type: chat_assistant
    enabled: false
profiles:
  Assistant:
    system_prompt: helpful
    temperature: 0.7
`
	reg, err := ParseRegistry([]byte(renamed))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	tests := []struct {
		name    string
		kind    flowModel.Kind
		wantKey string
		wantErr error
	}{
		{"first key wins", flowModel.KindDocumentQA, "handbook_qa", nil},
		{"only flow of kind is off", flowModel.KindChatAssistant, "", flowModel.ErrFlowDisabled},
		{"no flow of kind", flowModel.KindUnsupported, "", flowModel.ErrFlowNotConfigured},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := reg.FlowByKind(tt.kind)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("FlowByKind(%v) error = %v, want %v", tt.kind, err, tt.wantErr)
			}
			if f.Key != tt.wantKey {
				t.Errorf("key = %q, want %q", f.Key, tt.wantKey)
			}
		})
	}
}

func TestRegistry_ProfileLookup(t *testing.T) {
	reg, err := ParseRegistry([]byte(minimalFlows))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	p, err := reg.Profile("")
	if err != nil || p.Name != "Assistant" {
		t.Errorf("empty name should resolve the default profile, got %+v, %v", p, err)
	}

	if _, err := reg.Profile("Pirate"); !errors.Is(err, flowModel.ErrUnknownProfile) {
		t.Errorf("unknown profile error = %v, want ErrUnknownProfile", err)
	}
}

func TestParseRegistry_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
		wantMsg string
	}{
		{
			name: "unsupported flow type",
			yaml: `
flows:
  summarize:
    type: summarizer
`,
			wantErr: flowModel.ErrUnsupportedFlow,
		},
		{
			name: "temperature out of range",
			yaml: `
flows:
  document_qa:
    system_prompt: x
    settings:
      temperature: 2.5
`,
			wantMsg: "temperature must be between",
		},
		{
			name: "profile without temperature",
			yaml: `
flows:
  chat_assistant: {}
profiles:
  Bare:
    system_prompt: hi
`,
			wantMsg: "temperature is required",
		},
		{
			name: "profile without prompt",
			yaml: `
flows:
  chat_assistant: {}
profiles:
  Bare:
    temperature: 0.2
`,
			wantMsg: "system_prompt is required",
		},
		{
			name: "bad top_p",
			yaml: `
flows:
  chat_assistant: {}
profiles:
  Wide:
    system_prompt: hi
    temperature: 0.2
    top_p: 1.5
`,
			wantMsg: "top_p must be between",
		},
		{
			name: "default profile missing",
			yaml: `
default_profile: Ghost
flows:
  chat_assistant: {}
profiles:
  Assistant:
    system_prompt: hi
    temperature: 0.2
`,
			wantMsg: "default profile",
		},
		{
			name:    "no flows",
			yaml:    `profiles: {}`,
			wantMsg: "no flows configured",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRegistry([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected a validation error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantMsg != "" && !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestParseRegistry_ExpandsEnvironment(t *testing.T) {
	t.Setenv("DOCFLOW_TEST_PROMPT", "from the environment")

	reg, err := ParseRegistry([]byte(`
flows:
  document_qa:
    system_prompt: ${DOCFLOW_TEST_PROMPT}
`))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	f, _ := reg.Flow(flowModel.DocumentQAName)
	if f.SystemPrompt != "from the environment" {
		t.Errorf("system prompt = %q", f.SystemPrompt)
	}
}

func TestParseRegistry_EnvironmentValuesStayText(t *testing.T) {
	const flows = `
flows:
  document_qa:
    system_prompt: ${DOCFLOW_TEST_PROMPT}
    settings:
      temperature: ${DOCFLOW_TEST_TEMPERATURE}
`
	tests := []struct {
		name   string
		prompt string
	}{
		{"comment marker is kept", "Answer briefly # cite sections"},
		{"newline does not add keys", "x\n    enabled: false"},
		{"quotes and colons", `say "hi": then stop`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DOCFLOW_TEST_PROMPT", tt.prompt)
			t.Setenv("DOCFLOW_TEST_TEMPERATURE", "0.4")

			reg, err := ParseRegistry([]byte(flows))
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			f, err := reg.Flow(flowModel.DocumentQAName)
			if err != nil {
				t.Fatalf("flow should stay enabled: %v", err)
			}
			if f.SystemPrompt != tt.prompt {
				t.Errorf("system prompt = %q, want %q", f.SystemPrompt, tt.prompt)
			}
			if f.Temperature() != 0.4 {
				t.Errorf("temperature = %v, want 0.4", f.Temperature())
			}
		})
	}
}

func TestParseRegistry_UnsetVariableIsKept(t *testing.T) {
	reg, err := ParseRegistry([]byte(`
flows:
  document_qa:
    system_prompt: ${DOCFLOW_TEST_UNSET_PROMPT}
`))
	if err != nil {
		t.Fatal(err)
	}
	f, _ := reg.Flow(flowModel.DocumentQAName)
	if f.SystemPrompt != "${DOCFLOW_TEST_UNSET_PROMPT}" {
		t.Errorf("system prompt = %q", f.SystemPrompt)
	}
}

func TestWatchRegistry_SwapsOnValidWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flows.yaml")
	if err := os.WriteFile(path, []byte(minimalFlows), 0o644); err != nil {
		t.Fatal(err)
	}

	reg, err := LoadRegistry(path)
	if err != nil {
		t.Fatal(err)
	}
	holder := NewHolder(reg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan struct{}, 4)
	failed := make(chan error, 4)
	if err := WatchRegistry(ctx, path, holder,
		func(*Registry) {
			select {
			case reloaded <- struct{}{}:
			default:
			}
		},
		func(err error) {
			select {
			case failed <- err:
			default:
			}
		},
	); err != nil {
		t.Fatalf("watch failed: %v", err)
	}

	// invalid edit keeps the old snapshot
	if err := os.WriteFile(path, []byte("flows: {document_qa: {type: nope}}"), 0o644); err != nil {
		t.Fatal(err)
	}
	select {
	case <-failed:
	case <-time.After(2 * time.Second):
		t.Fatal("invalid config was not reported")
	}
	if holder.Current() != reg {
		t.Fatal("invalid config replaced the registry")
	}

	enabled := strings.Replace(minimalFlows, "enabled: false", "enabled: true", 1)
	if err := os.WriteFile(path, []byte(enabled), 0o644); err != nil {
		t.Fatal(err)
	}
	deadline := time.After(2 * time.Second)
	for {
		select {
		case <-reloaded:
			if _, err := holder.Current().Flow(flowModel.ChatAssistantName); err == nil {
				return
			}
		case <-failed:
			// partial writes can be observed mid-flight
		case <-deadline:
			t.Fatal("registry was not swapped after a valid write")
		}
	}
}
