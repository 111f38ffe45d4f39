package mcpServer

import (
	"context"
	"strings"
	"testing"

	"github.com/akolanti/DocFlowAPI/internal/config"
	"github.com/akolanti/DocFlowAPI/internal/domain/commonModels"
	"github.com/akolanti/DocFlowAPI/internal/rag/flow"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type stubProvider struct {
	answer string
	calls  int
}

func (s *stubProvider) Complete(ctx context.Context, messages []commonModels.ChatTurn, temperature float32, maxTokens int) (string, error) {
	s.calls++
	return s.answer, nil
}

func connect(t *testing.T, provider *stubProvider) *mcp.ClientSession {
	t.Helper()
	reg, err := config.LoadRegistry("")
	if err != nil {
		t.Fatal(err)
	}
	server := NewServer(flow.NewExecutor(config.NewHolder(reg), provider), "test")

	ctx := context.Background()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	if _, err := server.Connect(ctx, serverTransport, nil); err != nil {
		t.Fatalf("server connect: %v", err)
	}
	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("unexpected content %T", res.Content[0])
	}
	return tc.Text
}

func TestListTools(t *testing.T) {
	session := connect(t, &stubProvider{})
	res, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	for _, tool := range res.Tools {
		names[tool.Name] = true
	}
	if !names["document_qa"] || !names["chat_assistant"] || len(names) != 2 {
		t.Errorf("unexpected tools %v", names)
	}
}

func TestCallTool_DocumentQA(t *testing.T) {
	provider := &stubProvider{answer: "Work hours are from 9 AM to 5 PM."}
	session := connect(t, provider)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name: "document_qa",
		Arguments: map[string]any{
			"question":         "What are the work hours?",
			"document_content": "Employees must follow all safety guidelines. Work hours are from 9 AM to 5 PM.",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("tool error: %s", text(t, res))
	}
	body := text(t, res)
	if !strings.Contains(body, "Work hours are from 9 AM to 5 PM.") || !strings.Contains(body, "Relevance") {
		t.Errorf("unexpected result %s", body)
	}
	if provider.calls != 1 {
		t.Errorf("provider called %d times", provider.calls)
	}
}

func TestCallTool_DocumentQA_EmptyDocument(t *testing.T) {
	provider := &stubProvider{answer: "unused"}
	session := connect(t, provider)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "document_qa",
		Arguments: map[string]any{"question": "Anything?", "document_content": ""},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError || !strings.Contains(text(t, res), "No document content available for analysis.") {
		t.Errorf("expected the degraded answer, got %+v", res)
	}
	if provider.calls != 0 {
		t.Error("no completion for an empty document")
	}
}

func TestCallTool_ChatAssistant(t *testing.T) {
	session := connect(t, &stubProvider{answer: "Once upon a time."})

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "chat_assistant",
		Arguments: map[string]any{"question": "Tell me a story", "profile_name": "Creative"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError || !strings.Contains(text(t, res), "Once upon a time.") {
		t.Errorf("unexpected result %+v", res)
	}

	res, err = session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "chat_assistant",
		Arguments: map[string]any{"question": "Ahoy", "profile_name": "Pirate"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError || !strings.Contains(text(t, res), "unknown chat profile") {
		t.Errorf("unknown profile should be a tool error, got %+v", res)
	}
}
