package mcpServer

import (
	"context"
	"net/http"

	"github.com/akolanti/DocFlowAPI/internal/adapter/utils"
	"github.com/akolanti/DocFlowAPI/internal/config"
	"github.com/akolanti/DocFlowAPI/internal/domain/commonModels"
	"github.com/akolanti/DocFlowAPI/internal/domain/flowModel"
	"github.com/akolanti/DocFlowAPI/internal/rag"
	"github.com/akolanti/DocFlowAPI/pkg/logger_i"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverName = "docflow"

var logger = logger_i.NewLogger("MCP")

type DocumentQAInput struct {
	Question        string                  `json:"question" jsonschema:"the question to answer from the document"`
	DocumentContent string                  `json:"document_content" jsonschema:"plain text of the document, may be empty"`
	ChatHistory     []commonModels.ChatTurn `json:"chat_history,omitempty" jsonschema:"earlier turns, oldest first"`
}

type ChatAssistantInput struct {
	Question    string                  `json:"question" jsonschema:"the user's message"`
	ProfileName string                  `json:"profile_name,omitempty" jsonschema:"chat profile, the default profile when empty"`
	ChatHistory []commonModels.ChatTurn `json:"chat_history,omitempty" jsonschema:"earlier turns, oldest first"`
}

type FlowOutput struct {
	Flow      string `json:"flow"`
	Answer    string `json:"answer"`
	Relevance string `json:"relevance_score,omitempty"`
	Sources   string `json:"sources,omitempty"`
}

// NewServer exposes the two flows as synchronous MCP tools. Each call runs the
// flow once against the executor; nothing is stored in a chat session.
func NewServer(executor rag.FlowExecutor, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: version}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        flowModel.DocumentQAName,
		Description: "Answer a question from the supplied document text, with a relevance score and the sections used.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in DocumentQAInput) (*mcp.CallToolResult, FlowOutput, error) {
		return run(ctx, executor, flowModel.DocumentQAName, flowModel.Input{
			Question: in.Question,
			Document: &commonModels.Document{Name: "mcp", Content: in.DocumentContent},
			History:  in.ChatHistory,
		})
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        flowModel.ChatAssistantName,
		Description: "Chat with the assistant using one of the configured profiles.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in ChatAssistantInput) (*mcp.CallToolResult, FlowOutput, error) {
		return run(ctx, executor, flowModel.ChatAssistantName, flowModel.Input{
			Question: in.Question,
			History:  in.ChatHistory,
			Profile:  in.ProfileName,
		})
	})

	return server
}

func run(ctx context.Context, executor rag.FlowExecutor, name string, in flowModel.Input) (*mcp.CallToolResult, FlowOutput, error) {
	if trace, _ := ctx.Value(config.TRACE_ID_KEY).(string); trace == "" {
		ctx = context.WithValue(ctx, config.TRACE_ID_KEY, utils.GetNewUUID())
	}
	log := logger.FromContext(ctx).With("tool", name)
	log.Debug("tool call")

	ctx, cancel := context.WithTimeout(ctx, config.JobTimeout)
	defer cancel()

	res, err := executor.Execute(ctx, name, in)
	if err != nil {
		log.Warn("tool call failed", "error", err)
		return nil, FlowOutput{}, err
	}
	return nil, FlowOutput{
		Flow:      res.Flow,
		Answer:    res.Answer,
		Relevance: res.Relevance,
		Sources:   res.Sources,
	}, nil
}

// Handler serves the MCP streamable HTTP transport for server.
func Handler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}
