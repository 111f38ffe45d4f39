package rag_test

import (
	"context"

	"github.com/akolanti/DocFlowAPI/internal/domain/commonModels"
	"github.com/akolanti/DocFlowAPI/internal/domain/flowModel"
)

// MockExecutor implements rag.FlowExecutor
type MockExecutor struct {
	LastFlow  string
	LastInput flowModel.Input
	OnExecute func(ctx context.Context, name string, in flowModel.Input) (flowModel.FlowResult, error)
}

func (m *MockExecutor) Execute(ctx context.Context, name string, in flowModel.Input) (flowModel.FlowResult, error) {
	m.LastFlow = name
	m.LastInput = in
	if m.OnExecute != nil {
		return m.OnExecute(ctx, name, in)
	}
	return flowModel.FlowResult{Flow: name, Answer: "mocked answer"}, nil
}

type MockExtractor struct {
	OnExtract func(ctx context.Context, name, path string) (commonModels.Document, error)
}

func (m *MockExtractor) Extract(ctx context.Context, name, path string) (commonModels.Document, error) {
	if m.OnExtract != nil {
		return m.OnExtract(ctx, name, path)
	}
	return commonModels.Document{Name: name, Content: "mocked content"}, nil
}
