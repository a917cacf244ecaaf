// Package gemini implements the notes assistant on top of Google Gemini.
package gemini

import (
	"context"
	"iter"

	nucleus "github.com/HariCharanK/Nucleus"
)

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// Content roles understood by the API.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// GenerativeClient abstracts the Gemini API for testing.
type GenerativeClient interface {
	// GenerateContentStream yields response chunks as they arrive. Iteration
	// stops at the first error.
	GenerateContentStream(ctx context.Context, model string, contents []*Content, config *GenerateContentConfig) iter.Seq2[*GenerateContentResponse, error]
}

// Content represents a message in a Gemini conversation.
type Content struct {
	Role  string
	Parts []*Part
}

// Part represents a part of a message. Exactly one field is set.
type Part struct {
	Text             string
	FunctionCall     *FunctionCall
	FunctionResponse *FunctionResponse
}

// FunctionCall is a tool invocation requested by the model. Signature is the
// opaque thought signature that must be echoed back with the call.
type FunctionCall struct {
	ID        string
	Name      string
	Args      map[string]any
	Signature []byte
}

// FunctionResponse carries a tool result back to the model.
type FunctionResponse struct {
	ID       string
	Name     string
	Response map[string]any
}

// FunctionDeclaration describes a callable tool.
type FunctionDeclaration struct {
	Name        string
	Description string
	Parameters  *nucleus.Schema
}

// GenerateContentConfig holds configuration for content generation.
type GenerateContentConfig struct {
	SystemInstruction *Content
	Temperature       *float32
	Tools             []*FunctionDeclaration
}

// GenerateContentResponse is one streamed chunk of a model turn.
type GenerateContentResponse struct {
	Text          string
	FunctionCalls []*FunctionCall
	FinishReason  string
}

// MockGenerativeClient is a mock implementation of GenerativeClient for testing.
type MockGenerativeClient struct {
	GenerateContentStreamFn func(ctx context.Context, model string, contents []*Content, config *GenerateContentConfig) iter.Seq2[*GenerateContentResponse, error]
}

func (m *MockGenerativeClient) GenerateContentStream(ctx context.Context, model string, contents []*Content, config *GenerateContentConfig) iter.Seq2[*GenerateContentResponse, error] {
	return m.GenerateContentStreamFn(ctx, model, contents, config)
}

// APIError represents an error from the Gemini API with HTTP status code.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError with the given status code and message.
func NewAPIError(statusCode int, message string) *APIError {
	return &APIError{StatusCode: statusCode, Message: message}
}
