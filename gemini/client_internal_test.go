package gemini

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	nucleus "github.com/HariCharanK/Nucleus"
)

func TestConvertSchema(t *testing.T) {
	t.Parallel()

	s := &nucleus.Schema{
		Type: "object",
		Properties: map[string]*nucleus.Schema{
			"command":    {Type: "string", Enum: []string{"view", "create"}},
			"view_range": {Type: "array", Items: &nucleus.Schema{Type: "integer"}},
		},
		Required: []string{"command"},
	}

	gs := convertSchema(s)

	assert.Equal(t, genai.TypeObject, gs.Type)
	assert.Equal(t, []string{"command"}, gs.Required)
	assert.Equal(t, genai.TypeString, gs.Properties["command"].Type)
	assert.Equal(t, []string{"view", "create"}, gs.Properties["command"].Enum)
	assert.Equal(t, genai.TypeArray, gs.Properties["view_range"].Type)
	assert.Equal(t, genai.TypeInteger, gs.Properties["view_range"].Items.Type)
	assert.Nil(t, convertSchema(nil))
}

func TestToGenaiContent(t *testing.T) {
	t.Parallel()

	content := &Content{Role: RoleModel, Parts: []*Part{
		{Text: "checking"},
		{FunctionCall: &FunctionCall{ID: "1", Name: "bash", Args: map[string]any{"command": "ls"}, Signature: []byte("s")}},
		{FunctionResponse: &FunctionResponse{ID: "1", Name: "bash", Response: map[string]any{"output": "x"}}},
	}}

	gc := toGenaiContent(content)

	assert.Equal(t, RoleModel, gc.Role)
	require.Len(t, gc.Parts, 3)
	assert.Equal(t, "checking", gc.Parts[0].Text)
	assert.Equal(t, "bash", gc.Parts[1].FunctionCall.Name)
	assert.Equal(t, []byte("s"), gc.Parts[1].ThoughtSignature)
	assert.Equal(t, map[string]any{"output": "x"}, gc.Parts[2].FunctionResponse.Response)
}

func TestToGenaiConfig(t *testing.T) {
	t.Parallel()

	temp := float32(0.5)
	gc := toGenaiConfig(&GenerateContentConfig{
		SystemInstruction: &Content{Parts: []*Part{{Text: "sys"}}},
		Temperature:       &temp,
		Tools:             []*FunctionDeclaration{{Name: "bash", Parameters: &nucleus.Schema{Type: "object"}}},
	})

	assert.Equal(t, &temp, gc.Temperature)
	assert.Equal(t, "sys", gc.SystemInstruction.Parts[0].Text)
	require.Len(t, gc.Tools, 1)
	require.Len(t, gc.Tools[0].FunctionDeclarations, 1)
	assert.Equal(t, "bash", gc.Tools[0].FunctionDeclarations[0].Name)
	assert.Empty(t, toGenaiConfig(nil).Tools)
}

func TestFromGenaiResponse(t *testing.T) {
	t.Parallel()

	t.Run("text and calls, thoughts dropped", func(t *testing.T) {
		t.Parallel()

		resp := fromGenaiResponse(&genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
			FinishReason: genai.FinishReasonStop,
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "thinking...", Thought: true},
				{Text: "Hello "},
				{Text: "there"},
				{FunctionCall: &genai.FunctionCall{ID: "a", Name: "bash"}, ThoughtSignature: []byte("t")},
			}},
		}}})

		assert.Equal(t, "Hello there", resp.Text)
		assert.Equal(t, string(genai.FinishReasonStop), resp.FinishReason)
		require.Len(t, resp.FunctionCalls, 1)
		assert.Equal(t, "a", resp.FunctionCalls[0].ID)
		assert.Equal(t, []byte("t"), resp.FunctionCalls[0].Signature)
	})

	t.Run("no candidates", func(t *testing.T) {
		t.Parallel()

		resp := fromGenaiResponse(&genai.GenerateContentResponse{})

		assert.Empty(t, resp.Text)
		assert.Empty(t, resp.FunctionCalls)
	})
}

func TestWrapAPIError(t *testing.T) {
	t.Parallel()

	t.Run("value error", func(t *testing.T) {
		t.Parallel()

		err := wrapAPIError(fmt.Errorf("stream: %w", genai.APIError{Code: 503, Message: "overloaded"}))

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, 503, apiErr.StatusCode)
		assert.Equal(t, "gemini API error (HTTP 503): overloaded", apiErr.Message)
	})

	t.Run("other errors pass through", func(t *testing.T) {
		t.Parallel()
		plain := errors.New("dial tcp: timeout")

		assert.Same(t, plain, wrapAPIError(plain))
	})
}
