package gemini

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"google.golang.org/genai"

	nucleus "github.com/HariCharanK/Nucleus"
)

// Client wraps the Gemini genai.Client.
type Client struct {
	client *genai.Client
}

// NewClient creates a new Client with the given API key.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return &Client{client: client}, nil
}

// Close is a no-op for the new genai SDK (no cleanup needed).
func (c *Client) Close() error {
	return nil
}

// GenerateContentStream implements GenerativeClient by delegating to the genai.Client.
func (c *Client) GenerateContentStream(ctx context.Context, model string, contents []*Content, config *GenerateContentConfig) iter.Seq2[*GenerateContentResponse, error] {
	genaiContents := make([]*genai.Content, len(contents))
	for i, content := range contents {
		genaiContents[i] = toGenaiContent(content)
	}
	genaiConfig := toGenaiConfig(config)

	return func(yield func(*GenerateContentResponse, error) bool) {
		for result, err := range c.client.Models.GenerateContentStream(ctx, model, genaiContents, genaiConfig) {
			if err != nil {
				yield(nil, wrapAPIError(err))
				return
			}
			if !yield(fromGenaiResponse(result), nil) {
				return
			}
		}
	}
}

func toGenaiConfig(config *GenerateContentConfig) *genai.GenerateContentConfig {
	genaiConfig := &genai.GenerateContentConfig{}
	if config == nil {
		return genaiConfig
	}
	if config.Temperature != nil {
		genaiConfig.Temperature = config.Temperature
	}
	if config.SystemInstruction != nil {
		genaiConfig.SystemInstruction = toGenaiContent(config.SystemInstruction)
	}
	if len(config.Tools) > 0 {
		decls := make([]*genai.FunctionDeclaration, len(config.Tools))
		for i, t := range config.Tools {
			decls[i] = &genai.FunctionDeclaration{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  convertSchema(t.Parameters),
			}
		}
		genaiConfig.Tools = []*genai.Tool{{FunctionDeclarations: decls}}
	}
	return genaiConfig
}

func toGenaiContent(content *Content) *genai.Content {
	parts := make([]*genai.Part, 0, len(content.Parts))
	for _, part := range content.Parts {
		switch {
		case part.FunctionCall != nil:
			parts = append(parts, &genai.Part{
				FunctionCall: &genai.FunctionCall{
					ID:   part.FunctionCall.ID,
					Name: part.FunctionCall.Name,
					Args: part.FunctionCall.Args,
				},
				ThoughtSignature: part.FunctionCall.Signature,
			})
		case part.FunctionResponse != nil:
			parts = append(parts, &genai.Part{
				FunctionResponse: &genai.FunctionResponse{
					ID:       part.FunctionResponse.ID,
					Name:     part.FunctionResponse.Name,
					Response: part.FunctionResponse.Response,
				},
			})
		default:
			parts = append(parts, &genai.Part{Text: part.Text})
		}
	}
	return &genai.Content{Role: content.Role, Parts: parts}
}

// fromGenaiResponse flattens the first candidate of a chunk. Thought parts
// are dropped.
func fromGenaiResponse(result *genai.GenerateContentResponse) *GenerateContentResponse {
	resp := &GenerateContentResponse{}
	if result == nil || len(result.Candidates) == 0 {
		return resp
	}
	candidate := result.Candidates[0]
	resp.FinishReason = string(candidate.FinishReason)
	if candidate.Content == nil {
		return resp
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		switch {
		case part.FunctionCall != nil:
			resp.FunctionCalls = append(resp.FunctionCalls, &FunctionCall{
				ID:        part.FunctionCall.ID,
				Name:      part.FunctionCall.Name,
				Args:      part.FunctionCall.Args,
				Signature: part.ThoughtSignature,
			})
		case part.Thought:
		default:
			text.WriteString(part.Text)
		}
	}
	resp.Text = text.String()
	return resp
}

// wrapAPIError converts genai.APIError to our APIError type.
func wrapAPIError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return newWrappedAPIError(apiErr)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return newWrappedAPIError(*apiErrPtr)
	}
	return err
}

func newWrappedAPIError(apiErr genai.APIError) *APIError {
	return &APIError{
		StatusCode: apiErr.Code,
		Message:    fmt.Sprintf("gemini API error (HTTP %d): %s", apiErr.Code, apiErr.Message),
	}
}

// convertSchema recursively converts a tool Schema to genai.Schema.
func convertSchema(s *nucleus.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	gs := &genai.Schema{
		Type:        genai.Type(strings.ToUpper(s.Type)),
		Enum:        s.Enum,
		Required:    s.Required,
		Description: s.Description,
	}
	if s.Properties != nil {
		gs.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for k, v := range s.Properties {
			gs.Properties[k] = convertSchema(v)
		}
	}
	if s.Items != nil {
		gs.Items = convertSchema(s.Items)
	}
	return gs
}

// Compile-time check that Client implements GenerativeClient.
var _ GenerativeClient = (*Client)(nil)
