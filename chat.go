package nucleus

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrSessionNotFound is returned when a session id is unknown to a SessionStore.
var ErrSessionNotFound = errors.New("session not found")

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body of a chat call.
type ChatRequest struct {
	SessionID string    `json:"sessionId,omitempty"`
	Messages  []Message `json:"messages"`
}

// EventType discriminates ChatEvent payloads.
type EventType string

// Chat event types, in the order they typically appear in a stream.
const (
	EventSession    EventType = "session"
	EventText       EventType = "text"
	EventToolUse    EventType = "tool_use"
	EventToolResult EventType = "tool_result"
	EventError      EventType = "error"
	EventDone       EventType = "done"
)

// ChatEvent is a single item streamed back while the assistant works.
type ChatEvent struct {
	Type      EventType      `json:"type"`
	Text      string         `json:"text,omitempty"`
	SessionID string         `json:"sessionId,omitempty"`
	ToolID    string         `json:"toolId,omitempty"`
	ToolName  string         `json:"toolName,omitempty"`
	Input     map[string]any `json:"input,omitempty"`
	Output    string         `json:"output,omitempty"`
	IsError   bool           `json:"isError,omitempty"`
}

// Assistant runs a conversation against a hosted model, executing tool calls
// as the model requests them.
type Assistant interface {
	// Chat streams the reply to messages through emit. An error returned by
	// emit aborts the conversation and is returned from Chat.
	Chat(ctx context.Context, messages []Message, emit func(ChatEvent) error) error
}

// Schema describes tool parameters in a provider-neutral form.
type Schema struct {
	Type        string             // object, array, string, integer, boolean
	Description string             // Field description
	Properties  map[string]*Schema // For object types
	Items       *Schema            // For array types
	Enum        []string           // For string enums
	Required    []string           // Required property names
}

// Tool is a capability exposed to the model.
type Tool interface {
	Name() string
	Description() string
	Parameters() *Schema
	// Run executes the tool. A non-nil error is reported back to the model
	// as a failed tool result rather than ending the conversation.
	Run(ctx context.Context, args map[string]any) (string, error)
}

// TokenCounter estimates the token length of text.
type TokenCounter interface {
	Count(text string) int
}

// Session is a persisted conversation.
type Session struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Messages  []Message `json:"messages"`
}

// SessionSummary is the listing form of a Session.
type SessionSummary struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	UpdatedAt    time.Time `json:"updatedAt"`
	MessageCount int       `json:"messageCount"`
}

// SessionStore persists conversations.
type SessionStore interface {
	Load(id string) (*Session, error)
	Save(s *Session) error
	List() ([]SessionSummary, error)
}

// SessionTitle derives a display title from the first user message.
func SessionTitle(messages []Message) string {
	const maxTitle = 60
	for _, m := range messages {
		if m.Role != RoleUser {
			continue
		}
		title := strings.TrimSpace(firstLine(m.Content))
		if title == "" {
			continue
		}
		runes := []rune(title)
		if len(runes) > maxTitle {
			return string(runes[:maxTitle-1]) + "…"
		}
		return title
	}
	return "Untitled"
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
