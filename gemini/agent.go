package gemini

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	nucleus "github.com/HariCharanK/Nucleus"
)

// Compile-time interface verification.
var _ nucleus.Assistant = (*Agent)(nil)

// DefaultMaxTurns bounds the number of model calls in one Chat.
const DefaultMaxTurns = 25

// ErrTurnLimit is returned when the model keeps calling tools past the turn limit.
var ErrTurnLimit = errors.New("turn limit reached")

// Agent implements nucleus.Assistant with Gemini function calling.
type Agent struct {
	client   GenerativeClient
	model    string
	notesDir string

	tools       []nucleus.Tool
	formatter   nucleus.PromptFormatter
	extraPrompt string
	temperature *float32
	maxTurns    int

	source nucleus.DiffSource
	parser nucleus.DiffParser

	counter   nucleus.TokenCounter
	maxTokens int

	logger *slog.Logger
	now    func() time.Time
}

// AgentOption configures an Agent.
type AgentOption func(*Agent)

// WithTools sets the tools offered to the model.
func WithTools(tools ...nucleus.Tool) AgentOption {
	return func(a *Agent) { a.tools = tools }
}

// WithFormatter replaces the system prompt formatter.
func WithFormatter(f nucleus.PromptFormatter) AgentOption {
	return func(a *Agent) { a.formatter = f }
}

// WithSystemPrompt appends operator instructions to the system prompt.
func WithSystemPrompt(extra string) AgentOption {
	return func(a *Agent) { a.extraPrompt = extra }
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t *float32) AgentOption {
	return func(a *Agent) { a.temperature = t }
}

// WithMaxTurns bounds the model calls per Chat.
func WithMaxTurns(n int) AgentOption {
	return func(a *Agent) {
		if n > 0 {
			a.maxTurns = n
		}
	}
}

// WithDiffSource adds a summary of uncommitted changes to the system prompt.
func WithDiffSource(source nucleus.DiffSource, parser nucleus.DiffParser) AgentOption {
	return func(a *Agent) {
		a.source = source
		a.parser = parser
	}
}

// WithTokenBudget trims the oldest history so the prompt fits maxTokens.
func WithTokenBudget(counter nucleus.TokenCounter, maxTokens int) AgentOption {
	return func(a *Agent) {
		a.counter = counter
		a.maxTokens = maxTokens
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) AgentOption {
	return func(a *Agent) { a.logger = logger }
}

// WithClock overrides the time source used for the date in the prompt.
func WithClock(now func() time.Time) AgentOption {
	return func(a *Agent) { a.now = now }
}

// NewAgent creates an Agent working on notesDir.
func NewAgent(client GenerativeClient, model, notesDir string, opts ...AgentOption) *Agent {
	a := &Agent{
		client:    client,
		model:     model,
		notesDir:  notesDir,
		formatter: &nucleus.DefaultFormatter{},
		maxTurns:  DefaultMaxTurns,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Chat runs the conversation until the model answers without calling a tool.
// Tool failures are fed back to the model; errors from the API, from emit or
// from ctx end the conversation and are returned.
func (a *Agent) Chat(ctx context.Context, messages []nucleus.Message, emit func(nucleus.ChatEvent) error) error {
	system := a.systemPrompt(ctx)
	history := a.trim(messages, system)

	contents := make([]*Content, 0, len(history)+2*a.maxTurns)
	for _, m := range history {
		contents = append(contents, messageContent(m))
	}

	config := &GenerateContentConfig{
		SystemInstruction: &Content{Parts: []*Part{{Text: system}}},
		Temperature:       a.temperature,
		Tools:             a.declarations(),
	}

	for turn := 0; turn < a.maxTurns; turn++ {
		reply, calls, err := a.generate(ctx, contents, config, emit)
		if err != nil {
			return err
		}
		contents = append(contents, reply)

		if len(calls) == 0 {
			return emit(nucleus.ChatEvent{Type: nucleus.EventDone})
		}

		results := &Content{Role: RoleUser}
		for i, call := range calls {
			id := call.ID
			if id == "" {
				id = fmt.Sprintf("call_%d_%d", turn, i)
			}
			resp, err := a.runTool(ctx, id, call, emit)
			if err != nil {
				return err
			}
			results.Parts = append(results.Parts, &Part{FunctionResponse: resp})
		}
		contents = append(contents, results)
	}

	a.logger.Warn("turn limit reached", "max_turns", a.maxTurns)
	return ErrTurnLimit
}

// generate streams one model turn, emitting text as it arrives.
func (a *Agent) generate(ctx context.Context, contents []*Content, config *GenerateContentConfig, emit func(nucleus.ChatEvent) error) (*Content, []*FunctionCall, error) {
	var (
		text  strings.Builder
		calls []*FunctionCall
	)
	for chunk, err := range a.client.GenerateContentStream(ctx, a.model, contents, config) {
		if err != nil {
			return nil, nil, err
		}
		if chunk == nil {
			continue
		}
		if chunk.Text != "" {
			text.WriteString(chunk.Text)
			if err := emit(nucleus.ChatEvent{Type: nucleus.EventText, Text: chunk.Text}); err != nil {
				return nil, nil, err
			}
		}
		calls = append(calls, chunk.FunctionCalls...)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	reply := &Content{Role: RoleModel}
	if text.Len() > 0 {
		reply.Parts = append(reply.Parts, &Part{Text: text.String()})
	}
	for _, call := range calls {
		reply.Parts = append(reply.Parts, &Part{FunctionCall: call})
	}
	return reply, calls, nil
}

// runTool executes one function call and reports it through emit.
func (a *Agent) runTool(ctx context.Context, id string, call *FunctionCall, emit func(nucleus.ChatEvent) error) (*FunctionResponse, error) {
	if err := emit(nucleus.ChatEvent{
		Type:     nucleus.EventToolUse,
		ToolID:   id,
		ToolName: call.Name,
		Input:    call.Args,
	}); err != nil {
		return nil, err
	}

	start := time.Now()
	output, isError := a.execute(ctx, call)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	a.logger.Debug("tool call", "tool", call.Name, "id", id, "error", isError, "duration", time.Since(start))

	if err := emit(nucleus.ChatEvent{
		Type:     nucleus.EventToolResult,
		ToolID:   id,
		ToolName: call.Name,
		Output:   output,
		IsError:  isError,
	}); err != nil {
		return nil, err
	}

	key := "output"
	if isError {
		key = "error"
	}
	return &FunctionResponse{
		ID:       call.ID,
		Name:     call.Name,
		Response: map[string]any{key: output},
	}, nil
}

func (a *Agent) execute(ctx context.Context, call *FunctionCall) (string, bool) {
	var tool nucleus.Tool
	for _, t := range a.tools {
		if t.Name() == call.Name {
			tool = t
			break
		}
	}
	if tool == nil {
		return fmt.Sprintf("Error: unknown tool %q", call.Name), true
	}

	args := call.Args
	if args == nil {
		args = map[string]any{}
	}
	output, err := tool.Run(ctx, args)
	if err != nil {
		msg := "Error: " + err.Error()
		if output != "" {
			msg = output + "\n" + msg
		}
		return msg, true
	}
	return output, false
}

func (a *Agent) declarations() []*FunctionDeclaration {
	decls := make([]*FunctionDeclaration, len(a.tools))
	for i, t := range a.tools {
		decls[i] = &FunctionDeclaration{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		}
	}
	return decls
}

// systemPrompt renders the prompt, including pending changes when a diff
// source is configured. A failing source only drops the summary.
func (a *Agent) systemPrompt(ctx context.Context) string {
	input := nucleus.PromptInput{
		NotesDir: a.notesDir,
		Now:      a.now(),
		Extra:    a.extraPrompt,
	}
	if a.source != nil && a.parser != nil {
		raw, err := a.source.RawDiff(ctx, a.notesDir)
		if err != nil {
			a.logger.Warn("diff summary unavailable", "error", err)
		} else {
			input.Changes = a.parser.Parse(raw)
		}
	}
	return a.formatter.Format(input)
}

func (a *Agent) trim(messages []nucleus.Message, system string) []nucleus.Message {
	if a.counter == nil || a.maxTokens <= 0 {
		return messages
	}
	budget := a.maxTokens - a.counter.Count(system)
	trimmed := TrimHistory(messages, a.counter, budget)
	if dropped := len(messages) - len(trimmed); dropped > 0 {
		a.logger.Info("trimmed conversation history", "dropped", dropped, "kept", len(trimmed))
	}
	return trimmed
}

// TrimHistory drops the oldest messages until the rest fit budget tokens. The
// last message is always kept, and the result never starts with an
// assistant message.
func TrimHistory(messages []nucleus.Message, counter nucleus.TokenCounter, budget int) []nucleus.Message {
	if len(messages) == 0 {
		return messages
	}

	counts := make([]int, len(messages))
	total := 0
	for i, m := range messages {
		counts[i] = counter.Count(m.Content)
		total += counts[i]
	}

	start := 0
	for total > budget && start < len(messages)-1 {
		total -= counts[start]
		start++
	}
	for start < len(messages)-1 && messages[start].Role == nucleus.RoleAssistant {
		start++
	}
	return messages[start:]
}

func messageContent(m nucleus.Message) *Content {
	role := RoleUser
	if m.Role == nucleus.RoleAssistant {
		role = RoleModel
	}
	return &Content{Role: role, Parts: []*Part{{Text: m.Content}}}
}
