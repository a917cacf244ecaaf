// Package config loads nucleus settings from a TOML file layered over defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/HariCharanK/Nucleus/fs"
)

// Parser names accepted by diff.parser.
const (
	ParserLenient = "lenient"
	ParserGitDiff = "gitdiff"
)

// Config holds every tunable setting.
type Config struct {
	NotesDir string `toml:"notes_dir"`
	DataDir  string `toml:"data_dir"`
	LogLevel string `toml:"log_level"`

	Server ServerConfig `toml:"server"`
	LLM    LLMConfig    `toml:"llm"`
	Tools  ToolsConfig  `toml:"tools"`
	Diff   DiffConfig   `toml:"diff"`
	UI     UIConfig     `toml:"ui"`
}

// ServerConfig configures the HTTP backend.
type ServerConfig struct {
	Listen       string  `toml:"listen"`
	ChatRate     float64 `toml:"chat_rate"` // chat requests per second
	ChatBurst    int     `toml:"chat_burst"`
	MaxBodyBytes int64   `toml:"max_body_bytes"`
}

// LLMConfig configures the assistant.
type LLMConfig struct {
	Model            string   `toml:"model"`
	APIKeyEnv        string   `toml:"api_key_env"`
	MaxTurns         int      `toml:"max_turns"`
	Temperature      *float32 `toml:"temperature"`
	MaxContextTokens int      `toml:"max_context_tokens"`
	SystemPrompt     string   `toml:"system_prompt"`
}

// ToolsConfig configures the agent tools.
type ToolsConfig struct {
	ShellTimeout   Duration `toml:"shell_timeout"`
	MaxOutputBytes int      `toml:"max_output_bytes"`
}

// DiffConfig configures diff parsing and refresh.
type DiffConfig struct {
	Parser       string   `toml:"parser"`
	PollInterval Duration `toml:"poll_interval"`
}

// UIConfig configures terminal output.
type UIConfig struct {
	Theme         string `toml:"theme"`
	MarkdownWidth int    `toml:"markdown_width"`
}

// Duration is a time.Duration written as a string such as "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		NotesDir: ".",
		DataDir:  fs.DefaultDataDir(),
		LogLevel: "info",
		Server: ServerConfig{
			Listen:       "127.0.0.1:8787",
			ChatRate:     1,
			ChatBurst:    5,
			MaxBodyBytes: 1 << 20,
		},
		LLM: LLMConfig{
			Model:            "gemini-2.5-flash",
			APIKeyEnv:        "GEMINI_API_KEY",
			MaxTurns:         25,
			MaxContextTokens: 200_000,
		},
		Tools: ToolsConfig{
			ShellTimeout:   Duration{30 * time.Second},
			MaxOutputBytes: 30000,
		},
		Diff: DiffConfig{
			Parser:       ParserLenient,
			PollInterval: Duration{2 * time.Second},
		},
		UI: UIConfig{
			Theme:         "dark",
			MarkdownWidth: 80,
		},
	}
}

// Load reads the TOML file at path over the defaults. A missing file is not
// an error; an empty path means defaults only. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("load config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}

	cfg.NotesDir = expandHome(cfg.NotesDir)
	cfg.DataDir = expandHome(cfg.DataDir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// ValidationError describes one invalid setting.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every invalid setting.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks every setting and returns ValidationErrors if any are invalid.
func (c *Config) Validate() error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if _, err := c.Level(); err != nil {
		add("log_level", "invalid level %q, must be one of: debug, info, warn, error", c.LogLevel)
	}
	if c.Server.Listen == "" {
		add("server.listen", "must not be empty")
	}
	if c.Server.ChatRate <= 0 {
		add("server.chat_rate", "must be positive")
	}
	if c.Server.ChatBurst < 1 {
		add("server.chat_burst", "must be at least 1")
	}
	if c.Server.MaxBodyBytes < 1 {
		add("server.max_body_bytes", "must be positive")
	}
	if c.LLM.Model == "" {
		add("llm.model", "must not be empty")
	}
	if c.LLM.MaxTurns < 1 {
		add("llm.max_turns", "must be at least 1")
	}
	if c.LLM.MaxContextTokens < 1 {
		add("llm.max_context_tokens", "must be positive")
	}
	if t := c.LLM.Temperature; t != nil && (*t < 0 || *t > 2) {
		add("llm.temperature", "must be between 0 and 2")
	}
	if c.Tools.ShellTimeout.Duration <= 0 {
		add("tools.shell_timeout", "must be positive")
	}
	if c.Tools.MaxOutputBytes < 1 {
		add("tools.max_output_bytes", "must be positive")
	}
	if c.Diff.Parser != ParserLenient && c.Diff.Parser != ParserGitDiff {
		add("diff.parser", "invalid parser %q, must be one of: %s, %s", c.Diff.Parser, ParserLenient, ParserGitDiff)
	}
	if c.Diff.PollInterval.Duration <= 0 {
		add("diff.poll_interval", "must be positive")
	}
	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		add("ui.theme", "invalid theme %q, must be one of: dark, light, auto", c.UI.Theme)
	}
	if c.UI.MarkdownWidth < 20 {
		add("ui.markdown_width", "must be at least 20")
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Level returns the configured log level.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.LogLevel))
	return level, err
}

// APIKey returns the model API key from the configured environment variable.
func (c *Config) APIKey() string {
	return os.Getenv(c.LLM.APIKeyEnv)
}

// SessionsDir returns where chat sessions are stored.
func (c *Config) SessionsDir() string {
	return fs.SessionsDir(c.DataDir)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
