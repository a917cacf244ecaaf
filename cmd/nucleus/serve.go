package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	nucleus "github.com/HariCharanK/Nucleus"
	"github.com/HariCharanK/Nucleus/config"
	"github.com/HariCharanK/Nucleus/gemini"
	"github.com/HariCharanK/Nucleus/git"
	"github.com/HariCharanK/Nucleus/http"
	"github.com/HariCharanK/Nucleus/jsonl"
	"github.com/HariCharanK/Nucleus/tiktoken"
	"github.com/HariCharanK/Nucleus/tools"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if listen != "" {
				cfg.Server.Listen = listen
			}
			return runServe(cmd.Context(), cfg, NewLogger(cfg, os.Stderr))
		},
	}
	cmd.Flags().StringVarP(&listen, "listen", "l", "", "listen address (overrides server.listen)")
	return cmd
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	source := git.NewRunner()
	parser, err := NewParser(cfg.Diff.Parser)
	if err != nil {
		return err
	}

	var assistant nucleus.Assistant
	if key := cfg.APIKey(); key == "" {
		logger.Warn("no API key, chat is disabled", "env", cfg.LLM.APIKeyEnv)
	} else {
		client, err := gemini.NewClient(ctx, key)
		if err != nil {
			return fmt.Errorf("create gemini client: %w", err)
		}
		defer client.Close()
		assistant = NewAgent(client, cfg, source, parser, logger)
	}

	server := http.NewServer(http.Config{
		NotesDir:     cfg.NotesDir,
		Assistant:    assistant,
		Sessions:     jsonl.NewStore(cfg.SessionsDir()),
		Source:       source,
		Parser:       parser,
		Logger:       logger,
		ChatRate:     cfg.Server.ChatRate,
		ChatBurst:    cfg.Server.ChatBurst,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	})

	logger.Info("serving", "addr", cfg.Server.Listen, "notes_dir", cfg.NotesDir, "model", cfg.LLM.Model)
	return server.ListenAndServe(ctx, cfg.Server.Listen)
}

// NewAgent builds the assistant described by cfg on top of client.
func NewAgent(client gemini.GenerativeClient, cfg *config.Config, source nucleus.DiffSource, parser nucleus.DiffParser, logger *slog.Logger) *gemini.Agent {
	toolset := tools.Default(cfg.NotesDir,
		tools.WithTimeout(cfg.Tools.ShellTimeout.Duration),
		tools.WithMaxOutput(cfg.Tools.MaxOutputBytes),
	)
	return gemini.NewAgent(client, cfg.LLM.Model, cfg.NotesDir,
		gemini.WithTools(toolset...),
		gemini.WithSystemPrompt(cfg.LLM.SystemPrompt),
		gemini.WithTemperature(cfg.LLM.Temperature),
		gemini.WithMaxTurns(cfg.LLM.MaxTurns),
		gemini.WithDiffSource(source, parser),
		gemini.WithTokenBudget(tiktoken.NewCounter(), cfg.LLM.MaxContextTokens),
		gemini.WithLogger(logger),
	)
}
