package main

import (
	"encoding/json"
	"errors"
	"io"
	"os"

	"github.com/spf13/cobra"

	nucleus "github.com/HariCharanK/Nucleus"
)

// ParseApp prints the parsed form of a unified diff as JSON.
type ParseApp struct {
	Stdin  io.Reader
	Stdout io.Writer
	Parser nucleus.DiffParser
}

// Run parses stdin and writes the result.
func (a *ParseApp) Run() error {
	data, err := io.ReadAll(a.Stdin)
	if err != nil {
		return err
	}
	diff := a.Parser.Parse(string(data))
	if len(diff.Files) == 0 {
		return nucleus.ErrNoChanges
	}

	enc := json.NewEncoder(a.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(diff)
}

func newParseCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "parse",
		Short: "Parse a unified diff from stdin and print it as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if isTerminal(os.Stdin) {
				return errors.New("usage: git diff | nucleus parse")
			}
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			parser, err := NewParser(cfg.Diff.Parser)
			if err != nil {
				return err
			}
			app := &ParseApp{Stdin: os.Stdin, Stdout: cmd.OutOrStdout(), Parser: parser}
			return app.Run()
		},
	}
}
