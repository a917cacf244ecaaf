// Package chroma provides syntax highlighting for diff lines using the chroma library.
package chroma

import (
	"errors"
	"strings"

	nucleus "github.com/HariCharanK/Nucleus"
	chromalib "github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// Compile-time interface verification.
var _ nucleus.Tokenizer = (*Tokenizer)(nil)

// StyleFunc maps chroma token types to nucleus styles.
type StyleFunc func(chromalib.TokenType) nucleus.Style

// Tokenizer extracts syntax tokens using chroma.
type Tokenizer struct {
	styleFunc StyleFunc
}

// NewTokenizer creates a tokenizer with the given style function.
// Use StyleFromPalette to build one from a nucleus.Palette.
func NewTokenizer(styleFunc StyleFunc) (*Tokenizer, error) {
	if styleFunc == nil {
		return nil, errors.New("chroma: styleFunc cannot be nil")
	}
	return &Tokenizer{styleFunc: styleFunc}, nil
}

// Tokenize splits one line of source into styled tokens. It returns nil when
// the language is unknown and an empty slice for an empty line.
//
// Diff lines carry no newline, but line-anchored rules such as markdown
// headings need one, so the line is lexed with a newline that is then
// dropped from the result.
func (t *Tokenizer) Tokenize(language, source string) []nucleus.Token {
	if source == "" {
		return []nucleus.Token{}
	}

	lexer := lexers.Get(language)
	if lexer == nil {
		return nil
	}
	lexer = chromalib.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, source+"\n")
	if err != nil {
		return nil
	}

	var tokens []nucleus.Token
	for token := iterator(); token != chromalib.EOF; token = iterator() {
		text := strings.ReplaceAll(token.Value, "\n", "")
		if text == "" {
			continue
		}
		tokens = append(tokens, nucleus.Token{
			Text:  text,
			Style: t.styleFunc(token.Type),
		})
	}
	return tokens
}
