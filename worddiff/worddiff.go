// Package worddiff computes word-level differences between a removed line and
// the added line that replaces it, so the viewer can highlight the edited
// words inside a changed sentence.
package worddiff

import (
	"strings"
	"unicode"
	"unicode/utf8"

	nucleus "github.com/HariCharanK/Nucleus"
)

// Compile-time interface verification.
var _ nucleus.WordDiffer = (*Differ)(nil)

// similarityThreshold is the minimum share of common tokens for a word-level
// diff. Below it the two lines are shown as a full replacement.
const similarityThreshold = 0.4

// Differ splits prose and markdown into tokens and diffs the token sequences.
type Differ struct{}

// NewDiffer creates a new Differ.
func NewDiffer() *Differ {
	return &Differ{}
}

// Tokenize splits s into words, whitespace runs, runs of a repeated markdown
// marker (such as "**" or "##") and single punctuation runes. Concatenating
// the tokens gives back s.
func (d *Differ) Tokenize(s string) []string {
	if s == "" {
		return nil
	}

	tokens := make([]string, 0, len(s)/4+1)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		end := i + size

		switch {
		case isWordRune(r):
			end = scanWord(s, end)
		case unicode.IsSpace(r):
			end = scan(s, end, unicode.IsSpace)
		case isMarker(r):
			end = scan(s, end, func(next rune) bool { return next == r })
		}

		tokens = append(tokens, s[i:end])
		i = end
	}
	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isMarker(r rune) bool {
	switch r {
	case '*', '_', '~', '#', '`', '=', '-':
		return true
	}
	return false
}

// scanWord extends a word over letters and digits. An apostrophe or
// underscore joins two word runes, so "don't" and "snake_case" stay whole.
func scanWord(s string, i int) int {
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if isWordRune(r) {
			i += size
			continue
		}
		if r == '\'' || r == '’' || r == '_' {
			next, nextSize := utf8.DecodeRuneInString(s[i+size:])
			if nextSize > 0 && isWordRune(next) {
				i += size + nextSize
				continue
			}
		}
		break
	}
	return i
}

func scan(s string, i int, match func(rune) bool) int {
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !match(r) {
			break
		}
		i += size
	}
	return i
}

// Diff returns segments for old and new marking the text that differs.
// Identical input yields one unchanged segment each; input with too little in
// common yields one changed segment each.
func (d *Differ) Diff(old, new string) (oldSegs, newSegs []nucleus.Segment) {
	switch {
	case old == "" && new == "":
		return nil, nil
	case old == "":
		return nil, []nucleus.Segment{{Text: new, Changed: true}}
	case new == "":
		return []nucleus.Segment{{Text: old, Changed: true}}, nil
	case old == new:
		return []nucleus.Segment{{Text: old}}, []nucleus.Segment{{Text: new}}
	}

	a, b := d.Tokenize(old), d.Tokenize(new)
	if similarity(a, b) < similarityThreshold {
		return []nucleus.Segment{{Text: old, Changed: true}}, []nucleus.Segment{{Text: new, Changed: true}}
	}

	keepA, keepB := commonTokens(a, b)
	return segments(a, keepA), segments(b, keepB)
}

// similarity is 2*common/(len(a)+len(b)), counting common tokens as a
// multiset regardless of order. It bounds the LCS ratio from above.
func similarity(a, b []string) float64 {
	counts := make(map[string]int, len(a))
	for _, t := range a {
		counts[t]++
	}
	common := 0
	for _, t := range b {
		if counts[t] > 0 {
			counts[t]--
			common++
		}
	}
	return float64(2*common) / float64(len(a)+len(b))
}

// commonTokens marks the tokens of a and b that belong to a longest common
// subsequence.
func commonTokens(a, b []string) (keepA, keepB []bool) {
	n, m := len(a), len(b)
	stride := m + 1
	// lcs[i*stride+j] is the LCS length of a[i:] and b[j:].
	lcs := make([]int, (n+1)*stride)
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			switch {
			case a[i] == b[j]:
				lcs[i*stride+j] = lcs[(i+1)*stride+j+1] + 1
			case lcs[(i+1)*stride+j] >= lcs[i*stride+j+1]:
				lcs[i*stride+j] = lcs[(i+1)*stride+j]
			default:
				lcs[i*stride+j] = lcs[i*stride+j+1]
			}
		}
	}

	keepA, keepB = make([]bool, n), make([]bool, m)
	for i, j := 0, 0; i < n && j < m; {
		switch {
		case a[i] == b[j]:
			keepA[i], keepB[j] = true, true
			i++
			j++
		case lcs[(i+1)*stride+j] >= lcs[i*stride+j+1]:
			i++
		default:
			j++
		}
	}
	return keepA, keepB
}

// segments merges consecutive tokens with the same changed state.
func segments(tokens []string, keep []bool) []nucleus.Segment {
	var (
		segs []nucleus.Segment
		buf  strings.Builder
	)
	for i, tok := range tokens {
		changed := !keep[i]
		if buf.Len() > 0 && segs[len(segs)-1].Changed != changed {
			segs[len(segs)-1].Text = buf.String()
			buf.Reset()
		}
		if buf.Len() == 0 {
			segs = append(segs, nucleus.Segment{Changed: changed})
		}
		buf.WriteString(tok)
	}
	if buf.Len() > 0 {
		segs[len(segs)-1].Text = buf.String()
	}
	return segs
}
