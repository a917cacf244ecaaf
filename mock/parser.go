// Package mock provides test doubles for nucleus interfaces.
package mock

import nucleus "github.com/HariCharanK/Nucleus"

// Compile-time interface verification.
var _ nucleus.DiffParser = (*DiffParser)(nil)

// DiffParser is a mock implementation of nucleus.DiffParser.
type DiffParser struct {
	ParseFn func(raw string) *nucleus.Diff
}

func (p *DiffParser) Parse(raw string) *nucleus.Diff {
	return p.ParseFn(raw)
}
