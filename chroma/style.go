package chroma

import (
	nucleus "github.com/HariCharanK/Nucleus"
	chromalib "github.com/alecthomas/chroma/v2"
)

// StyleFromPalette returns a StyleFunc mapping chroma token types to palette
// colors. Markdown structure (headings, links, tags, emphasis) is covered
// alongside the usual code categories.
func StyleFromPalette(p nucleus.Palette) StyleFunc {
	return func(tt chromalib.TokenType) nucleus.Style {
		switch tt {
		case chromalib.GenericHeading, chromalib.GenericSubheading:
			return nucleus.Style{Foreground: string(p.Heading), Bold: true}
		case chromalib.GenericStrong:
			return nucleus.Style{Bold: true}
		case chromalib.GenericEmph:
			return nucleus.Style{Italic: true}
		case chromalib.GenericDeleted:
			return nucleus.Style{Foreground: string(p.Comment)}
		case chromalib.NameTag, chromalib.NameAttribute:
			return nucleus.Style{Foreground: string(p.Link)}
		case chromalib.NameEntity:
			return nucleus.Style{Foreground: string(p.Constant)}

		case chromalib.KeywordType:
			return nucleus.Style{Foreground: string(p.Type), Bold: true}
		case chromalib.Keyword, chromalib.KeywordConstant, chromalib.KeywordDeclaration,
			chromalib.KeywordNamespace, chromalib.KeywordPseudo, chromalib.KeywordReserved:
			return nucleus.Style{Foreground: string(p.Keyword), Bold: true}
		case chromalib.NameFunction, chromalib.NameFunctionMagic:
			return nucleus.Style{Foreground: string(p.Function)}
		case chromalib.NameBuiltin, chromalib.NameConstant:
			return nucleus.Style{Foreground: string(p.Constant)}
		case chromalib.Operator, chromalib.OperatorWord:
			return nucleus.Style{Foreground: string(p.Operator)}
		case chromalib.Punctuation:
			return nucleus.Style{Foreground: string(p.Punctuation)}
		}

		switch {
		case tt.InCategory(chromalib.Comment):
			return nucleus.Style{Foreground: string(p.Comment)}
		case tt.SubCategory() == chromalib.LiteralString:
			return nucleus.Style{Foreground: string(p.String)}
		case tt.SubCategory() == chromalib.LiteralNumber:
			return nucleus.Style{Foreground: string(p.Number)}
		}
		return nucleus.Style{}
	}
}
