// Package fblex defines the Flat-B token set for participle.
package fblex

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Keywords are reserved and never lexed as identifiers.
var Keywords = []string{
	"declblock", "codeblock", "int",
	"for", "while", "if", "else", "goto",
	"print", "println", "read",
}

// Definition is the Flat-B lexer. Comment and Whitespace tokens are elided by
// the parser.
var Definition = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "String", Pattern: `"(\\.|[^"\\\n])*"`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Keyword", Pattern: `\b(?:` + strings.Join(Keywords, "|") + `)\b`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Operator", Pattern: `<=|>=|==|!=|[-+*/<>=!]`},
	{Name: "Punct", Pattern: `[{}()\[\];:,]`},
})

// Elided lists the token types the parser skips.
var Elided = []string{"Comment", "Whitespace"}
