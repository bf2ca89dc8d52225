// Package parser turns Flat-B source text into a lib/ast Program.
package parser

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/alecthomas/participle/v2"
	"github.com/pkg/errors"
	"github.com/vyPal/flatb/lib/ast"
	fblex "github.com/vyPal/flatb/lib/lexer"
)

var (
	buildOnce sync.Once
	instance  *participle.Parser[Program]
)

// Parser returns the shared participle parser.
func Parser() *participle.Parser[Program] {
	buildOnce.Do(func() {
		instance = participle.MustBuild[Program](
			participle.Lexer(fblex.Definition),
			participle.Elide(fblex.Elided...),
			participle.UseLookahead(2),
		)
	})
	return instance
}

// Grammar returns the EBNF of the Flat-B grammar.
func Grammar() string {
	return Parser().String()
}

func ParseString(filename, code string) (*ast.Program, error) {
	tree, err := Parser().ParseString(filename, code)
	if err != nil {
		return nil, err
	}
	return build(tree)
}

// ParseFile parses a .fb source file or a literate .md file.
func ParseFile(filename string) (*ast.Program, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "reading source")
	}
	return ParseBytes(filename, src)
}

// ParseBytes parses src, treating it as Markdown when filename says so.
func ParseBytes(filename string, src []byte) (*ast.Program, error) {
	if IsMarkdown(filename) {
		return ParseMarkdown(filename, src)
	}
	return ParseString(filename, string(src))
}

func IsMarkdown(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".md" || ext == ".markdown"
}
