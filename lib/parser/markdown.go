package parser

import (
	"bytes"

	"github.com/pkg/errors"
	"github.com/vyPal/flatb/lib/ast"
	"github.com/yuin/goldmark"
	mdast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// FenceLanguage is the info string marking Flat-B code in Markdown.
const FenceLanguage = "flatb"

// ExtractCode returns the concatenated contents of every fenced code block
// tagged FenceLanguage. Lines outside those fences are replaced by blank lines
// so parse positions still match the Markdown file.
func ExtractCode(src []byte) (string, error) {
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	lines := bytes.Count(src, []byte("\n")) + 1
	out := make([][]byte, lines)
	found := false

	err := mdast.Walk(doc, func(node mdast.Node, entering bool) (mdast.WalkStatus, error) {
		if !entering {
			return mdast.WalkContinue, nil
		}
		fence, ok := node.(*mdast.FencedCodeBlock)
		if !ok || string(fence.Language(src)) != FenceLanguage {
			return mdast.WalkContinue, nil
		}
		found = true
		segs := fence.Lines()
		for i := 0; i < segs.Len(); i++ {
			seg := segs.At(i)
			line := bytes.Count(src[:seg.Start], []byte("\n"))
			out[line] = bytes.TrimRight(seg.Value(src), "\n")
		}
		return mdast.WalkSkipChildren, nil
	})
	if err != nil {
		return "", err
	}
	if !found {
		return "", errors.Errorf("no ```%s code blocks found", FenceLanguage)
	}
	return string(bytes.Join(out, []byte("\n"))), nil
}

// ParseMarkdown parses the Flat-B program embedded in a Markdown document.
func ParseMarkdown(filename string, src []byte) (*ast.Program, error) {
	code, err := ExtractCode(src)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", filename)
	}
	return ParseString(filename, code)
}
