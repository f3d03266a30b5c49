package splitter

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// ExtractMarkdownText flattens a markdown document into plain text, one
// block per paragraph. Formatting is dropped but code blocks are kept,
// since exam material often includes snippets worth asking about.
func ExtractMarkdownText(markdown string) string {
	md := goldmark.New()
	reader := text.NewReader([]byte(markdown))
	doc := md.Parser().Parse(reader)

	var blocks []string
	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		switch n := node.(type) {
		case *ast.FencedCodeBlock:
			var sb strings.Builder
			for i := 0; i < n.Lines().Len(); i++ {
				line := n.Lines().At(i)
				sb.Write(line.Value(reader.Source()))
			}
			if code := strings.TrimSpace(sb.String()); code != "" {
				blocks = append(blocks, code)
			}
		default:
			if txt := blockText(node, reader.Source()); txt != "" {
				blocks = append(blocks, txt)
			}
		}
	}
	return strings.Join(blocks, "\n\n")
}

func blockText(n ast.Node, source []byte) string {
	var sb strings.Builder
	ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if node.Kind() == ast.KindText {
			sb.Write(node.(*ast.Text).Segment.Value(source))
			if node.(*ast.Text).SoftLineBreak() || node.(*ast.Text).HardLineBreak() {
				sb.WriteByte(' ')
			}
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}
