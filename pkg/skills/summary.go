package skills

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// noDescription is returned when a skill body yields no summarizable text.
const noDescription = "No description provided."

const maxSummaryLen = 180

// SummarizeBody derives a one-line description from a skill body: the first
// line of the first paragraph in the markdown document, skipping headings,
// clamped to 180 characters.
func SummarizeBody(body string) string {
	src := []byte(body)
	doc := goldmark.New().Parser().Parse(text.NewReader(src))

	var summary string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if _, isHeading := n.(*ast.Heading); isHeading {
			return ast.WalkSkipChildren, nil
		}
		if p, ok := n.(*ast.Paragraph); ok && p.Lines().Len() > 0 {
			seg := p.Lines().At(0)
			summary = strings.TrimSpace(string(seg.Value(src)))
			if summary != "" {
				return ast.WalkStop, nil
			}
		}
		return ast.WalkContinue, nil
	})

	if summary == "" {
		return noDescription
	}
	return clampSummary(summary)
}

func clampSummary(s string) string {
	runes := []rune(s)
	if len(runes) <= maxSummaryLen {
		return s
	}
	return string(runes[:maxSummaryLen-3]) + "..."
}
