// Package markdown renders generated asset reports.
package markdown

import (
	"bytes"
	"fmt"
	"html"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"go.abhg.dev/goldmark/frontmatter"
)

// Document is a rendered report: the HTML body and the YAML frontmatter,
// which is never part of the body.
type Document struct {
	HTML []byte
	Meta map[string]any
}

// Title returns the frontmatter title, or fallback.
func (d *Document) Title(fallback string) string {
	if title, ok := d.Meta["title"].(string); ok && title != "" {
		return title
	}
	return fallback
}

type Parser struct {
	md goldmark.Markdown
}

func NewParser() *Parser {
	return &Parser{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM, &frontmatter.Extender{}),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(goldmarkhtml.WithXHTML()),
		),
	}
}

// Render converts source to HTML. Malformed frontmatter yields empty Meta
// rather than an error.
func (p *Parser) Render(source []byte) (*Document, error) {
	pc := parser.NewContext()
	var buf bytes.Buffer
	err := p.md.Convert(source, &buf, parser.WithContext(pc))
	if err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}

	doc := &Document{HTML: buf.Bytes(), Meta: map[string]any{}}
	if fm := frontmatter.Get(pc); fm != nil {
		var meta map[string]any
		if fm.Decode(&meta) == nil && meta != nil {
			doc.Meta = meta
		}
	}
	return doc, nil
}

// Page wraps the document in a standalone HTML page.
func Page(doc *Document, fallbackTitle string) []byte {
	var b bytes.Buffer
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\" />\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(doc.Title(fallbackTitle)))
	b.WriteString("<style>body{font-family:system-ui,sans-serif;max-width:48rem;margin:2rem auto;padding:0 1rem}" +
		"table{border-collapse:collapse;width:100%}th,td{border:1px solid #ccc;padding:.4rem .6rem;text-align:left}</style>\n")
	b.WriteString("</head>\n<body>\n")
	b.Write(doc.HTML)
	b.WriteString("</body>\n</html>\n")
	return b.Bytes()
}
