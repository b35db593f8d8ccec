package sopdoc

import (
	"bytes"
	"context"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// highlightStyle is the chroma style backing fenced code typed into step
// text.
const highlightStyle = "github"

// previewTemplate wraps the converted fragment in a complete HTML5 document
// for the live preview surface. The first verb takes the stylesheet, the
// second the body fragment.
const previewTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>SOP Preview</title>
<style>
%s</style>
</head>
<body>
%s
</body>
</html>`

// previewCSS approximates on screen what the print variant puts on paper:
// the same fixed image box, a readable measure for procedure text.
const previewCSS = `body {
  font-family: sans-serif;
  max-width: 48rem;
  margin: 1rem auto;
  padding: 0 1rem;
}
img {
  width: 4in;
  max-height: 3in;
  object-fit: contain;
  border: 1px solid #ccc;
}
`

// PreviewConverter abstracts markdown-to-HTML conversion for the live
// preview surface.
type PreviewConverter interface {
	ToHTML(ctx context.Context, markdown string) (string, error)
}

// goldmarkPreview converts the markdown render to preview HTML using
// goldmark (pure Go). The stylesheet is assembled once at construction.
type goldmarkPreview struct {
	md  goldmark.Markdown
	css string
}

// NewPreviewConverter creates a preview converter tuned to the markdown the
// renderer emits plus what collaborators type into step text: GFM autolinks
// for the links block, hard wraps for multi-line steps, highlighted fenced
// code.
func NewPreviewConverter() PreviewConverter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM, // Autolinks for the bare-URL links block
			highlighting.NewHighlighting(
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true), // Classes resolved by the embedded stylesheet
				),
			),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(), // Multi-line step text keeps its line breaks
			html.WithXHTML(),     // Self-closing tags
		),
	)
	return &goldmarkPreview{md: md, css: previewCSS + highlightCSS()}
}

// highlightCSS renders the chroma class definitions that the highlighting
// extension emits references to.
func highlightCSS() string {
	var buf bytes.Buffer
	f := chromahtml.New(chromahtml.WithClasses(true))
	if err := f.WriteCSS(&buf, styles.Get(highlightStyle)); err != nil {
		return ""
	}
	return buf.String()
}

// ToHTML converts markdown content to a standalone HTML5 preview document.
// Supports context cancellation via goroutine + select since goldmark does
// not natively take a context.
func (c *goldmarkPreview) ToHTML(ctx context.Context, markdown string) (string, error) {
	// Fast path: check context before starting
	if err := ctx.Err(); err != nil {
		return "", err
	}

	type result struct {
		html string
		err  error
	}

	done := make(chan result, 1)

	go func() {
		var buf bytes.Buffer
		if err := c.md.Convert([]byte(markdown), &buf); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrPreviewConversion, err)}
			return
		}
		done <- result{html: fmt.Sprintf(previewTemplate, c.css, buf.String())}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.html, r.err
	}
}
