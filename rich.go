package sopdoc

import (
	"fmt"
	"strings"
)

// RichMode selects the rich render variant.
type RichMode int

const (
	// RichClipboard is the styling-light variant written to the clipboard as
	// the text/html entry.
	RichClipboard RichMode = iota
	// RichPrint layers presentational styling (fixed image boxes, print
	// margins, pagination hints) on top of the same fragment.
	RichPrint
)

// escapeText escapes the three characters &, <, > for embedding user text in
// markup. The ampersand is replaced first so entities introduced by the
// later replacements are not double-escaped.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}

// escapeMultiline escapes user text and converts newlines to <br/> so step
// text keeps its line structure inside the fragment.
func escapeMultiline(s string) string {
	return strings.ReplaceAll(escapeText(s), "\n", "<br/>")
}

// RenderRich derives the escaped rich markup representation of a document
// snapshot: a root heading, an optional metadata block of the non-empty
// header fields in fixed order, and an ordered list of the real steps with
// their images embedded as data URIs in attachment order.
//
// Links are not included; that asymmetry with the markdown render is
// deliberate. Pure and deterministic, like RenderMarkdown.
func RenderRich(doc *Document, mode RichMode) string {
	var b strings.Builder

	if mode == RichPrint {
		b.WriteString("<style>")
		b.WriteString(buildPrintCSS())
		b.WriteString("</style>")
	}

	b.WriteString("<h1>")
	b.WriteString(escapeText(renderTitle(doc.Header)))
	b.WriteString("</h1>")

	writeMetadata(&b, doc.Header)

	steps := doc.realSteps()
	if len(steps) > 0 {
		b.WriteString(`<ol class="sop-steps">`)
		for i, st := range steps {
			b.WriteString("<li>")
			if t := strings.TrimSpace(normalizeText(st.Text)); t != "" {
				b.WriteString("<p>")
				b.WriteString(escapeMultiline(t))
				b.WriteString("</p>")
			}
			for j, img := range st.Images {
				fmt.Fprintf(&b, `<img class="sop-image" src=%q alt="Step %d image %d"/>`, img.URI, i+1, j+1)
			}
			b.WriteString("</li>")
		}
		b.WriteString("</ol>")
	}

	return b.String()
}

// writeMetadata emits the metadata block when at least one of the optional
// header fields is non-empty. Fields appear as labeled rows in fixed order.
func writeMetadata(b *strings.Builder, h Header) {
	type row struct{ label, value string }
	var rows []row
	for _, sec := range headerSections {
		if v := strings.TrimSpace(normalizeText(sec.get(h))); v != "" {
			rows = append(rows, row{sec.label, v})
		}
	}
	if len(rows) == 0 {
		return
	}

	b.WriteString(`<table class="sop-meta">`)
	for _, r := range rows {
		b.WriteString("<tr><th>")
		b.WriteString(r.label)
		b.WriteString("</th><td>")
		b.WriteString(escapeMultiline(r.value))
		b.WriteString("</td></tr>")
	}
	b.WriteString("</table>")
}
