package sopdoc

import (
	"fmt"
	"strings"
)

// UntitledLabel is the title fallback used by both renderers when the title
// trims to empty.
const UntitledLabel = "Untitled SOP"

// headerSections lists the optional header fields in their fixed render
// order. Shared by both renderers so the two outputs cannot drift.
var headerSections = []struct {
	label string
	get   func(Header) string
}{
	{"Purpose", func(h Header) string { return h.Purpose }},
	{"Scope", func(h Header) string { return h.Scope }},
	{"Owner", func(h Header) string { return h.Owner }},
	{"Frequency", func(h Header) string { return h.Frequency }},
}

// renderTitle returns the trimmed title or the fallback label.
func renderTitle(h Header) string {
	if t := strings.TrimSpace(normalizeText(h.Title)); t != "" {
		return t
	}
	return UntitledLabel
}

// RenderMarkdown derives the plain-text markup representation of a document
// snapshot. Pure and deterministic: identical snapshots yield identical
// output, called any number of times.
//
// Layout: a heading line, one labeled section per non-empty header field in
// fixed order, a separator plus "## Steps" heading when any real step exists,
// the real steps numbered by filtered position with per-step image embeds,
// and finally one bullet per real link. Links get no heading; that asymmetry
// with steps is deliberate.
func RenderMarkdown(doc *Document) string {
	lines := []string{"# " + renderTitle(doc.Header)}

	for _, sec := range headerSections {
		if v := strings.TrimSpace(normalizeText(sec.get(doc.Header))); v != "" {
			lines = append(lines, "", "## "+sec.label, v)
		}
	}

	steps := doc.realSteps()
	if len(steps) > 0 {
		lines = append(lines, "", "---", "", "## Steps")
		for i, st := range steps {
			if t := strings.TrimSpace(normalizeText(st.Text)); t != "" {
				lines = append(lines, fmt.Sprintf("%d. %s", i+1, t))
			}
			// Image ordinals restart per step and ignore the global step
			// filtering; only the step number uses the filtered position.
			for j, img := range st.Images {
				lines = append(lines, fmt.Sprintf("   ![Step %d image %d](%s)", i+1, j+1, img.URI))
			}
		}
	}

	if links := doc.realLinks(); len(links) > 0 {
		lines = append(lines, "")
		for _, l := range links {
			lines = append(lines, "- "+l)
		}
	}

	return strings.Join(lines, "\n")
}
