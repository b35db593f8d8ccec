package sopdoc

import "strings"

// defaultFontFamily is the font stack for print output.
const defaultFontFamily = "sans-serif"

// buildPrintCSS generates the presentational styling layered onto the rich
// fragment for the print variant: base typography, fixed image box sizing
// with a border, and page-break control so a step is never split across
// pages or left as a lone heading at a page bottom.
func buildPrintCSS() string {
	var buf strings.Builder

	buf.WriteString(`
body {
  font-family: ` + defaultFontFamily + `;
  margin: 0.5in;
  line-height: 1.5;
}
`)

	buf.WriteString(`
/* Metadata block */
.sop-meta {
  border-collapse: collapse;
  margin: 1em 0;
}
.sop-meta th {
  text-align: left;
  padding: 0.25em 1em 0.25em 0;
  vertical-align: top;
}
.sop-meta td {
  padding: 0.25em 0;
}
`)

	buf.WriteString(`
/* Fixed image boxes */
.sop-image {
  display: block;
  width: 4in;
  max-height: 3in;
  object-fit: contain;
  border: 1px solid #ccc;
  margin: 0.5em 0;
}
`)

	buf.WriteString(`
/* Page breaks: keep a step together, never a heading alone at page bottom */
h1 {
  break-after: avoid;
  page-break-after: avoid;
}
.sop-steps li {
  break-inside: avoid;
  page-break-inside: avoid;
}
`)

	return buf.String()
}
