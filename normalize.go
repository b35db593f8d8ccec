package sopdoc

import "regexp"

// crlfOrCR matches Windows and old-Mac line endings for normalization.
var crlfOrCR = regexp.MustCompile(`\r\n?`)

// normalizeText converts \r\n and \r to \n so both renderers see one line
// ending convention regardless of where the text was typed or pasted.
func normalizeText(s string) string {
	return crlfOrCR.ReplaceAllString(s, "\n")
}
