package sopdoc

import (
	"strings"
	"testing"
)

func TestBuildPrintCSS(t *testing.T) {
	t.Parallel()

	css := buildPrintCSS()

	wantRules := []string{
		".sop-image",
		"width: 4in",
		"border: 1px solid",
		"page-break-inside: avoid",
		"break-inside: avoid",
		".sop-meta",
		defaultFontFamily,
	}
	for _, rule := range wantRules {
		if !strings.Contains(css, rule) {
			t.Errorf("print CSS missing %q", rule)
		}
	}
}

func TestBuildPrintCSS_Deterministic(t *testing.T) {
	t.Parallel()

	if buildPrintCSS() != buildPrintCSS() {
		t.Error("print CSS should be deterministic")
	}
}
