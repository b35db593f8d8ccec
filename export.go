package sopdoc

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/sopdoc/go-sopdoc/internal/fileutil"
)

// Exporter abstracts the print/export surface: it takes the print-variant
// rich fragment, waits for embedded images, and produces paginated PDF bytes.
type Exporter interface {
	ExportPDF(ctx context.Context, richFragment string) ([]byte, error)
	Close() error
}

// Compile-time interface check.
var _ Exporter = (*rodExporter)(nil)

// printShell wraps the rich fragment in a minimal document shell for the
// print surface.
const printShell = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>SOP</title>
</head>
<body>
%s
</body>
</html>`

// PDF page dimensions in inches (US Letter format).
const (
	paperWidthInches  = 8.5
	paperHeightInches = 11
	marginInches      = 0.5
)

// imageBarrierJS resolves once every embedded image reports loaded or
// errored: a logical all-of-N barrier, not a fixed sleep.
const imageBarrierJS = `() => Promise.all(
	Array.from(document.images).map(img => img.complete
		? Promise.resolve()
		: new Promise(resolve => {
			img.addEventListener('load', resolve, {once: true});
			img.addEventListener('error', resolve, {once: true});
		}))
)`

// rodExporter renders the print surface in headless Chrome via go-rod.
// Rod automatically downloads Chromium on first run if not found.
type rodExporter struct {
	browser *rod.Browser
	timeout time.Duration
}

// newRodExporter creates a rodExporter with the given timeout.
func newRodExporter(timeout time.Duration) *rodExporter {
	return &rodExporter{timeout: timeout}
}

// ensureBrowser lazily launches and connects to the browser. A browser that
// cannot be opened is the blocked-surface condition; no retry is attempted.
func (e *rodExporter) ensureBrowser() error {
	if e.browser != nil {
		return nil
	}

	l := launcher.New()

	// Use pre-installed browser if specified (Docker/containerized environments)
	if bin := os.Getenv("ROD_BROWSER_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || os.Getenv("ROD_BROWSER_BIN") != "" {
		l = l.NoSandbox(true)
	}

	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSurfaceBlocked, err)
	}

	e.browser = rod.New().ControlURL(u)
	if err := e.browser.Connect(); err != nil {
		e.browser = nil
		return fmt.Errorf("%w: %v", ErrSurfaceBlocked, err)
	}
	return nil
}

// Close releases browser resources.
func (e *rodExporter) Close() error {
	if e.browser != nil {
		err := e.browser.Close()
		e.browser = nil
		return err
	}
	return nil
}

// ExportPDF wraps the fragment in the print shell, loads it in headless
// Chrome, waits for the all-images barrier, and prints to PDF.
//
// The barrier is bounded by the exporter timeout: an image that never fires
// load or error does not stall the export forever; printing proceeds with
// whatever has rendered.
func (e *rodExporter) ExportPDF(ctx context.Context, richFragment string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := e.ensureBrowser(); err != nil {
		return nil, err
	}

	tmpPath, cleanup, err := fileutil.WriteTempFile(fmt.Sprintf(printShell, richFragment), "html")
	if err != nil {
		return nil, err
	}
	defer cleanup()

	page, err := e.browser.Page(proto.TargetCreateTarget{URL: "file://" + tmpPath})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSurfaceBlocked, err)
	}
	defer page.Close()

	timeout := e.timeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}

	if err := page.Timeout(timeout).WaitLoad(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPageLoad, err)
	}

	// All-of-N image barrier; on timeout, print anyway.
	if _, err := page.Timeout(timeout).Eval(imageBarrierJS); err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reader, err := page.PDF(buildPrintOptions())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPDFGeneration, err)
	}

	pdfBuf, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("%w: reading PDF stream: %v", ErrPDFGeneration, err)
	}

	return pdfBuf, nil
}

// buildPrintOptions constructs the Chrome print settings: US Letter with
// half-inch margins, backgrounds on so image borders survive.
func buildPrintOptions() *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(paperWidthInches),
		PaperHeight:     floatPtr(paperHeightInches),
		MarginTop:       floatPtr(marginInches),
		MarginBottom:    floatPtr(marginInches),
		MarginLeft:      floatPtr(marginInches),
		MarginRight:     floatPtr(marginInches),
		PrintBackground: true,
	}
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}
