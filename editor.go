package sopdoc

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// defaultTimeout bounds export and image-barrier waits when no timeout is
// specified.
const defaultTimeout = 30 * time.Second

// editorConfig holds internal configuration for Editor.
type editorConfig struct {
	timeout time.Duration
}

// Option configures an Editor.
type Option func(*Editor)

// WithTimeout sets the export timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("sopdoc: WithTimeout duration must be positive")
	}
	return func(e *Editor) {
		e.cfg.timeout = d
	}
}

// WithPolicy overrides the image ingestion policy.
func WithPolicy(p ImagePolicy) Option {
	return func(e *Editor) {
		e.policy = p
	}
}

// WithValidator injects a BatchValidator, overriding policy-based
// validation (e.g., a blocking fake in tests).
func WithValidator(v BatchValidator) Option {
	return func(e *Editor) {
		e.validator = v
	}
}

// WithClipboard injects a Clipboard implementation (e.g., a fake in tests).
func WithClipboard(cb Clipboard) Option {
	return func(e *Editor) {
		e.clipboard = cb
	}
}

// WithExporter injects an Exporter implementation (e.g., a fake in tests).
func WithExporter(ex Exporter) Option {
	return func(e *Editor) {
		e.exporter = ex
	}
}

// AttachOutcome describes the result of an image attachment request.
// ImagesCleared signals the collaborator that the step's image list was
// cleared as part of rejection recovery, so it can reset its own
// file-picker widget and let the same selection be retried.
type AttachOutcome struct {
	Attached      int
	ImagesCleared bool
}

// Editor owns the current document snapshot and keeps the derived renders
// synchronized with it. All mutation methods re-derive every render before
// returning, so readers always observe output matching the latest applied
// mutation; renders are never cached across snapshots.
//
// The snapshot is exposed read-only via Snapshot(); only the enumerated
// mutation methods replace it.
type Editor struct {
	cfg       editorConfig
	policy    ImagePolicy
	validator BatchValidator
	clipboard Clipboard
	exporter  Exporter
	preview   PreviewConverter

	mu            sync.Mutex
	doc           *Document
	markdown      string
	richClipboard string
	richPrint     string
	attaching     bool
}

// NewEditor creates an Editor seeded with the initial document shape: empty
// header, one blank step, zero links.
func NewEditor(opts ...Option) *Editor {
	e := &Editor{
		cfg:    editorConfig{timeout: defaultTimeout},
		policy: DefaultImagePolicy(),
		doc:    NewDocument(),
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.validator == nil {
		e.validator = e.policy
	}
	if e.clipboard == nil {
		e.clipboard = systemClipboard{}
	}
	// Create exporter if not injected (e.g., by tests). The browser is
	// launched lazily, on first export.
	if e.exporter == nil {
		e.exporter = newRodExporter(e.cfg.timeout)
	}
	if e.preview == nil {
		e.preview = NewPreviewConverter()
	}

	e.rerender()
	return e
}

// Close releases adapter resources (headless Chrome browser).
func (e *Editor) Close() error {
	if e.exporter != nil {
		return e.exporter.Close()
	}
	return nil
}

// SetHeaderField replaces one header field.
func (e *Editor) SetHeaderField(key FieldKey, value string) {
	e.apply(func(d *Document) *Document { return d.SetHeaderField(key, value) })
}

// SetStepText replaces the text of the step at index.
func (e *Editor) SetStepText(index int, text string) {
	e.apply(func(d *Document) *Document { return d.SetStepText(index, text) })
}

// AddStep appends a new empty step.
func (e *Editor) AddStep() {
	e.apply(func(d *Document) *Document { return d.AddStep() })
}

// RemoveStep removes the step at index and releases its image resources.
func (e *Editor) RemoveStep(index int) {
	e.apply(func(d *Document) *Document { return d.RemoveStep(index) })
}

// SetLink replaces the link at index.
func (e *Editor) SetLink(index int, text string) {
	e.apply(func(d *Document) *Document { return d.SetLink(index, text) })
}

// AddLink appends an empty link.
func (e *Editor) AddLink() {
	e.apply(func(d *Document) *Document { return d.AddLink() })
}

// RemoveLink removes the link at index.
func (e *Editor) RemoveLink(index int) {
	e.apply(func(d *Document) *Document { return d.RemoveLink(index) })
}

// Reset restores the initial empty-document shape, releasing every image
// resource held by the discarded snapshot.
func (e *Editor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.doc.releaseImages()
	e.doc = NewDocument()
	e.rerender()
}

// Attach validates a candidate batch for the step at index and, when the
// whole batch passes, appends the resolved refs in submission order.
//
// Rejection is all-or-nothing and recovers by clearing the step's existing
// image list (reject-and-clear); the outcome's ImagesCleared flag tells the
// collaborator to reset its picker widget. An empty batch is a no-op.
//
// Attaches are serialized per editor: a second Attach while one is pending
// fails with ErrAttachPending. The collaborator is expected to disable its
// file input until the first request resolves.
func (e *Editor) Attach(index int, files []ImageFile) (AttachOutcome, error) {
	e.mu.Lock()
	e.doc.mustStepIndex(index)
	if e.attaching {
		e.mu.Unlock()
		return AttachOutcome{}, ErrAttachPending
	}
	if len(files) == 0 {
		e.mu.Unlock()
		return AttachOutcome{}, nil
	}
	e.attaching = true
	e.mu.Unlock()
	// The guard must come down even if validation panics, or every later
	// Attach would fail with ErrAttachPending.
	defer func() {
		e.mu.Lock()
		e.attaching = false
		e.mu.Unlock()
	}()

	// Resolution happens outside the lock; the model only observes the
	// fully-resolved batch or the failure.
	refs, err := e.validator.ValidateBatch(files)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		e.doc = e.doc.clearStepImages(index)
		e.rerender()
		return AttachOutcome{ImagesCleared: true}, fmt.Errorf("validating image batch: %w", err)
	}

	e.doc = e.doc.AttachImages(index, refs)
	e.rerender()
	return AttachOutcome{Attached: len(refs)}, nil
}

// Snapshot returns the current document snapshot. The snapshot is immutable;
// callers must mutate only through the editor.
func (e *Editor) Snapshot() *Document {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.doc
}

// Markdown returns the current plain-text markup render.
func (e *Editor) Markdown() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.markdown
}

// Rich returns the current rich markup render in the given mode.
func (e *Editor) Rich(mode RichMode) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if mode == RichPrint {
		return e.richPrint
	}
	return e.richClipboard
}

// Preview converts the current markdown render to a standalone HTML preview
// document.
func (e *Editor) Preview(ctx context.Context) (string, error) {
	return e.preview.ToHTML(ctx, e.Markdown())
}

// Copy writes the current renders to the clipboard as a multi-representation
// payload, falling back to plain text when the rich write fails.
func (e *Editor) Copy() (CopyOutcome, error) {
	e.mu.Lock()
	plain, rich := e.markdown, e.richClipboard
	e.mu.Unlock()
	return copyRenders(e.clipboard, plain, rich)
}

// ExportPDF renders the print-variant rich fragment to paginated PDF bytes.
func (e *Editor) ExportPDF(ctx context.Context) ([]byte, error) {
	e.mu.Lock()
	fragment := e.richPrint
	e.mu.Unlock()
	return e.exporter.ExportPDF(ctx, fragment)
}

// apply runs one mutation against the current snapshot and re-derives the
// renders while holding the lock, so no reader observes a mid-mutation
// state.
func (e *Editor) apply(op func(*Document) *Document) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.doc = op(e.doc)
	e.rerender()
}

// rerender derives all output representations from the current snapshot.
// Caller holds e.mu.
func (e *Editor) rerender() {
	e.markdown = RenderMarkdown(e.doc)
	e.richClipboard = RenderRich(e.doc, RichClipboard)
	e.richPrint = RenderRich(e.doc, RichPrint)
}
