package sopdoc

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeExporter captures the fragment it was asked to print.
type fakeExporter struct {
	mu       sync.Mutex
	fragment string
	pdf      []byte
	err      error
	closed   bool
}

func (f *fakeExporter) ExportPDF(ctx context.Context, richFragment string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fragment = richFragment
	return f.pdf, f.err
}

func (f *fakeExporter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// blockingValidator parks ValidateBatch until released, holding the
// in-flight window open for as long as a test needs it.
type blockingValidator struct {
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func newBlockingValidator() *blockingValidator {
	return &blockingValidator{
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (v *blockingValidator) ValidateBatch(files []ImageFile) ([]ImageRef, error) {
	v.once.Do(func() { close(v.entered) })
	<-v.release
	return DefaultImagePolicy().ValidateBatch(files)
}

// panicOnceValidator fails hard on its first call, then behaves normally.
type panicOnceValidator struct {
	fired bool
}

func (v *panicOnceValidator) ValidateBatch(files []ImageFile) ([]ImageRef, error) {
	if !v.fired {
		v.fired = true
		panic("validator blew up")
	}
	return DefaultImagePolicy().ValidateBatch(files)
}

func newTestEditor(t *testing.T, opts ...Option) (*Editor, *fakeExporter, *fakeClipboard) {
	t.Helper()
	ex := &fakeExporter{pdf: []byte("%PDF-fake")}
	cb := &fakeClipboard{}
	ed := NewEditor(append([]Option{WithExporter(ex), WithClipboard(cb)}, opts...)...)
	t.Cleanup(func() { _ = ed.Close() })
	return ed, ex, cb
}

func TestEditor_RendersTrackEveryMutation(t *testing.T) {
	t.Parallel()

	ed, _, _ := newTestEditor(t)

	ed.SetHeaderField(FieldTitle, "Deploy Service")
	if !strings.HasPrefix(ed.Markdown(), "# Deploy Service") {
		t.Errorf("markdown stale after header edit: %q", ed.Markdown())
	}

	ed.SetStepText(0, "Build")
	ed.AddStep()
	ed.SetStepText(1, "Test")
	want := "# Deploy Service\n\n---\n\n## Steps\n1. Build\n2. Test"
	if got := ed.Markdown(); got != want {
		t.Errorf("Markdown() = %q, want %q", got, want)
	}
	if !strings.Contains(ed.Rich(RichClipboard), "<li><p>Build</p></li>") {
		t.Errorf("rich render stale: %q", ed.Rich(RichClipboard))
	}

	ed.RemoveStep(0)
	if got := ed.Markdown(); !strings.Contains(got, "1. Test") {
		t.Errorf("renumbering after removal broken: %q", got)
	}
}

func TestEditor_Reset(t *testing.T) {
	t.Parallel()

	released := 0
	ed, _, _ := newTestEditor(t)
	ed.SetHeaderField(FieldTitle, "T")
	ed.SetStepText(0, "step")
	ed.AddLink()
	ed.SetLink(0, "https://example.com")

	// Sneak a releasable ref in through the model to observe reset release.
	ed.apply(func(d *Document) *Document {
		return d.AttachImages(0, []ImageRef{{Name: "a.png", release: func() { released++ }}})
	})

	ed.Reset()

	doc := ed.Snapshot()
	if doc.Header != (Header{}) || len(doc.Steps) != 1 || !doc.Steps[0].isEmpty() || len(doc.Links) != 0 {
		t.Errorf("reset shape wrong: %+v", doc)
	}
	if released != 1 {
		t.Errorf("release count = %d, want 1 on reset", released)
	}
	if got := ed.Markdown(); got != "# "+UntitledLabel {
		t.Errorf("markdown after reset = %q", got)
	}
}

func TestEditor_AttachAppendsValidatedBatch(t *testing.T) {
	t.Parallel()

	ed, _, _ := newTestEditor(t)
	ed.SetStepText(0, "with image")

	outcome, err := ed.Attach(0, []ImageFile{{Name: "a.png", Data: pngBytes()}})
	if err != nil {
		t.Fatalf("Attach() error = %v", err)
	}
	if outcome.Attached != 1 || outcome.ImagesCleared {
		t.Errorf("outcome = %+v, want 1 attached, nothing cleared", outcome)
	}
	if got := ed.Snapshot().Steps[0].Images; len(got) != 1 || got[0].MIME != "image/png" {
		t.Errorf("model images = %+v", got)
	}
	if !strings.Contains(ed.Rich(RichClipboard), "data:image/png;base64,") {
		t.Error("rich render missing embedded image after attach")
	}
}

func TestEditor_AttachRejectAndClear(t *testing.T) {
	t.Parallel()

	ed, _, _ := newTestEditor(t)
	ed.SetStepText(0, "step")

	if _, err := ed.Attach(0, []ImageFile{{Name: "ok.png", Data: pngBytes()}}); err != nil {
		t.Fatalf("seed attach failed: %v", err)
	}

	// Mixed batch: rejection clears the step's existing images too.
	outcome, err := ed.Attach(0, []ImageFile{
		{Name: "ok2.png", Data: pngBytes()},
		{Name: "notes.txt", Data: textBytes()},
	})
	if !errors.Is(err, ErrImageType) {
		t.Fatalf("error = %v, want ErrImageType", err)
	}
	if !outcome.ImagesCleared {
		t.Error("ImagesCleared = false, want picker-reset signal")
	}
	if got := len(ed.Snapshot().Steps[0].Images); got != 0 {
		t.Errorf("step images = %d, want 0 (reject-and-clear, never partial)", got)
	}
	if strings.Contains(ed.Rich(RichClipboard), "data:image/") {
		t.Error("rich render still embeds cleared images")
	}
}

func TestEditor_AttachEmptyBatchIsNoOp(t *testing.T) {
	t.Parallel()

	ed, _, _ := newTestEditor(t)
	outcome, err := ed.Attach(0, nil)
	if err != nil {
		t.Errorf("empty batch error = %v", err)
	}
	if outcome != (AttachOutcome{}) {
		t.Errorf("outcome = %+v, want zero", outcome)
	}
}

func TestEditor_AttachSerializesConcurrentRequests(t *testing.T) {
	t.Parallel()

	v := newBlockingValidator()
	ed, _, _ := newTestEditor(t, WithValidator(v))
	ed.SetStepText(0, "step")

	done := make(chan error, 1)
	go func() {
		_, err := ed.Attach(0, []ImageFile{{Name: "a.png", Data: pngBytes()}})
		done <- err
	}()
	<-v.entered

	// Second request while the first is still validating.
	if _, err := ed.Attach(0, []ImageFile{{Name: "b.png", Data: pngBytes()}}); !errors.Is(err, ErrAttachPending) {
		t.Errorf("concurrent attach error = %v, want ErrAttachPending", err)
	}

	close(v.release)
	if err := <-done; err != nil {
		t.Fatalf("first attach error = %v", err)
	}
	if got := len(ed.Snapshot().Steps[0].Images); got != 1 {
		t.Errorf("step images = %d, want only the first batch", got)
	}

	// Guard is down again once the first request resolves.
	if _, err := ed.Attach(0, []ImageFile{{Name: "c.png", Data: pngBytes()}}); err != nil {
		t.Errorf("follow-up attach error = %v", err)
	}
}

func TestEditor_AttachGuardResetsAfterValidatorPanic(t *testing.T) {
	t.Parallel()

	ed, _, _ := newTestEditor(t, WithValidator(&panicOnceValidator{}))
	ed.SetStepText(0, "step")

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("expected validator panic to propagate")
			}
		}()
		_, _ = ed.Attach(0, []ImageFile{{Name: "a.png", Data: pngBytes()}})
	}()

	outcome, err := ed.Attach(0, []ImageFile{{Name: "a.png", Data: pngBytes()}})
	if err != nil {
		t.Fatalf("attach after panic error = %v, want guard released", err)
	}
	if outcome.Attached != 1 {
		t.Errorf("outcome = %+v, want 1 attached", outcome)
	}
}

func TestEditor_AttachOutOfRangePanics(t *testing.T) {
	t.Parallel()

	ed, _, _ := newTestEditor(t)
	defer func() {
		if recover() == nil {
			t.Error("expected panic on out-of-range step index")
		}
	}()
	_, _ = ed.Attach(3, nil)
}

func TestEditor_Copy(t *testing.T) {
	t.Parallel()

	ed, _, cb := newTestEditor(t)
	ed.SetHeaderField(FieldTitle, "T")

	outcome, err := ed.Copy()
	if err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	if !outcome.Rich {
		t.Error("outcome.Rich = false with rich-capable clipboard")
	}
	if cb.richPlain != ed.Markdown() {
		t.Errorf("text/plain entry = %q, want markdown render", cb.richPlain)
	}
	if cb.richHTML != ed.Rich(RichClipboard) {
		t.Error("text/html entry is not the styling-light rich render")
	}
}

func TestEditor_CopyFallsBack(t *testing.T) {
	t.Parallel()

	cb := &fakeClipboard{richErr: ErrRichClipboard}
	ed := NewEditor(WithExporter(&fakeExporter{}), WithClipboard(cb))
	t.Cleanup(func() { _ = ed.Close() })

	outcome, err := ed.Copy()
	if err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	if outcome.Rich {
		t.Error("outcome.Rich = true, want plain fallback")
	}
	if cb.plain != ed.Markdown() {
		t.Errorf("fallback wrote %q", cb.plain)
	}
}

func TestEditor_ExportPDFUsesPrintVariant(t *testing.T) {
	t.Parallel()

	ed, ex, _ := newTestEditor(t)
	ed.SetStepText(0, "step")

	pdf, err := ed.ExportPDF(context.Background())
	if err != nil {
		t.Fatalf("ExportPDF() error = %v", err)
	}
	if string(pdf) != "%PDF-fake" {
		t.Errorf("pdf = %q", pdf)
	}
	if !strings.HasPrefix(ex.fragment, "<style>") {
		t.Error("exporter received non-print variant")
	}
	if ex.fragment != ed.Rich(RichPrint) {
		t.Error("exporter fragment is not the current print render")
	}
}

func TestEditor_CloseClosesExporter(t *testing.T) {
	t.Parallel()

	ed, ex, _ := newTestEditor(t)
	if err := ed.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !ex.closed {
		t.Error("exporter not closed")
	}
}

func TestWithTimeout_PanicsOnNonPositive(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Error("expected panic for non-positive timeout")
		}
	}()
	WithTimeout(0)
}

func TestWithTimeout_SetsTimeout(t *testing.T) {
	t.Parallel()

	ed, _, _ := newTestEditor(t, WithTimeout(time.Minute))
	if ed.cfg.timeout != time.Minute {
		t.Errorf("timeout = %v, want 1m", ed.cfg.timeout)
	}
}

func TestWithPolicy_OverridesValidation(t *testing.T) {
	t.Parallel()

	ed, _, _ := newTestEditor(t, WithPolicy(ImagePolicy{
		AllowedTypes:    map[string]bool{"image/png": true},
		MaxBytesPerFile: DefaultMaxImageBytes,
	}))

	if _, err := ed.Attach(0, []ImageFile{{Name: "a.jpg", Data: jpegBytes()}}); !errors.Is(err, ErrImageType) {
		t.Errorf("error = %v, want ErrImageType under png-only policy", err)
	}
}

func TestEditor_SnapshotIsolation(t *testing.T) {
	t.Parallel()

	ed, _, _ := newTestEditor(t)
	ed.SetStepText(0, "before")

	snap := ed.Snapshot()
	ed.SetStepText(0, "after")

	if snap.Steps[0].Text != "before" {
		t.Errorf("earlier snapshot changed: %q", snap.Steps[0].Text)
	}
	if ed.Snapshot().Steps[0].Text != "after" {
		t.Errorf("current snapshot stale")
	}
}
