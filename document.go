package sopdoc

import (
	"fmt"
	"strings"
)

// FieldKey identifies one of the five document header fields.
type FieldKey string

// Header field keys.
const (
	FieldTitle     FieldKey = "title"
	FieldPurpose   FieldKey = "purpose"
	FieldScope     FieldKey = "scope"
	FieldOwner     FieldKey = "owner"
	FieldFrequency FieldKey = "frequency"
)

// Header holds the free-form document header fields.
// All fields are optional; an empty title falls back to a default label at
// render time.
type Header struct {
	Title     string
	Purpose   string
	Scope     string
	Owner     string
	Frequency string
}

// Step is one ordered instruction entry: text plus zero or more attached
// images. Identity is positional; display numbering is re-derived from order
// and never stored.
type Step struct {
	Text   string
	Images []ImageRef
}

// isEmpty reports whether the step is excluded from all renders.
func (s Step) isEmpty() bool {
	return strings.TrimSpace(s.Text) == "" && len(s.Images) == 0
}

// Document is the single source of truth: header fields, ordered steps, and
// ordered links. Documents are immutable snapshots: every mutation method
// returns a new Document and leaves the receiver untouched, so concurrent
// readers of a prior snapshot are unaffected.
type Document struct {
	Header Header
	Steps  []Step
	Links  []string
}

// NewDocument returns the initial document shape: empty header, one blank
// seed step, zero links.
func NewDocument() *Document {
	return &Document{Steps: []Step{{}}}
}

// SetHeaderField returns a snapshot with the given header field replaced.
// Panics on an unknown key (caller contract violation).
func (d *Document) SetHeaderField(key FieldKey, value string) *Document {
	next := *d
	switch key {
	case FieldTitle:
		next.Header.Title = value
	case FieldPurpose:
		next.Header.Purpose = value
	case FieldScope:
		next.Header.Scope = value
	case FieldOwner:
		next.Header.Owner = value
	case FieldFrequency:
		next.Header.Frequency = value
	default:
		panic(fmt.Sprintf("sopdoc: unknown header field %q", key))
	}
	return &next
}

// SetStepText returns a snapshot with the text of the step at index replaced.
func (d *Document) SetStepText(index int, text string) *Document {
	d.mustStepIndex(index)
	next := *d
	next.Steps = cloneSteps(d.Steps)
	next.Steps[index].Text = text
	return &next
}

// AddStep returns a snapshot with a new empty step appended.
func (d *Document) AddStep() *Document {
	next := *d
	next.Steps = append(cloneSteps(d.Steps), Step{})
	return &next
}

// RemoveStep returns a snapshot with the step at index removed. The removed
// step's image resources are released exactly once; subsequent steps shift
// down and display numbering follows implicitly.
func (d *Document) RemoveStep(index int) *Document {
	d.mustStepIndex(index)
	releaseRefs(d.Steps[index].Images)
	next := *d
	next.Steps = make([]Step, 0, len(d.Steps)-1)
	next.Steps = append(next.Steps, d.Steps[:index]...)
	next.Steps = append(next.Steps, d.Steps[index+1:]...)
	return &next
}

// AttachImages returns a snapshot with the validated refs appended to the
// image list of the step at index, in submission order. Refs must come from
// ImagePolicy.ValidateBatch; the model never stores an unvalidated image.
func (d *Document) AttachImages(index int, refs []ImageRef) *Document {
	d.mustStepIndex(index)
	if len(refs) == 0 {
		return d
	}
	next := *d
	next.Steps = cloneSteps(d.Steps)
	st := &next.Steps[index]
	images := make([]ImageRef, 0, len(st.Images)+len(refs))
	images = append(images, st.Images...)
	images = append(images, refs...)
	st.Images = images
	return &next
}

// clearStepImages returns a snapshot with the image list of the step at index
// emptied, releasing the step's image resources. Used by the reject-and-clear
// recovery path after a failed batch validation.
func (d *Document) clearStepImages(index int) *Document {
	d.mustStepIndex(index)
	if len(d.Steps[index].Images) == 0 {
		return d
	}
	releaseRefs(d.Steps[index].Images)
	next := *d
	next.Steps = cloneSteps(d.Steps)
	next.Steps[index].Images = nil
	return &next
}

// SetLink returns a snapshot with the link at index replaced. Links are
// stored raw; trimming and emptiness filtering happen at render time so an
// in-progress blank link row is representable.
func (d *Document) SetLink(index int, text string) *Document {
	d.mustLinkIndex(index)
	next := *d
	next.Links = append([]string(nil), d.Links...)
	next.Links[index] = text
	return &next
}

// AddLink returns a snapshot with a new empty link appended.
func (d *Document) AddLink() *Document {
	next := *d
	next.Links = append(append([]string(nil), d.Links...), "")
	return &next
}

// RemoveLink returns a snapshot with the link at index removed.
func (d *Document) RemoveLink(index int) *Document {
	d.mustLinkIndex(index)
	next := *d
	next.Links = make([]string, 0, len(d.Links)-1)
	next.Links = append(next.Links, d.Links[:index]...)
	next.Links = append(next.Links, d.Links[index+1:]...)
	return &next
}

// releaseImages releases every image resource held by the document. Called
// on reset, before the document is discarded.
func (d *Document) releaseImages() {
	for _, st := range d.Steps {
		releaseRefs(st.Images)
	}
}

// realSteps returns the steps included in renders: non-empty trimmed text or
// at least one image, preserving original relative order.
func (d *Document) realSteps() []Step {
	var steps []Step
	for _, st := range d.Steps {
		if !st.isEmpty() {
			steps = append(steps, st)
		}
	}
	return steps
}

// realLinks returns the trimmed, non-empty links in original order.
func (d *Document) realLinks() []string {
	var links []string
	for _, l := range d.Links {
		if trimmed := strings.TrimSpace(l); trimmed != "" {
			links = append(links, trimmed)
		}
	}
	return links
}

// mustStepIndex panics on an out-of-range step index. Stale indices are a
// programming defect of the caller, not a runtime condition: the collaborator
// always renders from the current snapshot.
func (d *Document) mustStepIndex(index int) {
	if index < 0 || index >= len(d.Steps) {
		panic(fmt.Sprintf("sopdoc: step index %d out of range [0,%d)", index, len(d.Steps)))
	}
}

// mustLinkIndex panics on an out-of-range link index.
func (d *Document) mustLinkIndex(index int) {
	if index < 0 || index >= len(d.Links) {
		panic(fmt.Sprintf("sopdoc: link index %d out of range [0,%d)", index, len(d.Links)))
	}
}

// cloneSteps copies the step slice. Image slices are shared with the source
// snapshot; any step-level image change must replace the slice, never append
// in place.
func cloneSteps(steps []Step) []Step {
	cloned := make([]Step, len(steps))
	copy(cloned, steps)
	return cloned
}

func releaseRefs(refs []ImageRef) {
	for _, r := range refs {
		r.Release()
	}
}
