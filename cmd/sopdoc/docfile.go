package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	sopdoc "github.com/sopdoc/go-sopdoc"
	"github.com/sopdoc/go-sopdoc/internal/yamlutil"
)

// Sentinel errors for document file operations.
var (
	ErrReadDocument  = errors.New("failed to read document file")
	ErrParseDocument = errors.New("failed to parse document file")
	ErrReadImage     = errors.New("failed to read image file")
)

// DocumentFile is the YAML description of an SOP filled in by the user. It
// is an input surface replayed through the editor's mutation operations, not
// a persisted form of the model.
type DocumentFile struct {
	Title     string      `yaml:"title"`
	Purpose   string      `yaml:"purpose"`
	Scope     string      `yaml:"scope"`
	Owner     string      `yaml:"owner"`
	Frequency string      `yaml:"frequency"`
	Steps     []StepEntry `yaml:"steps"`
	Links     []string    `yaml:"links"`
}

// StepEntry is one step row: text plus image file paths to attach.
type StepEntry struct {
	Text   string   `yaml:"text"`
	Images []string `yaml:"images"`
}

// loadDocumentFile reads and parses a document description.
func loadDocumentFile(path string) (*DocumentFile, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided path
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrReadDocument, path, err)
	}
	var doc DocumentFile
	if err := yamlutil.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParseDocument, err)
	}
	return &doc, nil
}

// replay feeds the document description through the editor's mutation
// operations: header field edits, step add/edit, image attachment batches,
// and link add/edit. Image paths are resolved relative to baseDir.
func replay(ed *sopdoc.Editor, doc *DocumentFile, baseDir string) error {
	ed.SetHeaderField(sopdoc.FieldTitle, doc.Title)
	ed.SetHeaderField(sopdoc.FieldPurpose, doc.Purpose)
	ed.SetHeaderField(sopdoc.FieldScope, doc.Scope)
	ed.SetHeaderField(sopdoc.FieldOwner, doc.Owner)
	ed.SetHeaderField(sopdoc.FieldFrequency, doc.Frequency)

	// The editor seeds one blank step; reuse it for the first entry.
	for i, st := range doc.Steps {
		if i > 0 {
			ed.AddStep()
		}
		ed.SetStepText(i, st.Text)

		batch, err := readImageBatch(st.Images, baseDir)
		if err != nil {
			return err
		}
		if _, err := ed.Attach(i, batch); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}

	for i, l := range doc.Links {
		ed.AddLink()
		ed.SetLink(i, l)
	}

	return nil
}

// readImageBatch loads the candidate files for one step in submission order.
func readImageBatch(paths []string, baseDir string) ([]sopdoc.ImageFile, error) {
	batch := make([]sopdoc.ImageFile, 0, len(paths))
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(baseDir, p)
		}
		data, err := os.ReadFile(p) // #nosec G304 -- user-provided path
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrReadImage, p, err)
		}
		batch = append(batch, sopdoc.ImageFile{Name: filepath.Base(p), Data: data})
	}
	return batch, nil
}
