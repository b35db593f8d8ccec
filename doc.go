// Package sopdoc derives synchronized output representations from a single
// Standard Operating Procedure document model.
//
// # Quick Start
//
// Create an editor, apply mutations, and read the derived renders:
//
//	ed := sopdoc.NewEditor()
//	defer ed.Close()
//
//	ed.SetHeaderField(sopdoc.FieldTitle, "Deploy Service")
//	ed.SetStepText(0, "Build")
//	ed.AddStep()
//	ed.SetStepText(1, "Test")
//
//	fmt.Println(ed.Markdown())
//
// Every mutation produces a new immutable Document snapshot and re-derives
// all renders, so Markdown() and Rich() always reflect the latest applied
// mutation.
//
// # Derivation Pipeline
//
// The document model feeds three consumers:
//
//  1. Markdown render (plain text, for live preview and text/plain clipboard)
//  2. Rich render (escaped HTML fragment with embedded images, for
//     text/html clipboard and print)
//  3. Print pipeline (rich fragment wrapped in a print shell, rendered to
//     PDF via headless Chrome through go-rod)
//
// Images enter the model only through the ingestion validator: a candidate
// batch is accepted or rejected as a whole, and accepted files are resolved
// to self-contained data URIs before the model ever sees them.
//
// # Configuration
//
// Use functional options to customize the editor:
//
//	ed := sopdoc.NewEditor(
//	    sopdoc.WithTimeout(2*time.Minute),
//	    sopdoc.WithPolicy(sopdoc.ImagePolicy{
//	        AllowedTypes:    map[string]bool{"image/png": true},
//	        MaxBytesPerFile: 1 << 20,
//	    }),
//	)
//
// Tests can inject fake Clipboard and Exporter implementations via
// WithClipboard and WithExporter to avoid touching the platform clipboard or
// launching a browser.
package sopdoc
