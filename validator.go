package sopdoc

import (
	"encoding/base64"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxImageBytes is the per-file size limit applied when no policy
// override is given.
const DefaultMaxImageBytes = 5 << 20 // 5 MiB

// ImageFile is a candidate file submitted for attachment to a step.
type ImageFile struct {
	Name string
	Data []byte
}

// ImageRef is a validated, render-ready handle to image content, owned
// exclusively by the step that references it.
//
// The resolution strategy embeds the bytes as a data URI, so the reference is
// self-contained and Release has nothing to revoke. The release hook exists
// to keep the exactly-once ownership contract visible in the model's removal
// and reset paths.
type ImageRef struct {
	Name    string
	MIME    string
	URI     string
	release func()
}

// Release frees the underlying resource, if the resolution strategy
// allocated one. Called exactly once, at step removal or document reset.
func (r ImageRef) Release() {
	if r.release != nil {
		r.release()
	}
}

// BatchValidator abstracts validation and resolution of a candidate image
// batch. ImagePolicy is the default implementation.
type BatchValidator interface {
	ValidateBatch(files []ImageFile) ([]ImageRef, error)
}

// ImagePolicy is the ingestion gate configuration: a MIME allow-list and a
// per-file size ceiling.
type ImagePolicy struct {
	AllowedTypes    map[string]bool
	MaxBytesPerFile int64
}

// DefaultImagePolicy returns the fixed default policy: common web image
// formats, 5 MiB per file.
func DefaultImagePolicy() ImagePolicy {
	return ImagePolicy{
		AllowedTypes: map[string]bool{
			"image/jpeg": true,
			"image/png":  true,
			"image/gif":  true,
			"image/webp": true,
		},
		MaxBytesPerFile: DefaultMaxImageBytes,
	}
}

// ValidateBatch checks a candidate batch atomically, in submission order, and
// resolves every file to a render-ready ImageRef.
//
// The batch is all-or-nothing: the first file violating the MIME allow-list
// fails the whole batch with ErrImageType; the first file exceeding the size
// ceiling fails it with ErrImageSize. No partial list is ever produced. An
// empty batch is a no-op, not an error.
//
// MIME types are detected by content sniffing, never trusted from file names.
func (p ImagePolicy) ValidateBatch(files []ImageFile) ([]ImageRef, error) {
	if len(files) == 0 {
		return nil, nil
	}

	detected := make([]string, len(files))
	for i, f := range files {
		mime := mimetype.Detect(f.Data).String()
		if !p.AllowedTypes[mime] {
			return nil, fmt.Errorf("%w: %s (%s)", ErrImageType, f.Name, mime)
		}
		if int64(len(f.Data)) > p.MaxBytesPerFile {
			return nil, fmt.Errorf("%w: %s (%d bytes, max %d)", ErrImageSize, f.Name, len(f.Data), p.MaxBytesPerFile)
		}
		detected[i] = mime
	}

	refs := make([]ImageRef, len(files))
	for i, f := range files {
		refs[i] = resolveImage(f, detected[i])
	}
	return refs, nil
}

// resolveImage turns accepted file bytes into a self-contained data URI.
func resolveImage(f ImageFile, mime string) ImageRef {
	return ImageRef{
		Name: f.Name,
		MIME: mime,
		URI:  "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(f.Data),
	}
}
