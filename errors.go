package sopdoc

import "errors"

// Sentinel errors for library operations.
var (
	// Image ingestion validation errors.
	ErrImageType = errors.New("image type not allowed")
	ErrImageSize = errors.New("image exceeds size limit")

	// Clipboard errors.
	ErrRichClipboard  = errors.New("rich clipboard representation unsupported")
	ErrClipboardWrite = errors.New("clipboard write failed")

	// Print/export surface errors.
	ErrSurfaceBlocked = errors.New("print surface could not be opened")
	ErrPageLoad       = errors.New("failed to load print page")
	ErrPDFGeneration  = errors.New("PDF generation failed")

	// Preview conversion errors.
	ErrPreviewConversion = errors.New("preview conversion failed")

	// Attach serialization errors.
	ErrAttachPending = errors.New("image attachment already in progress")
)
