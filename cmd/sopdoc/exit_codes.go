package main

import (
	"errors"
	"os"

	sopdoc "github.com/sopdoc/go-sopdoc"
)

// Exit codes for the sopdoc CLI.
// Follows Unix conventions: 0=success, 1=general, 2=usage.
const (
	ExitSuccess = 0 // Successful run
	ExitGeneral = 1 // General/unexpected error
	ExitUsage   = 2 // Invalid flags, config, or document file
	ExitIO      = 3 // File not found, permission denied
	ExitExport  = 4 // Browser/print surface errors
)

// exitCodeFor returns the appropriate exit code for an error.
// It uses errors.Is to check wrapped errors, so callers must wrap with %w.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	// Print surface errors (exit 4)
	if errors.Is(err, sopdoc.ErrSurfaceBlocked) ||
		errors.Is(err, sopdoc.ErrPageLoad) ||
		errors.Is(err, sopdoc.ErrPDFGeneration) {
		return ExitExport
	}

	// I/O errors (exit 3)
	if errors.Is(err, os.ErrNotExist) ||
		errors.Is(err, os.ErrPermission) ||
		errors.Is(err, ErrReadDocument) ||
		errors.Is(err, ErrReadImage) {
		return ExitIO
	}

	// Usage/validation errors (exit 2)
	if errors.Is(err, ErrUsage) ||
		errors.Is(err, ErrInvalidFormat) ||
		errors.Is(err, ErrInvalidTimeout) ||
		errors.Is(err, ErrConfigNotFound) ||
		errors.Is(err, ErrConfigParse) ||
		errors.Is(err, ErrParseDocument) ||
		errors.Is(err, sopdoc.ErrImageType) ||
		errors.Is(err, sopdoc.ErrImageSize) {
		return ExitUsage
	}

	return ExitGeneral
}
