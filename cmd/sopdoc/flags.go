package main

import (
	"fmt"

	flag "github.com/spf13/pflag"
)

// Output format names.
const (
	formatMarkdown = "md"
	formatHTML     = "html"
	formatPDF      = "pdf"
)

// cliFlags holds all parsed command-line flags.
type cliFlags struct {
	config       string
	output       string
	format       string
	copyToClip   bool
	allowTypes   []string
	maxImageSize int64
	timeout      string
	quiet        bool
	verbose      bool
	version      bool
}

// newFlagSet builds the sopdoc flag set bound to f.
func newFlagSet(f *cliFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("sopdoc", flag.ContinueOnError)
	fs.StringVarP(&f.config, "config", "c", "", "config file path")
	fs.StringVarP(&f.output, "out", "o", "", "output file (default: stdout for md/html)")
	fs.StringVarP(&f.format, "format", "f", formatMarkdown, "output format: md, html, pdf")
	fs.BoolVar(&f.copyToClip, "copy", false, "copy renders to the clipboard")
	fs.StringSliceVar(&f.allowTypes, "allow-type", nil, "allowed image MIME type (repeatable)")
	fs.Int64Var(&f.maxImageSize, "max-image-size", 0, "per-image size limit in bytes (0 = policy default)")
	fs.StringVarP(&f.timeout, "timeout", "t", "", "export timeout, e.g. 45s, 2m")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show debug logging")
	fs.BoolVar(&f.version, "version", false, "print version and exit")
	return fs
}

// parseFlags parses args (excluding the program name) and returns the flags
// plus the positional arguments.
func parseFlags(args []string) (*cliFlags, []string, error) {
	f := &cliFlags{}
	fs := newFlagSet(f)
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}

	switch f.format {
	case formatMarkdown, formatHTML, formatPDF:
	default:
		return nil, nil, fmt.Errorf("%w: %q (must be md, html, or pdf)", ErrInvalidFormat, f.format)
	}

	return f, fs.Args(), nil
}
