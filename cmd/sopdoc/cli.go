package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	sopdoc "github.com/sopdoc/go-sopdoc"
)

// Sentinel errors for CLI operations.
var (
	ErrUsage         = errors.New("usage: sopdoc [flags] <document.yaml>")
	ErrInvalidFormat = errors.New("invalid output format")
	ErrWriteOutput   = errors.New("failed to write output")
)

// run parses arguments, builds the editor, replays the document description,
// and emits the requested render.
func run(args []string, stdout io.Writer, log zerolog.Logger) error {
	flags, positional, err := parseFlags(args[1:])
	if err != nil {
		return err
	}

	if flags.version {
		fmt.Fprintf(stdout, "sopdoc %s\n", Version)
		return nil
	}

	if len(positional) != 1 {
		return ErrUsage
	}
	docPath := positional[0]

	cfg, err := loadConfig(flags.config)
	if err != nil {
		return err
	}

	opts, err := buildEditorOptions(flags, cfg)
	if err != nil {
		return err
	}

	ed := sopdoc.NewEditor(opts...)
	defer func() {
		if cerr := ed.Close(); cerr != nil {
			log.Warn().Err(cerr).Msg("closing editor")
		}
	}()

	doc, err := loadDocumentFile(docPath)
	if err != nil {
		return err
	}
	if err := replay(ed, doc, filepath.Dir(docPath)); err != nil {
		return err
	}
	log.Debug().
		Int("steps", len(doc.Steps)).
		Int("links", len(doc.Links)).
		Msg("document replayed")

	if flags.copyToClip {
		outcome, err := ed.Copy()
		if err != nil {
			return err
		}
		if outcome.Rich {
			log.Info().Msg("copied rich and plain representations to clipboard")
		} else {
			log.Info().Msg("rich copy failed, plain text copied")
		}
	}

	return emit(ed, flags, docPath, stdout, log)
}

// emit writes the requested render to --out or stdout.
func emit(ed *sopdoc.Editor, flags *cliFlags, docPath string, stdout io.Writer, log zerolog.Logger) error {
	ctx := context.Background()

	switch flags.format {
	case formatMarkdown:
		return writeOutput(flags.output, ed.Markdown()+"\n", stdout)

	case formatHTML:
		html, err := ed.Preview(ctx)
		if err != nil {
			return err
		}
		return writeOutput(flags.output, html, stdout)

	case formatPDF:
		out := flags.output
		if out == "" {
			out = strings.TrimSuffix(docPath, filepath.Ext(docPath)) + ".pdf"
		}
		pdf, err := ed.ExportPDF(ctx)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, pdf, 0o644); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteOutput, err)
		}
		log.Info().Str("path", out).Int("bytes", len(pdf)).Msg("PDF written")
		return nil
	}

	return fmt.Errorf("%w: %q", ErrInvalidFormat, flags.format)
}

// buildEditorOptions maps flags and config onto editor options, flags
// winning over config, config over library defaults.
func buildEditorOptions(flags *cliFlags, cfg *Config) ([]sopdoc.Option, error) {
	var opts []sopdoc.Option

	policy := sopdoc.DefaultImagePolicy()
	allowed := flags.allowTypes
	if len(allowed) == 0 {
		allowed = cfg.Images.AllowedTypes
	}
	if len(allowed) > 0 {
		policy.AllowedTypes = make(map[string]bool, len(allowed))
		for _, t := range allowed {
			policy.AllowedTypes[t] = true
		}
	}
	maxBytes := flags.maxImageSize
	if maxBytes == 0 {
		maxBytes = cfg.Images.MaxBytes
	}
	if maxBytes > 0 {
		policy.MaxBytesPerFile = maxBytes
	}
	opts = append(opts, sopdoc.WithPolicy(policy))

	timeout, err := resolveTimeout(flags.timeout, cfg.Export.Timeout)
	if err != nil {
		return nil, err
	}
	if timeout > 0 {
		opts = append(opts, sopdoc.WithTimeout(timeout))
	}

	return opts, nil
}

// writeOutput writes content to path, or to stdout when path is empty.
func writeOutput(path, content string, stdout io.Writer) error {
	if path == "" {
		_, err := io.WriteString(stdout, content)
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	return nil
}
