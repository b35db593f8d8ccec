package main

import (
	"errors"
	"testing"
)

func TestParseFlags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantFormat string
		wantCopy   bool
		wantPos    int
		wantErr    error
	}{
		{
			name:       "defaults",
			args:       []string{"doc.yaml"},
			wantFormat: formatMarkdown,
			wantPos:    1,
		},
		{
			name:       "pdf format with output",
			args:       []string{"--format", "pdf", "--out", "sop.pdf", "doc.yaml"},
			wantFormat: formatPDF,
			wantPos:    1,
		},
		{
			name:       "copy flag",
			args:       []string{"--copy", "doc.yaml"},
			wantFormat: formatMarkdown,
			wantCopy:   true,
			wantPos:    1,
		},
		{
			name:    "invalid format",
			args:    []string{"--format", "docx", "doc.yaml"},
			wantErr: ErrInvalidFormat,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			flags, positional, err := parseFlags(tt.args)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseFlags() error = %v", err)
			}
			if flags.format != tt.wantFormat {
				t.Errorf("format = %q, want %q", flags.format, tt.wantFormat)
			}
			if flags.copyToClip != tt.wantCopy {
				t.Errorf("copy = %v, want %v", flags.copyToClip, tt.wantCopy)
			}
			if len(positional) != tt.wantPos {
				t.Errorf("positional = %v, want %d args", positional, tt.wantPos)
			}
		})
	}
}

func TestParseFlags_PolicyOverrides(t *testing.T) {
	t.Parallel()

	flags, _, err := parseFlags([]string{
		"--allow-type", "image/png",
		"--allow-type", "image/webp",
		"--max-image-size", "1048576",
		"doc.yaml",
	})
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}
	if len(flags.allowTypes) != 2 || flags.allowTypes[0] != "image/png" || flags.allowTypes[1] != "image/webp" {
		t.Errorf("allowTypes = %v", flags.allowTypes)
	}
	if flags.maxImageSize != 1048576 {
		t.Errorf("maxImageSize = %d", flags.maxImageSize)
	}
}
