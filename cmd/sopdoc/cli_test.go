package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	sopdoc "github.com/sopdoc/go-sopdoc"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(append([]string{"sopdoc"}, args...), &out, zerolog.Nop())
	return out.String(), err
}

func TestRun_MarkdownToStdout(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "doc.yaml", `
title: Deploy Service
steps:
  - text: Build
  - text: Test
`)

	out, err := runCLI(t, path)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	want := "# Deploy Service\n\n---\n\n## Steps\n1. Build\n2. Test\n"
	if out != want {
		t.Errorf("stdout = %q, want %q", out, want)
	}
}

func TestRun_MarkdownToFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	doc := writeFile(t, dir, "doc.yaml", "title: T\n")
	outPath := filepath.Join(dir, "sop.md")

	if _, err := runCLI(t, "--out", outPath, doc); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# T") {
		t.Errorf("output file = %q", data)
	}
}

func TestRun_HTMLPreview(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "doc.yaml", `
title: Deploy Service
steps:
  - text: Build
`)

	out, err := runCLI(t, "--format", "html", path)
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	for _, want := range []string{"<!DOCTYPE html>", "Deploy Service", "<li>Build</li>"} {
		if !strings.Contains(out, want) {
			t.Errorf("preview missing %q", want)
		}
	}
}

func TestRun_Version(t *testing.T) {
	t.Parallel()

	out, err := runCLI(t, "--version")
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(out, "sopdoc") {
		t.Errorf("version output = %q", out)
	}
}

func TestRun_MissingDocumentArg(t *testing.T) {
	t.Parallel()

	_, err := runCLI(t)
	if !errors.Is(err, ErrUsage) {
		t.Errorf("error = %v, want ErrUsage", err)
	}
}

func TestRun_InvalidTimeout(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "doc.yaml", "title: T\n")
	_, err := runCLI(t, "--timeout", "never", path)
	if !errors.Is(err, ErrInvalidTimeout) {
		t.Errorf("error = %v, want ErrInvalidTimeout", err)
	}
}

func TestRun_ConfigPolicyApplied(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "shot.png"), pngFixture, 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := writeFile(t, dir, "cfg.yaml", `
images:
  allowedTypes:
    - image/jpeg
`)
	doc := writeFile(t, dir, "doc.yaml", `
title: T
steps:
  - text: s
    images:
      - shot.png
`)

	_, err := runCLI(t, "--config", cfg, doc)
	if !errors.Is(err, sopdoc.ErrImageType) {
		t.Errorf("error = %v, want type violation under jpeg-only config", err)
	}
}
