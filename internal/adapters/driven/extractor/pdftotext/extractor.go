// Package pdftotext extracts text from PDF documents by shelling out to
// the poppler-utils pdftotext binary.
//
// pdftotext separates pages with form feed characters, which gives the
// page-aware extraction the indexing pipeline prefers. The raw mode reads
// content streams directly and copes with some PDFs the page-aware layout
// pass handles badly, so it serves as the full-text fallback.
package pdftotext

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/docsage/docsage/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// ErrToolNotFound indicates the pdftotext binary is not installed.
var ErrToolNotFound = errors.New(
	"pdftotext not found in PATH (install poppler-utils)")

// pageSeparator is the form feed pdftotext emits between pages.
const pageSeparator = "\f"

// CommandRunner executes an external command and returns its stdout.
// Injectable for testing.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	if _, err := exec.LookPath(name); err != nil {
		return nil, ErrToolNotFound
	}
	return exec.CommandContext(ctx, name, args...).Output()
}

// Extractor extracts PDF text via pdftotext.
type Extractor struct {
	runner CommandRunner
}

// New creates an extractor using the real pdftotext binary.
func New() *Extractor {
	return NewWithRunner(execRunner{})
}

// NewWithRunner creates an extractor with a custom command runner.
func NewWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{runner: runner}
}

// ExtractPages returns one text string per page, in page order.
// Each page's text is trimmed; pages that are blank stay in the slice so
// page indices remain meaningful.
func (e *Extractor) ExtractPages(ctx context.Context, path string) ([]string, error) {
	out, err := e.runner.Run(ctx, "pdftotext", "-enc", "UTF-8", path, "-")
	if err != nil {
		return nil, fmt.Errorf("running pdftotext on %s: %w", path, err)
	}

	raw := strings.Split(string(out), pageSeparator)
	pages := make([]string, 0, len(raw))
	for _, p := range raw {
		pages = append(pages, strings.TrimSpace(p))
	}
	// pdftotext ends output with a trailing form feed
	if len(pages) > 0 && pages[len(pages)-1] == "" {
		pages = pages[:len(pages)-1]
	}

	return pages, nil
}

// ExtractText returns the document's full text as a single string using
// raw content-stream order, discarding page boundaries.
func (e *Extractor) ExtractText(ctx context.Context, path string) (string, error) {
	out, err := e.runner.Run(ctx, "pdftotext", "-raw", "-enc", "UTF-8", path, "-")
	if err != nil {
		return "", fmt.Errorf("running pdftotext on %s: %w", path, err)
	}

	return strings.TrimSpace(strings.ReplaceAll(string(out), pageSeparator, "\n")), nil
}
