// Package chunker splits extracted page texts into overlapping fixed-size
// windows. Window sizes are expressed in approximate tokens, using a
// characters-per-token proxy, so defaults line up with embedding model
// limits without pulling in a tokenizer.
package chunker

import (
	"strings"

	"github.com/docsage/docsage/internal/core/domain"
)

// DefaultMaxTokens is the default window size in approximate tokens.
const DefaultMaxTokens = 500

// DefaultOverlap is the default overlap between windows in approximate tokens.
const DefaultOverlap = 50

// charsPerToken is the character-per-token proxy ratio.
const charsPerToken = 4

// Piece is one chunk of text together with the page it came from.
type Piece struct {
	// Text is the trimmed chunk content, never empty.
	Text string

	// Page is the zero-based page index, or domain.PageUnknown when the
	// text was extracted without page boundaries.
	Page int
}

// Chunker splits text into overlapping character windows.
// Chunking is deterministic for a given input and configuration; the
// indexing pipeline's resume logic depends on that.
type Chunker struct {
	maxTokens int
	overlap   int
}

// Option configures a Chunker.
type Option func(*Chunker)

// WithMaxTokens sets the window size in approximate tokens.
func WithMaxTokens(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithOverlap sets the overlap between windows in approximate tokens.
func WithOverlap(n int) Option {
	return func(c *Chunker) {
		if n >= 0 {
			c.overlap = n
		}
	}
}

// New creates a Chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		maxTokens: DefaultMaxTokens,
		overlap:   DefaultOverlap,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Ensure overlap doesn't swallow the whole window
	if c.overlap >= c.maxTokens {
		c.overlap = c.maxTokens / 4
	}

	return c
}

// SplitPages chunks each page separately so every piece knows its source
// page. Empty pages are skipped; pieces that are empty after trimming are
// dropped.
func (c *Chunker) SplitPages(pages []string) []Piece {
	var pieces []Piece
	for page, text := range pages {
		pieces = append(pieces, c.split(text, page)...)
	}
	return pieces
}

// SplitText chunks a single full-document text. All pieces carry
// domain.PageUnknown since page boundaries were not preserved.
func (c *Chunker) SplitText(text string) []Piece {
	return c.split(text, domain.PageUnknown)
}

// split produces overlapping windows over one text, tagging each with page.
func (c *Chunker) split(text string, page int) []Piece {
	if text == "" {
		return nil
	}

	window := c.maxTokens * charsPerToken
	step := window - c.overlap*charsPerToken
	if step < 1 {
		step = 1 // guarantee progress
	}

	var pieces []Piece
	for start := 0; start < len(text); start += step {
		end := start + window
		if end > len(text) {
			end = len(text)
		}

		chunk := strings.TrimSpace(text[start:end])
		if chunk != "" {
			pieces = append(pieces, Piece{Text: chunk, Page: page})
		}
	}

	return pieces
}
