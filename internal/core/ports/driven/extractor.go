package driven

import "context"

// TextExtractor extracts text from a source document on disk.
//
// Two strategies exist in a primary/fallback relationship: ExtractPages
// preserves page boundaries, ExtractText produces a single string for
// documents the page-aware path handles badly. The indexing pipeline owns
// the fallback policy; extractors just report what they can read.
type TextExtractor interface {
	// ExtractPages returns one text string per page, in page order.
	ExtractPages(ctx context.Context, path string) ([]string, error)

	// ExtractText returns the document's full text as a single string,
	// discarding page boundaries.
	ExtractText(ctx context.Context, path string) (string, error)
}
