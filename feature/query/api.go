// Package query implements the query engine of spec.md section 1:
// parse a query, resolve each term through the dictionary, seek into
// the postings file, score candidates by TF-IDF with length
// normalization, apply a boolean AND filter, and suppress duplicates.
package query

import "context"

// DedupMode selects the duplicate-suppression strategy of spec.md
// section 4.7.
type DedupMode string

const (
	DedupNone  DedupMode = "none"
	DedupExact DedupMode = "exact"
	DedupNear  DedupMode = "near"
)

// DefaultSimHashThreshold is spec.md section 4.7's default Hamming
// distance threshold for near-duplicate suppression.
const DefaultSimHashThreshold = 3

// Options configures one query.
type Options struct {
	Dedup DedupMode

	// SimHashThreshold is the max Hamming distance that still counts
	// as a near-duplicate; 0 selects DefaultSimHashThreshold.
	SimHashThreshold int

	// Top bounds the number of results returned; 0 means unbounded.
	Top int

	// ImportantBoost multiplies a posting's contribution when its
	// Important flag is set. Default (zero value from the caller) is
	// normalized to 1.0: the important-term channel is reserved but
	// inert unless a caller opts in, per spec.md section 9.
	ImportantBoost float64
}

// Hit is one ranked, deduplicated result.
type Hit struct {
	DocID string
	Score float64
}

// API is the public surface of the query engine.
type API interface {
	Query(ctx context.Context, text string, opts Options) ([]Hit, error)
}
