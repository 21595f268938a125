// Package model holds the value types shared by the index builder and
// the query engine: postings, posting lists, and the on-disk record
// shapes described in spec.md section 3.
package model

// Posting is a single (doc_id, freq) pair. Important marks whether the
// term occurred in a title/heading/strong-emphasis region of the
// document; it is reserved for optional scoring boosts and is not
// required to affect ranking.
type Posting struct {
	DocID     string `json:"doc_id"`
	Freq      int    `json:"freq"`
	Important bool   `json:"important,omitempty"`
}

// PartialRecord is one line of an intermediate (pre-merge) partial
// file: a term and its raw postings from a single batch.
type PartialRecord struct {
	Term     string    `json:"term"`
	Postings []Posting `json:"postings"`
}

// TermRecord is one line of the final, merged postings file. SF is the
// sum of all posting frequencies for this term (the corpus frequency).
type TermRecord struct {
	Term     string    `json:"term"`
	SF       int       `json:"sf"`
	Postings []Posting `json:"postings"`
}

// DF returns the document frequency: the number of distinct documents
// carrying this term.
func (r TermRecord) DF() int {
	return len(r.Postings)
}

// Manifest records the global statistics a build produces and a query
// session needs: total document count and the batch size used to
// build the index. Persisted as manifest.json next to index.ndjson.
type Manifest struct {
	TotalDocs int `json:"total_docs"`
	BatchSize int `json:"batch_size"`
}
