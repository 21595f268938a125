// Package diskindex implements the index-construction and
// query-execution pipeline of spec.md sections 4.2-4.5: a bounded
// in-memory partial builder, a term-sorted partial serializer, a
// k-way merger, and a byte-offset dictionary with a posting fetcher.
package diskindex

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/go-mizu/blueprints/webdex/internal/analyzer"
	"github.com/go-mizu/blueprints/webdex/internal/model"
)

// DefaultBatchSize is spec.md section 4.2's default batch threshold B.
const DefaultBatchSize = 2000

// Sink is the builder's document-intake contract. *Builder implements
// it so a concurrent producer upstream (spec.md section 5) can be
// composed against this interface without depending on the builder's
// internals.
type Sink interface {
	Add(doc analyzer.Document) error
}

// Builder accumulates an in-memory term -> posting-list mapping and
// flushes it to a partial file every BatchSize documents, per
// spec.md section 4.2.
type Builder struct {
	BatchSize int
	WorkDir   string

	pending     map[string]map[string]*model.Posting // term -> doc_id -> posting
	docsInBatch int

	partials []string // paths of partial files written so far, in flush order

	docLengths   map[string]int    // doc_id -> total non-unique token count
	fingerprints map[string]string // doc_id -> content hash
	simhashes    map[string]uint64 // doc_id -> simhash
	seenDocs     map[string]bool   // every distinct doc_id ever added
}

// NewBuilder creates a Builder that flushes partial files into
// workDir. batchSize <= 0 selects DefaultBatchSize.
func NewBuilder(workDir string, batchSize int) (*Builder, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, &IOError{Op: "mkdir work dir", Err: err}
	}
	return &Builder{
		BatchSize:    batchSize,
		WorkDir:      workDir,
		pending:      make(map[string]map[string]*model.Posting),
		docLengths:   make(map[string]int),
		fingerprints: make(map[string]string),
		simhashes:    make(map[string]uint64),
		seenDocs:     make(map[string]bool),
	}, nil
}

// Add folds one analyzed document into the pending batch, flushing
// when the batch threshold is reached.
func (b *Builder) Add(doc analyzer.Document) error {
	if len(doc.TermFreq) == 0 {
		// A document with no tokens contributes no postings
		// (spec.md section 8 boundary behavior), but it
		// still counts toward the document total and sidecars.
		b.recordDocMeta(doc)
		b.docsInBatch++
		return b.maybeFlush()
	}

	for term, freq := range doc.TermFreq {
		byDoc, ok := b.pending[term]
		if !ok {
			byDoc = make(map[string]*model.Posting)
			b.pending[term] = byDoc
		}
		p, ok := byDoc[doc.CanonicalURL]
		if !ok {
			p = &model.Posting{DocID: doc.CanonicalURL}
			byDoc[doc.CanonicalURL] = p
		}
		p.Freq += freq
		if doc.Important[term] {
			p.Important = true
		}
	}

	b.recordDocMeta(doc)
	b.docsInBatch++
	return b.maybeFlush()
}

func (b *Builder) recordDocMeta(doc analyzer.Document) {
	b.seenDocs[doc.CanonicalURL] = true
	b.docLengths[doc.CanonicalURL] += doc.Length
	if doc.ContentHash != "" {
		b.fingerprints[doc.CanonicalURL] = doc.ContentHash
	}
	b.simhashes[doc.CanonicalURL] = doc.SimHash
}

func (b *Builder) maybeFlush() error {
	if b.docsInBatch < b.BatchSize {
		return nil
	}
	return b.Flush()
}

// Flush serializes the pending batch to one term-sorted partial file
// and resets the batch. It is a no-op when nothing is pending.
func (b *Builder) Flush() error {
	if len(b.pending) == 0 {
		b.docsInBatch = 0
		return nil
	}

	path := filepath.Join(b.WorkDir, fmt.Sprintf("partial-%s.ndjson", uuid.New().String()))
	if err := writePartial(path, b.pending); err != nil {
		_ = os.Remove(path)
		return err
	}

	b.partials = append(b.partials, path)
	b.pending = make(map[string]map[string]*model.Posting)
	b.docsInBatch = 0
	return nil
}

// Result is what Finish returns: everything the merge phase needs.
type Result struct {
	PartialPaths []string
	TotalDocs    int
	DocLengths   map[string]int
	Fingerprints map[string]string
	SimHashes    map[string]uint64
}

var _ Sink = (*Builder)(nil)

// Finish flushes any remaining pending batch and returns the
// accumulated build artifacts.
func (b *Builder) Finish() (Result, error) {
	if err := b.Flush(); err != nil {
		return Result{}, err
	}
	return Result{
		PartialPaths: b.partials,
		TotalDocs:    len(b.seenDocs),
		DocLengths:   b.docLengths,
		Fingerprints: b.fingerprints,
		SimHashes:    b.simhashes,
	}, nil
}

// writePartial serializes pending as one ndjson record per term,
// ascending by term, with postings ascending by doc_id, per
// spec.md section 4.3.
func writePartial(path string, pending map[string]map[string]*model.Posting) error {
	f, err := os.Create(path)
	if err != nil {
		return &IOError{Op: "create partial", Err: err}
	}
	defer f.Close()

	terms := make([]string, 0, len(pending))
	for t := range pending {
		terms = append(terms, t)
	}
	sort.Strings(terms)

	enc := json.NewEncoder(f)
	for _, term := range terms {
		byDoc := pending[term]
		docIDs := make([]string, 0, len(byDoc))
		for d := range byDoc {
			docIDs = append(docIDs, d)
		}
		sort.Strings(docIDs)

		rec := model.PartialRecord{Term: term, Postings: make([]model.Posting, 0, len(docIDs))}
		for _, d := range docIDs {
			rec.Postings = append(rec.Postings, *byDoc[d])
		}

		if err := enc.Encode(rec); err != nil {
			return &IOError{Op: "write partial record", Err: err}
		}
	}

	if err := f.Sync(); err != nil {
		return &IOError{Op: "sync partial", Err: err}
	}
	return nil
}
