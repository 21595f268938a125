package diskindex

import (
	"bufio"
	"container/heap"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-mizu/blueprints/webdex/internal/model"
)

const (
	// PostingsFileName is the final, merged postings file: spec.md
	// section 6's index.ndjson.
	PostingsFileName = "index.ndjson"

	// DictionaryFileName maps term -> byte offset into
	// PostingsFileName, per spec.md section 6.
	DictionaryFileName = "term_index.json"
)

// partialReader streams one partial file's records in order,
// tracking the line number for CorruptPartialError reporting.
type partialReader struct {
	path    string
	file    *os.File
	scanner *bufio.Scanner
	line    int
}

func openPartialReader(path string) (*partialReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open partial", Err: err}
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	return &partialReader{path: path, file: f, scanner: sc}, nil
}

// next returns the next record, or ok=false at EOF. A malformed line
// (and a truncated-but-non-empty final line per spec.md section 4.4)
// surfaces as CorruptPartialError; an empty trailing line is skipped.
func (r *partialReader) next() (model.PartialRecord, bool, error) {
	for r.scanner.Scan() {
		r.line++
		line := r.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var rec model.PartialRecord
		if err := json.Unmarshal(line, &rec); err != nil {
			return model.PartialRecord{}, false, &CorruptPartialError{File: r.path, Line: r.line, Err: err}
		}
		return rec, true, nil
	}
	if err := r.scanner.Err(); err != nil {
		return model.PartialRecord{}, false, &IOError{Op: "read partial", Err: err}
	}
	return model.PartialRecord{}, false, nil
}

func (r *partialReader) close() { _ = r.file.Close() }

// heapEntry is one live record in the merge heap, keyed by
// (term, source_index) per spec.md section 4.4 step 1.
type heapEntry struct {
	term   string
	srcIdx int
	rec    model.PartialRecord
}

type mergeHeap []heapEntry

func (h mergeHeap) Len() int { return len(h) }
func (h mergeHeap) Less(i, j int) bool {
	if h[i].term != h[j].term {
		return h[i].term < h[j].term
	}
	return h[i].srcIdx < h[j].srcIdx
}
func (h mergeHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *mergeHeap) Push(x any)        { *h = append(*h, x.(heapEntry)) }
func (h *mergeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// MergeResult summarizes a completed merge.
type MergeResult struct {
	PostingsPath   string
	DictionaryPath string
	Terms          int
}

// Merge performs the k-way merge of spec.md section 4.4: it streams
// all partials through a min-heap keyed by term, aggregates postings
// per term, and writes the final postings stream plus a term->offset
// dictionary, both atomically (write-then-rename).
func Merge(partialPaths []string, outDir string) (MergeResult, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return MergeResult{}, &IOError{Op: "mkdir out dir", Err: err}
	}

	readers := make([]*partialReader, len(partialPaths))
	for i, p := range partialPaths {
		r, err := openPartialReader(p)
		if err != nil {
			return MergeResult{}, err
		}
		readers[i] = r
	}
	defer func() {
		for _, r := range readers {
			r.close()
		}
	}()

	h := &mergeHeap{}
	heap.Init(h)
	for i, r := range readers {
		rec, ok, err := r.next()
		if err != nil {
			return MergeResult{}, err
		}
		if ok {
			heap.Push(h, heapEntry{term: rec.Term, srcIdx: i, rec: rec})
		}
	}

	outPath := filepath.Join(outDir, PostingsFileName)
	tmpPath := outPath + ".tmp"
	out, err := os.Create(tmpPath)
	if err != nil {
		return MergeResult{}, &IOError{Op: "create postings", Err: err}
	}

	dict := make(map[string]int64)
	var offset int64

	for h.Len() > 0 {
		first := heap.Pop(h).(heapEntry)
		term := first.term

		merged := make(map[string]*model.Posting)
		fold := func(rec model.PartialRecord) {
			for _, p := range rec.Postings {
				cur, ok := merged[p.DocID]
				if !ok {
					cp := p
					merged[p.DocID] = &cp
					continue
				}
				cur.Freq += p.Freq
				if p.Important {
					cur.Important = true
				}
			}
		}
		fold(first.rec)

		refill := func(srcIdx int) error {
			rec, ok, err := readers[srcIdx].next()
			if err != nil {
				return err
			}
			if ok {
				heap.Push(h, heapEntry{term: rec.Term, srcIdx: srcIdx, rec: rec})
			}
			return nil
		}

		for h.Len() > 0 && (*h)[0].term == term {
			next := heap.Pop(h).(heapEntry)
			fold(next.rec)
			if err := refill(next.srcIdx); err != nil {
				out.Close()
				return MergeResult{}, err
			}
		}
		if err := refill(first.srcIdx); err != nil {
			out.Close()
			return MergeResult{}, err
		}

		docIDs := make([]string, 0, len(merged))
		for d := range merged {
			docIDs = append(docIDs, d)
		}
		sort.Strings(docIDs)

		termRec := model.TermRecord{Term: term, Postings: make([]model.Posting, 0, len(docIDs))}
		sf := 0
		for _, d := range docIDs {
			p := *merged[d]
			sf += p.Freq
			termRec.Postings = append(termRec.Postings, p)
		}
		termRec.SF = sf

		dict[term] = offset

		buf, err := json.Marshal(termRec)
		if err != nil {
			out.Close()
			return MergeResult{}, fmt.Errorf("diskindex: marshal term record: %w", err)
		}
		n, err := out.Write(append(buf, '\n'))
		if err != nil {
			out.Close()
			return MergeResult{}, &IOError{Op: "write postings", Err: err}
		}
		offset += int64(n)
	}

	if err := out.Sync(); err != nil {
		out.Close()
		return MergeResult{}, &IOError{Op: "sync postings", Err: err}
	}
	if err := out.Close(); err != nil {
		return MergeResult{}, &IOError{Op: "close postings", Err: err}
	}
	if err := os.Rename(tmpPath, outPath); err != nil {
		return MergeResult{}, &IOError{Op: "rename postings", Err: err}
	}

	dictPath := filepath.Join(outDir, DictionaryFileName)
	if err := writeDictionary(dictPath, dict); err != nil {
		return MergeResult{}, err
	}

	return MergeResult{PostingsPath: outPath, DictionaryPath: dictPath, Terms: len(dict)}, nil
}

func writeDictionary(path string, dict map[string]int64) error {
	tmp := path + ".tmp"
	buf, err := json.Marshal(dict)
	if err != nil {
		return fmt.Errorf("diskindex: marshal dictionary: %w", err)
	}
	if err := os.WriteFile(tmp, buf, 0o644); err != nil {
		return &IOError{Op: "write dictionary", Err: err}
	}
	if err := os.Rename(tmp, path); err != nil {
		return &IOError{Op: "rename dictionary", Err: err}
	}
	return nil
}
