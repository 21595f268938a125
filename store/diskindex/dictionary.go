package diskindex

import (
	"encoding/json"
	"os"

	"github.com/bits-and-blooms/bloom/v3"
)

// Dictionary is the in-memory term -> byte-offset map spec.md
// section 4.5 requires: loaded once per query-engine session, shared
// read-only across queries. A bloom filter over the same keys
// accelerates the common definitely-absent case; it is purely an
// accelerator and never overrides the authoritative map.
type Dictionary struct {
	offsets map[string]int64
	filter  *bloom.BloomFilter
}

// LoadDictionary reads the term_index.json file at path. It returns
// ErrMissingIndex if the file does not exist.
func LoadDictionary(path string) (*Dictionary, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrMissingIndex
		}
		return nil, &IOError{Op: "read dictionary", Err: err}
	}

	var offsets map[string]int64
	if err := json.Unmarshal(buf, &offsets); err != nil {
		return nil, &CorruptPartialError{File: path, Line: 0, Err: err}
	}

	filter := bloom.NewWithEstimates(uint(len(offsets))+1, 0.01)
	for term := range offsets {
		filter.AddString(term)
	}

	return &Dictionary{offsets: offsets, filter: filter}, nil
}

// Len returns the number of distinct terms in the dictionary.
func (d *Dictionary) Len() int { return len(d.offsets) }

// Offset returns the byte offset of term's record, or ErrNotFound.
func (d *Dictionary) Offset(term string) (int64, error) {
	if d.filter != nil && !d.filter.TestString(term) {
		return 0, ErrNotFound
	}
	off, ok := d.offsets[term]
	if !ok {
		return 0, ErrNotFound
	}
	return off, nil
}
