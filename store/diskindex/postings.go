package diskindex

import (
	"bufio"
	"encoding/json"
	"os"

	"github.com/go-mizu/blueprints/webdex/internal/model"
)

// Fetcher answers spec.md section 4.5's lookup(term) contract: seek
// the postings file to the dictionary's offset for term and read
// exactly one record.
type Fetcher struct {
	path string
	dict *Dictionary
}

// NewFetcher opens postingsPath for random-access reads, keyed by dict.
func NewFetcher(postingsPath string, dict *Dictionary) (*Fetcher, error) {
	if _, err := os.Stat(postingsPath); err != nil {
		if os.IsNotExist(err) {
			return nil, ErrMissingIndex
		}
		return nil, &IOError{Op: "stat postings", Err: err}
	}
	return &Fetcher{path: postingsPath, dict: dict}, nil
}

// Fetch returns the TermRecord for term, or ErrNotFound if the
// dictionary has no entry for it.
func (f *Fetcher) Fetch(term string) (model.TermRecord, error) {
	offset, err := f.dict.Offset(term)
	if err != nil {
		return model.TermRecord{}, err
	}

	file, err := os.Open(f.path)
	if err != nil {
		return model.TermRecord{}, &IOError{Op: "open postings", Err: err}
	}
	defer file.Close()

	if _, err := file.Seek(offset, 0); err != nil {
		return model.TermRecord{}, &IOError{Op: "seek postings", Err: err}
	}

	r := bufio.NewReader(file)
	line, err := r.ReadBytes('\n')
	if err != nil && len(line) == 0 {
		return model.TermRecord{}, &IOError{Op: "read posting record", Err: err}
	}

	var rec model.TermRecord
	if err := json.Unmarshal(line, &rec); err != nil {
		return model.TermRecord{}, &CorruptPartialError{File: f.path, Err: err}
	}
	if rec.Term != term {
		return model.TermRecord{}, &CorruptPartialError{File: f.path, Err: errTermMismatch(term, rec.Term)}
	}

	return rec, nil
}

func errTermMismatch(want, got string) error {
	return &mismatchError{want: want, got: got}
}

type mismatchError struct{ want, got string }

func (e *mismatchError) Error() string {
	return "offset points at term " + e.got + ", expected " + e.want
}
