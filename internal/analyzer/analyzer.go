// Package analyzer implements the document analyzer contract of
// spec.md section 4.1: given one document's HTML and URL, it produces
// the canonical URL, a term-frequency map of stemmed tokens, the set
// of stemmed "important" terms, and the document's fingerprints.
package analyzer

import (
	"errors"
	"net/url"
	"strings"

	"github.com/go-mizu/blueprints/webdex/internal/fingerprint"
	"github.com/go-mizu/blueprints/webdex/internal/htmltext"
	"github.com/go-mizu/blueprints/webdex/internal/simhash"
	"github.com/go-mizu/blueprints/webdex/internal/stemmer"
	"github.com/go-mizu/blueprints/webdex/internal/tokenizer"
)

// ErrDecodeFailed is returned when a document's body cannot be
// parsed as HTML. Callers map this to spec.md's DecodeError: skip the
// document and continue the build.
var ErrDecodeFailed = errors.New("analyzer: document body is not decodable HTML")

// Document is the analyzer's output for one ingested page.
type Document struct {
	CanonicalURL string
	TermFreq     map[string]int
	Important    map[string]bool
	Length       int // total non-unique stemmed-token count
	ContentHash  string
	SimHash      uint64
}

// Analyzer combines tokenization, stemming, and HTML extraction.
type Analyzer struct {
	Stem stemmer.Func
}

// New builds an Analyzer using the default Porter-style stemmer.
func New() *Analyzer {
	return &Analyzer{Stem: stemmer.Default}
}

// Analyze processes one document's raw HTML. rawURL's fragment, if
// any, is stripped to produce the canonical URL (doc_id) per spec.md
// section 3.
func (a *Analyzer) Analyze(rawURL, html string) (Document, error) {
	canon, err := Canonicalize(rawURL)
	if err != nil {
		return Document{}, err
	}

	ext, err := htmltext.Extract(html)
	if err != nil {
		return Document{}, errors.Join(ErrDecodeFailed, err)
	}

	bodyTokens := tokenizer.Tokenize(ext.Body, tokenizer.Alphabetic, 0)
	importantTokens := tokenizer.Tokenize(ext.Important, tokenizer.Alphabetic, 0)

	stemFn := a.Stem
	if stemFn == nil {
		stemFn = stemmer.Default
	}

	termFreq := make(map[string]int, len(bodyTokens))
	stemmedAll := make([]string, 0, len(bodyTokens))
	for _, tok := range bodyTokens {
		stem := stemFn(tok)
		termFreq[stem]++
		stemmedAll = append(stemmedAll, stem)
	}

	important := make(map[string]bool, len(importantTokens))
	for _, tok := range importantTokens {
		important[stemFn(tok)] = true
	}

	return Document{
		CanonicalURL: canon,
		TermFreq:     termFreq,
		Important:    important,
		Length:       len(bodyTokens),
		ContentHash:  fingerprint.Hash(ext.Body),
		SimHash:      simhash.Compute(stemmedAll),
	}, nil
}

// Canonicalize strips a URL's fragment, per spec.md section 3: two
// inputs with the same canonical URL are the same document.
func Canonicalize(rawURL string) (string, error) {
	if i := strings.IndexByte(rawURL, '#'); i >= 0 {
		rawURL = rawURL[:i]
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	u.Fragment = ""
	return u.String(), nil
}
