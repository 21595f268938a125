package query

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"

	"github.com/go-mizu/blueprints/webdex/internal/model"
	"github.com/go-mizu/blueprints/webdex/internal/stemmer"
	"github.com/go-mizu/blueprints/webdex/internal/tokenizer"
	"github.com/go-mizu/blueprints/webdex/store/diskindex"
)

// Service implements API against a built index directory: dictionary
// and postings for lookup, the manifest for N, and the optional
// sidecars for length normalization and dedup.
type Service struct {
	Dict     *diskindex.Dictionary
	Fetcher  *diskindex.Fetcher
	Manifest model.Manifest

	// Stem reduces a query token to the same stem space the index was
	// built with. It must match the stemmer.Func used at build time or
	// every lookup against a non-trivial stem misses the dictionary.
	Stem stemmer.Func

	DocLengths   map[string]int
	Fingerprints map[string]string
	SimHashes    map[string]uint64

	Log zerolog.Logger
}

// Open loads an index directory: dictionary, postings, and manifest
// are required (ErrMissingIndex otherwise); the fingerprint, simhash,
// and doc-length sidecars are optional and individually disable their
// dependent feature when absent.
func Open(dir string, log zerolog.Logger) (*Service, error) {
	dict, err := diskindex.LoadDictionary(filepath.Join(dir, diskindex.DictionaryFileName))
	if err != nil {
		return nil, err
	}
	fetcher, err := diskindex.NewFetcher(filepath.Join(dir, diskindex.PostingsFileName), dict)
	if err != nil {
		return nil, err
	}
	manifest, err := diskindex.LoadManifest(dir)
	if err != nil {
		return nil, err
	}

	svc := &Service{Dict: dict, Fetcher: fetcher, Manifest: manifest, Stem: stemmer.Default, Log: log}

	if lengths, err := diskindex.LoadDocLengths(dir); err == nil {
		svc.DocLengths = lengths
	} else {
		log.Warn().Err(err).Msg("doc lengths sidecar unavailable, using default length")
	}
	if fps, err := diskindex.LoadFingerprints(dir); err == nil {
		svc.Fingerprints = fps
	} else {
		log.Warn().Err(err).Msg("fingerprints sidecar unavailable, exact dedup disabled")
	}
	if shs, err := diskindex.LoadSimHashes(dir); err == nil {
		svc.SimHashes = shs
	} else {
		log.Warn().Err(err).Msg("simhashes sidecar unavailable, near dedup disabled")
	}

	return svc, nil
}

// Query implements API.Query: tokenize, resolve each distinct term,
// apply the boolean AND filter, rank by TF-IDF, and deduplicate.
func (s *Service) Query(ctx context.Context, text string, opts Options) ([]Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tokens := tokenizer.Tokenize(text, tokenizer.Alphanumeric, 0)
	if len(tokens) == 0 {
		return nil, nil
	}

	stemFn := s.Stem
	if stemFn == nil {
		stemFn = stemmer.Default
	}
	occurrences := make([]string, len(tokens))
	for i, tok := range tokens {
		occurrences[i] = stemFn(tok)
	}

	records := make(map[string]model.TermRecord)
	docSets := make(map[string]map[string]bool)
	anyEmpty := false

	for _, term := range dedupeStrings(occurrences) {
		rec, err := s.Fetcher.Fetch(term)
		if err != nil {
			if err != diskindex.ErrNotFound {
				return nil, err
			}
			docSets[term] = nil
			anyEmpty = true
			continue
		}
		records[term] = rec
		set := make(map[string]bool, len(rec.Postings))
		for _, p := range rec.Postings {
			set[p.DocID] = true
		}
		docSets[term] = set
		if len(set) == 0 {
			anyEmpty = true
		}
	}

	if anyEmpty {
		return nil, nil
	}

	intersection := intersectAll(docSets)
	if len(intersection) == 0 {
		return nil, nil
	}

	candidates := rank(occurrences, records, s.Manifest.TotalDocs, s.DocLengths, opts.ImportantBoost)

	filtered := candidates[:0]
	for _, c := range candidates {
		if intersection[c.docID] {
			filtered = append(filtered, c)
		}
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].score > filtered[j].score
	})

	hits := make([]Hit, len(filtered))
	for i, c := range filtered {
		hits[i] = Hit{DocID: c.docID, Score: c.score}
	}

	switch opts.Dedup {
	case DedupExact:
		hits = dedupExact(hits, s.Fingerprints)
	case DedupNear:
		threshold := opts.SimHashThreshold
		if threshold <= 0 {
			threshold = DefaultSimHashThreshold
		}
		hits = dedupNear(hits, s.SimHashes, threshold)
	}

	if opts.Top > 0 && len(hits) > opts.Top {
		hits = hits[:opts.Top]
	}

	return hits, nil
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func intersectAll(sets map[string]map[string]bool) map[string]bool {
	var result map[string]bool
	for _, set := range sets {
		if result == nil {
			result = make(map[string]bool, len(set))
			for d := range set {
				result[d] = true
			}
			continue
		}
		for d := range result {
			if !set[d] {
				delete(result, d)
			}
		}
	}
	return result
}
