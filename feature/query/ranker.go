package query

import (
	"math"

	"github.com/go-mizu/blueprints/webdex/internal/model"
)

// defaultDocLength is the fallback length spec.md section 9 names for
// a document missing from doc_lengths.json.
const defaultDocLength = 100

// candidate accumulates one document's score and tracks the first
// position it was seen in, so the final ordering can tie-break by
// insertion order per spec.md section 4.6.
type candidate struct {
	docID string
	score float64
	seen  int
}

// rank scores postings for each query term occurrence against idf and
// length normalization, and returns the candidates in first-seen
// order, unsorted. Query sorts them by descending score with a stable
// sort, so ties keep first-seen order.
func rank(occurrences []string, records map[string]model.TermRecord, totalDocs int, docLengths map[string]int, importantBoost float64) []candidate {
	if importantBoost == 0 {
		importantBoost = 1.0
	}

	order := make([]string, 0)
	index := make(map[string]int)
	scores := make(map[string]float64)

	for _, term := range occurrences {
		rec, ok := records[term]
		if !ok {
			continue
		}
		idf := idfOf(rec.DF(), totalDocs)
		for _, p := range rec.Postings {
			if p.Freq <= 0 {
				continue
			}
			weight := 1 + math.Log(float64(p.Freq))
			norm := lengthNorm(docLengths[p.DocID])
			contribution := weight * idf * norm
			if p.Important {
				contribution *= importantBoost
			}

			if _, seen := index[p.DocID]; !seen {
				index[p.DocID] = len(order)
				order = append(order, p.DocID)
			}
			scores[p.DocID] += contribution
		}
	}

	out := make([]candidate, len(order))
	for i, docID := range order {
		out[i] = candidate{docID: docID, score: scores[docID], seen: index[docID]}
	}
	return out
}

func idfOf(df, totalDocs int) float64 {
	if df <= 0 || totalDocs <= 0 {
		return 0
	}
	v := math.Log(float64(totalDocs) / float64(df))
	if v < 0 {
		return 0
	}
	return v
}

func lengthNorm(length int) float64 {
	if length <= 0 {
		length = defaultDocLength
	}
	return 1 / math.Sqrt(float64(length))
}
