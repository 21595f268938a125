package query

import "github.com/go-mizu/blueprints/webdex/internal/simhash"

// dedupExact drops a result whose content fingerprint matches one
// already kept, preserving the stable order of hits.
func dedupExact(hits []Hit, fingerprints map[string]string) []Hit {
	if fingerprints == nil {
		return hits
	}
	seen := make(map[string]bool)
	out := make([]Hit, 0, len(hits))
	for _, h := range hits {
		fp, ok := fingerprints[h.DocID]
		if !ok || !seen[fp] {
			if ok {
				seen[fp] = true
			}
			out = append(out, h)
		}
	}
	return out
}

// dedupNear drops a result whose simhash lies within threshold
// Hamming distance of any document already kept, preserving order.
func dedupNear(hits []Hit, simhashes map[string]uint64, threshold int) []Hit {
	if simhashes == nil {
		return hits
	}
	var kept []uint64
	out := make([]Hit, 0, len(hits))
	for _, h := range hits {
		sh, ok := simhashes[h.DocID]
		if !ok {
			out = append(out, h)
			continue
		}
		near := false
		for _, k := range kept {
			if simhash.Hamming(sh, k) <= threshold {
				near = true
				break
			}
		}
		if !near {
			kept = append(kept, sh)
			out = append(out, h)
		}
	}
	return out
}
