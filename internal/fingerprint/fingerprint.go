// Package fingerprint computes the 128-bit content hash spec.md
// section 3 calls the document fingerprint: a digest of normalized
// content used for exact-duplicate suppression (section 4.7).
package fingerprint

import (
	"encoding/binary"
	"encoding/hex"
	"strings"
	"unicode"

	"github.com/zeebo/xxh3"
)

// Hash returns the hex-encoded 128-bit digest of the normalized text.
// Normalization collapses runs of whitespace and lowercases the
// input, so two documents that differ only in capitalization or
// incidental whitespace hash identically.
func Hash(text string) string {
	n := normalize(text)
	h := xxh3.HashString128(n)

	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], h.Hi)
	binary.BigEndian.PutUint64(buf[8:], h.Lo)
	return hex.EncodeToString(buf[:])
}

func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if !space {
				b.WriteByte(' ')
				space = true
			}
			continue
		}
		space = false
		b.WriteRune(unicode.ToLower(r))
	}
	return strings.TrimSpace(b.String())
}
