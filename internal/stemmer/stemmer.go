// Package stemmer wraps the morphological reducer spec.md treats as an
// external collaborator: a pure token -> stem function. The default
// implementation is the Porter-style English stemmer from
// github.com/kljensen/snowball/english; callers that need a different
// language or a test double can supply any Func.
package stemmer

import "github.com/kljensen/snowball/english"

// Func reduces one lowercase token to its stem. Implementations must
// be pure: same input, same output, no shared state.
type Func func(token string) string

// Default is the Porter-style stemmer used by webdex's build and
// query paths. stemStopWords is false: the library's English stop
// words (and tokens of two letters or fewer) are returned unchanged
// rather than stemmed. They are still indexed; nothing is dropped.
func Default(token string) string {
	return english.Stem(token, false)
}

// Identity returns the token unchanged. Useful for tests and for the
// spec.md section 8 scenarios, which are phrased in terms of an
// identity stemmer.
func Identity(token string) string {
	return token
}
