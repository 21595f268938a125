package simhash

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompute_IdenticalTokensIdenticalFingerprint(t *testing.T) {
	a := Compute([]string{"the", "cat", "sat"})
	b := Compute([]string{"the", "cat", "sat"})
	assert.Equal(t, a, b)
}

func TestCompute_SimilarDocumentsAreClose(t *testing.T) {
	a := Compute([]string{"the", "cat", "sat", "on", "the", "mat"})
	b := Compute([]string{"the", "cat", "sat", "on", "a", "mat"})
	assert.LessOrEqual(t, Hamming(a, b), 10)
}

func TestHamming_SelfDistanceZero(t *testing.T) {
	a := Compute([]string{"alpha", "beta"})
	assert.Equal(t, 0, Hamming(a, a))
}

func TestHamming_SymmetricAndBounded(t *testing.T) {
	a := Compute([]string{"alpha"})
	b := Compute([]string{"omega", "zeta", "theta"})
	assert.Equal(t, Hamming(a, b), Hamming(b, a))
	assert.LessOrEqual(t, Hamming(a, b), 64)
}
