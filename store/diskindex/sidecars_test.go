package diskindex

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-mizu/blueprints/webdex/internal/model"
)

func TestSidecars_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	res := Result{
		Fingerprints: map[string]string{"D1": "hash1"},
		SimHashes:    map[string]uint64{"D1": 42},
		DocLengths:   map[string]int{"D1": 10},
	}
	require.NoError(t, WriteSidecars(dir, res))
	require.NoError(t, WriteManifest(dir, model.Manifest{TotalDocs: 1, BatchSize: 2000}))

	fp, err := LoadFingerprints(dir)
	require.NoError(t, err)
	require.Equal(t, "hash1", fp["D1"])

	sh, err := LoadSimHashes(dir)
	require.NoError(t, err)
	require.Equal(t, uint64(42), sh["D1"])

	dl, err := LoadDocLengths(dir)
	require.NoError(t, err)
	require.Equal(t, 10, dl["D1"])

	m, err := LoadManifest(dir)
	require.NoError(t, err)
	require.Equal(t, 1, m.TotalDocs)
	require.Equal(t, 2000, m.BatchSize)
}

func TestLoadFingerprints_MissingIsMissingSidecar(t *testing.T) {
	_, err := LoadFingerprints(t.TempDir())
	require.ErrorIs(t, err, ErrMissingSidecar)
}

func TestLoadManifest_MissingIsMissingIndex(t *testing.T) {
	_, err := LoadManifest(t.TempDir())
	require.ErrorIs(t, err, ErrMissingIndex)
}
