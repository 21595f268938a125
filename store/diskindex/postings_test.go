package diskindex

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-mizu/blueprints/webdex/internal/model"
)

func buildSmallIndex(t *testing.T) (postingsPath string, dict *Dictionary) {
	t.Helper()
	dir := t.TempDir()

	p := writeRawPartial(t, dir, "p.ndjson", []model.PartialRecord{
		{Term: "cat", Postings: []model.Posting{{DocID: "D1", Freq: 1}, {DocID: "D2", Freq: 1}}},
		{Term: "sat", Postings: []model.Posting{{DocID: "D1", Freq: 1}}},
	})

	out := filepath.Join(dir, "out")
	res, err := Merge([]string{p}, out)
	require.NoError(t, err)

	d, err := LoadDictionary(res.DictionaryPath)
	require.NoError(t, err)
	return res.PostingsPath, d
}

func TestFetcher_FetchReturnsMatchingRecord(t *testing.T) {
	postingsPath, dict := buildSmallIndex(t)

	f, err := NewFetcher(postingsPath, dict)
	require.NoError(t, err)

	rec, err := f.Fetch("cat")
	require.NoError(t, err)
	require.Equal(t, "cat", rec.Term)
	require.Equal(t, 2, rec.SF)
	require.Len(t, rec.Postings, 2)
}

func TestFetcher_NotFoundTermIsLocalError(t *testing.T) {
	postingsPath, dict := buildSmallIndex(t)
	f, err := NewFetcher(postingsPath, dict)
	require.NoError(t, err)

	_, err = f.Fetch("zzz")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestNewFetcher_MissingPostingsFile(t *testing.T) {
	dict := &Dictionary{offsets: map[string]int64{}}
	_, err := NewFetcher(filepath.Join(t.TempDir(), "nope.ndjson"), dict)
	require.ErrorIs(t, err, ErrMissingIndex)
}
