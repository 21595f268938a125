package diskindex

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/go-mizu/blueprints/webdex/internal/model"
)

func writeRawPartial(t *testing.T, dir, name string, recs []model.PartialRecord) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	enc := json.NewEncoder(f)
	for _, r := range recs {
		require.NoError(t, enc.Encode(r))
	}
	return path
}

func readAllTermRecords(t *testing.T, path string) []model.TermRecord {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	var out []model.TermRecord
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec model.TermRecord
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		out = append(out, rec)
	}
	require.NoError(t, sc.Err())
	return out
}

func TestMerge_AggregatesAcrossPartials(t *testing.T) {
	dir := t.TempDir()

	p1 := writeRawPartial(t, dir, "p1.ndjson", []model.PartialRecord{
		{Term: "apple", Postings: []model.Posting{{DocID: "D1", Freq: 2}}},
	})
	p2 := writeRawPartial(t, dir, "p2.ndjson", []model.PartialRecord{
		{Term: "apple", Postings: []model.Posting{{DocID: "D1", Freq: 3}, {DocID: "D2", Freq: 1}}},
		{Term: "banana", Postings: []model.Posting{{DocID: "D2", Freq: 1}}},
	})

	out := filepath.Join(dir, "out")
	res, err := Merge([]string{p1, p2}, out)
	require.NoError(t, err)
	require.Equal(t, 2, res.Terms)

	recs := readAllTermRecords(t, res.PostingsPath)
	require.Len(t, recs, 2)

	require.Equal(t, "apple", recs[0].Term)
	require.Equal(t, 6, recs[0].SF)
	require.Equal(t, []model.Posting{{DocID: "D1", Freq: 5}, {DocID: "D2", Freq: 1}}, recs[0].Postings)

	require.Equal(t, "banana", recs[1].Term)
	require.Equal(t, 1, recs[1].SF)
	require.Equal(t, []model.Posting{{DocID: "D2", Freq: 1}}, recs[1].Postings)
}

func TestMerge_TermsAscendingAndDictionaryConsistent(t *testing.T) {
	dir := t.TempDir()
	p1 := writeRawPartial(t, dir, "p1.ndjson", []model.PartialRecord{
		{Term: "zebra", Postings: []model.Posting{{DocID: "D1", Freq: 1}}},
		{Term: "apple", Postings: []model.Posting{{DocID: "D1", Freq: 1}}},
	})
	_ = p1 // not term-sorted, so it is not passed to Merge: partials must already be term-sorted, and the merger does not re-sort within one file.

	pSorted := writeRawPartial(t, dir, "sorted.ndjson", []model.PartialRecord{
		{Term: "apple", Postings: []model.Posting{{DocID: "D1", Freq: 1}}},
		{Term: "zebra", Postings: []model.Posting{{DocID: "D1", Freq: 1}}},
	})

	out := filepath.Join(dir, "out")
	res, err := Merge([]string{pSorted}, out)
	require.NoError(t, err)

	recs := readAllTermRecords(t, res.PostingsPath)
	require.Len(t, recs, 2)
	require.Equal(t, "apple", recs[0].Term)
	require.Equal(t, "zebra", recs[1].Term)

	dictBuf, err := os.ReadFile(res.DictionaryPath)
	require.NoError(t, err)
	var dict map[string]int64
	require.NoError(t, json.Unmarshal(dictBuf, &dict))

	for term, offset := range dict {
		f, err := NewFetcher(res.PostingsPath, &Dictionary{offsets: dict})
		require.NoError(t, err)
		rec, err := f.Fetch(term)
		require.NoError(t, err)
		require.Equal(t, term, rec.Term)
		require.GreaterOrEqual(t, offset, int64(0))
	}
}

func TestMerge_SingleSortedPartialIsIdempotentUpToSF(t *testing.T) {
	dir := t.TempDir()
	p := writeRawPartial(t, dir, "p.ndjson", []model.PartialRecord{
		{Term: "apple", Postings: []model.Posting{{DocID: "D1", Freq: 2}, {DocID: "D2", Freq: 5}}},
	})

	out := filepath.Join(dir, "out")
	res, err := Merge([]string{p}, out)
	require.NoError(t, err)

	recs := readAllTermRecords(t, res.PostingsPath)
	require.Len(t, recs, 1)
	require.Equal(t, 7, recs[0].SF)
	require.Equal(t, []model.Posting{{DocID: "D1", Freq: 2}, {DocID: "D2", Freq: 5}}, recs[0].Postings)
}

func TestMerge_CorruptPartialAborts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.ndjson")
	require.NoError(t, os.WriteFile(path, []byte("not json\n"), 0o644))

	out := filepath.Join(dir, "out")
	_, err := Merge([]string{path}, out)
	require.Error(t, err)

	var cpe *CorruptPartialError
	require.ErrorAs(t, err, &cpe)
	require.Equal(t, path, cpe.File)
	require.Equal(t, 1, cpe.Line)
}

func TestMerge_EmptyCorpusProducesEmptyOutputs(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	res, err := Merge(nil, out)
	require.NoError(t, err)
	require.Equal(t, 0, res.Terms)

	recs := readAllTermRecords(t, res.PostingsPath)
	require.Empty(t, recs)
}
