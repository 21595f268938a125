package query

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/go-mizu/blueprints/webdex/internal/analyzer"
	"github.com/go-mizu/blueprints/webdex/internal/model"
	"github.com/go-mizu/blueprints/webdex/store/diskindex"
)

// buildIndex runs docs through the real builder/merge pipeline so
// tests exercise the same on-disk format Open reads.
func buildIndex(t *testing.T, docs []analyzer.Document) string {
	t.Helper()
	dir := t.TempDir()
	workDir := filepath.Join(dir, "work")
	outDir := filepath.Join(dir, "out")

	b, err := diskindex.NewBuilder(workDir, 10)
	require.NoError(t, err)
	for _, d := range docs {
		require.NoError(t, b.Add(d))
	}
	res, err := b.Finish()
	require.NoError(t, err)

	_, err = diskindex.Merge(res.PartialPaths, outDir)
	require.NoError(t, err)
	require.NoError(t, diskindex.WriteSidecars(outDir, res))
	require.NoError(t, diskindex.WriteManifest(outDir, model.Manifest{
		TotalDocs: res.TotalDocs,
		BatchSize: 10,
	}))

	return outDir
}

func openService(t *testing.T, dir string) *Service {
	t.Helper()
	svc, err := Open(dir, zerolog.Nop())
	require.NoError(t, err)
	return svc
}

func TestQuery_TieAtZeroScore(t *testing.T) {
	docs := []analyzer.Document{
		{CanonicalURL: "https://d1", TermFreq: map[string]int{"cat": 1}, Length: 1},
		{CanonicalURL: "https://d2", TermFreq: map[string]int{"cat": 1}, Length: 1},
	}
	dir := buildIndex(t, docs)
	svc := openService(t, dir)

	hits, err := svc.Query(context.Background(), "cat", Options{})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	require.Equal(t, "https://d1", hits[0].DocID)
	require.Equal(t, "https://d2", hits[1].DocID)
	require.Equal(t, hits[0].Score, hits[1].Score)
}

func TestQuery_ANDIntersection(t *testing.T) {
	docs := []analyzer.Document{
		{CanonicalURL: "https://d1", TermFreq: map[string]int{"cat": 1, "sat": 1}, Length: 2},
		{CanonicalURL: "https://d2", TermFreq: map[string]int{"cat": 1}, Length: 1},
	}
	dir := buildIndex(t, docs)
	svc := openService(t, dir)

	hits, err := svc.Query(context.Background(), "cat sat", Options{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "https://d1", hits[0].DocID)
}

func TestQuery_UnknownTermYieldsEmpty(t *testing.T) {
	docs := []analyzer.Document{
		{CanonicalURL: "https://d1", TermFreq: map[string]int{"cat": 1}, Length: 1},
	}
	dir := buildIndex(t, docs)
	svc := openService(t, dir)

	hits, err := svc.Query(context.Background(), "zzz", Options{})
	require.NoError(t, err)
	require.Empty(t, hits)
}

func TestQuery_ExactDedup(t *testing.T) {
	docs := []analyzer.Document{
		{CanonicalURL: "https://d1", TermFreq: map[string]int{"cat": 1}, Length: 1, ContentHash: "abc"},
		{CanonicalURL: "https://d2", TermFreq: map[string]int{"cat": 1}, Length: 1, ContentHash: "abc"},
		{CanonicalURL: "https://d3", TermFreq: map[string]int{"cat": 1}, Length: 1, ContentHash: "xyz"},
	}
	dir := buildIndex(t, docs)
	svc := openService(t, dir)

	hits, err := svc.Query(context.Background(), "cat", Options{Dedup: DedupExact})
	require.NoError(t, err)
	require.Len(t, hits, 2)
	require.Equal(t, "https://d1", hits[0].DocID)
	require.Equal(t, "https://d3", hits[1].DocID)
}

// TestQuery_StemsSurfaceForms builds the index through the real
// analyzer (and therefore the real stemmer), then queries with surface
// forms that differ from their stems. This is the scenario a fixture
// built from hand-stemmed TermFreq literals cannot catch.
func TestQuery_StemsSurfaceForms(t *testing.T) {
	a := analyzer.New()
	doc, err := a.Analyze("https://d1", "<html><body>the cats are running</body></html>")
	require.NoError(t, err)

	dir := buildIndex(t, []analyzer.Document{doc})
	svc := openService(t, dir)

	hits, err := svc.Query(context.Background(), "cats running", Options{})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "https://d1", hits[0].DocID)
}

func TestQuery_NearDedup(t *testing.T) {
	docs := []analyzer.Document{
		{CanonicalURL: "https://d1", TermFreq: map[string]int{"cat": 1}, Length: 1, SimHash: 0b0000},
		{CanonicalURL: "https://d2", TermFreq: map[string]int{"cat": 1}, Length: 1, SimHash: 0b0011},
	}
	dir := buildIndex(t, docs)
	svc := openService(t, dir)

	hits, err := svc.Query(context.Background(), "cat", Options{Dedup: DedupNear, SimHashThreshold: 3})
	require.NoError(t, err)
	require.Len(t, hits, 1)
	require.Equal(t, "https://d1", hits[0].DocID)
}
