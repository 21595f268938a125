package build

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/go-mizu/blueprints/webdex/internal/analyzer"
	"github.com/go-mizu/blueprints/webdex/internal/model"
	"github.com/go-mizu/blueprints/webdex/store/diskindex"
)

// Service implements API. It is a thin orchestrator: decode the crawl
// dump, hand each document to the analyzer, fold the analyzed
// document into the partial builder, then merge.
type Service struct {
	Analyzer *analyzer.Analyzer
	Log      zerolog.Logger
}

// New builds a Service with the default analyzer.
func New(log zerolog.Logger) *Service {
	return &Service{Analyzer: analyzer.New(), Log: log}
}

func (s *Service) Build(ctx context.Context, crawl io.Reader, opts Options) (Result, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = diskindex.DefaultBatchSize
	}

	builder, err := diskindex.NewBuilder(opts.WorkDir, opts.BatchSize)
	if err != nil {
		return Result{}, err
	}

	scanner := bufio.NewScanner(crawl)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

	var skipped int
	line := 0
	start := time.Now()

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var rec CrawlRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			decErr := &diskindex.DecodeError{URL: fmt.Sprintf("line %d", line), Err: err}
			s.Log.Warn().Err(decErr).Msg("skipping undecodable crawl record")
			skipped++
			continue
		}

		doc, err := s.Analyzer.Analyze(rec.URL, rec.HTML)
		if err != nil {
			decErr := &diskindex.DecodeError{URL: rec.URL, Err: err}
			s.Log.Warn().Err(decErr).Msg("skipping undecodable document")
			skipped++
			continue
		}

		if err := builder.Add(doc); err != nil {
			return Result{}, err
		}
	}
	if err := scanner.Err(); err != nil {
		return Result{}, fmt.Errorf("build: read crawl dump: %w", err)
	}

	buildRes, err := builder.Finish()
	if err != nil {
		return Result{}, err
	}
	s.Log.Info().
		Int("total_docs", buildRes.TotalDocs).
		Int("skipped", skipped).
		Int("partials", len(buildRes.PartialPaths)).
		Dur("ingest_elapsed", time.Since(start)).
		Msg("ingest complete, merging partials")

	mergeStart := time.Now()
	mergeRes, err := diskindex.Merge(buildRes.PartialPaths, opts.OutDir)
	if err != nil {
		return Result{}, err
	}
	s.Log.Info().
		Int("terms", mergeRes.Terms).
		Dur("merge_elapsed", time.Since(mergeStart)).
		Msg("merge complete")

	if err := diskindex.WriteSidecars(opts.OutDir, buildRes); err != nil {
		return Result{}, err
	}
	if err := diskindex.WriteManifest(opts.OutDir, model.Manifest{
		TotalDocs: buildRes.TotalDocs,
		BatchSize: opts.BatchSize,
	}); err != nil {
		return Result{}, err
	}

	if err := diskindex.FinalizePartials(opts.WorkDir, buildRes.PartialPaths, opts.RetainPartials); err != nil {
		return Result{}, err
	}

	return Result{
		TotalDocs:      buildRes.TotalDocs,
		SkippedDocs:    skipped,
		TermsIndexed:   mergeRes.Terms,
		PostingsPath:   mergeRes.PostingsPath,
		DictionaryPath: mergeRes.DictionaryPath,
	}, nil
}
