package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-mizu/blueprints/webdex/feature/build"
	"github.com/go-mizu/blueprints/webdex/store/diskindex"
)

func buildCmd() *cobra.Command {
	var (
		corpus         string
		outDir         string
		workDir        string
		batchSize      int
		retainPartials bool
		configPath     string
	)

	c := &cobra.Command{
		Use:   "build",
		Short: "Build an inverted index from an ndjson crawl dump",
		Long: `Build reads a newline-delimited JSON crawl dump (one {"url","html"}
object per line), analyzes each document, and writes a disk-resident
inverted index: index.ndjson, term_index.json, and the dedup/ranking
sidecars.

Examples:
  webdex build --corpus crawl.ndjson --out ./index
  webdex build --corpus crawl.ndjson --out ./index --batch 5000 --retain-partials`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if !cmd.Flags().Changed("corpus") && !envSet("WEBDEX_CORPUS") && cfg.Corpus != "" {
				corpus = cfg.Corpus
			}
			if !cmd.Flags().Changed("out") && !envSet("WEBDEX_OUT") && cfg.OutDir != "" {
				outDir = cfg.OutDir
			}
			if !cmd.Flags().Changed("work") && cfg.WorkDir != "" {
				workDir = cfg.WorkDir
			}
			if !cmd.Flags().Changed("batch") && !envSet("WEBDEX_BATCH") && cfg.BatchSize > 0 {
				batchSize = cfg.BatchSize
			}
			if !cmd.Flags().Changed("retain-partials") && !envSet("WEBDEX_RETAIN_PARTIALS") && cfg.RetainPartials {
				retainPartials = cfg.RetainPartials
			}
			if corpus == "" {
				return errors.New("missing --corpus (or corpus: in --config, or WEBDEX_CORPUS)")
			}
			return runBuild(cmd, corpus, outDir, workDir, batchSize, retainPartials)
		},
	}

	c.Flags().StringVar(&corpus, "corpus", envDefault("WEBDEX_CORPUS", ""), "Path to the ndjson crawl dump (required)")
	c.Flags().StringVar(&outDir, "out", envDefault("WEBDEX_OUT", "index"), "Output directory for the built index")
	c.Flags().StringVar(&workDir, "work", "", "Work directory for partial files (default: <out>/.work)")
	c.Flags().IntVar(&batchSize, "batch", envInt("WEBDEX_BATCH", diskindex.DefaultBatchSize), "Documents per in-memory batch before a partial flush")
	c.Flags().BoolVar(&retainPartials, "retain-partials", envBool("WEBDEX_RETAIN_PARTIALS", false), "Archive partial files (zstd) instead of deleting them")
	c.Flags().StringVar(&configPath, "config", envDefault("WEBDEX_CONFIG", ""), "Optional webdex.yaml config file")

	return c
}

func runBuild(cmd *cobra.Command, corpus, outDir, workDir string, batchSize int, retainPartials bool) error {
	log := newLogger()

	if workDir == "" {
		workDir = filepath.Join(outDir, ".work")
	}

	f, err := os.Open(corpus)
	if err != nil {
		return fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	svc := build.New(log)

	start := time.Now()
	res, err := svc.Build(cmd.Context(), f, build.Options{
		WorkDir:        workDir,
		OutDir:         outDir,
		BatchSize:      batchSize,
		RetainPartials: retainPartials,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "documents: %d (skipped %d)\n", res.TotalDocs, res.SkippedDocs)
	fmt.Fprintf(cmd.OutOrStdout(), "terms:     %d\n", res.TermsIndexed)
	fmt.Fprintf(cmd.OutOrStdout(), "index:     %s\n", res.PostingsPath)
	fmt.Fprintf(cmd.OutOrStdout(), "dictionary: %s\n", res.DictionaryPath)
	fmt.Fprintf(cmd.OutOrStdout(), "elapsed:   %s\n", time.Since(start).Round(time.Millisecond))

	return nil
}
