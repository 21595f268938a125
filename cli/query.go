package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-mizu/blueprints/webdex/feature/query"
	"github.com/go-mizu/blueprints/webdex/store/diskindex"
)

func queryCmd() *cobra.Command {
	var (
		indexDir   string
		dedup      string
		threshold  int
		top        int
		configPath string
	)

	c := &cobra.Command{
		Use:   "query [text]",
		Short: "Query a built index",
		Long: `Query resolves each term of the query against the index's
dictionary, ranks candidates by TF-IDF with a boolean AND filter, and
optionally suppresses exact or near-duplicate results.

With a query argument, webdex prints the ranked results once and exits.
With no argument, it reads queries from stdin until "exit", "quit", or
"q".

Examples:
  webdex query --index ./index "go concurrency patterns"
  webdex query --index ./index --dedup near --top 5`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if !cmd.Flags().Changed("index") && !envSet("WEBDEX_INDEX") && cfg.IndexDir != "" {
				indexDir = cfg.IndexDir
			}
			if !cmd.Flags().Changed("dedup") && !envSet("WEBDEX_DEDUP") && cfg.Dedup != "" {
				dedup = cfg.Dedup
			}
			if !cmd.Flags().Changed("simhash-threshold") && !envSet("WEBDEX_SIMHASH_THRESHOLD") && cfg.SimHashThreshold > 0 {
				threshold = cfg.SimHashThreshold
			}
			if !cmd.Flags().Changed("top") && !envSet("WEBDEX_TOP") && cfg.Top > 0 {
				top = cfg.Top
			}

			opts := query.Options{
				Dedup:            query.DedupMode(dedup),
				SimHashThreshold: threshold,
				Top:              top,
			}

			log := newLogger()
			svc, err := query.Open(indexDir, log)
			if err != nil {
				if errors.Is(err, diskindex.ErrMissingIndex) {
					return fmt.Errorf("index not found at %s: %w", indexDir, err)
				}
				return err
			}

			if len(args) == 1 {
				return runOneQuery(cmd, svc, args[0], opts)
			}
			return runQueryREPL(cmd, svc, opts)
		},
	}

	c.Flags().StringVar(&indexDir, "index", envDefault("WEBDEX_INDEX", "index"), "Index directory (required)")
	c.Flags().StringVar(&dedup, "dedup", envDefault("WEBDEX_DEDUP", string(query.DedupNone)), "Duplicate suppression: none, exact, or near")
	c.Flags().IntVar(&threshold, "simhash-threshold", envInt("WEBDEX_SIMHASH_THRESHOLD", query.DefaultSimHashThreshold), "Max Hamming distance for near-dedup")
	c.Flags().IntVar(&top, "top", envInt("WEBDEX_TOP", 10), "Maximum number of results")
	c.Flags().StringVar(&configPath, "config", envDefault("WEBDEX_CONFIG", ""), "Optional webdex.yaml config file")

	return c
}

func runOneQuery(cmd *cobra.Command, svc *query.Service, text string, opts query.Options) error {
	start := time.Now()
	hits, err := svc.Query(cmd.Context(), text, opts)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	printHits(out, hits)
	fmt.Fprintf(out, "(%d result(s) in %s)\n", len(hits), time.Since(start).Round(time.Microsecond))
	return nil
}

func runQueryREPL(cmd *cobra.Command, svc *query.Service, opts query.Options) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "webdex query REPL; type 'exit', 'quit', or 'q' to stop")

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "exit", "quit", "q":
			return nil
		}

		start := time.Now()
		hits, err := svc.Query(cmd.Context(), line, opts)
		if err != nil {
			fmt.Fprintln(out, "error:", err)
			continue
		}
		printHits(out, hits)
		fmt.Fprintf(out, "(%d result(s) in %s)\n", len(hits), time.Since(start).Round(time.Microsecond))
	}
	if err := scanner.Err(); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func printHits(out io.Writer, hits []query.Hit) {
	if len(hits) == 0 {
		fmt.Fprintln(out, "(no results)")
		return
	}
	for i, h := range hits {
		fmt.Fprintf(out, "%2d. %-60s score=%.4f\n", i+1, h.DocID, h.Score)
	}
}
