// Package cli implements the webdex command-line surface: build an
// index from a crawl dump, then query it either as a one-shot command
// or an interactive REPL.
package cli

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// Execute runs the CLI.
func Execute(ctx context.Context) error {
	root := &cobra.Command{
		Use:   "webdex",
		Short: "webdex: batch inverted-index builder and TF-IDF query engine",
		Long: `webdex builds a disk-resident inverted index over a crawled web
corpus and answers boolean-AND, TF-IDF-ranked queries against it.

Usage:
  webdex build --corpus <path> --out <dir>   Build an index from an ndjson crawl dump
  webdex query --index <dir>                 Query a built index

Examples:
  webdex build --corpus crawl.ndjson --out ./index
  webdex query --index ./index "go concurrency patterns"`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.SetVersionTemplate("webdex {{.Version}}\n")
	root.Version = versionString()

	root.AddCommand(buildCmd())
	root.AddCommand(queryCmd())

	if err := fang.Execute(ctx, root); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return err
	}
	return nil
}

func versionString() string {
	if v := strings.TrimSpace(os.Getenv("WEBDEX_VERSION")); v != "" {
		return v
	}
	if bi, ok := debug.ReadBuildInfo(); ok {
		if bi.Main.Version != "" && bi.Main.Version != "(devel)" {
			return bi.Main.Version
		}
	}
	return "dev"
}

func envDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

// envSet reports whether the environment variable k has a non-blank
// value, so that a config-file value does not override it.
func envSet(k string) bool {
	return strings.TrimSpace(os.Getenv(k)) != ""
}

func envBool(k string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envInt(k string, def int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
