// Command webdex builds and queries a disk-resident inverted index
// over a crawled web corpus.
package main

import (
	"context"
	"os"

	"github.com/go-mizu/blueprints/webdex/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
