// Package htmltext implements the html->text function spec.md treats
// as a host-supplied collaborator: it extracts plain body text plus
// the "important" text drawn from title, h1-h3, strong, and bold
// regions, as required by the document analyzer's contract
// (spec.md section 4.1).
package htmltext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// importantSelector matches the regions spec.md designates as
// carrying extra weight: titles, top-level headings, and
// strong/bold emphasis.
const importantSelector = "title, h1, h2, h3, strong, b"

// Extracted holds the two text channels the analyzer consumes.
type Extracted struct {
	Body      string
	Important string
}

// Extract parses html and returns the text of its <body> alongside the
// important-region text. The HTML parser accepts malformed and empty
// input, so such documents yield (possibly empty) text, not an error;
// an error from the parser is surfaced by the caller as a DecodeError.
func Extract(html string) (Extracted, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Extracted{}, err
	}

	body := strings.TrimSpace(doc.Find("body").Text())

	var important []string
	doc.Find(importantSelector).Each(func(_ int, sel *goquery.Selection) {
		if t := strings.TrimSpace(sel.Text()); t != "" {
			important = append(important, t)
		}
	})

	return Extracted{
		Body:      body,
		Important: strings.Join(important, " "),
	}, nil
}
