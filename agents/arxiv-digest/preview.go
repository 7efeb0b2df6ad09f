package arxivdigest

import (
	"fmt"
	"io"
	"strings"
	"time"

	"astro-digest/internal/models"
)

const (
	previewTitleRunes    = 80
	previewAuthors       = 60
	previewAbstractRunes = 100
)

var (
	heavyRule = strings.Repeat("=", 80)
	lightRule = strings.Repeat("-", 80)
)

// PrintPreview writes the first limit papers to w for the operator and
// returns how many papers there are in total.
func PrintPreview(w io.Writer, papers []models.Paper, limit int) int {
	fmt.Fprintf(w, "Found %d papers\n\n", len(papers))
	fmt.Fprintln(w, heavyRule)

	for i, p := range papers {
		if i >= limit {
			break
		}

		authors := p.Authors
		authorSuffix := ""
		if len(authors) > previewAuthors {
			authors = authors[:previewAuthors]
			authorSuffix = "..."
		}

		fmt.Fprintf(w, "Paper %d:\n", i+1)
		fmt.Fprintf(w, "Published Date: %s\n", p.Published.Format(time.RFC3339))
		fmt.Fprintf(w, "Title: %s\n", ellipsize(p.Title, previewTitleRunes))
		fmt.Fprintf(w, "Authors: %s%s\n", strings.Join(authors, ", "), authorSuffix)
		fmt.Fprintf(w, "Abstract (first %d chars): %s...\n", previewAbstractRunes, firstRunes(p.Summary, previewAbstractRunes))
		fmt.Fprintf(w, "Link: %s\n", p.PDFURL)
		fmt.Fprintln(w, lightRule)
	}

	return len(papers)
}

func firstRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func ellipsize(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return firstRunes(s, n) + "..."
}
