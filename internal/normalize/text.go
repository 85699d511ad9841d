package normalize

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CleanText strips HTML markup and entities some providers leave in
// descriptions and collapses runs of whitespace.
func CleanText(s string) string {
	s = strings.TrimSpace(s)
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// DropUntitled removes items whose title is blank. A record without a title
// is not usable downstream.
func DropUntitled[T any](items []T, title func(T) string) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if strings.TrimSpace(title(it)) == "" {
			continue
		}
		out = append(out, it)
	}
	return out
}
