package catalog

import (
	"strings"

	"github.com/antzucaro/matchr"

	"bookmap/internal/facet"
	"bookmap/pkg/models"
)

// titleSimilarity is the Jaro-Winkler floor for a fuzzy title hit.
const titleSimilarity = 0.88

type ListQuery struct {
	Facet  models.Facet
	Q      string // keyword over title/author/publisher
	Limit  int
	Offset int
}

// Filter keeps the records matching the facet selection and keyword, in
// input order.
func Filter(books []models.BookRecord, f models.Facet, q string) []models.BookRecord {
	q = strings.ToLower(strings.TrimSpace(q))

	out := make([]models.BookRecord, 0, len(books))
	for _, b := range books {
		if !facet.Matches(b, f) {
			continue
		}
		if q != "" && !keywordMatch(b, q) {
			continue
		}
		out = append(out, b)
	}
	return out
}

func keywordMatch(b models.BookRecord, q string) bool {
	title := strings.ToLower(strings.TrimSpace(b.Title))
	for _, field := range []string{title, b.Author, b.Publisher} {
		if strings.Contains(strings.ToLower(field), q) {
			return true
		}
	}
	if title == "" {
		return false
	}
	return matchr.JaroWinkler(q, title, false) >= titleSimilarity
}

// Page slices books by offset and limit. A non-positive limit returns the
// rest of the collection.
func Page(books []models.BookRecord, limit, offset int) []models.BookRecord {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(books) {
		return []models.BookRecord{}
	}
	books = books[offset:]
	if limit > 0 && limit < len(books) {
		books = books[:limit]
	}
	return books
}
