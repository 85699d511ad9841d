package catalog

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"bookmap/pkg/models"
)

// IdentityKey groups records that describe the same book. Records without an
// id fall back to title+author, so two distinct id-less books with the same
// title and author collide.
func IdentityKey(b models.BookRecord) string {
	if id := strings.TrimSpace(b.ID); id != "" {
		return "id:" + id
	}
	return "ta:" + strings.TrimSpace(b.Title) + "|" + strings.TrimSpace(b.Author)
}

// Merge unions two collections by identity key. Every record of first is
// kept; a key repeated inside first stays at its first position and takes the
// later record. Records of second are appended only when their key is new.
func Merge(first, second []models.BookRecord) []models.BookRecord {
	index := make(map[string]int, len(first)+len(second))
	out := make([]models.BookRecord, 0, len(first)+len(second))

	for _, b := range first {
		key := IdentityKey(b)
		if i, ok := index[key]; ok {
			out[i] = b
			continue
		}
		index[key] = len(out)
		out = append(out, b)
	}
	for _, b := range second {
		key := IdentityKey(b)
		if _, ok := index[key]; ok {
			continue
		}
		index[key] = len(out)
		out = append(out, b)
	}

	for i := range out {
		out[i].ID = strings.TrimSpace(out[i].ID)
	}
	return out
}

// CreatedAt is the record's creation time: created_at when it parses, else
// the id read as epoch milliseconds, else the zero time.
func CreatedAt(b models.BookRecord) time.Time {
	if s := strings.TrimSpace(b.CreatedAt); s != "" {
		if t, err := dateparse.ParseLocal(s); err == nil {
			return t
		}
	}
	if ms, err := strconv.ParseInt(strings.TrimSpace(b.ID), 10, 64); err == nil && ms > 0 {
		return time.UnixMilli(ms)
	}
	return time.Time{}
}

// SortByRecency orders newest first. Ties keep their input order.
func SortByRecency(books []models.BookRecord) {
	at := make(map[string]time.Time, len(books))
	key := func(b models.BookRecord) time.Time {
		k := IdentityKey(b) + "\x00" + b.CreatedAt
		t, ok := at[k]
		if !ok {
			t = CreatedAt(b)
			at[k] = t
		}
		return t
	}
	sort.SliceStable(books, func(i, j int) bool {
		return key(books[i]).After(key(books[j]))
	})
}
