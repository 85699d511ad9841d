package catalog

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"bookmap/internal/facet"
	"bookmap/pkg/models"
)

// Priority names the source that wins identity key collisions.
type Priority string

const (
	PreferRemote Priority = "remote"
	PreferLocal  Priority = "local"
)

func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case PreferRemote, PreferLocal:
		return p, nil
	case "":
		return PreferRemote, nil
	default:
		return "", fmt.Errorf("unknown merge priority %q", s)
	}
}

// Store is the session catalog: the merged remote and local collections plus
// records registered since the last load.
type Store struct {
	Remote   Source
	Local    Source
	Priority Priority

	mu       sync.RWMutex
	books    []models.BookRecord
	loadedAt time.Time
}

func NewStore(remote, local Source, priority Priority) *Store {
	return &Store{Remote: remote, Local: local, Priority: priority, books: []models.BookRecord{}}
}

// Load fetches both sources and replaces the current collection with their
// merge. A failing source contributes nothing.
func (s *Store) Load(ctx context.Context) ([]models.BookRecord, error) {
	remote := s.fetch(ctx, s.Remote)
	local := s.fetch(ctx, s.Local)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged := s.ApplyMerge(remote, local, s.Priority)
	log.Printf("[catalog] loaded %d books (remote=%d local=%d priority=%s)",
		len(merged), len(remote), len(local), s.Priority)
	return merged, nil
}

func (s *Store) fetch(ctx context.Context, src Source) []models.BookRecord {
	if src == nil {
		return nil
	}
	books, err := src.FetchAll(ctx)
	if err != nil {
		// keep going: one broken source should not empty the catalog
		log.Printf("[catalog] source %s error: %v", src.Name(), err)
		return nil
	}
	return books
}

// ApplyMerge merges remote and local with the given priority, canonicalizes
// divisions and installs the result as the current collection.
func (s *Store) ApplyMerge(remote, local []models.BookRecord, priority Priority) []models.BookRecord {
	var merged []models.BookRecord
	if priority == PreferLocal {
		merged = Merge(local, remote)
	} else {
		merged = Merge(remote, local)
	}
	for i := range merged {
		merged[i].Division = facet.CanonicalDivision(merged[i].Division)
	}

	s.mu.Lock()
	s.books = merged
	s.loadedAt = time.Now()
	s.mu.Unlock()

	return clone(merged)
}

// CurrentCollection returns a copy of the current collection.
func (s *Store) CurrentCollection() []models.BookRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.books)
}

// Add puts a newly registered record at the front, replacing any record
// with the same identity key.
func (s *Store) Add(b models.BookRecord) {
	b.ID = strings.TrimSpace(b.ID)
	b.Division = facet.CanonicalDivision(b.Division)
	key := IdentityKey(b)

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.BookRecord, 0, len(s.books)+1)
	next = append(next, b)
	for _, existing := range s.books {
		if IdentityKey(existing) != key {
			next = append(next, existing)
		}
	}
	s.books = next
}

func (s *Store) Get(id string) (models.BookRecord, bool) {
	id = strings.TrimSpace(id)
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.books {
		if b.ID != "" && b.ID == id {
			return b, true
		}
	}
	return models.BookRecord{}, false
}

// LoadedAt is the time of the last merge, zero before the first load.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadedAt
}

func clone(books []models.BookRecord) []models.BookRecord {
	out := make([]models.BookRecord, len(books))
	copy(out, books)
	return out
}
