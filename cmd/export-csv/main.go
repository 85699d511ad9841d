package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"bookmap/internal/catalog"
	"bookmap/internal/lookupcache"
	"bookmap/pkg/database"
	"bookmap/pkg/models"
	"bookmap/pkg/utils"
)

var bookHeader = []string{
	"id", "title", "author", "publisher", "isbn", "image", "description", "category",
	"division", "level", "subject", "genre", "translator", "created_at",
}

func main() {
	var (
		configPath = flag.String("config", "bookmap.json5", "config file (json5)")
		booksOut   = flag.String("books", "data/books.csv", "output CSV path for the merged catalog")
		lookupsOut = flag.String("lookups", "", "output CSV path for cached lookups (skipped when empty)")
	)
	flag.Parse()

	cfg, err := utils.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	priority, err := catalog.ParsePriority(cfg.MergePriority)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store := catalog.NewStore(
		catalog.NewRemoteSource(cfg.CatalogURL),
		&catalog.SnapshotSource{Path: cfg.SnapshotPath},
		priority,
	)
	books, err := store.Load(ctx)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}
	catalog.SortByRecency(books)

	if err := writeFile(*booksOut, func(w io.Writer) error { return writeBooks(w, books) }); err != nil {
		log.Fatalf("export books failed: %v", err)
	}
	log.Printf("exported %d books to %s", len(books), *booksOut)

	if *lookupsOut == "" {
		return
	}
	db := database.MustOpen(database.DefaultConfig())
	defer db.Close()

	entries, err := lookupcache.NewRepo(db).All(ctx)
	if err != nil {
		log.Fatalf("read lookup cache: %v", err)
	}
	if err := writeFile(*lookupsOut, func(w io.Writer) error { return writeLookups(w, entries) }); err != nil {
		log.Fatalf("export lookups failed: %v", err)
	}
	log.Printf("exported %d cached lookups to %s", len(entries), *lookupsOut)
}

func writeFile(path string, fn func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeBooks(out io.Writer, books []models.BookRecord) error {
	w := csv.NewWriter(out)
	if err := w.Write(bookHeader); err != nil {
		return err
	}
	for _, b := range books {
		if err := w.Write([]string{
			b.ID,
			b.Title,
			b.Author,
			b.Publisher,
			b.ISBN,
			b.Image,
			b.Description,
			b.Category,
			b.Division,
			b.Level,
			b.Subject,
			b.Genre,
			b.Translator,
			b.CreatedAt,
		}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// writeLookups emits one row per cached item.
func writeLookups(out io.Writer, entries []lookupcache.Entry) error {
	w := csv.NewWriter(out)
	if err := w.Write([]string{"isbn13", "strategy", "rank", "title", "author", "publisher", "isbn", "fetched_at"}); err != nil {
		return err
	}
	for _, e := range entries {
		for i, it := range e.Items {
			if err := w.Write([]string{
				e.ISBN13,
				e.Strategy,
				strconv.Itoa(i + 1),
				it.Title,
				it.Author,
				it.Publisher,
				it.ISBN,
				e.FetchedAt.UTC().Format(time.RFC3339),
			}); err != nil {
				return err
			}
		}
	}
	w.Flush()
	return w.Error()
}
