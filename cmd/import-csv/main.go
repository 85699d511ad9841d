package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bookmap/internal/catalog"
	"bookmap/internal/isbn"
	"bookmap/pkg/models"
)

func main() {
	var (
		in       = flag.String("in", "data/books.csv", "input CSV with a header row")
		snapshot = flag.String("snapshot", "data/books.json", "local snapshot to merge into")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	f, err := os.Open(*in)
	if err != nil {
		log.Fatalf("open %s: %v", *in, err)
	}
	defer f.Close()

	imported, err := readBooks(f)
	if err != nil {
		log.Fatalf("read %s: %v", *in, err)
	}

	existing, err := (&catalog.SnapshotSource{Path: *snapshot}).FetchAll(ctx)
	if err != nil {
		log.Fatalf("read snapshot: %v", err)
	}

	merged := catalog.Merge(imported, existing)
	if err := writeSnapshot(*snapshot, merged); err != nil {
		log.Fatalf("write snapshot: %v", err)
	}
	log.Printf("imported %d rows from %s; snapshot %s now holds %d books", len(imported), *in, *snapshot, len(merged))
}

// readBooks maps columns by header name, so column order and extra columns
// do not matter. Rows without a title are skipped.
func readBooks(r io.Reader) ([]models.BookRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := readHeader(cr)
	if err != nil {
		return nil, err
	}
	if _, ok := header["title"]; !ok {
		return nil, errors.New("missing title column")
	}

	books := []models.BookRecord{}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		get := func(name string) string {
			idx, ok := header[name]
			if !ok || idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		b := models.BookRecord{
			ID:          get("id"),
			Title:       get("title"),
			Author:      get("author"),
			Publisher:   get("publisher"),
			ISBN:        get("isbn"),
			Image:       get("image"),
			Description: get("description"),
			Category:    get("category"),
			Division:    get("division"),
			Level:       get("level"),
			Subject:     get("subject"),
			Genre:       get("genre"),
			Translator:  get("translator"),
			CreatedAt:   get("created_at"),
		}
		if b.Title == "" {
			continue
		}
		if v, err := isbn.ToISBN13(b.ISBN); err == nil {
			b.ISBN = v
		}
		books = append(books, b)
	}
	return books, nil
}

func readHeader(r *csv.Reader) (map[string]int, error) {
	row, err := r.Read()
	if err != nil {
		return nil, err
	}
	header := make(map[string]int, len(row))
	for idx, name := range row {
		header[strings.TrimSpace(strings.ToLower(name))] = idx
	}
	return header, nil
}

func writeSnapshot(path string, books []models.BookRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(books, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
