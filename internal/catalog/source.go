package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-resty/resty/v2"

	"bookmap/pkg/models"
)

// Source is one origin of catalog rows.
type Source interface {
	Name() string
	FetchAll(ctx context.Context) ([]models.BookRecord, error)
}

// RemoteSource reads the spreadsheet-backed catalog API. The API is treated
// as optional: a failed or unreadable answer yields an empty collection.
type RemoteSource struct {
	URL  string
	http *resty.Client
}

func NewRemoteSource(url string) *RemoteSource {
	c := resty.New()
	c.SetTimeout(12 * time.Second)
	c.SetHeader("Accept", "application/json")
	return &RemoteSource{URL: url, http: c}
}

func (s *RemoteSource) Name() string { return "remote" }

func (s *RemoteSource) FetchAll(ctx context.Context) ([]models.BookRecord, error) {
	if s.URL == "" {
		return []models.BookRecord{}, nil
	}

	resp, err := s.http.R().SetContext(ctx).Get(s.URL)
	if err != nil {
		log.Printf("[catalog] remote fetch failed: %v", err)
		return []models.BookRecord{}, nil
	}
	if resp.IsError() {
		log.Printf("[catalog] remote fetch: status %d", resp.StatusCode())
		return []models.BookRecord{}, nil
	}

	books, err := decodeRows(resp.Body())
	if err != nil {
		log.Printf("[catalog] remote body unreadable: %v", err)
		return []models.BookRecord{}, nil
	}
	return books, nil
}

// SnapshotSource reads the local JSON snapshot. A missing file is an empty
// collection.
type SnapshotSource struct {
	Path string
}

func (s *SnapshotSource) Name() string { return "snapshot" }

func (s *SnapshotSource) FetchAll(ctx context.Context) ([]models.BookRecord, error) {
	b, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return []models.BookRecord{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot %s: %w", s.Path, err)
	}
	books, err := decodeRows(b)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", s.Path, err)
	}
	return books, nil
}

// decodeRows accepts a bare array or an object wrapping it under "data".
func decodeRows(b []byte) ([]models.BookRecord, error) {
	var books []models.BookRecord
	if err := json.Unmarshal(b, &books); err == nil {
		if books == nil {
			books = []models.BookRecord{}
		}
		return books, nil
	}

	var wrapped struct {
		Data []models.BookRecord `json:"data"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return nil, err
	}
	if wrapped.Data == nil {
		return nil, errors.New("no rows in body")
	}
	return wrapped.Data, nil
}
