package lookupcache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"bookmap/pkg/models"
)

// Entry is one cached, successful reconciliation.
type Entry struct {
	ISBN13    string              `json:"isbn13"`
	Strategy  string              `json:"strategy"`
	Items     []models.LookupItem `json:"items"`
	FetchedAt time.Time           `json:"fetched_at"`
}

type Repo struct {
	DB  *sql.DB
	Now func() time.Time
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{DB: db, Now: time.Now}
}

// Get returns the entry for isbn13 when it is younger than maxAge. A miss is
// (nil, nil). maxAge <= 0 disables the cache.
func (r *Repo) Get(ctx context.Context, isbn13 string, maxAge time.Duration) (*Entry, error) {
	if maxAge <= 0 {
		return nil, nil
	}

	row := r.DB.QueryRowContext(ctx, `
		SELECT isbn13, strategy, items, fetched_at
		FROM lookup_cache
		WHERE isbn13 = ? AND fetched_at >= ?
	`, isbn13, r.Now().Add(-maxAge).Unix())

	var (
		e         Entry
		itemsJSON string
		fetched   int64
	)
	if err := row.Scan(&e.ISBN13, &e.Strategy, &itemsJSON, &fetched); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan lookup cache: %w", err)
	}
	if err := json.Unmarshal([]byte(itemsJSON), &e.Items); err != nil {
		return nil, fmt.Errorf("decode cached items for %s: %w", isbn13, err)
	}
	e.FetchedAt = time.Unix(fetched, 0)
	return &e, nil
}

// Put upserts e. Entries without items are ignored: only hits are cached.
func (r *Repo) Put(ctx context.Context, e Entry) error {
	if len(e.Items) == 0 {
		return nil
	}
	if e.FetchedAt.IsZero() {
		e.FetchedAt = r.Now()
	}
	itemsJSON, err := json.Marshal(e.Items)
	if err != nil {
		return fmt.Errorf("marshal items for %s: %w", e.ISBN13, err)
	}

	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO lookup_cache (isbn13, strategy, items, fetched_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(isbn13) DO UPDATE SET
		  strategy = excluded.strategy,
		  items = excluded.items,
		  fetched_at = excluded.fetched_at
	`, e.ISBN13, e.Strategy, string(itemsJSON), e.FetchedAt.Unix())
	if err != nil {
		return fmt.Errorf("upsert lookup cache %s: %w", e.ISBN13, err)
	}
	return nil
}

// Purge deletes entries fetched more than olderThan ago and returns how many
// were removed. olderThan <= 0 clears the table.
func (r *Repo) Purge(ctx context.Context, olderThan time.Duration) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if olderThan <= 0 {
		res, err = r.DB.ExecContext(ctx, `DELETE FROM lookup_cache`)
	} else {
		res, err = r.DB.ExecContext(ctx, `DELETE FROM lookup_cache WHERE fetched_at < ?`,
			r.Now().Add(-olderThan).Unix())
	}
	if err != nil {
		return 0, fmt.Errorf("purge lookup cache: %w", err)
	}
	return res.RowsAffected()
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM lookup_cache`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count lookup cache: %w", err)
	}
	return n, nil
}

// All returns every entry, most recently fetched first.
func (r *Repo) All(ctx context.Context) ([]Entry, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT isbn13, strategy, items, fetched_at
		FROM lookup_cache
		ORDER BY fetched_at DESC, isbn13
	`)
	if err != nil {
		return nil, fmt.Errorf("query lookup cache: %w", err)
	}
	defer rows.Close()

	out := []Entry{}
	for rows.Next() {
		var (
			e         Entry
			itemsJSON string
			fetched   int64
		)
		if err := rows.Scan(&e.ISBN13, &e.Strategy, &itemsJSON, &fetched); err != nil {
			return nil, fmt.Errorf("scan lookup cache: %w", err)
		}
		if err := json.Unmarshal([]byte(itemsJSON), &e.Items); err != nil {
			return nil, fmt.Errorf("decode cached items for %s: %w", e.ISBN13, err)
		}
		e.FetchedAt = time.Unix(fetched, 0)
		out = append(out, e)
	}
	return out, rows.Err()
}
