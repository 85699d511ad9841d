package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/go-resty/resty/v2"

	"bookmap/internal/isbn"
	"bookmap/pkg/models"
	"bookmap/pkg/utils"
)

const createdAtLayout = "2006-01-02 15:04:05"

// Registrar writes new records to the remote catalog.
type Registrar struct {
	URL  string
	Now  func() time.Time
	http *resty.Client
}

func NewRegistrar(url string) *Registrar {
	c := resty.New()
	c.SetTimeout(12 * time.Second)
	return &Registrar{URL: url, Now: time.Now, http: c}
}

// Upstream is the remote catalog's answer, passed back unchanged.
type Upstream struct {
	Status      int
	ContentType string
	Body        []byte
}

// Prepare fills id (epoch millis) and created_at when absent and canonicalizes
// a convertible ISBN.
func (r *Registrar) Prepare(b models.BookRecord) models.BookRecord {
	now := r.Now()
	b.ID = strings.TrimSpace(b.ID)
	b.CreatedAt = strings.TrimSpace(b.CreatedAt)
	// both sides are BookRecord, so Merge cannot fail
	_ = mergo.Merge(&b, models.BookRecord{
		ID:        strconv.FormatInt(now.UnixMilli(), 10),
		CreatedAt: now.Format(createdAtLayout),
	})
	if code, err := isbn.ToISBN13(b.ISBN); err == nil {
		b.ISBN = code
	}
	return b
}

// Register posts b to the remote catalog. Concurrent registrations are not
// coordinated; the remote store accepts each independently.
func (r *Registrar) Register(ctx context.Context, b models.BookRecord) (models.BookRecord, Upstream, error) {
	if r.URL == "" {
		return b, Upstream{}, fmt.Errorf("register: %w: catalog url", utils.ErrMissingConfiguration)
	}
	b = r.Prepare(b)

	resp, err := r.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(b).
		Post(r.URL)
	if err != nil {
		return b, Upstream{}, fmt.Errorf("register: post: %w", err)
	}

	ct := resp.Header().Get("Content-Type")
	if ct == "" {
		ct = "application/json"
	}
	return b, Upstream{Status: resp.StatusCode(), ContentType: ct, Body: resp.Body()}, nil
}
