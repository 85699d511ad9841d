package lookup

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"bookmap/internal/isbn"
	"bookmap/internal/lookupcache"
	"bookmap/internal/normalize"
	"bookmap/internal/provider"
	"bookmap/internal/reconcile"
	"bookmap/pkg/models"
	"bookmap/pkg/utils"
)

type Resolver interface {
	Resolve(ctx context.Context, raw string) (reconcile.Result, error)
}

type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]models.SearchItem, error)
}

type Library interface {
	Search(ctx context.Context, v provider.Variant, q provider.LibraryQuery) ([]models.LibraryItem, error)
}

type Cache interface {
	Get(ctx context.Context, isbn13 string, maxAge time.Duration) (*lookupcache.Entry, error)
	Put(ctx context.Context, e lookupcache.Entry) error
}

// Handler serves the bibliographic lookup endpoints. Cache may be nil.
type Handler struct {
	Resolver Resolver
	Search   Searcher
	Library  Library
	Cache    Cache
	CacheTTL time.Duration
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/book", h.book)       // GET /api/book?isbn=
	rg.GET("/search", h.search)   // GET /api/search?query=
	rg.GET("/library", h.library) // GET /api/library?provider=&isbn=|query=
}

func (h *Handler) book(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("isbn"))
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "isbn is required"})
		return
	}
	code, err := isbn.ToISBN13(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "isbn must have 10 or 13 digits"})
		return
	}
	ctx := c.Request.Context()

	if h.Cache != nil {
		e, err := h.Cache.Get(ctx, code, h.CacheTTL)
		if err != nil {
			log.Printf("[lookup] cache get %s: %v", code, err)
		} else if e != nil {
			c.JSON(http.StatusOK, gin.H{"isbn": code, "items": e.Items, "strategy": e.Strategy, "cached": true})
			return
		}
	}

	res, err := h.Resolver.Resolve(ctx, code)
	if err != nil {
		h.fail(c, "book "+code, err)
		return
	}
	if res.Empty() {
		c.JSON(http.StatusNotFound, gin.H{"isbn": code, "items": []models.LookupItem{}, "hint": res.Hint})
		return
	}

	if h.Cache != nil {
		entry := lookupcache.Entry{ISBN13: code, Strategy: string(res.Strategy), Items: res.Items}
		if err := h.Cache.Put(ctx, entry); err != nil {
			log.Printf("[lookup] cache put %s: %v", code, err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"isbn": code, "items": res.Items, "strategy": res.Strategy, "cached": false})
}

func (h *Handler) search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("query"))
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))

	items, err := h.Search.Search(c.Request.Context(), q, limit)
	var perr *provider.ProviderError
	if errors.As(err, &perr) {
		c.JSON(http.StatusNotFound, gin.H{"items": []models.SearchItem{}, "hint": perr})
		return
	}
	if err != nil {
		h.fail(c, "search", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) library(c *gin.Context) {
	v, err := provider.ParseVariant(c.Query("provider"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown provider"})
		return
	}

	var q provider.LibraryQuery
	if raw := strings.TrimSpace(c.Query("isbn")); raw != "" {
		code, err := isbn.ToISBN13(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "isbn must have 10 or 13 digits"})
			return
		}
		q.ISBN = code
	} else {
		q.Keyword = strings.TrimSpace(c.Query("query"))
	}
	if q.ISBN == "" && q.Keyword == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "isbn or query is required"})
		return
	}

	items, err := h.Library.Search(c.Request.Context(), v, q)
	if err != nil {
		h.fail(c, "library "+string(v), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"provider": v, "items": items})
}

func (h *Handler) fail(c *gin.Context, op string, err error) {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[lookup] %s: %v", op, err)
	}
	c.JSON(status, gin.H{"error": msg})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, isbn.ErrInvalidIdentifier):
		return http.StatusBadRequest, "invalid isbn"
	case errors.Is(err, provider.ErrUnknownVariant):
		return http.StatusBadRequest, "unknown provider"
	case errors.Is(err, utils.ErrMissingConfiguration):
		return http.StatusInternalServerError, "provider credentials not configured"
	case errors.Is(err, normalize.ErrParseFailure):
		return http.StatusBadGateway, "provider returned an unreadable response"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "provider timed out"
	default:
		return http.StatusBadGateway, "provider unavailable"
	}
}
