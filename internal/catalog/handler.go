package catalog

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"bookmap/internal/facet"
	"bookmap/pkg/models"
	"bookmap/pkg/utils"
)

// Events receives catalog changes. *sync.Hub satisfies it.
type Events interface {
	Registered(b models.BookRecord, total int)
	Reloaded(total int)
}

type Handler struct {
	Store     *Store
	Registrar *Registrar
	Events    Events
}

func NewHandler(store *Store, reg *Registrar, events Events) *Handler {
	return &Handler{Store: store, Registrar: reg, Events: events}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)           // GET /books
	rg.POST("", h.register)      // POST /books
	rg.POST("/reload", h.reload) // POST /books/reload
	rg.GET("/:id", h.getByID)    // GET /books/:id
}

func (h *Handler) list(c *gin.Context) {
	f, ok := facet.FromQuery(c.Query("facet"), c.Query("value"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown facet type"})
		return
	}
	q := ListQuery{
		Facet:  f,
		Q:      c.Query("q"),
		Limit:  parseInt(c.Query("limit"), 20),
		Offset: parseInt(c.Query("offset"), 0),
	}

	books := h.Store.CurrentCollection()
	SortByRecency(books)
	matched := Filter(books, q.Facet, q.Q)

	c.JSON(http.StatusOK, gin.H{
		"total":  len(matched),
		"limit":  q.Limit,
		"offset": q.Offset,
		"items":  Page(matched, q.Limit, q.Offset),
	})
}

func (h *Handler) getByID(c *gin.Context) {
	b, ok := h.Store.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) register(c *gin.Context) {
	var b models.BookRecord
	if err := c.ShouldBindJSON(&b); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(b.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	saved, up, err := h.Registrar.Register(c.Request.Context(), b)
	switch {
	case errors.Is(err, utils.ErrMissingConfiguration):
		c.JSON(http.StatusInternalServerError, gin.H{"error": "catalog endpoint not configured"})
		return
	case err != nil:
		log.Printf("[catalog] register %s: %v", saved.ID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "catalog unavailable"})
		return
	}

	if up.Status >= 200 && up.Status < 300 {
		h.Store.Add(saved)
		if h.Events != nil {
			h.Events.Registered(saved, len(h.Store.CurrentCollection()))
		}
	}
	c.Data(up.Status, up.ContentType, up.Body)
}

func (h *Handler) reload(c *gin.Context) {
	books, err := h.Store.Load(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reload failed"})
		return
	}
	if h.Events != nil {
		h.Events.Reloaded(len(books))
	}
	c.JSON(http.StatusOK, gin.H{"total": len(books)})
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
