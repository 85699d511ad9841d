package facet

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"bookmap/pkg/models"
)

// Collection yields the current catalog. *catalog.Store satisfies it.
type Collection interface {
	CurrentCollection() []models.BookRecord
}

type Handler struct {
	Books Collection
}

func NewHandler(books Collection) *Handler {
	return &Handler{Books: books}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/facets", h.facets) // GET /facets
	rg.GET("/graph", h.graph)   // GET /graph?type=카테고리&value=소설
}

func (h *Handler) facets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"facets": Vocabulary(h.Books.CurrentCollection())})
}

func (h *Handler) graph(c *gin.Context) {
	f, ok := FromQuery(c.Query("type"), c.Query("value"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown facet type"})
		return
	}
	c.JSON(http.StatusOK, BuildGraph(h.Books.CurrentCollection(), f))
}

// FromQuery builds a selection from query parameters. An empty value selects
// every value of the type.
func FromQuery(typ, value string) (models.Facet, bool) {
	t, ok := ParseType(typ)
	if !ok {
		return models.Facet{}, false
	}
	f := models.Facet{Type: string(t)}
	if v := strings.TrimSpace(value); v != "" && t != All {
		f.Value = &v
	}
	return f, true
}
