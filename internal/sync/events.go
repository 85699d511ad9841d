package sync

import (
	"time"

	"bookmap/pkg/models"
)

const (
	EventRegister = "catalog.register"
	EventReload   = "catalog.reload"
)

type CatalogEvent struct {
	Type   string    `json:"type"` // "catalog.register" or "catalog.reload"
	BookID string    `json:"book_id,omitempty"`
	Title  string    `json:"title,omitempty"`
	Total  int       `json:"total"`
	At     time.Time `json:"at"`
}

// Registered announces a newly registered book to every client.
func (h *Hub) Registered(b models.BookRecord, total int) {
	h.BroadcastJSON(CatalogEvent{
		Type:   EventRegister,
		BookID: b.ID,
		Title:  b.Title,
		Total:  total,
		At:     time.Now().UTC(),
	})
}

// Reloaded announces a fresh catalog merge.
func (h *Hub) Reloaded(total int) {
	h.BroadcastJSON(CatalogEvent{Type: EventReload, Total: total, At: time.Now().UTC()})
}
