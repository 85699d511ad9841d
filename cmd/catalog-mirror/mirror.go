package main

import (
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/gin-gonic/gin"
)

// Mirror keeps the rows in a JSON file so restarts keep what was posted.
type Mirror struct {
	Path string

	mu sync.Mutex
}

func (m *Mirror) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", m.list)    // GET /catalog
	rg.POST("", m.append) // POST /catalog
}

func (m *Mirror) read() ([]map[string]any, error) {
	b, err := os.ReadFile(m.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return []map[string]any{}, nil
	}
	if err != nil {
		return nil, err
	}
	rows := []map[string]any{}
	if err := json.Unmarshal(b, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (m *Mirror) list(c *gin.Context) {
	m.mu.Lock()
	rows, err := m.read()
	m.mu.Unlock()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "cannot read mirror data: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (m *Mirror) append(c *gin.Context) {
	var row map[string]any
	if err := c.ShouldBindJSON(&row); err != nil || len(row) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"result": "error", "error": "invalid json body"})
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rows, err := m.read()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"result": "error", "error": err.Error()})
		return
	}
	rows = append(rows, row)

	b, err := json.MarshalIndent(rows, "", "  ")
	if err == nil {
		if err = os.MkdirAll(filepath.Dir(m.Path), 0o755); err == nil {
			err = os.WriteFile(m.Path, b, 0o644)
		}
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"result": "error", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": "success"})
}
