package facet

import (
	"strings"

	"bookmap/pkg/models"
)

// Links connects books sharing a value of the active facet. Each bucket of
// ids becomes a chain (n-1 links) rather than a clique. Buckets are walked in
// the order their value was first seen. With a value selected only that
// value's bucket is linked; with All there are no links.
func Links(books []models.BookRecord, f models.Facet) []models.GraphLink {
	t, ok := ParseType(f.Type)
	if !ok || t == All {
		return []models.GraphLink{}
	}

	var only string
	if f.Value != nil {
		only = strings.TrimSpace(*f.Value)
		if t == Division {
			only = CanonicalDivision(only)
		}
	}

	var order []string
	buckets := make(map[string][]string)
	members := make(map[string]map[string]struct{})

	for _, b := range books {
		if b.ID == "" {
			continue
		}
		for _, v := range ValuesOf(b, t) {
			if f.Value != nil && v != only {
				continue
			}
			set, ok := members[v]
			if !ok {
				set = make(map[string]struct{})
				members[v] = set
				order = append(order, v)
			}
			if _, dup := set[b.ID]; dup {
				continue
			}
			set[b.ID] = struct{}{}
			buckets[v] = append(buckets[v], b.ID)
		}
	}

	links := []models.GraphLink{}
	for _, v := range order {
		ids := buckets[v]
		for i := 1; i < len(ids); i++ {
			links = append(links, models.GraphLink{Source: ids[i-1], Target: ids[i]})
		}
	}
	return links
}

// BuildGraph returns every identified book as a node plus the links for f.
func BuildGraph(books []models.BookRecord, f models.Facet) models.Graph {
	nodes := make([]models.GraphNode, 0, len(books))
	seen := make(map[string]struct{}, len(books))
	for _, b := range books {
		if b.ID == "" {
			continue
		}
		if _, dup := seen[b.ID]; dup {
			continue
		}
		seen[b.ID] = struct{}{}
		nodes = append(nodes, models.GraphNode{ID: b.ID, Title: b.Title, Image: b.Image})
	}
	return models.Graph{Nodes: nodes, Links: Links(books, f)}
}
