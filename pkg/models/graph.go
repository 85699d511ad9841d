package models

// Facet selects a filter/grouping dimension. A nil Value means every value
// of Type.
type Facet struct {
	Type  string  `json:"type"`
	Value *string `json:"value"`
}

// GraphLink is an undirected edge between two BookRecord ids.
type GraphLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type GraphNode struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Image string `json:"image,omitempty"`
}

type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Links []GraphLink `json:"links"`
}
