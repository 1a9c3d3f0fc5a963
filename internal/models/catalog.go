package models

// Class is a flat catalog entry, no hierarchy.
type Class struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Subject is a flat catalog entry.
type Subject struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
