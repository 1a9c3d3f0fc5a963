package models

import "github.com/google/uuid"

// NewID generates an opaque identifier with a per-kind prefix, unique within
// its collection.
func NewID(kind string) string {
	return kind + "_" + uuid.NewString()
}
