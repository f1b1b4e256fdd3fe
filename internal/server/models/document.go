// Package models holds the rows the backend stores.
package models

import "time"

// Document is one row of a table. Data holds the user fields; the id and
// timestamps live in columns and are merged in by Map.
type Document struct {
	Collection string
	ID         string
	Data       map[string]any
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Map returns the wire form: Data plus _id, created_at and updated_at.
func (d *Document) Map() map[string]any {
	out := make(map[string]any, len(d.Data)+3)
	for k, v := range d.Data {
		out[k] = v
	}
	out["_id"] = d.ID
	out["created_at"] = d.CreatedAt.UTC().Format(time.RFC3339Nano)
	out["updated_at"] = d.UpdatedAt.UTC().Format(time.RFC3339Nano)
	return out
}
