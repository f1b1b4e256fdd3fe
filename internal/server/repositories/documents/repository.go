// Package documents stores CMS table rows as JSONB documents in
// PostgreSQL. Every table shares one physical table keyed by collection.
package documents

import (
	"context"

	"github.com/EdProwise/beawar-school-sub001/internal/server/models"
)

type Op string

const (
	OpEq  Op = "eq"
	OpNeq Op = "neq"
	OpGte Op = "gte"
	OpLte Op = "lte"
	OpIn  Op = "in"
)

// Filter is one condition on a document field. Values is used by OpIn,
// Value by the others.
type Filter struct {
	Field  string
	Op     Op
	Value  string
	Values []string
}

// ListQuery selects, orders and caps documents. A zero Limit means no cap.
type ListQuery struct {
	Filters    []Filter
	Sort       string
	Descending bool
	Limit      int
}

type Repository interface {
	List(ctx context.Context, collection string, q ListQuery) ([]*models.Document, error)
	Count(ctx context.Context, collection string, filters []Filter) (int, error)
	Get(ctx context.Context, collection, id string) (*models.Document, error)
	Create(ctx context.Context, collection string, data map[string]any) (*models.Document, error)
	Upsert(ctx context.Context, collection, id string, data map[string]any) (*models.Document, error)
	Patch(ctx context.Context, collection, id string, data map[string]any) (*models.Document, error)
	Delete(ctx context.Context, collection, id string) (*models.Document, error)
	DeleteMany(ctx context.Context, collection string, filters []Filter) (int64, error)
}
