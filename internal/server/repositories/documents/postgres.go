package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/EdProwise/beawar-school-sub001/internal/common"
	"github.com/EdProwise/beawar-school-sub001/internal/dbx"
	"github.com/EdProwise/beawar-school-sub001/internal/server/models"
)

const columns = `collection, id, data, created_at, updated_at`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, collection string, q ListQuery) ([]*models.Document, error) {
	w := newWhere(collection)
	for _, f := range q.Filters {
		if err := w.add(f); err != nil {
			return nil, err
		}
	}

	query := `SELECT ` + columns + ` FROM documents WHERE ` + w.String() +
		` ORDER BY ` + w.orderBy(q.Sort, q.Descending)
	if q.Limit > 0 {
		query += ` LIMIT ` + w.arg(q.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	docs := make([]*models.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return docs, nil
}

func (r *PostgresRepository) Count(ctx context.Context, collection string, filters []Filter) (int, error) {
	w := newWhere(collection)
	for _, f := range filters {
		if err := w.add(f); err != nil {
			return 0, err
		}
	}

	var n int
	err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM documents WHERE `+w.String(), w.args...).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) Get(ctx context.Context, collection, id string) (*models.Document, error) {
	query :=
		`SELECT ` + columns + ` FROM documents
		 WHERE collection = $1 AND id = $2
		 `
	return one(r.db.QueryRowContext(ctx, query, collection, id))
}

// Create stores data under a new random id.
func (r *PostgresRepository) Create(ctx context.Context, collection string, data map[string]any) (*models.Document, error) {
	raw, err := encode(data)
	if err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO documents (collection, id, data)
		 VALUES ($1, $2, $3)
		 RETURNING ` + columns

	return one(r.db.QueryRowContext(ctx, query, collection, uuid.NewString(), raw))
}

// Upsert inserts data under id, or merges it into the existing document.
func (r *PostgresRepository) Upsert(ctx context.Context, collection, id string, data map[string]any) (*models.Document, error) {
	raw, err := encode(data)
	if err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO documents (collection, id, data)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (collection, id)
		 DO UPDATE SET data = documents.data || EXCLUDED.data, updated_at = now()
		 RETURNING ` + columns

	return one(r.db.QueryRowContext(ctx, query, collection, id, raw))
}

// Patch merges data into the document. A missing document yields
// common.ErrorNotFound.
func (r *PostgresRepository) Patch(ctx context.Context, collection, id string, data map[string]any) (*models.Document, error) {
	raw, err := encode(data)
	if err != nil {
		return nil, err
	}

	query :=
		`UPDATE documents SET data = data || $3, updated_at = now()
		 WHERE collection = $1 AND id = $2
		 RETURNING ` + columns

	return one(r.db.QueryRowContext(ctx, query, collection, id, raw))
}

func (r *PostgresRepository) Delete(ctx context.Context, collection, id string) (*models.Document, error) {
	query :=
		`DELETE FROM documents
		 WHERE collection = $1 AND id = $2
		 RETURNING ` + columns

	return one(r.db.QueryRowContext(ctx, query, collection, id))
}

func (r *PostgresRepository) DeleteMany(ctx context.Context, collection string, filters []Filter) (int64, error) {
	w := newWhere(collection)
	for _, f := range filters {
		if err := w.add(f); err != nil {
			return 0, err
		}
	}

	res, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE `+w.String(), w.args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (*models.Document, error) {
	d := &models.Document{}
	var raw []byte
	if err := s.Scan(&d.Collection, &d.ID, &raw, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, err
	}
	d.Data = map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &d.Data); err != nil {
			return nil, fmt.Errorf("decode document %s: %w", d.ID, err)
		}
	}
	return d, nil
}

func one(row *sql.Row) (*models.Document, error) {
	d, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return d, nil
}

func encode(data map[string]any) ([]byte, error) {
	if data == nil {
		data = map[string]any{}
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return raw, nil
}
