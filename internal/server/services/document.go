package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/EdProwise/beawar-school-sub001/internal/common"
	"github.com/EdProwise/beawar-school-sub001/internal/dbx"
	"github.com/EdProwise/beawar-school-sub001/internal/server/models"
	"github.com/EdProwise/beawar-school-sub001/internal/server/repositories/documents"
	"github.com/EdProwise/beawar-school-sub001/internal/server/repositories/repomanager"
)

// reservedFields are maintained by the store and dropped from writes.
var reservedFields = []string{common.NativeIDField, common.IDField, "created_at", "updated_at"}

// ListRequest is a parsed table read.
type ListRequest struct {
	Query  documents.ListQuery
	Select []string
	Count  bool
	Head   bool
}

// ListResult carries the rows and, when requested, the exact count of
// matching rows ignoring Limit.
type ListResult struct {
	Rows  []map[string]any
	Count int
}

// DocumentService implements the generic table API on top of the
// documents repository.
type DocumentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewDocumentService(db *sql.DB, m repomanager.RepositoryManager) *DocumentService {
	return &DocumentService{db: db, repomanager: m}
}

func (s *DocumentService) List(ctx context.Context, table string, req ListRequest) (*ListResult, error) {
	if err := validateQuery(table, req.Query.Filters, req.Query.Sort); err != nil {
		return nil, err
	}
	repo := s.repomanager.Documents(s.db)

	res := &ListResult{}
	if req.Count || req.Head {
		n, err := repo.Count(ctx, table, req.Query.Filters)
		if err != nil {
			return nil, err
		}
		res.Count = n
	}
	if req.Head {
		return res, nil
	}

	docs, err := repo.List(ctx, table, req.Query)
	if err != nil {
		return nil, err
	}
	res.Rows = make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		res.Rows = append(res.Rows, project(d.Map(), req.Select))
	}
	return res, nil
}

// Create stores one document under a new id.
func (s *DocumentService) Create(ctx context.Context, table string, data map[string]any) (map[string]any, error) {
	if err := ValidateTable(table); err != nil {
		return nil, err
	}
	d, err := s.repomanager.Documents(s.db).Create(ctx, table, stripReserved(data))
	if err != nil {
		return nil, err
	}
	return d.Map(), nil
}

// Upsert writes one document or a list of them in a single transaction.
// Documents carrying an _id or id are merged into the stored one (or
// created under that id), the rest are created. The result mirrors the
// input: an object for an object, a list for a list.
func (s *DocumentService) Upsert(ctx context.Context, table string, payload any) (any, error) {
	if err := ValidateTable(table); err != nil {
		return nil, err
	}

	var items []map[string]any
	single := false
	switch v := payload.(type) {
	case map[string]any:
		items, single = []map[string]any{v}, true
	case []any:
		for _, it := range v {
			m, ok := it.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("%w: upsert items must be objects", common.ErrorValidation)
			}
			items = append(items, m)
		}
	default:
		return nil, fmt.Errorf("%w: upsert data must be an object or a list of objects", common.ErrorValidation)
	}

	out := make([]any, 0, len(items))
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Documents(tx)
		for _, item := range items {
			var (
				d   *models.Document
				err error
			)
			if id, ok := documentID(item); ok {
				if _, perr := uuid.Parse(id); perr != nil {
					return fmt.Errorf("%w: invalid id %q", common.ErrorValidation, id)
				}
				d, err = repo.Upsert(ctx, table, id, stripReserved(item))
			} else {
				d, err = repo.Create(ctx, table, stripReserved(item))
			}
			if err != nil {
				return err
			}
			out = append(out, d.Map())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if single {
		return out[0], nil
	}
	return out, nil
}

// Patch merges data into the document with id.
func (s *DocumentService) Patch(ctx context.Context, table, id string, data map[string]any) (map[string]any, error) {
	if err := ValidateTable(table); err != nil {
		return nil, err
	}
	if !isUUID(id) {
		return nil, common.ErrorNotFound
	}
	d, err := s.repomanager.Documents(s.db).Patch(ctx, table, id, stripReserved(data))
	if err != nil {
		return nil, err
	}
	return d.Map(), nil
}

// Delete removes the document with id and returns it.
func (s *DocumentService) Delete(ctx context.Context, table, id string) (map[string]any, error) {
	if err := ValidateTable(table); err != nil {
		return nil, err
	}
	if !isUUID(id) {
		return nil, common.ErrorNotFound
	}
	d, err := s.repomanager.Documents(s.db).Delete(ctx, table, id)
	if err != nil {
		return nil, err
	}
	return d.Map(), nil
}

// DeleteMany removes every matching document. At least one in filter is
// required so a bare DELETE cannot empty a table.
func (s *DocumentService) DeleteMany(ctx context.Context, table string, filters []documents.Filter) (int64, error) {
	if err := validateQuery(table, filters, ""); err != nil {
		return 0, err
	}
	hasIn := false
	for _, f := range filters {
		if f.Op == documents.OpIn {
			hasIn = true
		}
	}
	if !hasIn {
		return 0, fmt.Errorf("%w: bulk delete requires an _in filter", common.ErrorValidation)
	}
	return s.repomanager.Documents(s.db).DeleteMany(ctx, table, filters)
}

func validateQuery(table string, filters []documents.Filter, sort string) error {
	if err := ValidateTable(table); err != nil {
		return err
	}
	for _, f := range filters {
		if err := ValidateField(f.Field); err != nil {
			return err
		}
	}
	if sort != "" {
		return ValidateField(sort)
	}
	return nil
}

func documentID(item map[string]any) (string, bool) {
	for _, k := range []string{common.NativeIDField, common.IDField} {
		if v, ok := item[k]; ok && v != nil {
			if s := fmt.Sprint(v); s != "" {
				return s, true
			}
		}
	}
	return "", false
}

func stripReserved(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	for _, k := range reservedFields {
		delete(out, k)
	}
	return out
}

// project keeps the selected fields plus _id. No selection keeps all.
func project(doc map[string]any, fields []string) map[string]any {
	if len(fields) == 0 {
		return doc
	}
	out := map[string]any{common.NativeIDField: doc[common.NativeIDField]}
	for _, f := range fields {
		if v, ok := doc[f]; ok {
			out[f] = v
		}
	}
	return out
}

func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

