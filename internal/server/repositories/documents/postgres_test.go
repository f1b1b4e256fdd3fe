package documents

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/EdProwise/beawar-school-sub001/internal/common"
)

var (
	cols    = []string{"collection", "id", "data", "created_at", "updated_at"}
	created = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	updated = created.Add(time.Hour)
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func row(id, data string) *sqlmock.Rows {
	return sqlmock.NewRows(cols).AddRow("news", id, []byte(data), created, updated)
}

type uuidArg struct{}

func (uuidArg) Match(v driver.Value) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	_, err := uuid.Parse(s)
	return err == nil
}

func TestList_FiltersOrderLimit(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `^SELECT collection, id, data, created_at, updated_at FROM documents ` +
		`WHERE collection = \$1 AND data->>\$2 = \$3 ` +
		`ORDER BY created_at DESC, id DESC LIMIT \$4$`
	mock.ExpectQuery(q).
		WithArgs("news", "is_published", "true", 5).
		WillReturnRows(row("n1", `{"title":"Sports day"}`).AddRow("news", "n2", []byte(`{"title":"Prize giving"}`), created, updated))

	docs, err := repo.List(context.Background(), "news", ListQuery{
		Filters:    []Filter{{Field: "is_published", Op: OpEq, Value: "true"}},
		Sort:       "created_at",
		Descending: true,
		Limit:      5,
	})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "n1", docs[0].ID)
	assert.Equal(t, "Sports day", docs[0].Data["title"])
	assert.Equal(t, created, docs[0].CreatedAt)
	assert.Equal(t, "Prize giving", docs[1].Data["title"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_EmptyIsNotNil(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`^SELECT .* FROM documents WHERE collection = \$1 ORDER BY created_at ASC, id ASC$`).
		WithArgs("gallery").
		WillReturnRows(sqlmock.NewRows(cols))

	docs, err := repo.List(context.Background(), "gallery", ListQuery{})
	require.NoError(t, err)
	assert.NotNil(t, docs)
	assert.Empty(t, docs)
}

func TestList_SortByNumericField(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `ORDER BY CASE WHEN jsonb_typeof(data->$2) = 'number' THEN (data->>$2)::numeric END DESC, ` +
		`data->>$2 DESC, created_at DESC`
	mock.ExpectQuery(`^SELECT .* FROM documents WHERE collection = \$1 ` + regexp.QuoteMeta(q) + `$`).
		WithArgs("toppers", "rank").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("toppers", "t10", []byte(`{"rank":10}`), created, updated).
			AddRow("toppers", "t9", []byte(`{"rank":9}`), created, updated))

	docs, err := repo.List(context.Background(), "toppers", ListQuery{Sort: "rank", Descending: true})
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "t10", docs[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestList_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`^SELECT`).WillReturnError(errors.New("db down"))

	_, err := repo.List(context.Background(), "news", ListQuery{})
	assert.Regexp(t, regexp.MustCompile(`db error: .*db down`), err.Error())
}

func TestList_BadOperator(t *testing.T) {
	repo, _ := newRepoWithMock(t)

	_, err := repo.List(context.Background(), "news", ListQuery{Filters: []Filter{{Field: "x", Op: "like"}}})
	assert.Error(t, err)
}

func TestCount(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`^SELECT count\(\*\) FROM documents WHERE collection = \$1 AND data->>\$2 IN \(SELECT jsonb_array_elements_text\(\$3::jsonb\)\)$`).
		WithArgs("events", "category", `["sports","arts"]`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	n, err := repo.Count(context.Background(), "events", []Filter{{Field: "category", Op: OpIn, Values: []string{"sports", "arts"}}})
	require.NoError(t, err)
	assert.Equal(t, 7, n)
}

func TestGet_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT .* FROM documents\s+WHERE collection = \$1 AND id = \$2\s*$`).
		WithArgs("news", "n1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Get(context.Background(), "news", "n1")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestCreate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^INSERT INTO documents \(collection, id, data\)\s+VALUES \(\$1, \$2, \$3\)\s+RETURNING collection, id, data, created_at, updated_at$`).
		WithArgs("news", uuidArg{}, []byte(`{"title":"Sports day"}`)).
		WillReturnRows(row("2b1f8a7e-0000-4000-8000-000000000001", `{"title":"Sports day"}`))

	d, err := repo.Create(context.Background(), "news", map[string]any{"title": "Sports day"})
	require.NoError(t, err)
	assert.Equal(t, "2b1f8a7e-0000-4000-8000-000000000001", d.ID)
	assert.Equal(t, map[string]any{"title": "Sports day"}, d.Data)
}

func TestUpsert_MergesOnConflict(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^INSERT INTO documents .*ON CONFLICT \(collection, id\)\s+DO UPDATE SET data = documents.data \|\| EXCLUDED.data, updated_at = now\(\)`).
		WithArgs("settings", "s1", []byte(`{"theme":"dark"}`)).
		WillReturnRows(row("s1", `{"theme":"dark","name":"School"}`))

	d, err := repo.Upsert(context.Background(), "settings", "s1", map[string]any{"theme": "dark"})
	require.NoError(t, err)
	assert.Equal(t, "School", d.Data["name"])
}

func TestPatch(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^UPDATE documents SET data = data \|\| \$3, updated_at = now\(\)\s+WHERE collection = \$1 AND id = \$2`
	mock.ExpectQuery(q).
		WithArgs("news", "n1", []byte(`{"title":"New"}`)).
		WillReturnRows(row("n1", `{"title":"New","body":"kept"}`))
	mock.ExpectQuery(q).
		WithArgs("news", "n2", []byte(`{}`)).
		WillReturnError(sql.ErrNoRows)

	d, err := repo.Patch(context.Background(), "news", "n1", map[string]any{"title": "New"})
	require.NoError(t, err)
	assert.Equal(t, "kept", d.Data["body"])

	_, err = repo.Patch(context.Background(), "news", "n2", nil)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^DELETE FROM documents\s+WHERE collection = \$1 AND id = \$2\s+RETURNING`).
		WithArgs("news", "n1").
		WillReturnRows(row("n1", `{"title":"x"}`))

	d, err := repo.Delete(context.Background(), "news", "n1")
	require.NoError(t, err)
	assert.Equal(t, "n1", d.ID)
}

func TestDeleteMany(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`^DELETE FROM documents WHERE collection = \$1 AND id::text IN \(SELECT jsonb_array_elements_text\(\$2::jsonb\)\)$`).
		WithArgs("gallery", `["a","b","c"]`).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := repo.DeleteMany(context.Background(), "gallery", []Filter{{Field: "_id", Op: OpIn, Values: []string{"a", "b", "c"}}})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestScan_InvalidJSON(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`^SELECT`).WillReturnRows(row("n1", `{broken`))

	_, err := repo.Get(context.Background(), "news", "n1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode document n1")
}
