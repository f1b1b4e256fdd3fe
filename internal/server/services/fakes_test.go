package services

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/EdProwise/beawar-school-sub001/internal/common"
	"github.com/EdProwise/beawar-school-sub001/internal/dbx"
	"github.com/EdProwise/beawar-school-sub001/internal/server/models"
	"github.com/EdProwise/beawar-school-sub001/internal/server/repositories/documents"
	"github.com/EdProwise/beawar-school-sub001/internal/server/repositories/users"
)

var fixedTime = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type fakeRepoManager struct {
	users *fakeUsersRepo
	docs  *fakeDocsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository             { return m.users }
func (m *fakeRepoManager) Documents(dbx.DBTX) documents.Repository     { return m.docs }

type fakeUsersRepo struct {
	byEmail map[string]*models.User
	created []*models.User
	err     error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, taken := f.byEmail[u.Email]; taken {
		return nil, common.ErrorAlreadyExists
	}
	u.ID = "u-" + u.Email
	u.CreatedAt = fixedTime
	if f.byEmail == nil {
		f.byEmail = map[string]*models.User{}
	}
	f.byEmail[u.Email] = u
	f.created = append(f.created, u)
	return u, nil
}

func (f *fakeUsersRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsersRepo) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	for _, u := range f.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrorNotFound
}

// fakeDocsRepo keeps documents per collection in insertion order.
type fakeDocsRepo struct {
	docs    map[string][]*models.Document
	seq     int
	lastQ   documents.ListQuery
	lastDel []documents.Filter
	counts  int
	err     error
}

func (f *fakeDocsRepo) put(collection string, d *models.Document) {
	if f.docs == nil {
		f.docs = map[string][]*models.Document{}
	}
	f.docs[collection] = append(f.docs[collection], d)
}

func (f *fakeDocsRepo) find(collection, id string) (int, *models.Document) {
	for i, d := range f.docs[collection] {
		if d.ID == id {
			return i, d
		}
	}
	return -1, nil
}

func (f *fakeDocsRepo) List(ctx context.Context, collection string, q documents.ListQuery) ([]*models.Document, error) {
	f.lastQ = q
	if f.err != nil {
		return nil, f.err
	}
	out := append([]*models.Document{}, f.docs[collection]...)
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (f *fakeDocsRepo) Count(ctx context.Context, collection string, filters []documents.Filter) (int, error) {
	f.counts++
	return len(f.docs[collection]), f.err
}

func (f *fakeDocsRepo) Get(ctx context.Context, collection, id string) (*models.Document, error) {
	if _, d := f.find(collection, id); d != nil {
		return d, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeDocsRepo) Create(ctx context.Context, collection string, data map[string]any) (*models.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.seq++
	d := &models.Document{Collection: collection, ID: uuidFor(f.seq), Data: data, CreatedAt: fixedTime, UpdatedAt: fixedTime}
	f.put(collection, d)
	return d, nil
}

func (f *fakeDocsRepo) Upsert(ctx context.Context, collection, id string, data map[string]any) (*models.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	if _, d := f.find(collection, id); d != nil {
		for k, v := range data {
			d.Data[k] = v
		}
		return d, nil
	}
	d := &models.Document{Collection: collection, ID: id, Data: data, CreatedAt: fixedTime, UpdatedAt: fixedTime}
	f.put(collection, d)
	return d, nil
}

func (f *fakeDocsRepo) Patch(ctx context.Context, collection, id string, data map[string]any) (*models.Document, error) {
	_, d := f.find(collection, id)
	if d == nil {
		return nil, common.ErrorNotFound
	}
	for k, v := range data {
		d.Data[k] = v
	}
	return d, nil
}

func (f *fakeDocsRepo) Delete(ctx context.Context, collection, id string) (*models.Document, error) {
	i, d := f.find(collection, id)
	if d == nil {
		return nil, common.ErrorNotFound
	}
	f.docs[collection] = append(f.docs[collection][:i], f.docs[collection][i+1:]...)
	return d, nil
}

func (f *fakeDocsRepo) DeleteMany(ctx context.Context, collection string, filters []documents.Filter) (int64, error) {
	f.lastDel = filters
	return int64(len(filters)), f.err
}

func uuidFor(n int) string {
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", n)
}
