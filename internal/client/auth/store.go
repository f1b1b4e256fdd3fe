package auth

import (
	"context"
	"sync"

	"github.com/EdProwise/beawar-school-sub001/internal/client/repositories/metadata"
)

// SessionKey is the metadata key holding the serialized session.
const SessionKey = "auth.session"

// SessionStore persists the raw session blob. Load returns nil when nobody
// is signed in.
type SessionStore interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, raw []byte) error
	Clear(ctx context.Context) error
}

// MetadataStore keeps the session under SessionKey in the metadata table.
type MetadataStore struct {
	repo metadata.Repository
}

func NewMetadataStore(repo metadata.Repository) *MetadataStore {
	return &MetadataStore{repo: repo}
}

func (s *MetadataStore) Load(ctx context.Context) ([]byte, error) {
	return s.repo.Get(ctx, SessionKey)
}

func (s *MetadataStore) Save(ctx context.Context, raw []byte) error {
	return s.repo.Set(ctx, SessionKey, raw)
}

func (s *MetadataStore) Clear(ctx context.Context) error {
	return s.repo.Delete(ctx, SessionKey)
}

// MemoryStore is a process-local SessionStore.
type MemoryStore struct {
	mu  sync.RWMutex
	raw []byte
}

func (m *MemoryStore) Load(context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.raw == nil {
		return nil, nil
	}
	return append([]byte(nil), m.raw...), nil
}

func (m *MemoryStore) Save(_ context.Context, raw []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = append([]byte(nil), raw...)
	return nil
}

func (m *MemoryStore) Clear(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = nil
	return nil
}
