package tokens

import (
	"context"
	"sync"
	"time"

	"github.com/Skotchmaster/library/internal/models"
)

// MemoryStore is a map-backed Store for tests and single-process use.
type MemoryStore struct {
	mu     sync.Mutex
	nextID uint
	rows   map[string]*models.PersonalAccessToken
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string]*models.PersonalAccessToken)}
}

func clone(t *models.PersonalAccessToken) *models.PersonalAccessToken {
	c := *t
	c.Abilities = append([]string(nil), t.Abilities...)
	if t.ExpiresAt != nil {
		exp := *t.ExpiresAt
		c.ExpiresAt = &exp
	}
	return &c
}

func (m *MemoryStore) Create(_ context.Context, t *models.PersonalAccessToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rows[t.Token]; ok {
		return ErrDuplicateToken
	}
	m.nextID++
	t.ID = m.nextID
	m.rows[t.Token] = clone(t)
	return nil
}

func (m *MemoryStore) FindByToken(_ context.Context, digest string) (*models.PersonalAccessToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	row, ok := m.rows[digest]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(row), nil
}

func (m *MemoryStore) Delete(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for k, row := range m.rows {
		if row.ID == id {
			delete(m.rows, k)
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryStore) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for k, row := range m.rows {
		if row.Expired(before) {
			delete(m.rows, k)
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}
