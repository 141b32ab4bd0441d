package repositories

import (
	"context"
	"sync"

	"samurai/internal/models"
)

// PendingStore — хранилище незавершённых регистраций, ключ — email.
// Get возвращает (nil, nil), если записи нет.
type PendingStore interface {
	Get(ctx context.Context, email string) (*models.PendingVerification, error)
	Set(ctx context.Context, v *models.PendingVerification) error
	Delete(ctx context.Context, email string) error
}

// MemoryPendingStore lives for the process lifetime; expired records are
// only dropped when read or overwritten.
type MemoryPendingStore struct {
	mu      sync.Mutex
	records map[string]models.PendingVerification
}

func NewMemoryPendingStore() *MemoryPendingStore {
	return &MemoryPendingStore{records: make(map[string]models.PendingVerification)}
}

func (s *MemoryPendingStore) Get(_ context.Context, email string) (*models.PendingVerification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.records[email]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (s *MemoryPendingStore) Set(_ context.Context, v *models.PendingVerification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[v.Email] = *v
	return nil
}

func (s *MemoryPendingStore) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, email)
	return nil
}

// Len — для тестов и диагностики.
func (s *MemoryPendingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
