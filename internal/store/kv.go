// Package store persists the Gem collection and the knowledge-base groups as
// two independent records of a durable key-value store.
package store

import (
	"context"
	"sync"

	"gemcanvas/internal/repository"
)

// KV is the durable key-value backend. Get reports ok=false for a missing key.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// SQLKV keeps records in the kv_records table through gorm.
type SQLKV struct {
	repo *repository.RecordRepository
}

func NewSQLKV(repo *repository.RecordRepository) *SQLKV {
	return &SQLKV{repo: repo}
}

func (s *SQLKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	record, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if record == nil {
		return nil, false, nil
	}
	return []byte(record.Value), true, nil
}

func (s *SQLKV) Put(ctx context.Context, key string, value []byte) error {
	return s.repo.Upsert(ctx, key, value)
}

// MemoryKV is a process-local backend, used by the memory driver and tests.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string][]byte)}
}

func (m *MemoryKV) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryKV) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}
