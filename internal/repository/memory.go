package repository

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
)

// MemoryCollection is an in-process Collection.  Documents are kept as BSON
// so callers never share memory with the store and field mapping matches
// the MongoDB backend.
type MemoryCollection[K Key, T any] struct {
	mu   sync.RWMutex
	keys []K
	docs map[K][]byte
}

func NewMemoryCollection[K Key, T any]() *MemoryCollection[K, T] {
	return &MemoryCollection[K, T]{docs: make(map[K][]byte)}
}

func (m *MemoryCollection[K, T]) Get(_ context.Context, key K) (T, error) {
	var out T
	m.mu.RLock()
	raw, ok := m.docs[key]
	m.mu.RUnlock()
	if !ok {
		return out, ErrNotFound
	}
	err := bson.Unmarshal(raw, &out)
	return out, err
}

func (m *MemoryCollection[K, T]) Insert(_ context.Context, key K, doc T) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[key]; ok {
		return ErrDuplicate
	}
	m.keys = append(m.keys, key)
	m.docs[key] = raw
	return nil
}

func (m *MemoryCollection[K, T]) Upsert(_ context.Context, key K, doc T) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.docs[key] = raw
	return nil
}

func (m *MemoryCollection[K, T]) Count(context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.keys)), nil
}

func (m *MemoryCollection[K, T]) List(_ context.Context, skip, limit int64) ([]T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []T{}
	if skip < 0 {
		skip = 0
	}
	for i := skip; i < int64(len(m.keys)) && (limit <= 0 || int64(len(out)) < limit); i++ {
		var doc T
		if err := bson.Unmarshal(m.docs[m.keys[i]], &doc); err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func (m *MemoryCollection[K, T]) Drop(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = nil
	m.docs = make(map[K][]byte)
	return nil
}
