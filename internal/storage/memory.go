package storage

import "slices"

// MemoryStore is a KV kept in process memory. Nothing survives Close.
type MemoryStore struct {
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Init() error  { return nil }
func (s *MemoryStore) Load() error  { return nil }
func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) Get(key string) ([]byte, error) {
	v, ok := s.data[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return slices.Clone(v), nil
}

func (s *MemoryStore) Put(key string, value []byte) error {
	s.data[key] = slices.Clone(value)
	return nil
}

func (s *MemoryStore) Delete(key string) error {
	delete(s.data, key)
	return nil
}

func (s *MemoryStore) GetConfigPath() string {
	return "memory"
}
