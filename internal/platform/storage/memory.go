package storage

import (
	"context"
	"sync"
)

// MemoryStore is an in-process ObjectStore used in tests.
type MemoryStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

// NewMemoryStore builds an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
	}
}

// Put stores the payload and returns a synthetic URL.
func (s *MemoryStore) Put(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = DetectContentType(objectName, data)
	}
	if err := ValidateContentType(contentType); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := make([]byte, len(data))
	copy(buf, data)
	s.objects[objectName] = buf
	s.types[objectName] = contentType
	return "memory://" + objectName, nil
}

// Delete removes an object if present.
func (s *MemoryStore) Delete(ctx context.Context, objectName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, objectName)
	delete(s.types, objectName)
	return nil
}

// Object returns a stored payload and whether it exists.
func (s *MemoryStore) Object(objectName string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[objectName]
	return data, ok
}
