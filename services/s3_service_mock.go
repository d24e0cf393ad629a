package services

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// MockObjectStore is an in-memory ObjectStore for testing
type MockObjectStore struct {
	objects      map[string][]byte
	contentTypes map[string]string
	mu           sync.RWMutex

	// PutErr, when set, is returned by every Put
	PutErr error
}

// NewMockObjectStore creates an empty in-memory store
func NewMockObjectStore() *MockObjectStore {
	return &MockObjectStore{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

func (m *MockObjectStore) Put(ctx context.Context, key, contentType string, body io.Reader) error {
	if m.PutErr != nil {
		return m.PutErr
	}
	content, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("failed to read body: %w", err)
	}

	m.mu.Lock()
	m.objects[key] = content
	m.contentTypes[key] = contentType
	m.mu.Unlock()
	return nil
}

func (m *MockObjectStore) URL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	m.mu.RLock()
	_, exists := m.objects[key]
	m.mu.RUnlock()
	if !exists {
		return "", fmt.Errorf("object not found in mock storage: %s", key)
	}

	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", key), nil
}

func (m *MockObjectStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	delete(m.contentTypes, key)
	m.mu.Unlock()
	return nil
}

// Objects returns a copy of everything stored (for testing assertions)
func (m *MockObjectStore) Objects() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	objects := make(map[string][]byte, len(m.objects))
	for k, v := range m.objects {
		objects[k] = v
	}
	return objects
}

// ContentType returns the content type key was stored with
func (m *MockObjectStore) ContentType(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.contentTypes[key]
}

// Exists checks if key is present in mock storage
func (m *MockObjectStore) Exists(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, exists := m.objects[key]
	return exists
}
