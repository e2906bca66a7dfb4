package blobstore

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"
)

// MemStore is a thread-safe in-memory Store for tests and local development.
// Presigned URLs are synthetic; keys must be "uploaded" via Put before a GET
// URL can be issued.
type MemStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{blobs: make(map[string][]byte)}
}

// Put stores blob content directly, standing in for the client-side PUT that
// would hit a real presigned URL.
func (s *MemStore) Put(key string, content []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = content
}

// Get returns blob content uploaded via Put.
func (s *MemStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[key]
	return b, ok
}

func (s *MemStore) PresignPut(_ context.Context, key, _ string, expires time.Duration) (string, error) {
	return fmt.Sprintf("https://blobs.local/%s?method=PUT&expires=%d", url.PathEscape(key), int(expires.Seconds())), nil
}

func (s *MemStore) PresignGet(_ context.Context, key, fileName string, expires time.Duration) (string, error) {
	s.mu.RLock()
	_, ok := s.blobs[key]
	s.mu.RUnlock()
	if !ok {
		return "", ErrBlobNotFound
	}
	return fmt.Sprintf("https://blobs.local/%s?method=GET&filename=%s&expires=%d",
		url.PathEscape(key), url.QueryEscape(fileName), int(expires.Seconds())), nil
}

func (s *MemStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[key]; !ok {
		return ErrBlobNotFound
	}
	delete(s.blobs, key)
	return nil
}
