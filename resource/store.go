// Package resource publishes rewritten manifests as in-memory resources
// addressable by URL path. The original platform handed players object URLs;
// here callers mount the store on any mux and hand players the returned
// path instead.
package resource

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/google/uuid"
)

// DefaultContentType is the MIME type published manifests are served with
const DefaultContentType = "application/vnd.apple.mpegurl"

type entry struct {
	contentType string
	body        []byte
}

// Store is a mutex-guarded in-memory map of published resources.
// The zero value is not usable; construct with NewStore.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewStore creates an empty resource store
func NewStore() *Store {
	return &Store{
		entries: make(map[string]entry),
	}
}

// Publish stores the body under a fresh handle and returns the handle's
// path, of the form /manifests/<uuid>.m3u8
func (s *Store) Publish(contentType string, body []byte) string {
	if contentType == "" {
		contentType = DefaultContentType
	}

	path := fmt.Sprintf("/manifests/%s.m3u8", uuid.New())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[path] = entry{contentType: contentType, body: body}

	return path
}

// Get returns the body published under path
func (s *Store) Get(path string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[path]
	if !ok {
		return nil, false
	}
	return e.body, true
}

// Revoke removes a published resource. Revoking an unknown path is a no-op.
func (s *Store) Revoke(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, path)
}

// Len reports how many resources are currently published
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// ServeHTTP serves published resources so the store can be mounted on a mux
func (s *Store) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	e, ok := s.entries[r.URL.Path]
	s.mu.RUnlock()

	if !ok {
		http.NotFound(w, r)
		return
	}

	w.Header().Set("Content-Type", e.contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(e.body)
}
