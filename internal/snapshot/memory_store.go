package snapshot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) Put(_ context.Context, projectID, path string, content []byte) error {
	key, err := snapshotKey(projectID, path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = append([]byte(nil), content...)
	return nil
}

func (s *MemoryStore) Get(_ context.Context, projectID, path string) ([]byte, error) {
	key, err := snapshotKey(projectID, path)
	if err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, ok := s.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), raw...), nil
}

func (s *MemoryStore) List(_ context.Context, projectID string) ([]string, error) {
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return nil, fmt.Errorf("snapshot: project id is required")
	}
	prefix := projectID + "/"
	s.mu.RLock()
	defer s.mu.RUnlock()
	var paths []string
	for key := range s.data {
		if strings.HasPrefix(key, prefix) {
			paths = append(paths, strings.TrimPrefix(key, prefix))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func snapshotKey(projectID, path string) (string, error) {
	projectID = strings.TrimSpace(projectID)
	path = strings.TrimSpace(path)
	if projectID == "" {
		return "", fmt.Errorf("snapshot: project id is required")
	}
	if path == "" {
		return "", fmt.Errorf("snapshot: path is required")
	}
	return projectID + "/" + strings.TrimLeft(path, "/"), nil
}
