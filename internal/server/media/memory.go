package media

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// MemoryStore keeps objects in process memory. It backs local development
// when no bucket is configured.
type MemoryStore struct {
	mu         sync.Mutex
	publicBase string
	objects    map[string][]byte
}

func NewMemoryStore(publicBase string) *MemoryStore {
	return &MemoryStore{publicBase: publicBase, objects: make(map[string][]byte)}
}

func (m *MemoryStore) Upload(ctx context.Context, folder, name, _ string, body io.Reader, _ int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}

	key := objectKey(folder, name, time.Now().UTC())
	m.mu.Lock()
	m.objects[key] = b
	m.mu.Unlock()
	return publicURL(m.publicBase, key), nil
}

func (m *MemoryStore) Delete(_ context.Context, url string) error {
	key := keyFromURL(m.publicBase, url)
	if key == "" {
		return ErrForeignURL
	}
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

// Len reports how many objects are stored.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

var (
	_ Store = (*S3Store)(nil)
	_ Store = (*MemoryStore)(nil)
)
