package filestorage

import (
	"context"
	"fmt"
	"mime/multipart"
	"sync"
)

// MockStorageService is an in-memory Service used by tests and local runs
// without S3 credentials.
type MockStorageService struct {
	mu      sync.Mutex
	Objects map[string][]byte
	Deleted []string
}

// NewMockStorageService creates an empty in-memory storage service.
func NewMockStorageService() *MockStorageService {
	return &MockStorageService{Objects: make(map[string][]byte)}
}

func (m *MockStorageService) SaveUploadedFile(ctx context.Context, fileHeader *multipart.FileHeader, subDir string) (string, error) {
	if fileHeader == nil {
		return "", fmt.Errorf("fileHeader cannot be nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := fmt.Sprintf("%s/%s", subDir, fileHeader.Filename)
	m.Objects[key] = nil
	return key, nil
}

func (m *MockStorageService) DeleteFile(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.Objects, key)
	m.Deleted = append(m.Deleted, key)
	return nil
}

func (m *MockStorageService) PublicURL(key string) string {
	return "https://storage.test/" + key
}

var _ Service = (*MockStorageService)(nil)
