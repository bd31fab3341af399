package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// LocalClient stores files on the local filesystem and serves them from a
// static file route.
type LocalClient struct {
	basePath string
	baseURL  string
}

func NewLocalClient(basePath, baseURL string) (*LocalClient, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalClient{basePath: basePath, baseURL: baseURL}, nil
}

func (l *LocalClient) UploadFile(ctx context.Context, reader io.Reader, objectName, contentType string) (*UploadResult, error) {
	fullPath := filepath.Join(l.basePath, objectName)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create file %s: %w", fullPath, err)
	}
	defer file.Close()

	size, err := io.Copy(file, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to write data to file: %w", err)
	}

	return &UploadResult{
		ObjectName: objectName,
		PublicURL:  fmt.Sprintf("%s/%s", l.baseURL, objectName),
		Size:       size,
	}, nil
}

func (l *LocalClient) DeleteFile(ctx context.Context, objectName string) error {
	fullPath := filepath.Join(l.basePath, objectName)

	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return nil
	}
	if err := os.Remove(fullPath); err != nil {
		return fmt.Errorf("failed to delete file %s: %w", fullPath, err)
	}

	l.cleanEmptyDirs(filepath.Dir(fullPath))
	return nil
}

// cleanEmptyDirs removes empty parent directories up to basePath.
func (l *LocalClient) cleanEmptyDirs(dir string) {
	for dir != l.basePath && dir != "" {
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			break
		}
		os.Remove(dir)
		dir = filepath.Dir(dir)
	}
}

func (l *LocalClient) ReadFile(ctx context.Context, objectName string) (io.ReadCloser, error) {
	file, err := os.Open(filepath.Join(l.basePath, objectName))
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", objectName, err)
	}
	return file, nil
}

// BasePath returns the directory served by the static file route.
func (l *LocalClient) BasePath() string {
	return l.basePath
}

func (l *LocalClient) Close() error {
	return nil
}

var _ Client = (*LocalClient)(nil)
