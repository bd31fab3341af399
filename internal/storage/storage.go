// Package storage abstracts where uploaded files live. Local disk serves
// development; Google Cloud Storage serves production. The switch happens at
// startup from configuration.
package storage

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Client interface {
	UploadFile(ctx context.Context, reader io.Reader, objectName, contentType string) (*UploadResult, error)
	DeleteFile(ctx context.Context, objectName string) error
	ReadFile(ctx context.Context, objectName string) (io.ReadCloser, error)
	Close() error
}

type UploadResult struct {
	ObjectName string `json:"object_name"`
	PublicURL  string `json:"public_url"`
	Size       int64  `json:"size"`
}

// ObjectName builds a collision-free object name for an upload, keeping the
// original extension so content type sniffing keeps working downstream.
func ObjectName(filename string) string {
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filepath.Base(filename), ext)
	return fmt.Sprintf("uploads/%d_%s_%s%s", time.Now().Unix(), uuid.New().String()[:8], base, ext)
}
