package storage

import (
	"context"
	"fmt"
	"io"

	gcs "cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// GCSClient stores files in a Google Cloud Storage bucket. Objects are
// publicly readable through the standard storage URL.
type GCSClient struct {
	client     *gcs.Client
	bucketName string
}

func NewGCSClient(ctx context.Context, bucketName, credentialsPath string) (*GCSClient, error) {
	var opts []option.ClientOption
	if credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &GCSClient{client: client, bucketName: bucketName}, nil
}

func (g *GCSClient) UploadFile(ctx context.Context, reader io.Reader, objectName, contentType string) (*UploadResult, error) {
	obj := g.client.Bucket(g.bucketName).Object(objectName)

	writer := obj.NewWriter(ctx)
	writer.ContentType = contentType

	size, err := io.Copy(writer, reader)
	if err != nil {
		writer.Close()
		return nil, fmt.Errorf("failed to write object %s: %w", objectName, err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize object %s: %w", objectName, err)
	}

	return &UploadResult{
		ObjectName: objectName,
		PublicURL:  fmt.Sprintf("https://storage.googleapis.com/%s/%s", g.bucketName, objectName),
		Size:       size,
	}, nil
}

func (g *GCSClient) DeleteFile(ctx context.Context, objectName string) error {
	err := g.client.Bucket(g.bucketName).Object(objectName).Delete(ctx)
	if err != nil && err != gcs.ErrObjectNotExist {
		return fmt.Errorf("failed to delete object %s: %w", objectName, err)
	}
	return nil
}

func (g *GCSClient) ReadFile(ctx context.Context, objectName string) (io.ReadCloser, error) {
	reader, err := g.client.Bucket(g.bucketName).Object(objectName).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open object %s: %w", objectName, err)
	}
	return reader, nil
}

func (g *GCSClient) Close() error {
	return g.client.Close()
}

var _ Client = (*GCSClient)(nil)
