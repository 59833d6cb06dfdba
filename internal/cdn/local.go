package cdn

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const localBasePath = "./uploads"

// LocalClient writes files under ./uploads and serves them from the app's
// static route. Used in development and tests when S3 is not configured.
type LocalClient struct {
	baseDir string
}

func NewLocalClient() (*LocalClient, error) {
	if err := os.MkdirAll(localBasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %v", err)
	}
	return &LocalClient{baseDir: localBasePath}, nil
}

// NewLocalClientAt stores files under dir instead of ./uploads.
func NewLocalClientAt(dir string) (*LocalClient, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %v", err)
	}
	return &LocalClient{baseDir: dir}, nil
}

func (c *LocalClient) Upload(ctx context.Context, data []byte, contentType, key string) (*UploadResult, error) {
	if len(data) == 0 {
		return nil, &PermanentError{Reason: "empty payload"}
	}

	path := filepath.Join(c.baseDir, key)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, &TransientError{Err: err}
	}

	width, height := 0, 0
	if strings.HasPrefix(contentType, "image/") {
		width, height = imageDimensions(data)
	}

	url := "/uploads/" + key
	result := &UploadResult{
		URL:    url,
		Width:  width,
		Height: height,
	}
	if strings.HasPrefix(contentType, "image/") {
		result.ThumbnailURL = url
	}

	return result, nil
}

func (c *LocalClient) Delete(ctx context.Context, key string) error {
	path := filepath.Join(c.baseDir, key)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return nil
}
