// Package storage retrieves uploaded batch files for ingestion, either
// from S3-compatible object storage (SeaweedFS in the original deployment)
// or from a local directory.
//
// Downloads from object storage land in temp files which the client tracks
// and removes after the batch is processed; local mode hands back the path
// in place and never deletes anything.
package storage

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/rs/zerolog"
)

// Client fetches batch files by their storage path, e.g.
// "batches/user@example.com/project-id/file.csv".
type Client struct {
	s3        *minio.Client
	bucket    string
	localRoot string
	log       zerolog.Logger

	mu        sync.Mutex
	tempFiles []string
}

// NewS3 builds a client against an S3-compatible endpoint. The endpoint is
// a full URL; the scheme decides TLS.
func NewS3(endpoint, accessKey, secretKey, bucket string, log zerolog.Logger) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid storage endpoint: %w", err)
	}

	s3, err := minio.New(u.Host, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: u.Scheme == "https",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	log.Info().Str("endpoint", endpoint).Str("bucket", bucket).Msg("initialized object storage client")
	return &Client{
		s3:     s3,
		bucket: bucket,
		log:    log.With().Str("component", "storage").Logger(),
	}, nil
}

// NewLocal builds a client that resolves storage paths under a local root
// directory.
func NewLocal(root string, log zerolog.Logger) *Client {
	log.Info().Str("path", root).Msg("initialized local storage client")
	return &Client{
		localRoot: root,
		log:       log.With().Str("component", "storage").Logger(),
	}
}

// Download resolves a storage path to a local file path, fetching from
// object storage into a temp file when needed.
func (c *Client) Download(ctx context.Context, filePath string) (string, error) {
	if c.s3 == nil {
		return c.localPath(filePath)
	}
	return c.downloadFromS3(ctx, filePath)
}

func (c *Client) downloadFromS3(ctx context.Context, filePath string) (string, error) {
	// Keep the extension so the file parser can dispatch on it.
	tmp, err := os.CreateTemp("", "batch_*"+filepath.Ext(filePath))
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	c.mu.Lock()
	c.tempFiles = append(c.tempFiles, tmpPath)
	c.mu.Unlock()

	c.log.Info().Str("bucket", c.bucket).Str("key", filePath).Msg("downloading batch file")
	if err := c.s3.FGetObject(ctx, c.bucket, filePath, tmpPath, minio.GetObjectOptions{}); err != nil {
		return "", fmt.Errorf("storage download failed: %w", err)
	}
	return tmpPath, nil
}

func (c *Client) localPath(filePath string) (string, error) {
	abs := filepath.Join(c.localRoot, filePath)
	if _, err := os.Stat(abs); err != nil {
		return "", fmt.Errorf("local file not found: %w", err)
	}
	return abs, nil
}

// Cleanup removes a downloaded temp file. Paths the client did not create
// (local mode) are left alone.
func (c *Client) Cleanup(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.Index(c.tempFiles, path)
	if i < 0 {
		return
	}
	c.tempFiles = slices.Delete(c.tempFiles, i, i+1)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		c.log.Warn().Err(err).Str("path", path).Msg("failed to remove temp file")
	}
}

// CleanupAll removes every tracked temp file.
func (c *Client) CleanupAll() {
	c.mu.Lock()
	files := c.tempFiles
	c.tempFiles = nil
	c.mu.Unlock()

	for _, f := range files {
		if err := os.Remove(f); err != nil && !os.IsNotExist(err) {
			c.log.Warn().Err(err).Str("path", f).Msg("failed to remove temp file")
		}
	}
}
