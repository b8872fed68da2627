// Package storage keeps generated PDFs and uploaded logos.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/sangkips/invoicer/internal/config"
)

const (
	BackendLocal = "local"
	BackendS3    = "s3"
)

// FileStore saves named blobs and reopens them by the location it returned
type FileStore interface {
	Save(ctx context.Context, name string, data []byte) (location string, err error)
	Open(ctx context.Context, location string) (io.ReadCloser, error)
	Delete(ctx context.Context, location string) error
}

// NewInvoiceStore builds the PDF store selected by cfg.Backend
func NewInvoiceStore(cfg *config.StorageConfig) (FileStore, error) {
	switch strings.ToLower(cfg.Backend) {
	case BackendLocal, "":
		return NewLocalStore(cfg.OutputDir)
	case BackendS3:
		return NewS3Store(cfg.S3Bucket, cfg.S3Region, cfg.S3Prefix)
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Backend)
	}
}
