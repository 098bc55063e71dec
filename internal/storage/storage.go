// Package storage keeps account archives in object storage.
package storage

import (
	"context"
	"time"
)

type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified *time.Time
}

// Service stores opaque objects under string keys in a single bucket.
type Service interface {
	Put(ctx context.Context, key, contentType string, body []byte) error
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	GetObjectURL(ctx context.Context, key string, expires time.Duration) (string, error)
}
