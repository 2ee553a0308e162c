package storage

import (
	"context"
	"io"
	"time"
)

// Package storage contains portrait file storage abstractions. The local
// backend writes under the upload directory; the minio backend targets an
// S3-compatible bucket. Keys are bare filenames like "abc123.png".

// PutObjectOptions define optional parameters for storing objects.
// Size should be the exact number of bytes if known; -1 lets the backend
// buffer/chunk as it supports.
type PutObjectOptions struct {
	Size        int64
	ContentType string
}

// ObjectInfo contains basic information about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// Storage is the portrait file store interface. Methods use context and
// streaming readers; callers never see backend paths.
type Storage interface {
	// Put stores an object under the given key, replacing any prior content.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader with its info.
	// A missing key surfaces the backend's native not-found error.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key. Missing objects are not an error.
	Delete(ctx context.Context, key string) error
}
