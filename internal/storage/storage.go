package storage

import (
	"context"
	"io"
)

// Package storage holds the object-store abstraction used for archiving
// return receipts. Implementations stream to an S3-compatible backend and
// never touch local disk.

// PutOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; set -1 to let the
// backend buffer and chunk as it supports.
type PutOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about a stored object.
type ObjectInfo struct {
	Key         string
	Size        int64
	ETag        string
	ContentType string
}

// Archive is a write-only object store for loan receipts.
type Archive interface {
	// Put uploads an object under the given key from the provided reader.
	Put(ctx context.Context, key string, r io.Reader, opt PutOptions) (ObjectInfo, error)
}
