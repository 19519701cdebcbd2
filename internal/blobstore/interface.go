package blobstore

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrBlobNotFound is returned when a blob path no longer resolves on disk.
	ErrBlobNotFound = errors.New("blob not found")
	// ErrIO marks unexpected filesystem failures (permissions, disk full, ...).
	ErrIO = errors.New("blob io failure")
)

// BlobPutResult describes one persisted blob payload.
type BlobPutResult struct {
	Path      string
	SizeBytes int64
}

// BlobReader streams one stored blob.
type BlobReader struct {
	io.ReadCloser
	Path      string
	SizeBytes int64
}

// BlobStore is the byte-storage abstraction used by FileService.
type BlobStore interface {
	Put(ctx context.Context, dir, desiredName string, r io.Reader) (BlobPutResult, error)
	Open(ctx context.Context, path string) (*BlobReader, error)
	Remove(ctx context.Context, path string) error
}
