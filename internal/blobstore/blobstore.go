// Package blobstore holds file content as opaque key/bytes pairs. Metadata
// stays in the relational store; only BlobKey crosses this boundary.
package blobstore

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("blob not found")

type Store interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}
