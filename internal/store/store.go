// Package store defines the contract of the external real-time document
// store the hub reads from and writes to. The store is the single owner of
// all data; the hub only keeps transient copies rebuilt from snapshots.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

var (
	// ErrNotFound indicates that no record exists at the requested path.
	ErrNotFound = errors.New("record not found")
	// ErrClosed indicates the store or subscription has been shut down.
	ErrClosed = errors.New("store closed")
	// ErrInvalidPath indicates a path that does not name a record.
	ErrInvalidPath = errors.New("invalid record path")
)

// Snapshot is the full state of one collection, keyed by record id. Each
// delivery fully replaces the previous one; there is no incremental merge.
type Snapshot map[string]json.RawMessage

// Subscription is one live feed onto a collection. Updates fires immediately
// with the current state and again after every change. Cancellation is
// binary: Close stops delivery and releases the feed.
type Subscription interface {
	Updates() <-chan Snapshot
	Close() error
}

// Store is the client surface of the real-time document store. Record paths
// have the form "<collection>/<id>"; nested children such as
// "deviceHistory/<deviceId>/<entryId>" live in the collection named by the
// first segment. Writes are best-effort single attempts; the hub never
// retries.
type Store interface {
	// ReadOnce fetches a single record, or ErrNotFound.
	ReadOnce(ctx context.Context, path string) (json.RawMessage, error)
	// Write merge-updates individual fields of the record at path.
	Write(ctx context.Context, path string, fields map[string]any) error
	// WriteBatch applies several field updates below base atomically. Keys
	// are "<id>/<field>" relative paths.
	WriteBatch(ctx context.Context, base string, updates map[string]any) error
	// Create sets a full record, overwriting any existing one.
	Create(ctx context.Context, path string, record any) error
	// Append pushes a new child with a store-assigned key and returns it.
	Append(ctx context.Context, path string, record any) (string, error)
	// Delete removes the record at path together with every child below it.
	// Deleting a missing record is a no-op.
	Delete(ctx context.Context, path string) error
	// Subscribe opens a live feed onto a whole collection.
	Subscribe(ctx context.Context, collection string) (Subscription, error)
	// Close tears down all subscriptions and the underlying connection.
	Close() error
}

// SplitPath splits a record path into its collection and record key.
func SplitPath(path string) (collection, key string, err error) {
	i := strings.Index(path, "/")
	if i <= 0 || i == len(path)-1 {
		return "", "", ErrInvalidPath
	}
	return path[:i], path[i+1:], nil
}
