// Package store provides durable blob storage for proof artifacts.
package store

import "context"

// Object is a stored artifact payload.
type Object struct {
	Path        string
	Data        []byte
	ContentType string
}

// ObjectStore is the durable storage port for proof artifacts. Put must be
// all-or-nothing: a failed upload leaves no retrievable object behind.
type ObjectStore interface {
	Put(ctx context.Context, obj Object) error
	Get(ctx context.Context, path string) (*Object, error)
	// URL returns the public handle recorded on ledger entries.
	URL(path string) string
}
