// Package blob provides the durable key/blob capability the expense store
// persists through: get/set a string value by key, plus a monotonic
// version used for cross-process change detection.
package blob

import "context"

type Storage interface {
	// Get returns the stored value for key. The second return is false
	// when the key has never been written; that is not an error.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set overwrites the value for key unconditionally (no compare-and-swap:
	// last writer wins across all processes sharing the backend).
	Set(ctx context.Context, key, value string) error

	// Version returns a value that changes on every successful Set for the
	// key. Absent keys report 0.
	Version(ctx context.Context, key string) (int64, error)
}
