package storage

import "context"

// Store is the key-value persistence contract. Values are opaque JSON blobs.
// Read-modify-write sequences against a Store are not atomic — concurrent
// writers to the same key race and the last Set wins.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}
