package metadata

import (
	"context"
	"time"
)

// Entry is one row of the metadata table. UpdatedAt has second precision.
type Entry struct {
	Key       string
	Value     []byte
	UpdatedAt time.Time
}

// Repository is the client-local key/value table. Get returns (nil, nil)
// for an absent key; Delete of an absent key is not an error.
type Repository interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
