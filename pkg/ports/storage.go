package ports

import "context"

// Storage is a string key/value document store.
// GetItem reports found=false (and no error) for a missing key.
type Storage interface {
	GetItem(ctx context.Context, key string) (value string, found bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}
