package repository

import "context"

// SlotRepository handles named key/value slots. Values are opaque strings;
// callers store JSON in them.
type SlotRepository interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Put(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
