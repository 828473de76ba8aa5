// Package storage persists application data as JSON documents in a
// key/value store.
//
// Layout:
//
//	users              -> []core.Profile
//	lastUserId         -> string (absent when nothing is selected)
//	expenses_<profile> -> []core.Record
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"expensebook/internal/core"
)

const (
	UsersKey      = "users"
	LastUserKey   = "lastUserId"
	recordsPrefix = "expenses_"
)

// RecordsKey returns the partition key holding a profile's records.
func RecordsKey(profileID string) string { return recordsPrefix + profileID }

// IsRecordsKey reports whether key is a record partition key.
func IsRecordsKey(key string) bool { return strings.HasPrefix(key, recordsPrefix) }

// KV is the persistence contract. Batch applies all mutations or none.
type KV interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Batch(ctx context.Context, muts ...Mutation) error
	Keys(ctx context.Context) ([]string, error)
	Close() error
}

// Mutation is a single write inside a Batch.
type Mutation struct {
	Key    string
	Value  []byte
	Delete bool
}

// Set returns a put mutation.
func Set(key string, value []byte) Mutation { return Mutation{Key: key, Value: value} }

// Remove returns a delete mutation.
func Remove(key string) Mutation { return Mutation{Key: key, Delete: true} }

// SetJSON encodes v and returns a put mutation.
func SetJSON(key string, v any) (Mutation, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return Mutation{}, fmt.Errorf("encode %s: %w", key, err)
	}
	return Set(key, b), nil
}

// LoadJSON decodes the value at key into v. found is false when the key is
// absent. Undecodable values are reported as core.ErrInvalidFormat.
func LoadJSON(ctx context.Context, kv KV, key string, v any) (found bool, err error) {
	b, found, err := kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("%w: read %s: %v", core.ErrStorageUnavailable, key, err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal(b, v); err != nil {
		return true, fmt.Errorf("%w: decode %s: %v", core.ErrInvalidFormat, key, err)
	}
	return true, nil
}

// Apply runs a batch and tags failures as core.ErrStorageUnavailable.
func Apply(ctx context.Context, kv KV, muts ...Mutation) error {
	if err := kv.Batch(ctx, muts...); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %v", core.ErrStorageUnavailable, err)
	}
	return nil
}
