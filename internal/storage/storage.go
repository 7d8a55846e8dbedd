// Package storage is the durable key/value store that mirrors client state
// across restarts.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("storage: key not found")

type Storage interface {
	// GetItem returns ErrNotFound when the key is absent.
	GetItem(ctx context.Context, key string) (string, error)
	SetItem(ctx context.Context, key, value string) error
	// RemoveItem deletes the key. Removing an absent key is not an error.
	RemoveItem(ctx context.Context, key string) error
}

// LoadJSON decodes the value stored under key into v. It reports false
// without error when the key is absent.
func LoadJSON(ctx context.Context, s Storage, key string, v any) (bool, error) {
	raw, err := s.GetItem(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %q: %w", key, err)
	}
	if raw == "" {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("decode %q: %w", key, err)
	}
	return true, nil
}

func SaveJSON(ctx context.Context, s Storage, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	if err := s.SetItem(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	return nil
}
