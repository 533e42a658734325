package storage

import (
	"context"
	"encoding/json"
	"fmt"
)

// JSONDoc stores a single value of type T as JSON under one key.
type JSONDoc[T any] struct {
	KV  KV
	Key string
}

func NewJSONDoc[T any](kv KV, key string) *JSONDoc[T] {
	return &JSONDoc[T]{KV: kv, Key: key}
}

// Load returns the zero T when the key is absent and ErrCorrupt when the
// stored bytes do not decode.
func (d *JSONDoc[T]) Load(ctx context.Context) (T, error) {
	var v T

	raw, ok, err := d.KV.Get(ctx, d.Key)
	if err != nil {
		return v, fmt.Errorf("load %s: %w", d.Key, err)
	}
	if !ok {
		return v, nil
	}

	if err := json.Unmarshal(raw, &v); err != nil {
		var zero T
		return zero, fmt.Errorf("%w: %s: %v", ErrCorrupt, d.Key, err)
	}
	return v, nil
}

func (d *JSONDoc[T]) Save(ctx context.Context, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", d.Key, err)
	}
	if err := d.KV.Set(ctx, d.Key, raw); err != nil {
		return fmt.Errorf("save %s: %w", d.Key, err)
	}
	return nil
}

func (d *JSONDoc[T]) Delete(ctx context.Context) error {
	if err := d.KV.Delete(ctx, d.Key); err != nil {
		return fmt.Errorf("delete %s: %w", d.Key, err)
	}
	return nil
}
