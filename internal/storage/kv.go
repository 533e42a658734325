// Package storage models the browser's local key/value storage: small
// documents addressed by key, read on startup and rewritten after every change.
package storage

import (
	"context"
	"errors"
)

const (
	CartKey     = "livoraCart"
	WishlistKey = "livoraWishlist"
)

var ErrCorrupt = errors.New("corrupt stored value")

type KV interface {
	// Get reports ok=false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

type namespaced struct {
	kv     KV
	prefix string
}

// Namespace scopes every key of kv under prefix, e.g. one shopper session.
func Namespace(kv KV, prefix string) KV {
	return &namespaced{kv: kv, prefix: prefix + ":"}
}

func (n *namespaced) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return n.kv.Get(ctx, n.prefix+key)
}

func (n *namespaced) Set(ctx context.Context, key string, value []byte) error {
	return n.kv.Set(ctx, n.prefix+key, value)
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	return n.kv.Delete(ctx, n.prefix+key)
}

func (n *namespaced) Ping(ctx context.Context) error {
	return n.kv.Ping(ctx)
}
