// Package wishlist keeps the shopper's saved product ids.
//
// Legacy data is loaded as-is, duplicates included, so Size matches what the
// header counter showed before. New entries are only added when absent.
package wishlist

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"Livora/internal/catalog"
)

type Persister interface {
	Load(ctx context.Context) ([]int, error)
	Save(ctx context.Context, ids []int) error
}

type Store struct {
	catalog *catalog.Catalog
	persist Persister
	log     *zap.Logger

	ids []int
}

type Option func(*Store)

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithCatalog makes Add ignore ids that are not in c.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Store) { s.catalog = c }
}

func Open(ctx context.Context, p Persister, opts ...Option) *Store {
	s := &Store{persist: p, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}

	ids, err := p.Load(ctx)
	if err != nil {
		s.log.Warn("wishlist load failed, starting empty", zap.Error(err))
		ids = nil
	}
	s.ids = append([]int{}, ids...)

	return s
}

func (s *Store) Size() int { return len(s.ids) }

func (s *Store) IDs() []int { return append([]int{}, s.ids...) }

func (s *Store) Contains(productID int) bool {
	for _, id := range s.ids {
		if id == productID {
			return true
		}
	}
	return false
}

func (s *Store) Add(ctx context.Context, productID int) (bool, error) {
	if s.Contains(productID) {
		return false, nil
	}
	if s.catalog != nil {
		if _, ok := s.catalog.FindByID(productID); !ok {
			return false, nil
		}
	}

	next := append(s.IDs(), productID)
	if err := s.commit(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

// Remove drops every occurrence of productID.
func (s *Store) Remove(ctx context.Context, productID int) (bool, error) {
	if !s.Contains(productID) {
		return false, nil
	}

	next := make([]int, 0, len(s.ids))
	for _, id := range s.ids {
		if id != productID {
			next = append(next, id)
		}
	}

	if err := s.commit(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) commit(ctx context.Context, next []int) error {
	if err := s.persist.Save(ctx, next); err != nil {
		return fmt.Errorf("persist wishlist: %w", err)
	}
	s.ids = next
	return nil
}
