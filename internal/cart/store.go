package cart

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"Livora/internal/catalog"
)

// Store holds one shopper's cart. Every mutation is written through to the
// Persister before it becomes visible, so a failed save leaves both copies
// unchanged.
//
// A Store is not safe for concurrent use; callers serialize access per cart.
type Store struct {
	catalog *catalog.Catalog
	persist Persister
	notify  Notifier
	log     *zap.Logger

	items []LineItem
}

type Option func(*Store)

func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notify = n }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

// Open loads the persisted cart. Missing or unreadable data gives an empty
// cart; the error is logged and never returned. When loading had to repair the
// data, the repaired cart is written back.
func Open(ctx context.Context, cat *catalog.Catalog, p Persister, opts ...Option) *Store {
	s := &Store{
		catalog: cat,
		persist: p,
		notify:  NotifierFunc(func(string) {}),
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}

	items, err := p.Load(ctx)
	if err != nil {
		s.log.Warn("cart load failed, starting empty", zap.Error(err))
		s.items = []LineItem{}
		return s
	}

	var repaired bool
	s.items, repaired = normalize(items)
	if repaired {
		if err := p.Save(ctx, s.items); err != nil {
			s.log.Warn("cart repair not saved", zap.Error(err))
		}
	}

	return s
}

// normalize drops entries that cannot be valid line items, merges duplicate
// product ids into the first occurrence and caps quantities at MaxQuantity.
func normalize(items []LineItem) ([]LineItem, bool) {
	out := make([]LineItem, 0, len(items))
	repaired := false

	for _, it := range items {
		if it.ID <= 0 || it.Quantity <= 0 {
			repaired = true
			continue
		}
		if it.Quantity > MaxQuantity {
			it.Quantity = MaxQuantity
			repaired = true
		}
		if i := indexOf(out, it.ID); i >= 0 {
			out[i].Quantity = min(out[i].Quantity+it.Quantity, MaxQuantity)
			repaired = true
			continue
		}
		out = append(out, it)
	}
	return out, repaired
}

func (s *Store) Items() []LineItem { return cloneItems(s.items) }

func (s *Store) Len() int { return len(s.items) }

func (s *Store) Empty() bool { return len(s.items) == 0 }

// Totals is recomputed on every call.
func (s *Store) Totals() Totals { return totalsOf(s.items) }

// Add puts one more unit of productID in the cart. Unknown products are
// ignored and report changed=false. A line already at MaxQuantity gives
// ErrQuantityLimit.
func (s *Store) Add(ctx context.Context, productID int) (bool, error) {
	p, ok := s.catalog.FindByID(productID)
	if !ok {
		s.log.Debug("add to cart: unknown product", zap.Int("product_id", productID))
		return false, nil
	}

	next := cloneItems(s.items)
	if i := indexOf(next, productID); i >= 0 {
		if next[i].Quantity >= MaxQuantity {
			return false, ErrQuantityLimit
		}
		next[i].Quantity++
	} else {
		next = append(next, LineItem{Product: p, Quantity: 1})
	}

	if err := s.commit(ctx, next); err != nil {
		return false, err
	}

	s.notify.Notify(fmt.Sprintf("%s added to cart!", p.Name))
	return true, nil
}

func (s *Store) Remove(ctx context.Context, productID int) (bool, error) {
	i := indexOf(s.items, productID)
	if i < 0 {
		return false, nil
	}

	next := make([]LineItem, 0, len(s.items)-1)
	next = append(next, cloneItems(s.items[:i])...)
	next = append(next, cloneItems(s.items[i+1:])...)

	if err := s.commit(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

// ChangeQuantity adds delta to the line item's quantity and removes the line
// once it reaches zero or below. Going past MaxQuantity gives ErrQuantityLimit
// and leaves the cart as it was.
func (s *Store) ChangeQuantity(ctx context.Context, productID, delta int) (bool, error) {
	i := indexOf(s.items, productID)
	if i < 0 {
		return false, nil
	}

	cur := s.items[i].Quantity
	if delta > MaxQuantity-cur {
		return false, ErrQuantityLimit
	}

	qty := cur + delta
	if qty <= 0 {
		return s.Remove(ctx, productID)
	}
	if delta == 0 {
		return false, nil
	}

	next := cloneItems(s.items)
	next[i].Quantity = qty

	if err := s.commit(ctx, next); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Clear(ctx context.Context) (bool, error) {
	if len(s.items) == 0 {
		return false, nil
	}
	if err := s.persist.Delete(ctx); err != nil {
		return false, fmt.Errorf("clear cart: %w", err)
	}
	s.items = []LineItem{}
	return true, nil
}

func (s *Store) commit(ctx context.Context, next []LineItem) error {
	if err := s.persist.Save(ctx, next); err != nil {
		return fmt.Errorf("persist cart: %w", err)
	}
	s.items = next
	return nil
}
