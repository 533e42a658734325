package cart

import (
	"context"
	"errors"

	"Livora/internal/catalog"
)

// MaxQuantity caps a single line item.
const MaxQuantity = 999

var ErrQuantityLimit = errors.New("quantity limit exceeded")

// LineItem is a snapshot of the product taken when it was first added,
// plus a quantity. It encodes flat: {"id":..,"name":..,..,"quantity":n}.
type LineItem struct {
	catalog.Product
	Quantity int `json:"quantity"`
}

type Totals struct {
	Count int   `json:"count"`
	Price int64 `json:"price"`
}

// Persister is the durable copy of the cart. Load may return storage.ErrCorrupt;
// the store treats any Load error as an empty cart. Delete removes the stored
// cart altogether.
type Persister interface {
	Load(ctx context.Context) ([]LineItem, error)
	Save(ctx context.Context, items []LineItem) error
	Delete(ctx context.Context) error
}

type Notifier interface {
	Notify(msg string)
}

type NotifierFunc func(msg string)

func (f NotifierFunc) Notify(msg string) { f(msg) }

func totalsOf(items []LineItem) Totals {
	var t Totals
	for _, it := range items {
		t.Count += it.Quantity
		t.Price += it.Price * int64(it.Quantity)
	}
	return t
}

func indexOf(items []LineItem, productID int) int {
	for i := range items {
		if items[i].ID == productID {
			return i
		}
	}
	return -1
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	for i, it := range items {
		out[i] = it
		if it.Tags != nil {
			out[i].Tags = append([]string(nil), it.Tags...)
		}
	}
	return out
}
