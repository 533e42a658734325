package cart

import (
	"context"
	"errors"
	"fmt"
)

var ErrUnknownAction = errors.New("unknown cart action")

type ActionKind int

const (
	ActionAdd ActionKind = iota + 1
	ActionRemove
	ActionChangeQuantity
	ActionClear
)

func (k ActionKind) String() string {
	switch k {
	case ActionAdd:
		return "add"
	case ActionRemove:
		return "remove"
	case ActionChangeQuantity:
		return "change_quantity"
	case ActionClear:
		return "clear"
	default:
		return fmt.Sprintf("ActionKind(%d)", int(k))
	}
}

type Action struct {
	Kind      ActionKind
	ProductID int
	Delta     int
}

func Add(productID int) Action    { return Action{Kind: ActionAdd, ProductID: productID} }
func Remove(productID int) Action { return Action{Kind: ActionRemove, ProductID: productID} }
func Clear() Action               { return Action{Kind: ActionClear} }

func ChangeQuantity(productID, delta int) Action {
	return Action{Kind: ActionChangeQuantity, ProductID: productID, Delta: delta}
}

type State struct {
	Items   []LineItem `json:"items"`
	Totals  Totals     `json:"totals"`
	Changed bool       `json:"-"`
}

func (s *Store) State() State {
	return State{Items: s.Items(), Totals: s.Totals()}
}

// Dispatch applies a to the cart and returns the resulting state.
func (s *Store) Dispatch(ctx context.Context, a Action) (State, error) {
	var (
		changed bool
		err     error
	)

	switch a.Kind {
	case ActionAdd:
		changed, err = s.Add(ctx, a.ProductID)
	case ActionRemove:
		changed, err = s.Remove(ctx, a.ProductID)
	case ActionChangeQuantity:
		changed, err = s.ChangeQuantity(ctx, a.ProductID, a.Delta)
	case ActionClear:
		changed, err = s.Clear(ctx)
	default:
		return s.State(), fmt.Errorf("%w: %s", ErrUnknownAction, a.Kind)
	}
	if err != nil {
		return s.State(), err
	}

	st := s.State()
	st.Changed = changed
	return st, nil
}
