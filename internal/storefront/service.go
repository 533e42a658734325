package storefront

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"Livora/internal/cart"
	"Livora/internal/catalog"
	"Livora/internal/notify"
	"Livora/internal/storage"
	"Livora/internal/wishlist"
)

var ErrEmptyCart = errors.New("cart is empty")

const (
	DefaultCheckoutPath = "checkout.html"
	EmptyCartWarning    = "Your cart is empty!"
)

type Deps struct {
	Catalog      *catalog.Catalog
	KV           storage.KV
	Notes        *notify.Center
	Log          *zap.Logger
	Metrics      *Metrics
	CheckoutPath string
}

// Service runs storefront actions for one shopper session at a time. State is
// read back from storage on every call, like a page load, and every change is
// written through before the call returns.
type Service struct {
	catalog      *catalog.Catalog
	kv           storage.KV
	notes        *notify.Center
	log          *zap.Logger
	metrics      *Metrics
	checkoutPath string

	locks *keyedMutex
}

func NewService(d Deps) *Service {
	s := &Service{
		catalog:      d.Catalog,
		kv:           d.KV,
		notes:        d.Notes,
		log:          d.Log,
		metrics:      d.Metrics,
		checkoutPath: d.CheckoutPath,
		locks:        newKeyedMutex(),
	}
	if s.notes == nil {
		s.notes = notify.NewCenter()
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if s.checkoutPath == "" {
		s.checkoutPath = DefaultCheckoutPath
	}
	return s
}

func (s *Service) Catalog() *catalog.Catalog { return s.catalog }

func (s *Service) Ping(ctx context.Context) error { return s.kv.Ping(ctx) }

type shopper struct {
	id       string
	cart     *cart.Store
	wishlist *wishlist.Store
}

func (s *Service) open(ctx context.Context, sid string, notifier cart.Notifier) *shopper {
	ns := storage.Namespace(s.kv, "session:"+sid)
	log := s.log.With(zap.String("session_id", sid))

	opts := []cart.Option{cart.WithLogger(log)}
	if notifier != nil {
		opts = append(opts, cart.WithNotifier(notifier))
	}

	return &shopper{
		id:   sid,
		cart: cart.Open(ctx, s.catalog, storage.NewJSONDoc[[]cart.LineItem](ns, storage.CartKey), opts...),
		wishlist: wishlist.Open(ctx, storage.NewJSONDoc[[]int](ns, storage.WishlistKey),
			wishlist.WithLogger(log), wishlist.WithCatalog(s.catalog)),
	}
}

func (s *Service) state(sh *shopper, tab catalog.TabMode) State {
	return State{
		Tab:           tab,
		Products:      s.catalog.Filter(tab),
		Cart:          sh.cart.State(),
		WishlistCount: sh.wishlist.Size(),
		Notifications: s.notes.Active(sh.id),
	}
}

// Page renders the whole storefront for the session with tab active.
func (s *Service) Page(ctx context.Context, sid string, tab catalog.TabMode) View {
	unlock := s.locks.Lock(sid)
	defer unlock()

	return Render(s.state(s.open(ctx, sid, nil), tab))
}

func (s *Service) Cart(ctx context.Context, sid string) CartView {
	unlock := s.locks.Lock(sid)
	defer unlock()

	return RenderCart(s.open(ctx, sid, nil).cart.State())
}

type CartResult struct {
	Cart         CartView              `json:"cart"`
	Changed      bool                  `json:"changed"`
	Notification *notify.Notification `json:"notification,omitempty"`
}

// Dispatch applies a cart action. Unknown product ids are a silent no-op and
// come back with Changed=false.
func (s *Service) Dispatch(ctx context.Context, sid string, a cart.Action) (CartResult, error) {
	unlock := s.locks.Lock(sid)
	defer unlock()

	var raised *notify.Notification
	notifier := cart.NotifierFunc(func(msg string) {
		n := s.notes.Notify(sid, msg)
		raised = &n
	})

	sh := s.open(ctx, sid, notifier)
	st, err := sh.cart.Dispatch(ctx, a)
	s.metrics.cartAction(a.Kind, st.Changed, err)
	if err != nil {
		return CartResult{}, fmt.Errorf("cart %s: %w", a.Kind, err)
	}

	if st.Changed {
		s.log.Info("cart updated",
			zap.String("session_id", sid),
			zap.Stringer("action", a.Kind),
			zap.Int("product_id", a.ProductID),
			zap.Int("items", st.Totals.Count),
		)
	}

	return CartResult{Cart: RenderCart(st), Changed: st.Changed, Notification: raised}, nil
}

type WishlistView struct {
	Count   int   `json:"count"`
	IDs     []int `json:"ids"`
	Changed bool  `json:"changed"`
}

func (s *Service) Wishlist(ctx context.Context, sid string) WishlistView {
	unlock := s.locks.Lock(sid)
	defer unlock()

	w := s.open(ctx, sid, nil).wishlist
	return WishlistView{Count: w.Size(), IDs: w.IDs()}
}

// SetWishlisted adds or removes productID from the wishlist.
func (s *Service) SetWishlisted(ctx context.Context, sid string, productID int, on bool) (WishlistView, error) {
	unlock := s.locks.Lock(sid)
	defer unlock()

	w := s.open(ctx, sid, nil).wishlist

	var (
		changed bool
		err     error
	)
	if on {
		changed, err = w.Add(ctx, productID)
	} else {
		changed, err = w.Remove(ctx, productID)
	}
	if err != nil {
		return WishlistView{}, err
	}
	return WishlistView{Count: w.Size(), IDs: w.IDs(), Changed: changed}, nil
}

func (s *Service) Notifications(sid string) []notify.Notification {
	return s.notes.Active(sid)
}

// Checkout returns where to send the shopper, or ErrEmptyCart. The cart is
// left as it is.
func (s *Service) Checkout(ctx context.Context, sid string) (string, error) {
	unlock := s.locks.Lock(sid)
	defer unlock()

	c := s.open(ctx, sid, nil).cart
	if c.Empty() {
		s.metrics.checkout(false)
		return "", ErrEmptyCart
	}

	s.metrics.checkout(true)
	s.log.Info("checkout redirect",
		zap.String("session_id", sid),
		zap.Int("items", c.Totals().Count),
		zap.Int64("total", c.Totals().Price),
	)
	return s.checkoutPath, nil
}
