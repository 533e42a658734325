package storefront

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"Livora/internal/cart"
	"Livora/internal/catalog"
	"Livora/internal/notify"
)

const (
	currencySymbol   = "₹"
	emptyCartMessage = "Your cart is empty"
)

var printer = message.NewPrinter(language.English)

// State is everything the page shows. Render turns it into a View and
// depends on nothing else.
type State struct {
	Tab           catalog.TabMode
	Products      []catalog.Product
	Cart          cart.State
	WishlistCount int
	Notifications []notify.Notification
}

type View struct {
	ActiveTab     catalog.TabMode       `json:"active_tab"`
	Products      []ProductCard         `json:"products"`
	Cart          CartView              `json:"cart"`
	WishlistCount int                   `json:"wishlist_count"`
	Notifications []notify.Notification `json:"notifications"`
}

type ProductCard struct {
	catalog.Product
	PriceLabel string `json:"price_label"`
}

type CartLine struct {
	cart.LineItem
	PriceLabel string `json:"price_label"`
}

type CartView struct {
	Items        []CartLine `json:"items"`
	Count        int        `json:"count"`
	Total        int64      `json:"total"`
	TotalLabel   string     `json:"total_label"`
	Empty        bool       `json:"empty"`
	EmptyMessage string     `json:"empty_message,omitempty"`
}

func Render(st State) View {
	cards := make([]ProductCard, 0, len(st.Products))
	for _, p := range st.Products {
		cards = append(cards, ProductCard{Product: p, PriceLabel: FormatPrice(p.Price)})
	}

	notes := st.Notifications
	if notes == nil {
		notes = []notify.Notification{}
	}

	return View{
		ActiveTab:     st.Tab,
		Products:      cards,
		Cart:          RenderCart(st.Cart),
		WishlistCount: st.WishlistCount,
		Notifications: notes,
	}
}

func RenderCart(st cart.State) CartView {
	v := CartView{
		Items:      make([]CartLine, 0, len(st.Items)),
		Count:      st.Totals.Count,
		Total:      st.Totals.Price,
		TotalLabel: FormatPrice(st.Totals.Price),
		Empty:      len(st.Items) == 0,
	}
	if v.Empty {
		v.EmptyMessage = emptyCartMessage
	}
	for _, it := range st.Items {
		v.Items = append(v.Items, CartLine{LineItem: it, PriceLabel: FormatPrice(it.Price)})
	}
	return v
}

// FormatPrice renders whole rupees with thousands separators, e.g. ₹24,999.
func FormatPrice(price int64) string {
	return currencySymbol + printer.Sprintf("%d", price)
}
