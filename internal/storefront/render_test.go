package storefront

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Livora/internal/cart"
	"Livora/internal/catalog"
)

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "₹24,999", FormatPrice(24999))
	assert.Equal(t, "₹999", FormatPrice(999))
	assert.Equal(t, "₹1,234,567", FormatPrice(1234567))
}

func TestRender_EmptyCart(t *testing.T) {
	v := Render(State{Tab: catalog.TabAll})

	assert.True(t, v.Cart.Empty)
	assert.Equal(t, "Your cart is empty", v.Cart.EmptyMessage)
	assert.Equal(t, "₹0", v.Cart.TotalLabel)
	assert.NotNil(t, v.Products)
	assert.NotNil(t, v.Notifications)
}

func TestRender_CartAndProducts(t *testing.T) {
	chair := catalog.Product{ID: 4, Name: "Ergonomic Office Chair", Price: 8999, Stock: 20}
	sofa := catalog.Product{ID: 1, Name: "Modern 3-Seater Sofa", Price: 24999, Stock: 15}

	st := State{
		Tab:      catalog.TabLowestPrice,
		Products: []catalog.Product{chair, sofa},
		Cart: cart.State{
			Items:  []cart.LineItem{{Product: sofa, Quantity: 2}},
			Totals: cart.Totals{Count: 2, Price: 49998},
		},
		WishlistCount: 3,
	}

	v := Render(st)

	require.Len(t, v.Products, 2)
	assert.Equal(t, "₹8,999", v.Products[0].PriceLabel)
	assert.Equal(t, catalog.TabLowestPrice, v.ActiveTab)
	assert.False(t, v.Cart.Empty)
	assert.Empty(t, v.Cart.EmptyMessage)
	assert.Equal(t, 2, v.Cart.Count)
	assert.Equal(t, "₹49,998", v.Cart.TotalLabel)
	require.Len(t, v.Cart.Items, 1)
	assert.Equal(t, "₹24,999", v.Cart.Items[0].PriceLabel)
	assert.Equal(t, 3, v.WishlistCount)

	// pure: same input, same output
	assert.Equal(t, v, Render(st))
}
