package storefront_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"Livora/internal/catalog"
	"Livora/internal/session"
	"Livora/internal/storage"
	"Livora/internal/storefront"
)

func newStorefrontTS(t *testing.T, deps storefront.HTTPDeps) *httptest.Server {
	t.Helper()

	cat, err := catalog.Load(context.Background(), catalog.Sample())
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}

	svc := storefront.NewService(storefront.Deps{
		Catalog: cat,
		KV:      storage.NewMemKV(),
		Log:     zap.NewNop(),
	})

	deps.Log = zap.NewNop()
	deps.Service = "storefront"
	if deps.Tokens == nil {
		deps.Tokens = session.NewTokenMaker("test-secret", time.Hour)
	}

	ts := httptest.NewServer(storefront.NewHandler(&storefront.Server{Service: svc}, deps))
	t.Cleanup(ts.Close)
	return ts
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func do(t *testing.T, c *http.Client, method, url string, body any, out any) *http.Response {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return resp
}

type cartResult struct {
	Cart struct {
		Items []struct {
			ID       int    `json:"id"`
			Name     string `json:"name"`
			Quantity int    `json:"quantity"`
		} `json:"items"`
		Count int   `json:"count"`
		Total int64 `json:"total"`
		Empty bool  `json:"empty"`
	} `json:"cart"`
	Changed      bool `json:"changed"`
	Notification *struct {
		Message string `json:"message"`
	} `json:"notification"`
}

func TestStorefront_CartFlow(t *testing.T) {
	ts := newStorefrontTS(t, storefront.HTTPDeps{})
	c := newClient(t)

	var res cartResult
	if resp := do(t, c, http.MethodPost, ts.URL+"/cart/items/4", nil, &res); resp.StatusCode != http.StatusOK {
		t.Fatalf("add status=%d", resp.StatusCode)
	}
	if !res.Changed || res.Cart.Count != 1 || res.Cart.Total != 8999 {
		t.Fatalf("after add: %+v", res)
	}
	if res.Notification == nil || res.Notification.Message != "Ergonomic Office Chair added to cart!" {
		t.Fatalf("notification=%+v", res.Notification)
	}

	res = cartResult{}
	do(t, c, http.MethodPatch, ts.URL+"/cart/items/4", map[string]any{"delta": 1}, &res)
	if res.Cart.Count != 2 {
		t.Fatalf("after increase: %+v", res.Cart)
	}

	do(t, c, http.MethodPatch, ts.URL+"/cart/items/4", map[string]any{"delta": -1}, nil)
	res = cartResult{}
	do(t, c, http.MethodPatch, ts.URL+"/cart/items/4", map[string]any{"delta": -1}, &res)
	if !res.Cart.Empty || res.Cart.Count != 0 {
		t.Fatalf("after decreasing to zero: %+v", res.Cart)
	}

	res = cartResult{}
	if resp := do(t, c, http.MethodDelete, ts.URL+"/cart/items/2", nil, &res); resp.StatusCode != http.StatusOK {
		t.Fatalf("remove absent status=%d", resp.StatusCode)
	}
	if res.Changed {
		t.Fatalf("removing an absent item must not report a change")
	}
}

func TestStorefront_QuantityBounds(t *testing.T) {
	ts := newStorefrontTS(t, storefront.HTTPDeps{})
	c := newClient(t)

	do(t, c, http.MethodPost, ts.URL+"/cart/items/4", nil, nil)

	for _, delta := range []int64{math.MaxInt64, math.MaxInt64 / 2, math.MinInt64} {
		if resp := do(t, c, http.MethodPatch, ts.URL+"/cart/items/4", map[string]any{"delta": delta}, nil); resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("delta=%d status=%d want=400", delta, resp.StatusCode)
		}
	}

	var res cartResult
	do(t, c, http.MethodPatch, ts.URL+"/cart/items/4", map[string]any{"delta": 998}, &res)
	if res.Cart.Count != 999 || res.Cart.Total != 999*8999 {
		t.Fatalf("at limit: %+v", res.Cart)
	}

	if resp := do(t, c, http.MethodPost, ts.URL+"/cart/items/4", nil, nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("add past limit status=%d want=400", resp.StatusCode)
	}

	var cv struct {
		Count int   `json:"count"`
		Total int64 `json:"total"`
	}
	do(t, c, http.MethodGet, ts.URL+"/cart", nil, &cv)
	if cv.Count != 999 || cv.Total != 999*8999 {
		t.Fatalf("cart after rejected changes: %+v", cv)
	}
}

func TestStorefront_SessionsAreIsolated(t *testing.T) {
	ts := newStorefrontTS(t, storefront.HTTPDeps{})
	alice, bob := newClient(t), newClient(t)

	do(t, alice, http.MethodPost, ts.URL+"/cart/items/1", nil, nil)
	do(t, alice, http.MethodPost, ts.URL+"/cart/items/1", nil, nil)

	var cv struct {
		Count int `json:"count"`
	}
	do(t, alice, http.MethodGet, ts.URL+"/cart", nil, &cv)
	if cv.Count != 2 {
		t.Fatalf("alice count=%d", cv.Count)
	}

	cv.Count = -1
	do(t, bob, http.MethodGet, ts.URL+"/cart", nil, &cv)
	if cv.Count != 0 {
		t.Fatalf("bob count=%d", cv.Count)
	}
}

func TestStorefront_BearerTokenCarriesSession(t *testing.T) {
	ts := newStorefrontTS(t, storefront.HTTPDeps{})
	c := &http.Client{}

	resp := do(t, c, http.MethodPost, ts.URL+"/cart/items/3", nil, nil)
	tok := resp.Header.Get("X-Session-Token")
	if tok == "" {
		t.Fatalf("no session token issued")
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/cart", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	resp2, err := c.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp2.Body.Close()

	var cv struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(resp2.Body).Decode(&cv); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if cv.Count != 1 {
		t.Fatalf("count=%d", cv.Count)
	}
}

func TestStorefront_Checkout(t *testing.T) {
	ts := newStorefrontTS(t, storefront.HTTPDeps{})
	c := newClient(t)

	var e struct {
		Error string `json:"error"`
	}
	resp := do(t, c, http.MethodPost, ts.URL+"/checkout", nil, &e)
	if resp.StatusCode != http.StatusConflict || e.Error != "Your cart is empty!" {
		t.Fatalf("empty checkout status=%d error=%q", resp.StatusCode, e.Error)
	}

	do(t, c, http.MethodPost, ts.URL+"/cart/items/2", nil, nil)

	resp = do(t, c, http.MethodPost, ts.URL+"/checkout", nil, nil)
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("checkout status=%d", resp.StatusCode)
	}
	if loc := resp.Header.Get("Location"); loc != "/checkout.html" && loc != "checkout.html" {
		t.Fatalf("location=%q", loc)
	}
}

func TestStorefront_PageAndBadInput(t *testing.T) {
	ts := newStorefrontTS(t, storefront.HTTPDeps{})
	c := newClient(t)

	var v struct {
		ActiveTab string `json:"active_tab"`
		Products  []struct {
			ID         int    `json:"id"`
			PriceLabel string `json:"price_label"`
		} `json:"products"`
		WishlistCount int `json:"wishlist_count"`
	}
	if resp := do(t, c, http.MethodGet, ts.URL+"/storefront?tab=lowest-price", nil, &v); resp.StatusCode != http.StatusOK {
		t.Fatalf("page status=%d", resp.StatusCode)
	}
	if v.ActiveTab != "lowest-price" || len(v.Products) != 4 || v.Products[0].ID != 4 || v.Products[0].PriceLabel != "₹8,999" {
		t.Fatalf("page=%+v", v)
	}

	tests := []struct {
		method string
		path   string
		body   any
		want   int
	}{
		{http.MethodGet, "/storefront?tab=bogus", nil, http.StatusBadRequest},
		{http.MethodPost, "/cart/items/abc", nil, http.StatusBadRequest},
		{http.MethodPatch, "/cart/items/1", map[string]any{}, http.StatusBadRequest},
		{http.MethodPatch, "/cart/items/1", map[string]any{"qty": 1}, http.StatusBadRequest},
		{http.MethodGet, "/products?tab=bogus", nil, http.StatusBadRequest},
	}
	for _, tt := range tests {
		if resp := do(t, c, tt.method, ts.URL+tt.path, tt.body, nil); resp.StatusCode != tt.want {
			t.Fatalf("%s %s status=%d want=%d", tt.method, tt.path, resp.StatusCode, tt.want)
		}
	}
}

func TestStorefront_Wishlist(t *testing.T) {
	ts := newStorefrontTS(t, storefront.HTTPDeps{})
	c := newClient(t)

	var w struct {
		Count   int  `json:"count"`
		Changed bool `json:"changed"`
	}
	do(t, c, http.MethodPut, ts.URL+"/wishlist/items/1", nil, &w)
	if !w.Changed || w.Count != 1 {
		t.Fatalf("put: %+v", w)
	}
	do(t, c, http.MethodPut, ts.URL+"/wishlist/items/1", nil, &w)
	if w.Changed || w.Count != 1 {
		t.Fatalf("second put: %+v", w)
	}
	do(t, c, http.MethodDelete, ts.URL+"/wishlist/items/1", nil, &w)
	if w.Count != 0 {
		t.Fatalf("delete: %+v", w)
	}
}

func TestStorefront_SuggestionsRateLimited(t *testing.T) {
	ts := newStorefrontTS(t, storefront.HTTPDeps{SuggestLimiter: storefront.NewSuggestLimiter(2)})
	c := newClient(t)

	for i := 0; i < 2; i++ {
		if resp := do(t, c, http.MethodGet, ts.URL+"/search/suggestions?q=so", nil, nil); resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d status=%d", i, resp.StatusCode)
		}
	}
	if resp := do(t, c, http.MethodGet, ts.URL+"/search/suggestions?q=so", nil, nil); resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("status=%d want=429", resp.StatusCode)
	}
}

func TestStorefront_HealthAndMetrics(t *testing.T) {
	ts := newStorefrontTS(t, storefront.HTTPDeps{
		Registry:       prometheus.NewRegistry(),
		MetricsEnabled: true,
		MetricsToken:   "m",
	})
	c := &http.Client{}

	for _, p := range []string{"/healthz", "/readyz"} {
		if resp := do(t, c, http.MethodGet, ts.URL+p, nil, nil); resp.StatusCode != http.StatusOK {
			t.Fatalf("%s status=%d", p, resp.StatusCode)
		}
	}

	if resp := do(t, c, http.MethodGet, ts.URL+"/metrics", nil, nil); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("metrics without token status=%d", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/metrics", nil)
	req.Header.Set("Authorization", "Bearer m")
	resp, err := c.Do(req)
	if err != nil {
		t.Fatalf("do: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status=%d", resp.StatusCode)
	}
}
