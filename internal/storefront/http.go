package storefront

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Livora/internal/cart"
	"Livora/internal/catalog"
	"Livora/internal/session"
	"Livora/pkg/kit"
)

const maxBodyBytes = 1 << 10

type Server struct {
	Service *Service
	Log     *zap.Logger
}

type quantityReq struct {
	Delta *int `json:"delta"`
}

func (s *Server) Register(r chi.Router) {
	r.Get("/storefront", s.page)

	r.Route("/cart", func(cr chi.Router) {
		cr.Get("/", s.getCart)
		cr.Delete("/", s.clearCart)
		cr.Post("/items/{id}", s.addItem)
		cr.Patch("/items/{id}", s.changeQuantity)
		cr.Delete("/items/{id}", s.removeItem)
	})

	r.Route("/wishlist", func(wr chi.Router) {
		wr.Get("/", s.getWishlist)
		wr.Put("/items/{id}", s.wishlistItem(true))
		wr.Delete("/items/{id}", s.wishlistItem(false))
	})

	r.Get("/notifications", s.notifications)
	r.Post("/checkout", s.checkout)
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 1*time.Second)
	defer cancel()

	if err := s.Service.Ping(ctx); err != nil {
		s.Log.Warn("readyz failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (s *Server) page(w http.ResponseWriter, r *http.Request) {
	sid, ok := s.sessionOrFail(w, r)
	if !ok {
		return
	}

	tab, err := catalog.ParseTabMode(r.URL.Query().Get("tab"))
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "unknown tab", map[string]any{"tab": r.URL.Query().Get("tab")})
		return
	}

	kit.WriteJSON(w, http.StatusOK, s.Service.Page(r.Context(), sid, tab))
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	sid, ok := s.sessionOrFail(w, r)
	if !ok {
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.Service.Cart(r.Context(), sid))
}

func (s *Server) addItem(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDOrFail(w, r)
	if !ok {
		return
	}
	s.dispatch(w, r, cart.Add(id))
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDOrFail(w, r)
	if !ok {
		return
	}
	s.dispatch(w, r, cart.Remove(id))
}

func (s *Server) clearCart(w http.ResponseWriter, r *http.Request) {
	s.dispatch(w, r, cart.Clear())
}

func (s *Server) changeQuantity(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDOrFail(w, r)
	if !ok {
		return
	}

	var req quantityReq
	if err := kit.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad json", nil)
		return
	}
	if req.Delta == nil {
		kit.WriteError(w, r, http.StatusBadRequest, "delta required", nil)
		return
	}
	if d := *req.Delta; d > cart.MaxQuantity || d < -cart.MaxQuantity {
		kit.WriteError(w, r, http.StatusBadRequest, "delta out of range", map[string]any{"max": cart.MaxQuantity})
		return
	}

	s.dispatch(w, r, cart.ChangeQuantity(id, *req.Delta))
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, a cart.Action) {
	sid, ok := s.sessionOrFail(w, r)
	if !ok {
		return
	}

	res, err := s.Service.Dispatch(r.Context(), sid, a)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	kit.WriteJSON(w, http.StatusOK, res)
}

func (s *Server) getWishlist(w http.ResponseWriter, r *http.Request) {
	sid, ok := s.sessionOrFail(w, r)
	if !ok {
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.Service.Wishlist(r.Context(), sid))
}

func (s *Server) wishlistItem(on bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := productIDOrFail(w, r)
		if !ok {
			return
		}
		sid, ok := s.sessionOrFail(w, r)
		if !ok {
			return
		}

		v, err := s.Service.SetWishlisted(r.Context(), sid, id, on)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		kit.WriteJSON(w, http.StatusOK, v)
	}
}

func (s *Server) notifications(w http.ResponseWriter, r *http.Request) {
	sid, ok := s.sessionOrFail(w, r)
	if !ok {
		return
	}
	kit.WriteJSON(w, http.StatusOK, s.Service.Notifications(sid))
}

func (s *Server) checkout(w http.ResponseWriter, r *http.Request) {
	sid, ok := s.sessionOrFail(w, r)
	if !ok {
		return
	}

	loc, err := s.Service.Checkout(r.Context(), sid)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	http.Redirect(w, r, loc, http.StatusSeeOther)
}

func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrEmptyCart):
		kit.WriteError(w, r, http.StatusConflict, EmptyCartWarning, nil)
	case errors.Is(err, cart.ErrUnknownAction):
		kit.WriteError(w, r, http.StatusBadRequest, "unknown action", nil)
	case errors.Is(err, cart.ErrQuantityLimit):
		kit.WriteError(w, r, http.StatusBadRequest, "quantity limit exceeded", map[string]any{"max": cart.MaxQuantity})
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		kit.WriteError(w, r, http.StatusGatewayTimeout, "timeout", nil)
	default:
		s.Log.Error("storefront action failed", zap.Error(err))
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
	}
}

func (s *Server) sessionOrFail(w http.ResponseWriter, r *http.Request) (string, bool) {
	sid, ok := session.FromContext(r.Context())
	if !ok {
		kit.WriteError(w, r, http.StatusUnauthorized, "no session", nil)
		return "", false
	}
	return sid, true
}

func productIDOrFail(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad id", map[string]any{"id": raw})
		return 0, false
	}
	return id, true
}
