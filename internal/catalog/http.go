package catalog

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"Livora/pkg/kit"
)

type Server struct {
	Catalog *Catalog
	Log     *zap.Logger

	// SuggestLimit, when set, wraps the suggestion route.
	SuggestLimit func(http.Handler) http.Handler
}

type productsResp struct {
	Tab      TabMode   `json:"tab"`
	Products []Product `json:"products"`
}

func (s *Server) Register(r chi.Router) {
	r.Get("/products", s.list)
	r.Get("/products/{id}", s.get)

	if s.SuggestLimit != nil {
		r.With(s.SuggestLimit).Get("/search/suggestions", s.suggest)
	} else {
		r.Get("/search/suggestions", s.suggest)
	}
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	tab, err := ParseTabMode(r.URL.Query().Get("tab"))
	if err != nil {
		if errors.Is(err, ErrUnknownTab) {
			kit.WriteError(w, r, http.StatusBadRequest, "unknown tab", map[string]any{
				"tab":     r.URL.Query().Get("tab"),
				"allowed": []string{TabAll.String(), TabLowestPrice.String(), TabLastChance.String()},
			})
			return
		}
		kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
		return
	}

	kit.WriteJSON(w, http.StatusOK, productsResp{Tab: tab, Products: s.Catalog.Filter(tab)})
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")

	id, err := strconv.Atoi(raw)
	if err != nil {
		kit.WriteError(w, r, http.StatusBadRequest, "bad id", map[string]any{"id": raw})
		return
	}

	p, ok := s.Catalog.FindByID(id)
	if !ok {
		if s.Log != nil {
			s.Log.Debug("product lookup miss", zap.Int("id", id))
		}
		kit.WriteError(w, r, http.StatusNotFound, "not found", map[string]any{"id": id})
		return
	}
	kit.WriteJSON(w, http.StatusOK, p)
}

func (s *Server) suggest(w http.ResponseWriter, r *http.Request) {
	kit.WriteJSON(w, http.StatusOK, s.Catalog.Suggestions(r.URL.Query().Get("q")))
}
