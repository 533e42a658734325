package session

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"Livora/pkg/kit"
)

const CookieName = "livora_session"

type ctxKey string

const sessionKey ctxKey = "session"

func FromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sessionKey).(string)
	return v, ok && v != ""
}

func WithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionKey, id)
}

// Middleware resolves the shopper session from the cookie or a bearer token.
// A missing or invalid token gets a fresh session, returned as a cookie and
// in the X-Session-Token header. A valid token is re-issued so active
// sessions do not expire.
func Middleware(tm *TokenMaker, log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var (
				sid string
				tok string
				err error
			)

			if raw := tokenFromRequest(r); raw != "" {
				claims, perr := tm.Parse(raw)
				if perr == nil {
					sid = claims.SessionID
					tok, err = tm.Issue(sid)
				} else {
					log.Debug("session token rejected", zap.Error(perr))
				}
			}
			if sid == "" {
				tok, sid, err = tm.New()
			}
			if err != nil {
				log.Error("issue session token", zap.Error(err))
				kit.WriteError(w, r, http.StatusInternalServerError, "server error", nil)
				return
			}

			http.SetCookie(w, &http.Cookie{
				Name:     CookieName,
				Value:    tok,
				Path:     "/",
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
				MaxAge:   int(tm.ttl.Seconds()),
			})
			w.Header().Set("X-Session-Token", tok)

			kit.SetLogField(r.Context(), zap.String("session_id", sid))
			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), sid)))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if authz := r.Header.Get("Authorization"); strings.HasPrefix(authz, "Bearer ") {
		return strings.TrimPrefix(authz, "Bearer ")
	}
	if c, err := r.Cookie(CookieName); err == nil {
		return c.Value
	}
	return ""
}
