package kit

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

func Recoverer(next http.Handler) http.Handler {
	return middleware.Recoverer(next)
}

type ctxKey string

const logFieldsKey ctxKey = "log_fields"

type logFields struct {
	mu     sync.Mutex
	fields []zap.Field
}

// SetLogField attaches f to the access log line of the current request.
// It is a no-op outside the Logging middleware.
func SetLogField(ctx context.Context, f zap.Field) {
	lf, ok := ctx.Value(logFieldsKey).(*logFields)
	if !ok {
		return
	}
	lf.mu.Lock()
	lf.fields = append(lf.fields, f)
	lf.mu.Unlock()
}

func Logging(log *zap.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			lf := &logFields{}
			next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), logFieldsKey, lf)))

			fields := []zap.Field{
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote", r.RemoteAddr),
			}

			lf.mu.Lock()
			fields = append(fields, lf.fields...)
			lf.mu.Unlock()

			log.Info("request", fields...)
		})
	}
}
