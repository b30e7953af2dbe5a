package httpserver

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/cosmetica/internal/domain"
)

type ctxKey int

const principalKey ctxKey = iota

func principalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey).(domain.Principal)
	return p, ok
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		ev := log.Info()
		switch {
		case ww.Status() >= 500:
			ev = log.Error()
		case ww.Status() >= 400:
			ev = log.Debug()
		}
		logRequest(ev, r, ww, time.Since(start))
	})
}

func logRequest(ev *zerolog.Event, r *http.Request, ww middleware.WrapResponseWriter, d time.Duration) {
	ev.Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", ww.Status()).
		Int("bytes", ww.BytesWritten()).
		Dur("duration", d).
		Str("request_id", middleware.GetReqID(r.Context())).
		Msg("http")
}

// authenticate attaches the principal of a valid bearer token. Requests
// without a token pass through anonymous; a bad token is rejected.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if h == "" {
			next.ServeHTTP(w, r)
			return
		}
		raw, ok := strings.CutPrefix(h, "Bearer ")
		if !ok || s.Tokens == nil {
			writeError(w, http.StatusUnauthorized, "invalid authorization header")
			return
		}
		p, err := s.Tokens.Verify(strings.TrimSpace(raw))
		if err != nil {
			log.Debug().Err(err).Msg("token rejected")
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey, p)))
	})
}

func (s *Server) requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := principalFrom(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := principalFrom(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		if !p.IsAdmin() {
			writeError(w, http.StatusForbidden, "admin only")
			return
		}
		next.ServeHTTP(w, r)
	})
}
