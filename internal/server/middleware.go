package server

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/iamgilwell/hemat/internal/access"
	"github.com/iamgilwell/hemat/internal/notification"
)

type ctxKey int

const actorKey ctxKey = iota

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r)

		if rec.status == 0 {
			rec.status = http.StatusOK
		}
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Int("bytes", rec.bytes),
			zap.Duration("duration", time.Since(start)))
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				s.log.Error("panic in handler", zap.Any("panic", v), zap.String("path", r.URL.Path))
				s.writeError(w, "INTERNAL_ERROR", "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// admin guards a handler with bearer-token authorization.
func (s *Server) admin(write bool, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := access.BearerToken(r.Header.Get("Authorization"))

		var (
			decision = access.Unauthenticated
			reason   = "admin access is not configured"
		)
		if s.deps.Access != nil {
			decision, reason = s.deps.Access.Authorize(token, write)
		}

		switch decision {
		case access.Allowed:
			ctx := context.WithValue(r.Context(), actorKey, access.Fingerprint(token))
			next(w, r.WithContext(ctx))
			return
		case access.Forbidden:
			s.denied(r, token, reason)
			s.writeError(w, "FORBIDDEN", reason, http.StatusForbidden)
		default:
			s.denied(r, token, reason)
			w.Header().Set("WWW-Authenticate", `Bearer realm="hemat"`)
			s.writeError(w, "UNAUTHORIZED", reason, http.StatusUnauthorized)
		}
	}
}

func (s *Server) denied(r *http.Request, token, reason string) {
	s.log.Warn("admin access denied",
		zap.String("path", r.URL.Path),
		zap.String("actor", access.Fingerprint(token)),
		zap.String("reason", reason))
	if s.deps.Auditor != nil {
		_ = s.deps.Auditor.LogEvent(notification.EventAccessDenied, r.Method+" "+r.URL.Path+": "+reason)
	}
}

func actor(r *http.Request) string {
	if v, ok := r.Context().Value(actorKey).(string); ok {
		return v
	}
	return "anonymous"
}
