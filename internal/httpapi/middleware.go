// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 QuestBoard Contributors

package httpapi

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/questboard/questboard/internal/auth"
	"github.com/questboard/questboard/internal/observability"
)

// requestIDHeader is set on every response so clients can correlate
// log entries with failed calls.
const requestIDHeader = "X-Request-Id"

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// RequireRole authorizes requests with the act cookie for one role. The
// token must verify against that role's access secret and carry a subject
// that parses as an account id. Any failure yields a bare 401 so callers
// learn nothing about which check tripped.
func RequireRole(role auth.Role, secrets auth.Secrets) Middleware {
	pair, pairErr := secrets.For(role)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(accessCookie)
			if pairErr != nil || err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := auth.VerifyToken(pair.Secret, cookie.Value)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if claims.Role != role {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			id, err := strconv.ParseInt(claims.Subject, 10, 32)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			identity := Identity{ID: int32(id), Role: role}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
		})
	}
}

// RequestID assigns a ULID to each request and echoes it in the response.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := ulid.Make().String()
			w.Header().Set(requestIDHeader, id)
			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder captures the response status code for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// AccessLog logs one line per request and feeds the request counter.
func AccessLog(logger *slog.Logger, metrics *observability.Metrics) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			metrics.RecordRequest(r.URL.Path, strconv.Itoa(rec.status))
			logger.InfoContext(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", rec.Header().Get(requestIDHeader),
			)
		})
	}
}

// chain applies middlewares to a handler, first middleware outermost.
func chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
