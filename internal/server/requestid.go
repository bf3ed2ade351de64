package server

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey int

const reqIDKey ctxKey = iota

// requestIDHeader carries the ID back to the client and accepts one from
// upstream proxies.
const requestIDHeader = "X-Request-ID"

// requestID assigns each request a UUID unless the client supplied one.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), reqIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// reqIDFrom returns the request ID stored by the middleware, or empty.
func reqIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(reqIDKey).(string)
	return id
}
