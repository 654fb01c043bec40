package middleware

import (
	"context"
	"net"
	"net/http"

	"github.com/google/uuid"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// Key is the context key for Request.
	Key ContextKey = "request"

	// RequestIDHeader carries the request id in both directions.
	RequestIDHeader = "X-Request-Id"

	maxRequestIDLength = 128
)

// Request describes the caller of an HTTP request.
type Request struct {
	ID       string
	ClientIP string
}

// RequestID tags every request with an id, reusing a well-formed
// X-Request-Id header from the client or generating a UUID, and echoes it on
// the response. The id and client address are stored in the request context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if !validRequestID(id) {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)

		ctx := context.WithValue(r.Context(), Key, Request{
			ID:       id,
			ClientIP: clientIP(r),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// FromContext returns the Request stored by RequestID.
func FromContext(ctx context.Context) (Request, bool) {
	req, ok := ctx.Value(Key).(Request)
	return req, ok
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxRequestIDLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
