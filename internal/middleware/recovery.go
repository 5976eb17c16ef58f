package middleware

import (
	"log"
	"net/http"
	"runtime/debug"

	"vtz-stock-sync/pkg/apierror"
)

// Recovery is a middleware that recovers from panics. It runs inside
// RequestID so the panic log carries the same rid as the request log line.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log.Printf("PANIC: %v (rid=%s)\n%s", err, GetRequestID(r.Context()), debug.Stack())

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write(apierror.InternalError("internal server error").ToJSON())
			}
		}()

		next.ServeHTTP(w, r)
	})
}
