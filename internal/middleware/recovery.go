package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/josh-kwaku/checkout-orders/internal/handler"
	"github.com/josh-kwaku/checkout-orders/internal/logging"
)

// Recovery turns a panic into a 500 unless a response has already started.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := recorderFor(w)
		defer func() {
			if err := recover(); err != nil {
				if err == http.ErrAbortHandler {
					panic(err)
				}
				log := logging.FromContext(r.Context())
				log.Error("panic recovered", "error", err, "stack", string(debug.Stack()))
				if rec.wroteHeader {
					return
				}
				handler.RespondAppError(rec, handler.ErrInternalError, nil)
			}
		}()
		next.ServeHTTP(rec, r)
	})
}
