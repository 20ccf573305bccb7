package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Recovery converts a handler panic into a 500 response and logs the stack,
// so one broken request cannot take the server down. http.ErrAbortHandler
// passes through untouched per net/http convention.
func Recovery(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if panicErr := recover(); panicErr != nil {
					if panicErr == http.ErrAbortHandler {
						panic(panicErr)
					}
					log.ErrorContext(r.Context(), "[PANIC RECOVER]",
						slog.Any("err", panicErr), slog.String("stack", string(debug.Stack())))
					w.Header().Set("Content-Type", "application/json; charset=utf-8")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(`{"id":"app.process.internal","status":"Internal Server Error","code":500}`))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
