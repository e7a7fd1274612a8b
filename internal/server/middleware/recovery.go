package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/iudanet/matchday/pkg/api"
)

// RecoveryMiddleware перехватывает panic в обработчиках, логирует стек
// и отвечает 500 в том же JSON-формате, что и остальные ошибки API.
func RecoveryMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.Error("panic recovered",
						"error", err,
						"method", r.Method,
						"path", r.URL.Path,
						"club_id", r.Header.Get("X-Club-ID"),
						"stack", string(debug.Stack()),
					)

					// Детали остаются в логе, клиенту — generic ответ
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(api.ErrorResponse{
						Error:   "internal error",
						Message: "internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
