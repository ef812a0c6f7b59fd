package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"wetmill-backend/internal/apperr"
	"wetmill-backend/internal/logging"
	"wetmill-backend/pkg/utils"
)

func PanicRecovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logging.Module("http").WithFields(map[string]interface{}{
					"method": r.Method,
					"path":   r.URL.Path,
					"stack":  string(debug.Stack()),
				}).Errorf("panic recovered: %v", rec)

				utils.Error(w, r, apperr.Internal(fmt.Errorf("panic: %v", rec), "panic"))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
