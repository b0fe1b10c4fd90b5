package api

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/campusdeals/api/internal/apperr"
)

const requestIdHeader = "X-Request-Id"

func (a *App) errorHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				var panicError error
				switch e := err.(type) {
				case error:
					panicError = e
				default:
					panicError = fmt.Errorf("%v", e)
				}
				a.log.Printf("panic: %v", panicError)
				errResp := NewInternalServerError(panicError)
				w.Header().Set("Connection", "close")
				a.writeJson(w, errResp.StatusCode, errResp)
				return
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// requestIdMiddleware tags every request with an id so log lines from
// one request can be correlated. Client-supplied ids are kept.
func (a *App) requestIdMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestId := r.Header.Get(requestIdHeader)
		if requestId == "" {
			requestId = uuid.NewString()
		}
		w.Header().Set(requestIdHeader, requestId)

		next.ServeHTTP(w, r)
	})
}

func (a *App) authMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := bearerToken(r)
		if err != nil {
			a.writeError(w, fromAppError(apperr.Unauthenticated("missing credentials")))
			return
		}

		userId, err := a.extractUserIdFromToken(tokenString)
		if err != nil {
			a.log.Printf("failed to extract user id from token: %v", err)
			a.writeError(w, fromAppError(apperr.Unauthenticated("invalid or expired token")))
			return
		}

		ctx := WithUserId(r.Context(), userId)
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")

		next(w, r.WithContext(ctx))
	}
}
