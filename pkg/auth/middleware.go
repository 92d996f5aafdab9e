package auth

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/jpsm83/restaurant-pos/pkg/httpx"
	"github.com/jpsm83/restaurant-pos/pkg/logger"
)

const sessionName = "restaurant_pos_session"
const sessionBusinessIDKey = "business_id"

// RequireAuth is a chi middleware that enforces authentication via session
// cookies. It reads the session, extracts the business ID, and injects it into
// the request context. Returns 401 if the session is missing, invalid, or
// lacks a valid business_id.
//
// After this middleware, handlers can safely call auth.BusinessIDFromCtx.
func RequireAuth(store sessions.Store, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := store.Get(r, sessionName)
			if err != nil {
				log.WarnContext(r.Context(), "invalid session cookie", "error", err)
				httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			businessIDStr, ok := session.Values[sessionBusinessIDKey].(string)
			if !ok || businessIDStr == "" {
				log.WarnContext(r.Context(), "session missing business_id")
				httpx.JSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}

			businessID, err := uuid.Parse(businessIDStr)
			if err != nil {
				log.WarnContext(r.Context(), "invalid business_id in session", "business_id", businessIDStr, "error", err)
				httpx.JSONError(w, http.StatusUnauthorized, "invalid session data")
				return
			}

			ctx := WithBusinessID(r.Context(), businessID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
