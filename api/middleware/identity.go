package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/greenmile-app/greenmile-backend/pkg/logger"
)

const userIDHeader = "X-User-Id"

type contextKey string

const ctxUserID contextKey = "user_id"

// Identity extracts the caller's user id from the gateway-injected header.
// Authentication itself happens upstream; this service only needs the
// resulting identity.
func Identity(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(userIDHeader)
			userID, err := uuid.Parse(raw)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), ctxUserID, userID)
			if logg != nil {
				ctx = logg.WithUserID(ctx, userID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext returns the authenticated user id, or uuid.Nil when the
// request carried none.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxUserID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}
