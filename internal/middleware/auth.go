package middleware

import (
	"net/http"

	"github.com/bellaleprasann20/Chat-App/internal/auth"
	"github.com/bellaleprasann20/Chat-App/pkg/utils"
)

// RequireAuth rejects requests without a valid token and stores the
// identity in the request context.
func RequireAuth(verifier auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			identity, err := verifier.Verify(r.Context(), auth.TokenFromRequest(r))
			if err != nil {
				utils.RespondError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
		})
	}
}
