package middleware

import (
	"net/http"

	"agence-dashboard/internal/domain"
	"agence-dashboard/pkg/utils"
)

// RequireRole lets the request through only when allowed accepts the
// session. MUST be used AFTER the auth middleware.
//
// The role is declared by the client when the session opens, so this only
// keeps the dashboard from offering actions a role should not see. The
// shipping API authorizes every mutation against the bearer token.
func RequireRole(allowed func(*domain.Session) bool, message string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess, ok := domain.SessionFromContext(r.Context())
			if !ok {
				utils.WriteError(w, http.StatusUnauthorized, "Unauthorized: No session found in context")
				return
			}

			if !allowed(sess) {
				utils.WriteError(w, http.StatusForbidden, message)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ManagerMiddleware restricts tariff mutations to agency managers.
func ManagerMiddleware(next http.Handler) http.Handler {
	return RequireRole((*domain.Session).CanManageTariffs, "Forbidden: tariff management requires an agency manager")(next)
}

// ExpeditionMiddleware restricts shipment registration to agency staff.
func ExpeditionMiddleware(next http.Handler) http.Handler {
	return RequireRole((*domain.Session).CanCreateExpeditions, "Forbidden: not allowed to register expeditions")(next)
}
