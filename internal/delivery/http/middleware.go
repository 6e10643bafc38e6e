package http

import (
	"net/http"
	"strings"

	"campusconnect/pkg/identity"
	"campusconnect/pkg/logging"

	"github.com/go-chi/chi/v5/middleware"
)

type AuthMiddleware struct {
	provider *identity.Provider
}

func NewAuthMiddleware(provider *identity.Provider) *AuthMiddleware {
	return &AuthMiddleware{
		provider: provider,
	}
}

// Authenticate accepts "Authorization: Bearer <token>". Browsers cannot set
// headers on a websocket handshake, so a token query parameter is accepted
// as well.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.URL.Query().Get("token")
		if authHeader := r.Header.Get("Authorization"); authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				writeJSON(w, http.StatusUnauthorized, Response{Message: "invalid authorization header format"})
				return
			}
			token = parts[1]
		}
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, Response{Message: "authorization header required"})
			return
		}

		claims, err := m.provider.Authenticate(r.Context(), token)
		if err != nil {
			writeError(w, r, "authenticate", err)
			return
		}

		ctx := identity.ContextWithClaims(r.Context(), claims)
		ctx = logging.WithContext(ctx, logging.FromContext(ctx).With(logging.User(claims.UserId)))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestLogger puts a logger tagged with the chi request id on the context.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		log := logging.FromContext(ctx)
		if reqId := middleware.GetReqID(ctx); reqId != "" {
			log = log.With(logging.RequestID(reqId))
		}
		next.ServeHTTP(w, r.WithContext(logging.WithContext(ctx, log)))
	})
}

// CORS allows the configured web origin.
func CORS(origin string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Allow-Credentials", "true")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func userId(r *http.Request) string {
	claims, ok := identity.ClaimsFromContext(r.Context())
	if !ok {
		return ""
	}
	return claims.UserId
}
