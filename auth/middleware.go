package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"wish-wall/errors"
)

// TokenQueryParam carries the token for clients that cannot set headers, like EventSource.
const TokenQueryParam = "token"

// RequireSession rejects HTTP requests without a valid session token.
func (i *Issuer) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" {
			token = r.URL.Query().Get(TokenQueryParam)
		}
		claims, err := i.Validate(token)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": errors.ErrInvalidToken.Error()})
			return
		}
		ctx := context.WithValue(r.Context(), SessionIDKey, claims.SessionID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
