package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/natanaelribeiro272-glitch/meetlines-sub001/internal/app"
)

type identityKey struct{}

// RequireAuth verifies the bearer token and stores the buyer identity in
// the request context. Tokens are HS256 with sub/email plus optional
// name/phone profile claims.
func RequireAuth(secret []byte, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "no authorization header provided")
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header || tokenString == "" {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid authorization header")
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid token")
			return
		}

		buyer := app.Buyer{
			UserID: stringClaim(claims, "sub"),
			Email:  stringClaim(claims, "email"),
			Name:   stringClaim(claims, "name"),
			Phone:  stringClaim(claims, "phone"),
		}
		if buyer.UserID == "" || buyer.Email == "" {
			writeError(w, http.StatusUnauthorized, codeUnauthorized, "user not authenticated or email not available")
			return
		}

		ctx := context.WithValue(r.Context(), identityKey{}, buyer)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func buyerFromContext(ctx context.Context) (app.Buyer, bool) {
	buyer, ok := ctx.Value(identityKey{}).(app.Buyer)
	return buyer, ok
}

func stringClaim(claims jwt.MapClaims, key string) string {
	v, _ := claims[key].(string)
	return v
}
