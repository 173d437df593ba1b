package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey struct{}

var customerIDKey contextKey

// CustomerIDFromContext returns the authenticated customer ID set by the
// middleware.
func CustomerIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(customerIDKey).(int64)

	return id, ok
}

// WithCustomerID returns a context carrying the given customer ID. Used by
// tests to bypass the middleware.
func WithCustomerID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, customerIDKey, id)
}

// NewAuthMiddleware verifies the bearer token on every request and puts
// the customer ID from the subject claim into the context. Requests
// without a valid token get 401; token issuance is someone else's job.
func NewAuthMiddleware(secret []byte) func(next http.Handler) http.Handler {
	if len(secret) == 0 {
		secret = []byte(os.Getenv("CHECKOUT_JWT_SECRET"))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			customerID, ok := authenticate(r, secret)
			if !ok {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"detail": "Authentication credentials were not provided.",
				})

				return
			}

			ctx := WithCustomerID(r.Context(), customerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func authenticate(r *http.Request, secret []byte) (int64, bool) {
	header := r.Header.Get("Authorization")
	scheme, rawToken, found := strings.Cut(header, " ")
	if !found || (scheme != "Bearer" && scheme != "JWT") {
		return 0, false
	}

	token, err := jwt.Parse(rawToken, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}

		return secret, nil
	})
	if err != nil || !token.Valid {
		return 0, false
	}

	subject, err := token.Claims.GetSubject()
	if err != nil {
		return 0, false
	}

	customerID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil || customerID <= 0 {
		return 0, false
	}

	return customerID, true
}
