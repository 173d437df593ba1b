package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("test-secret")

func signToken(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	require.NoError(t, err)

	return signed
}

func runMiddleware(header string) (*httptest.ResponseRecorder, int64, bool) {
	var (
		gotID int64
		ok    bool
	)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, ok = CustomerIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	NewAuthMiddleware(testSecret)(next).ServeHTTP(rec, req)

	return rec, gotID, ok
}

func TestAuthValidBearerToken(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{
		"sub": "42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	rec, id, ok := runMiddleware("Bearer " + token)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, ok)
	assert.Equal(t, int64(42), id)
}

func TestAuthValidJWTScheme(t *testing.T) {
	token := signToken(t, testSecret, jwt.MapClaims{"sub": "42"})

	rec, id, ok := runMiddleware("JWT " + token)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.True(t, ok)
	assert.Equal(t, int64(42), id)
}

func TestAuthRejections(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "unsupported scheme", header: "Basic dXNlcjpwYXNz"},
		{name: "garbage token", header: "Bearer not-a-token"},
		{
			name:   "wrong signature",
			header: "Bearer " + mustSign(jwt.MapClaims{"sub": "42"}, []byte("other-secret")),
		},
		{
			name:   "non-numeric subject",
			header: "Bearer " + mustSign(jwt.MapClaims{"sub": "alice"}, testSecret),
		},
		{
			name:   "non-positive subject",
			header: "Bearer " + mustSign(jwt.MapClaims{"sub": "0"}, testSecret),
		},
		{
			name:   "missing subject",
			header: "Bearer " + mustSign(jwt.MapClaims{}, testSecret),
		},
		{
			name: "expired token",
			header: "Bearer " + mustSign(jwt.MapClaims{
				"sub": "42",
				"exp": time.Now().Add(-time.Hour).Unix(),
			}, testSecret),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, _, ok := runMiddleware(tt.header)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.False(t, ok, "handler must not see a customer ID")
			assert.JSONEq(
				t,
				`{"detail": "Authentication credentials were not provided."}`,
				rec.Body.String(),
			)
		})
	}
}

func mustSign(claims jwt.MapClaims, secret []byte) string {
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		panic(err)
	}

	return signed
}
