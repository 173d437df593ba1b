package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/corray333/backend-labs/checkout/internal/payment"
	"github.com/corray333/backend-labs/checkout/internal/service/models/cart"
	"github.com/corray333/backend-labs/checkout/internal/service/models/currency"
	"github.com/corray333/backend-labs/checkout/internal/service/models/order"
	"github.com/corray333/backend-labs/checkout/internal/service/models/orderitem"
	"github.com/corray333/backend-labs/checkout/internal/service/services/checkoutsvc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeService struct {
	checkoutResult *checkoutsvc.CheckoutResult
	checkoutErr    error
	orders         []order.Order
	ordersErr      error

	lastCustomerID int64
	lastCart       *cart.Cart
	lastQuery      *order.QueryOrdersModel
}

func (s *fakeService) Checkout(
	ctx context.Context,
	customerID int64,
	c cart.Cart,
) (*checkoutsvc.CheckoutResult, error) {
	s.lastCustomerID = customerID
	s.lastCart = &c

	return s.checkoutResult, s.checkoutErr
}

func (s *fakeService) GetOrders(
	ctx context.Context,
	query *order.QueryOrdersModel,
) ([]order.Order, error) {
	s.lastQuery = query

	return s.orders, s.ordersErr
}

func newTestTransport(t *testing.T, svc *fakeService) *HTTPTransport {
	t.Helper()
	t.Setenv("CHECKOUT_JWT_SECRET", testSecret)

	transport := NewHTTPTransport(svc)
	transport.RegisterRoutes()

	return transport
}

func signedToken(t *testing.T, subject string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": subject,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)

	return signed
}

func checkoutBody() string {
	return `{
		"first_name": "Test",
		"last_name": "User",
		"email": "test@example.com",
		"address": "Test Address",
		"zipcode": "12345",
		"place": "Test Place",
		"phone": "1234567890",
		"payment_method": "pm_card_visa",
		"items": [{"product": 1, "quantity": 2, "price": "100.00"}]
	}`
}

func doRequest(transport *HTTPTransport, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	transport.Router().ServeHTTP(rec, req)

	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return body
}

func TestCheckoutRequiresAuth(t *testing.T) {
	transport := newTestTransport(t, &fakeService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/checkout", strings.NewReader(checkoutBody()))
	rec := doRequest(transport, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Authentication credentials were not provided.", body["detail"])
}

func TestCheckoutRejectsBadSignature(t *testing.T) {
	transport := newTestTransport(t, &fakeService{})

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "7"})
	signed, err := token.SignedString([]byte("wrong-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/checkout", strings.NewReader(checkoutBody()))
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := doRequest(transport, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckoutCreated(t *testing.T) {
	svc := &fakeService{
		checkoutResult: &checkoutsvc.CheckoutResult{
			Order: order.Order{
				ID:         42,
				CustomerID: 7,
				FirstName:  "Test",
				PaymentRef: "pi_test_123",
				PaidAmount: decimal.RequireFromString("200.00"),
				Currency:   currency.CurrencyUSD,
				OrderItems: []orderitem.OrderItem{
					{ProductID: 1, Quantity: 2, Price: decimal.RequireFromString("100.00")},
				},
			},
			ClientSecret: "pi_test_123_secret",
		},
	}
	transport := newTestTransport(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/checkout", strings.NewReader(checkoutBody()))
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "7"))
	rec := doRequest(transport, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "pi_test_123_secret", body["client_secret"])

	orderBody, ok := body["order"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(42), orderBody["id"])
	assert.Equal(t, "200.00", orderBody["paid_amount"])
	assert.Equal(t, "USD", orderBody["currency"])

	// the caller from the token is the one passed down, and the cart
	// carries the parsed decimal price
	assert.Equal(t, int64(7), svc.lastCustomerID)
	require.NotNil(t, svc.lastCart)
	require.Len(t, svc.lastCart.Items, 1)
	assert.Equal(t, "100.00", svc.lastCart.Items[0].Price.StringFixed(2))
}

func TestCheckoutAcceptsJWTScheme(t *testing.T) {
	svc := &fakeService{checkoutErr: checkoutsvc.ErrEmptyCart}
	transport := newTestTransport(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/checkout", strings.NewReader(checkoutBody()))
	req.Header.Set("Authorization", "JWT "+signedToken(t, "7"))
	rec := doRequest(transport, req)

	assert.NotEqual(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckoutMalformedBody(t *testing.T) {
	transport := newTestTransport(t, &fakeService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/checkout", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "7"))
	rec := doRequest(transport, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Malformed request body", body["error"])
}

func TestCheckoutFieldErrors(t *testing.T) {
	transport := newTestTransport(t, &fakeService{})

	req := httptest.NewRequest(
		http.MethodPost,
		"/api/v1/orders/checkout",
		strings.NewReader(`{"email": "not-an-email", "items": []}`),
	)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "7"))
	rec := doRequest(transport, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"This field is required."}, body["first_name"])
	assert.Equal(t, []string{"This field is required."}, body["payment_method"])
	assert.Equal(t, []string{"Enter a valid email address."}, body["email"])
}

func TestCheckoutEmptyCartBody(t *testing.T) {
	svc := &fakeService{checkoutErr: checkoutsvc.ErrEmptyCart}
	transport := newTestTransport(t, svc)

	payload := strings.Replace(
		checkoutBody(),
		`"items": [{"product": 1, "quantity": 2, "price": "100.00"}]`,
		`"items": []`,
		1,
	)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/checkout", strings.NewReader(payload))
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "7"))
	rec := doRequest(transport, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(
		t,
		`{"error": "No items in the cart", "items": ["This field cannot be empty."]}`,
		rec.Body.String(),
	)
}

func TestCheckoutUnknownProductBody(t *testing.T) {
	svc := &fakeService{checkoutErr: &checkoutsvc.UnknownProductError{ProductID: 99}}
	transport := newTestTransport(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/checkout", strings.NewReader(checkoutBody()))
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "7"))
	rec := doRequest(transport, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"items": ["Product 99 does not exist."]}`, rec.Body.String())
}

func TestCheckoutPaymentErrorStatuses(t *testing.T) {
	tests := []struct {
		name       string
		err        *payment.Error
		wantStatus int
		wantError  string
	}{
		{
			name:       "declined",
			err:        &payment.Error{Kind: payment.KindDeclined, Reason: "Your card was declined."},
			wantStatus: http.StatusBadRequest,
			wantError:  "Card error: Your card was declined.",
		},
		{
			name:       "rate limited",
			err:        &payment.Error{Kind: payment.KindRateLimited},
			wantStatus: http.StatusTooManyRequests,
			wantError:  "Rate limit error, please try again later",
		},
		{
			name:       "invalid request",
			err:        &payment.Error{Kind: payment.KindInvalidRequest, Detail: "No such PaymentMethod"},
			wantStatus: http.StatusBadRequest,
			wantError:  "Invalid request: No such PaymentMethod",
		},
		{
			name:       "authentication failed",
			err:        &payment.Error{Kind: payment.KindAuthenticationFailed},
			wantStatus: http.StatusInternalServerError,
			wantError:  "Authentication with payment processor failed",
		},
		{
			name:       "network error",
			err:        &payment.Error{Kind: payment.KindNetworkError},
			wantStatus: http.StatusInternalServerError,
			wantError:  "Network error, please try again",
		},
		{
			name:       "gateway error",
			err:        &payment.Error{Kind: payment.KindGatewayError},
			wantStatus: http.StatusBadRequest,
			wantError:  "Something went wrong with the payment",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := newTestTransport(t, &fakeService{checkoutErr: tt.err})

			req := httptest.NewRequest(
				http.MethodPost,
				"/api/v1/orders/checkout",
				strings.NewReader(checkoutBody()),
			)
			req.Header.Set("Authorization", "Bearer "+signedToken(t, "7"))
			rec := doRequest(transport, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, tt.wantError, body["error"])
		})
	}
}

func TestCheckoutPersistenceFailure(t *testing.T) {
	svc := &fakeService{checkoutErr: checkoutsvc.ErrOrderNotPersisted}
	transport := newTestTransport(t, svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/checkout", strings.NewReader(checkoutBody()))
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "7"))
	rec := doRequest(transport, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Something went wrong: the order could not be stored", body["error"])
}

func TestListOrdersRequiresAuth(t *testing.T) {
	transport := newTestTransport(t, &fakeService{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/", nil)
	rec := doRequest(transport, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListOrdersScopedToCaller(t *testing.T) {
	svc := &fakeService{
		orders: []order.Order{
			{
				ID:         1,
				CustomerID: 7,
				PaidAmount: decimal.RequireFromString("19.99"),
				Currency:   currency.CurrencyUSD,
			},
		},
	}
	transport := newTestTransport(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/?limit=10&offset=5", nil)
	req.Header.Set("Authorization", "Bearer "+signedToken(t, "7"))
	rec := doRequest(transport, req)

	require.Equal(t, http.StatusOK, rec.Code)

	// the filter always carries the caller, never a client-chosen customer
	require.NotNil(t, svc.lastQuery)
	assert.Equal(t, []int64{7}, svc.lastQuery.CustomerIds)
	assert.Equal(t, 10, svc.lastQuery.Limit)
	assert.Equal(t, 5, svc.lastQuery.Offset)

	var body []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body, 1)
	assert.Equal(t, "19.99", body[0]["paid_amount"])
}
