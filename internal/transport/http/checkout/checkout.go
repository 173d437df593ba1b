package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/corray333/backend-labs/checkout/internal/payment"
	"github.com/corray333/backend-labs/checkout/internal/service/models/cart"
	"github.com/corray333/backend-labs/checkout/internal/service/services/checkoutsvc"
	"github.com/corray333/backend-labs/checkout/internal/transport/http/converters"
	"github.com/corray333/backend-labs/checkout/internal/transport/http/middleware/auth"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// service is an interface for the service layer.
type service interface {
	Checkout(ctx context.Context, customerID int64, c cart.Cart) (*checkoutsvc.CheckoutResult, error)
}

// itemInCheckoutRequest represents one cart line in a checkout request.
type itemInCheckoutRequest struct {
	Product  int64  `json:"product"  validate:"gt=0"`
	Quantity int    `json:"quantity" validate:"gt=0"`
	Price    string `json:"price"    validate:"required"`
}

// checkoutRequest represents a checkout request. Emptiness of the item
// list is not a schema concern: the service rejects it with its dedicated
// response body.
type checkoutRequest struct {
	FirstName     string                  `json:"first_name"     validate:"required"`
	LastName      string                  `json:"last_name"      validate:"required"`
	Email         string                  `json:"email"          validate:"required,email"`
	Address       string                  `json:"address"        validate:"required"`
	Zipcode       string                  `json:"zipcode"        validate:"required"`
	Place         string                  `json:"place"          validate:"required"`
	Phone         string                  `json:"phone"          validate:"required"`
	PaymentMethod string                  `json:"payment_method" validate:"required"`
	Items         []itemInCheckoutRequest `json:"items"          validate:"dive"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report errors under the JSON field names the client submitted
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}

		return name
	})

	return v
}

// fieldErrors converts validator errors to the {field: [messages]} shape.
func fieldErrors(err error) map[string][]string {
	result := make(map[string][]string)

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		result["non_field_errors"] = []string{err.Error()}

		return result
	}

	for _, fe := range verrs {
		var msg string
		switch fe.Tag() {
		case "required":
			msg = "This field is required."
		case "email":
			msg = "Enter a valid email address."
		case "gt":
			msg = fmt.Sprintf("Ensure this value is greater than %s.", fe.Param())
		default:
			msg = "This field is invalid."
		}
		result[fe.Field()] = append(result[fe.Field()], msg)
	}

	return result
}

// toCart converts the request to the service cart model.
func (r *checkoutRequest) toCart() (*cart.Cart, error) {
	items := make([]cart.Item, 0, len(r.Items))
	for _, item := range r.Items {
		price, err := decimal.NewFromString(item.Price)
		if err != nil {
			return nil, fmt.Errorf("invalid price %q: %w", item.Price, err)
		}
		items = append(items, cart.Item{
			ProductID: item.Product,
			Quantity:  item.Quantity,
			Price:     price,
		})
	}

	return &cart.Cart{
		FirstName:     r.FirstName,
		LastName:      r.LastName,
		Email:         r.Email,
		Address:       r.Address,
		Zipcode:       r.Zipcode,
		Place:         r.Place,
		Phone:         r.Phone,
		PaymentMethod: r.PaymentMethod,
		Items:         items,
	}, nil
}

// Checkout handles the checkout request: decode, validate, run the
// checkout transaction and map every failure category to its response.
func Checkout(w http.ResponseWriter, r *http.Request, service service) {
	customerID, ok := auth.CustomerIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"detail": "Authentication credentials were not provided.",
		})

		return
	}

	var req checkoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Malformed request body",
		})
		slog.Error("Error decoding checkout request body", "error", err)

		return
	}

	if err := validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, fieldErrors(err))
		slog.Error("Error validating checkout request", "error", err)

		return
	}

	c, err := req.toCart()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			"items": {"Ensure every price is a valid decimal string."},
		})
		slog.Error("Error converting checkout request to cart", "error", err)

		return
	}

	result, err := service.Checkout(r.Context(), customerID, *c)
	if err != nil {
		writeCheckoutError(w, r, err)

		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"order":         converters.OrderToResponse(result.Order),
		"client_secret": result.ClientSecret,
	})
}

// writeCheckoutError maps the checkout error taxonomy onto response
// shapes and status codes.
func writeCheckoutError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		payErr     *payment.Error
		unknownErr *checkoutsvc.UnknownProductError
		invalidErr *checkoutsvc.InvalidItemError
	)

	switch {
	case errors.Is(err, checkoutsvc.ErrEmptyCart):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": "No items in the cart",
			"items": []string{"This field cannot be empty."},
		})
	case errors.As(err, &unknownErr):
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			"items": {fmt.Sprintf("Product %d does not exist.", unknownErr.ProductID)},
		})
	case errors.As(err, &invalidErr):
		writeJSON(w, http.StatusBadRequest, map[string][]string{
			"items": {invalidErr.Error()},
		})
	case errors.As(err, &payErr):
		writePaymentError(w, payErr)
	case errors.Is(err, checkoutsvc.ErrOrderNotPersisted):
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Something went wrong: the order could not be stored",
		})
		slog.ErrorContext(r.Context(), "Order persistence failed after confirmed charge", "error", err)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("Something went wrong: %s", err),
		})
		slog.ErrorContext(r.Context(), "Unexpected checkout failure", "error", err)
	}
}

// writePaymentError maps each gateway result kind onto its status code and
// message. The switch is exhaustive over the closed variant set.
func writePaymentError(w http.ResponseWriter, payErr *payment.Error) {
	switch payErr.Kind {
	case payment.KindDeclined:
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("Card error: %s", payErr.Reason),
		})
	case payment.KindRateLimited:
		writeJSON(w, http.StatusTooManyRequests, map[string]string{
			"error": "Rate limit error, please try again later",
		})
	case payment.KindInvalidRequest:
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": fmt.Sprintf("Invalid request: %s", payErr.Detail),
		})
	case payment.KindAuthenticationFailed:
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Authentication with payment processor failed",
		})
	case payment.KindNetworkError:
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Network error, please try again",
		})
	case payment.KindGatewayError, payment.KindConfirmed:
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Something went wrong with the payment",
		})
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "Something went wrong with the payment",
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Error writing response", "error", err)
	}
}
