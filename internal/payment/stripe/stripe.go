package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/corray333/backend-labs/checkout/internal/payment"
)

const defaultBaseURL = "https://api.stripe.com"

// Client charges cards through the Stripe PaymentIntents API. The API key
// is explicit configuration: no process-wide key registration.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type option func(*Client)

// NewClient creates a new Stripe client with the given secret API key.
func NewClient(apiKey string, opts ...option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithBaseURL overrides the API base URL, used to point at a test server.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithBaseURL(baseURL string) option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient overrides the underlying HTTP client.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithHTTPClient(httpClient *http.Client) option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// paymentIntent mirrors the fields of a Stripe PaymentIntent we consume.
type paymentIntent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Status       string `json:"status"`
}

// apiError mirrors the error envelope of a Stripe failure response.
type apiError struct {
	Error struct {
		Type        string `json:"type"`
		Code        string `json:"code"`
		Message     string `json:"message"`
		DeclineCode string `json:"decline_code"`
	} `json:"error"`
}

// Charge creates and confirms a PaymentIntent for the given request. Every
// provider failure is reported through the result kind; the method makes a
// single attempt and never retries.
func (c *Client) Charge(ctx context.Context, req payment.ChargeRequest) (payment.Result, error) {
	if err := ctx.Err(); err != nil {
		return payment.Result{}, err
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(req.AmountMinor, 10))
	form.Set("currency", req.Currency.Code())
	form.Set("payment_method", req.PaymentMethod)
	form.Set("payment_method_types[]", "card")
	form.Set("confirm", "true")
	if req.Description != "" {
		form.Set("description", req.Description)
	}
	for key, value := range req.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", key), value)
	}

	body, err := c.post(ctx, "/v1/payment_intents", form)
	if err != nil {
		return payment.Result{Kind: payment.KindNetworkError, Detail: err.Error()}, nil
	}

	return c.parseChargeResponse(body)
}

// Refund releases a previously confirmed charge. Used as compensation when
// the order cannot be persisted after the gateway confirmed the payment.
func (c *Client) Refund(ctx context.Context, transactionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	form := url.Values{}
	form.Set("payment_intent", transactionID)

	body, err := c.post(ctx, "/v1/refunds", form)
	if err != nil {
		return fmt.Errorf("failed to refund payment intent %s: %w", transactionID, err)
	}

	var fail apiError
	if err := json.Unmarshal(body, &fail); err == nil && fail.Error.Type != "" {
		return fmt.Errorf("refund rejected for %s: %s", transactionID, fail.Error.Message)
	}

	return nil
}

// post sends a form-encoded request and returns the raw response body.
// Non-2xx responses are returned as a body, not an error, so the caller
// can inspect the provider's error envelope.
func (c *Client) post(ctx context.Context, path string, form url.Values) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+path,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

// parseChargeResponse maps the provider response onto the closed result
// variant set.
func (c *Client) parseChargeResponse(body []byte) (payment.Result, error) {
	var fail apiError
	if err := json.Unmarshal(body, &fail); err == nil && fail.Error.Type != "" {
		return resultFromAPIError(fail), nil
	}

	var intent paymentIntent
	if err := json.Unmarshal(body, &intent); err != nil || intent.ID == "" {
		return payment.Result{
			Kind:   payment.KindGatewayError,
			Detail: "unrecognized gateway response",
		}, nil
	}

	if intent.Status != "succeeded" && intent.Status != "requires_capture" {
		return payment.Result{
			Kind:   payment.KindGatewayError,
			Detail: "payment intent in unexpected status " + intent.Status,
		}, nil
	}

	return payment.Result{
		Kind:          payment.KindConfirmed,
		TransactionID: intent.ID,
		ClientSecret:  intent.ClientSecret,
	}, nil
}

func resultFromAPIError(fail apiError) payment.Result {
	switch fail.Error.Type {
	case "card_error":
		return payment.Result{
			Kind:   payment.KindDeclined,
			Reason: fail.Error.Message,
			Detail: fail.Error.DeclineCode,
		}
	case "rate_limit_error":
		return payment.Result{Kind: payment.KindRateLimited, Detail: fail.Error.Message}
	case "invalid_request_error":
		return payment.Result{Kind: payment.KindInvalidRequest, Detail: fail.Error.Message}
	case "authentication_error":
		return payment.Result{Kind: payment.KindAuthenticationFailed, Detail: fail.Error.Message}
	case "api_connection_error":
		return payment.Result{Kind: payment.KindNetworkError, Detail: fail.Error.Message}
	default:
		return payment.Result{Kind: payment.KindGatewayError, Detail: fail.Error.Message}
	}
}
