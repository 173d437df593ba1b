package payment

import (
	"context"
	"fmt"

	"github.com/corray333/backend-labs/checkout/internal/service/models/currency"
)

// Kind enumerates the closed set of charge outcomes a gateway can report.
// The orchestrator matches every kind explicitly; there is no open-ended
// error surface between the gateway and the checkout flow.
type Kind int

const (
	KindConfirmed Kind = iota
	KindDeclined
	KindRateLimited
	KindInvalidRequest
	KindAuthenticationFailed
	KindNetworkError
	KindGatewayError
)

func (k Kind) String() string {
	switch k {
	case KindConfirmed:
		return "confirmed"
	case KindDeclined:
		return "declined"
	case KindRateLimited:
		return "rate_limited"
	case KindInvalidRequest:
		return "invalid_request"
	case KindAuthenticationFailed:
		return "authentication_failed"
	case KindNetworkError:
		return "network_error"
	case KindGatewayError:
		return "gateway_error"
	default:
		return "unknown"
	}
}

// ChargeRequest describes a single charge attempt. Amount is in minor
// currency units; PaymentMethod is the opaque client-supplied token.
type ChargeRequest struct {
	AmountMinor   int64
	Currency      currency.Currency
	PaymentMethod string
	Description   string
	Metadata      map[string]string
}

// Result is the outcome of one charge attempt. TransactionID and
// ClientSecret are set only when Kind is KindConfirmed; Reason carries the
// human-readable decline reason, Detail the provider's diagnostic text.
type Result struct {
	Kind          Kind
	TransactionID string
	ClientSecret  string
	Reason        string
	Detail        string
}

// Err converts a non-confirmed Result into an *Error. Returns nil for a
// confirmed result.
func (r Result) Err() error {
	if r.Kind == KindConfirmed {
		return nil
	}

	return &Error{Kind: r.Kind, Reason: r.Reason, Detail: r.Detail}
}

// Error is the typed failure the orchestrator propagates to the transport,
// which maps each kind onto its HTTP status and message.
type Error struct {
	Kind   Kind
	Reason string
	Detail string
}

func (e *Error) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("payment %s: %s", e.Kind, e.Reason)
	}
	if e.Detail != "" {
		return fmt.Sprintf("payment %s: %s", e.Kind, e.Detail)
	}

	return "payment " + e.Kind.String()
}

// Gateway is the payment processor collaborator. Charge performs exactly
// one charge attempt: no retries happen at this layer. Implementations
// report provider failures through the Result kinds; a non-nil error is
// reserved for a context already cancelled before the call went out.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) (Result, error)
	Refund(ctx context.Context, transactionID string) error
}
