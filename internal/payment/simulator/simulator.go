package simulator

import (
	"context"
	"strings"
	"sync"

	"github.com/corray333/backend-labs/checkout/internal/payment"
	"github.com/google/uuid"
)

// Gateway is an in-process payment gateway keyed on the well-known test
// payment method tokens. It is deterministic: the token alone decides the
// outcome, which makes every checkout branch reachable from tests and
// local runs without touching a real provider.
type Gateway struct {
	mu      sync.Mutex
	charges []payment.ChargeRequest
	refunds []string
}

func NewGateway() *Gateway {
	return &Gateway{}
}

// Charge resolves the outcome from the payment method token. Every call is
// recorded; two identical requests produce two distinct transactions.
func (g *Gateway) Charge(ctx context.Context, req payment.ChargeRequest) (payment.Result, error) {
	if err := ctx.Err(); err != nil {
		return payment.Result{}, err
	}

	g.mu.Lock()
	g.charges = append(g.charges, req)
	g.mu.Unlock()

	switch req.PaymentMethod {
	case "pm_card_visa", "pm_card_mastercard":
		id := "pi_sim_" + strings.ReplaceAll(uuid.NewString(), "-", "")
		return payment.Result{
			Kind:          payment.KindConfirmed,
			TransactionID: id,
			ClientSecret:  id + "_secret_" + uuid.NewString(),
		}, nil
	case "pm_card_visa_chargeDeclined":
		return payment.Result{
			Kind:   payment.KindDeclined,
			Reason: "Your card was declined.",
			Detail: "generic_decline",
		}, nil
	case "pm_card_visa_chargeDeclinedInsufficientFunds":
		return payment.Result{
			Kind:   payment.KindDeclined,
			Reason: "Your card has insufficient funds.",
			Detail: "insufficient_funds",
		}, nil
	case "pm_card_visa_chargeDeclinedLostCard":
		return payment.Result{
			Kind:   payment.KindDeclined,
			Reason: "Your card was declined.",
			Detail: "lost_card",
		}, nil
	case "pm_card_chargeDeclinedExpiredCard":
		return payment.Result{
			Kind:   payment.KindDeclined,
			Reason: "Your card has expired.",
			Detail: "expired_card",
		}, nil
	case "pm_card_chargeDeclinedProcessingError":
		return payment.Result{
			Kind:   payment.KindDeclined,
			Reason: "An error occurred while processing your card. Try again in a little bit.",
			Detail: "processing_error",
		}, nil
	case "pm_sim_rateLimited":
		return payment.Result{Kind: payment.KindRateLimited}, nil
	case "pm_sim_authenticationFailed":
		return payment.Result{Kind: payment.KindAuthenticationFailed}, nil
	case "pm_sim_networkError":
		return payment.Result{Kind: payment.KindNetworkError}, nil
	case "pm_sim_gatewayError":
		return payment.Result{Kind: payment.KindGatewayError}, nil
	default:
		return payment.Result{
			Kind:   payment.KindInvalidRequest,
			Detail: "No such PaymentMethod: '" + req.PaymentMethod + "'",
		}, nil
	}
}

// Refund records the refunded transaction.
func (g *Gateway) Refund(ctx context.Context, transactionID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	g.mu.Lock()
	g.refunds = append(g.refunds, transactionID)
	g.mu.Unlock()

	return nil
}

// Charges returns a copy of all recorded charge requests.
func (g *Gateway) Charges() []payment.ChargeRequest {
	g.mu.Lock()
	defer g.mu.Unlock()

	return append([]payment.ChargeRequest(nil), g.charges...)
}

// Refunds returns a copy of all refunded transaction IDs.
func (g *Gateway) Refunds() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	return append([]string(nil), g.refunds...)
}
