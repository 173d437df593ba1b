package simulator

import (
	"context"
	"testing"

	"github.com/corray333/backend-labs/checkout/internal/payment"
	"github.com/corray333/backend-labs/checkout/internal/service/models/currency"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func charge(t *testing.T, g *Gateway, token string) payment.Result {
	t.Helper()
	res, err := g.Charge(context.Background(), payment.ChargeRequest{
		AmountMinor:   20000,
		Currency:      currency.CurrencyUSD,
		PaymentMethod: token,
	})
	require.NoError(t, err)

	return res
}

func TestChargeTokenMapping(t *testing.T) {
	tests := []struct {
		token string
		want  payment.Kind
	}{
		{token: "pm_card_visa", want: payment.KindConfirmed},
		{token: "pm_card_mastercard", want: payment.KindConfirmed},
		{token: "pm_card_visa_chargeDeclined", want: payment.KindDeclined},
		{token: "pm_card_visa_chargeDeclinedInsufficientFunds", want: payment.KindDeclined},
		{token: "pm_card_visa_chargeDeclinedLostCard", want: payment.KindDeclined},
		{token: "pm_card_chargeDeclinedExpiredCard", want: payment.KindDeclined},
		{token: "pm_card_chargeDeclinedProcessingError", want: payment.KindDeclined},
		{token: "pm_sim_rateLimited", want: payment.KindRateLimited},
		{token: "pm_sim_authenticationFailed", want: payment.KindAuthenticationFailed},
		{token: "pm_sim_networkError", want: payment.KindNetworkError},
		{token: "pm_sim_gatewayError", want: payment.KindGatewayError},
		{token: "pm_card_nonsense", want: payment.KindInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			g := NewGateway()
			res := charge(t, g, tt.token)

			assert.Equal(t, tt.want, res.Kind)
			if tt.want == payment.KindConfirmed {
				assert.NotEmpty(t, res.TransactionID)
				assert.NotEmpty(t, res.ClientSecret)
				assert.NoError(t, res.Err())
			} else {
				assert.Error(t, res.Err())
			}
		})
	}
}

func TestChargeDeclinedCarriesReason(t *testing.T) {
	g := NewGateway()

	res := charge(t, g, "pm_card_visa_chargeDeclinedInsufficientFunds")

	assert.Equal(t, "Your card has insufficient funds.", res.Reason)
	assert.Equal(t, "insufficient_funds", res.Detail)
}

func TestRepeatedChargesAreDistinct(t *testing.T) {
	g := NewGateway()

	first := charge(t, g, "pm_card_visa")
	second := charge(t, g, "pm_card_visa")

	assert.NotEqual(t, first.TransactionID, second.TransactionID)
	assert.Len(t, g.Charges(), 2)
}

func TestRefundIsRecorded(t *testing.T) {
	g := NewGateway()

	res := charge(t, g, "pm_card_visa")
	require.NoError(t, g.Refund(context.Background(), res.TransactionID))

	assert.Equal(t, []string{res.TransactionID}, g.Refunds())
}

func TestChargeHonorsCancelledContext(t *testing.T) {
	g := NewGateway()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.Charge(ctx, payment.ChargeRequest{PaymentMethod: "pm_card_visa"})

	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, g.Charges())
}
