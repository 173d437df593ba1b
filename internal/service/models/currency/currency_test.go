package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		input   string
		want    Currency
		wantErr bool
	}{
		{input: "USD", want: CurrencyUSD},
		{input: "usd", want: CurrencyUSD},
		{input: "EUR", want: CurrencyEUR},
		{input: "RUB", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCurrency(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidCurrency)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCurrencyCode(t *testing.T) {
	assert.Equal(t, "usd", CurrencyUSD.Code())
	assert.Equal(t, "eur", CurrencyEUR.Code())
}
