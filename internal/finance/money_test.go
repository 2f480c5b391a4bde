package finance

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name      string
		quantity  string
		unitPrice string
		want      string
	}{
		{"whole units", "3", "250", "750"},
		{"fractional quantity", "1.5", "800", "1200"},
		{"zero quantity", "0", "500", "0"},
		{"ore precision", "2", "99.50", "199"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineTotal(d(tt.quantity), d(tt.unitPrice))
			assert.True(t, d(tt.want).Equal(got), "got %s", got)
		})
	}
}

func TestSubtotal(t *testing.T) {
	lines := []Line{
		{Quantity: d("2"), UnitPrice: d("100")},
		{Quantity: d("1"), UnitPrice: d("49.90")},
		{Quantity: d("4"), UnitPrice: d("12.50")},
	}
	assert.True(t, d("299.90").Equal(Subtotal(lines)))
	assert.True(t, decimal.Zero.Equal(Subtotal(nil)))
}

func TestVAT(t *testing.T) {
	assert.True(t, d("250").Equal(VAT(d("1000"))))
	assert.True(t, d("24.975").Equal(VAT(d("99.90"))))
}

func TestTotal(t *testing.T) {
	lines := []Line{
		{Quantity: d("10"), UnitPrice: d("100")},
	}
	// 1000 + 25% VAT
	assert.True(t, d("1250").Equal(Total(lines)))
}

func TestPayableAfterROT(t *testing.T) {
	assert.True(t, d("7000").Equal(PayableAfterROT(d("10000"), d("3000"))))
	// no deduction
	assert.True(t, d("10000").Equal(PayableAfterROT(d("10000"), decimal.Zero)))
}
