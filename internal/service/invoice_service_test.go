package service

import (
	"context"
	"testing"
	"time"

	"crmbackend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func TestBuildLineItemsRecomputesTotals(t *testing.T) {
	lines, err := buildLineItems([]LineItemInput{
		{Description: "Arbete", Quantity: "8", UnitPrice: "650"},
		{Description: "Material", Quantity: "1.5", UnitPrice: "299.90"},
	})
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, 0, lines[0].Position)
	assert.True(t, d("5200").Equal(lines[0].Total))
	assert.Equal(t, 1, lines[1].Position)
	assert.True(t, d("449.85").Equal(lines[1].Total))
}

func TestBuildLineItemsValidation(t *testing.T) {
	tests := []struct {
		name  string
		input LineItemInput
	}{
		{"negative quantity", LineItemInput{Quantity: "-1", UnitPrice: "100"}},
		{"bad quantity", LineItemInput{Quantity: "abc", UnitPrice: "100"}},
		{"bad unit price", LineItemInput{Quantity: "1", UnitPrice: "1,99"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildLineItems([]LineItemInput{tt.input})
			assert.Error(t, err)
		})
	}
}

func TestBuildLineItemsAllowsNegativePrice(t *testing.T) {
	// Discount lines carry a negative unit price.
	lines, err := buildLineItems([]LineItemInput{
		{Description: "Rabatt", Quantity: "1", UnitPrice: "-500"},
	})
	require.NoError(t, err)
	assert.True(t, d("-500").Equal(lines[0].Total))
}

func TestInvoiceFigures(t *testing.T) {
	lines, err := buildLineItems([]LineItemInput{
		{Quantity: "2", UnitPrice: "400"},
		{Quantity: "1", UnitPrice: "200"},
	})
	require.NoError(t, err)

	subtotal, vat, amount := invoiceFigures(lines)
	assert.True(t, d("1000").Equal(subtotal))
	assert.True(t, d("250").Equal(vat))
	assert.True(t, d("1250").Equal(amount))
}

func TestInvoiceFiguresEmpty(t *testing.T) {
	subtotal, vat, amount := invoiceFigures(nil)
	assert.True(t, subtotal.IsZero())
	assert.True(t, vat.IsZero())
	assert.True(t, amount.IsZero())
}

func TestParseAssignment(t *testing.T) {
	userID := "0c3f9d2e-8a41-4f6b-9c7d-1e2a3b4c5d6e"
	teamID := "9b8a7c6d-5e4f-4a3b-8c2d-1f0e9d8c7b6a"

	t.Run("both set is rejected", func(t *testing.T) {
		_, _, err := parseAssignment(userID, teamID)
		assert.Error(t, err)
	})

	t.Run("user only", func(t *testing.T) {
		u, tm, err := parseAssignment(userID, "")
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Nil(t, tm)
		assert.Equal(t, userID, u.String())
	})

	t.Run("team only", func(t *testing.T) {
		u, tm, err := parseAssignment("", teamID)
		require.NoError(t, err)
		assert.Nil(t, u)
		require.NotNil(t, tm)
	})

	t.Run("neither", func(t *testing.T) {
		u, tm, err := parseAssignment("", "")
		require.NoError(t, err)
		assert.Nil(t, u)
		assert.Nil(t, tm)
	})
}

func TestParseROTAmount(t *testing.T) {
	amount := d("10000")

	rot, err := parseROTAmount("", amount)
	require.NoError(t, err)
	assert.True(t, rot.IsZero())

	rot, err = parseROTAmount("3000", amount)
	require.NoError(t, err)
	assert.True(t, d("3000").Equal(rot))

	// equal to the invoice amount is still inside the bound
	rot, err = parseROTAmount("10000", amount)
	require.NoError(t, err)
	assert.True(t, amount.Equal(rot))

	_, err = parseROTAmount("-1", amount)
	assert.Error(t, err)

	_, err = parseROTAmount("10000.01", amount)
	assert.Error(t, err)
}

func TestInvoicePayableAfterROT(t *testing.T) {
	invoice := &model.Invoice{
		Amount:    d("12500"),
		ROTAmount: d("4000"),
	}
	assert.True(t, d("8500").Equal(invoice.PayableAmount()))
}

func TestInvoiceNetAmount(t *testing.T) {
	invoice := &model.Invoice{
		Amount:         d("1250"),
		CreditedAmount: d("-500"),
	}
	assert.True(t, d("750").Equal(invoice.NetAmount()))
	assert.True(t, d("750").Equal(invoice.RemainingCreditable()))
}

func TestDeleteInvoiceGuards(t *testing.T) {
	repo := newMemInvoiceRepo()
	svc := NewInvoiceService(repo, nil, nil, nil, nil, nil, nopAudit{}, nil)
	actor := uuid.NewString()
	ctx := context.Background()

	original := &model.Invoice{
		ID:             uuid.New(),
		InvoiceNo:      "INV-20250901-00001",
		Amount:         d("1250"),
		CreditedAmount: d("-500"),
		DueDate:        time.Now(),
		Status:         model.InvoiceStatusSent,
	}
	creditNote := &model.Invoice{
		ID:                uuid.New(),
		InvoiceNo:         "KRED-20250901-00001",
		Amount:            d("-500"),
		DueDate:           time.Now(),
		Status:            model.InvoiceStatusSent,
		IsCreditNote:      true,
		OriginalInvoiceID: &original.ID,
	}
	plain := &model.Invoice{
		ID:        uuid.New(),
		InvoiceNo: "INV-20250901-00002",
		Amount:    d("100"),
		DueDate:   time.Now(),
		Status:    model.InvoiceStatusDraft,
	}
	for _, inv := range []*model.Invoice{original, creditNote, plain} {
		require.NoError(t, repo.Create(ctx, inv))
	}

	// A credit note is part of the original invoice's credit history and
	// must never be hard-deleted.
	err := svc.DeleteInvoice(ctx, actor, creditNote.ID.String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credit notes cannot be deleted")
	_, err = repo.FindByID(ctx, creditNote.ID)
	assert.NoError(t, err)

	// An invoice with accumulated credits is rejected too.
	err = svc.DeleteInvoice(ctx, actor, original.ID.String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has credit notes")

	// An uncredited plain invoice can go.
	require.NoError(t, svc.DeleteInvoice(ctx, actor, plain.ID.String()))
	assert.Equal(t, []uuid.UUID{plain.ID}, repo.deleted)
}
