package service

import (
	"strings"
	"testing"

	"crmbackend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sentInvoice() *model.Invoice {
	return &model.Invoice{
		InvoiceNo: "INV-20250901-00001",
		Subtotal:  d("1000"),
		VATAmount: d("250"),
		Amount:    d("1250"),
		Status:    model.InvoiceStatusSent,
		Items: []model.InvoiceLineItem{
			{Position: 0, Description: "Arbete", Quantity: d("8"), UnitPrice: d("100"), Total: d("800")},
			{Position: 1, Description: "Material", Quantity: d("1"), UnitPrice: d("200"), Total: d("200")},
		},
	}
}

func TestValidateCreditable(t *testing.T) {
	t.Run("sent invoice passes", func(t *testing.T) {
		assert.NoError(t, validateCreditable(sentInvoice()))
	})

	t.Run("paid invoice passes", func(t *testing.T) {
		inv := sentInvoice()
		inv.Status = model.InvoiceStatusPaid
		assert.NoError(t, validateCreditable(inv))
	})

	t.Run("draft is rejected", func(t *testing.T) {
		inv := sentInvoice()
		inv.Status = model.InvoiceStatusDraft
		assert.Error(t, validateCreditable(inv))
	})

	t.Run("credit note is rejected", func(t *testing.T) {
		inv := sentInvoice()
		inv.IsCreditNote = true
		assert.Error(t, validateCreditable(inv))
	})

	t.Run("fully credited is rejected", func(t *testing.T) {
		inv := sentInvoice()
		inv.CreditedAmount = d("-1250")
		err := validateCreditable(inv)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "fully credited")
	})

	t.Run("partially credited still passes", func(t *testing.T) {
		inv := sentInvoice()
		inv.CreditedAmount = d("-500")
		assert.NoError(t, validateCreditable(inv))
	})
}

func TestDeriveCreditFull(t *testing.T) {
	derived, err := deriveCredit(sentInvoice(), CreateCreditNoteRequest{
		CreditType: CreditTypeFull,
		Reason:     model.CreditReasonReturvara,
	})
	require.NoError(t, err)

	require.Len(t, derived.Lines, 2)
	assert.True(t, d("8").Equal(derived.Lines[0].Quantity), "quantity stays positive")
	assert.True(t, d("-100").Equal(derived.Lines[0].UnitPrice))
	assert.True(t, d("-800").Equal(derived.Lines[0].Total))

	assert.True(t, d("-1000").Equal(derived.Subtotal))
	assert.True(t, d("-250").Equal(derived.VAT))
	assert.True(t, d("-1250").Equal(derived.Amount))
}

func TestDeriveCreditPartial(t *testing.T) {
	derived, err := deriveCredit(sentInvoice(), CreateCreditNoteRequest{
		CreditType:  CreditTypePartial,
		Reason:      model.CreditReasonReturvara,
		ItemIndices: []int{1},
	})
	require.NoError(t, err)

	require.Len(t, derived.Lines, 1)
	assert.Equal(t, "Material", derived.Lines[0].Description)
	assert.True(t, d("-200").Equal(derived.Subtotal))
	assert.True(t, d("-50").Equal(derived.VAT))
	assert.True(t, d("-250").Equal(derived.Amount))
}

func TestDeriveCreditPartialValidation(t *testing.T) {
	tests := []struct {
		name    string
		indices []int
	}{
		{"no indices", nil},
		{"out of range", []int{2}},
		{"negative index", []int{-1}},
		{"duplicate index", []int{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := deriveCredit(sentInvoice(), CreateCreditNoteRequest{
				CreditType:  CreditTypePartial,
				ItemIndices: tt.indices,
			})
			assert.Error(t, err)
		})
	}
}

func TestDeriveCreditAmount(t *testing.T) {
	derived, err := deriveCredit(sentInvoice(), CreateCreditNoteRequest{
		CreditType: CreditTypeAmount,
		Reason:     model.CreditReasonPriskorrigering,
		Amount:     "250",
	})
	require.NoError(t, err)

	// 250 gross backs out to -200 net and -50 VAT.
	assert.True(t, d("-200").Equal(derived.Subtotal))
	assert.True(t, d("-50").Equal(derived.VAT))
	assert.True(t, d("-250").Equal(derived.Amount))

	require.Len(t, derived.Lines, 1)
	assert.Equal(t, "Priskorrigering", derived.Lines[0].Description)
	assert.True(t, d("-200").Equal(derived.Lines[0].Total))
}

func TestDeriveCreditAmountRounding(t *testing.T) {
	derived, err := deriveCredit(sentInvoice(), CreateCreditNoteRequest{
		CreditType: CreditTypeAmount,
		Reason:     model.CreditReasonAnnat,
		ReasonText: "Kulansersättning",
		Amount:     "99.99",
	})
	require.NoError(t, err)

	// Subtotal rounds to two decimals; the VAT remainder absorbs the
	// difference so the figures always sum to the requested gross.
	assert.True(t, derived.Subtotal.Add(derived.VAT).Equal(d("-99.99")))
	assert.True(t, d("-79.99").Equal(derived.Subtotal))
	assert.True(t, d("-20.00").Equal(derived.VAT))
}

func TestDeriveCreditAmountValidation(t *testing.T) {
	for _, amount := range []string{"", "0", "-100", "abc"} {
		_, err := deriveCredit(sentInvoice(), CreateCreditNoteRequest{
			CreditType: CreditTypeAmount,
			Amount:     amount,
		})
		assert.Error(t, err, "amount %q", amount)
	}
}

func TestValidCreditReason(t *testing.T) {
	for _, reason := range []string{
		model.CreditReasonReturvara,
		model.CreditReasonPriskorrigering,
		model.CreditReasonFelaktigFaktura,
		model.CreditReasonAnnat,
	} {
		assert.True(t, validCreditReason(reason), reason)
	}
	assert.False(t, validCreditReason("something_else"))
	assert.False(t, validCreditReason(""))
}

func TestCreditReasonLabel(t *testing.T) {
	assert.Equal(t, "Returvara", creditReasonLabel(model.CreditReasonReturvara, ""))
	assert.Equal(t, "Felaktig faktura", creditReasonLabel(model.CreditReasonFelaktigFaktura, ""))
	assert.Equal(t, "Fel kund fakturerad", creditReasonLabel(model.CreditReasonAnnat, "Fel kund fakturerad"))
}

func TestCreditNoteEmailVariants(t *testing.T) {
	subject, standard := CreditNoteEmail(CreditEmailStandard, "Anna Svensson", "KRED-20250901-00001", "INV-20250901-00001", "1250.00", "Returvara")
	assert.Equal(t, "Kreditfaktura KRED-20250901-00001", subject)
	assert.Contains(t, standard, "Anna Svensson")
	assert.Contains(t, standard, "1250.00")
	assert.False(t, strings.Contains(standard, "återbetalar"))

	_, explanation := CreditNoteEmail(CreditEmailExplanation, "Anna Svensson", "KRED-20250901-00001", "INV-20250901-00001", "1250.00", "Returvara")
	assert.Contains(t, explanation, "återbetalar")
	assert.Contains(t, explanation, "INV-20250901-00001")
}
