package dian_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conciliador-ubl/internal/domain/entity"
	"github.com/jhoicas/conciliador-ubl/internal/infrastructure/dian"
)

func TestExtractMetadata_Net(t *testing.T) {
	m := dian.ExtractMetadata(loadInvoice(t, "invoice_net.xml"))

	assert.Equal(t, "FE1001", m.InvoiceNumber)
	assert.Len(t, m.CUFE, 96)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), m.IssueDate)
	assert.Equal(t, "10:30:00-05:00", m.IssueTime)
	require.NotNil(t, m.DueDate)
	assert.Equal(t, "2024-04-14", m.DueDate.Format("2006-01-02"))
	assert.Equal(t, "COP", m.Currency)
	assert.Equal(t, "42", m.PaymentMeansCode)
	assert.Equal(t, "2", m.PaymentFormCode)
	assert.Equal(t, "1", m.Environment)
	assert.Empty(t, m.Warnings)

	assert.Equal(t, entity.Party{
		ID:                "900123456",
		VerificationDigit: "8",
		SchemeName:        "31",
		Name:              "MANTENIMIENTOS INDUSTRIALES S.A.S.",
	}, m.Supplier)
	assert.Equal(t, "800197268", m.Customer.ID, "los puntos del NIT se descartan")
	assert.Equal(t, "4", m.Customer.VerificationDigit)
}

func TestExtractMetadata_Fallbacks(t *testing.T) {
	m := dian.ExtractMetadata(loadInvoice(t, "invoice_gross.xml"))

	assert.Equal(t, "860001022", m.Supplier.ID)
	assert.Equal(t, "Suministros del Valle Ltda", m.Supplier.Name, "nombre desde PartyLegalEntity")
	assert.Equal(t, "800197268", m.Customer.ID, "id desde PartyIdentification")
	assert.Empty(t, m.Customer.Name)
	assert.Nil(t, m.DueDate)
	assert.Empty(t, m.CUFE)
}

func TestExtractMetadata_DueDateFromPaymentMeans(t *testing.T) {
	root := inlineInvoice(t, `
		<cbc:ID>X1</cbc:ID>
		<cbc:IssueDate>15/03/2024</cbc:IssueDate>
		<cac:PaymentMeans><cbc:PaymentDueDate>2024-05-31</cbc:PaymentDueDate></cac:PaymentMeans>`)
	m := dian.ExtractMetadata(root)

	require.NotNil(t, m.DueDate)
	assert.Equal(t, "2024-05-31", m.DueDate.Format("2006-01-02"))
	assert.True(t, m.IssueDate.IsZero())
	require.Len(t, m.Warnings, 1)
	assert.Contains(t, m.Warnings[0], "15/03/2024")
}

func TestExtractMetadata_NoParties(t *testing.T) {
	m := dian.ExtractMetadata(inlineInvoice(t, `<cbc:ID>X2</cbc:ID>`))
	assert.Equal(t, entity.Party{}, m.Supplier)
	assert.Equal(t, entity.Party{}, m.Customer)
}
