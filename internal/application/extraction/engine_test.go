package extraction_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conciliador-ubl/internal/application/extraction"
	"github.com/jhoicas/conciliador-ubl/internal/domain"
	"github.com/jhoicas/conciliador-ubl/internal/domain/entity"
	"github.com/jhoicas/conciliador-ubl/internal/domain/reconciliation"
)

func TestExtract_NetInvoice(t *testing.T) {
	e := newEngine(map[string]string{"900123456": technicalKey})
	out := e.Extract("invoice_net.xml", readFixture(t, "invoice_net.xml"))

	require.Equal(t, extraction.StatusAccepted, out.Status, out.Error)
	require.NotNil(t, out.Record)
	r := out.Record

	assert.Equal(t, "FE1001", out.InvoiceNumber)
	assert.Equal(t, "900123456", out.Supplier)
	assert.Equal(t, "98570517.95", r.TotalAPagar.StringFixed(2))
	assert.Equal(t, entity.TotalSourceCustomTotalAPagar, r.TotalSource)
	assert.Equal(t, reconciliation.InterpretationNet, r.Interpretation)
	assert.Equal(t, "86420243.28", r.Subtotal.StringFixed(2))
	assert.Equal(t, "16460998.72", r.IVA.StringFixed(2))
	assert.Equal(t, "4310724.05", r.Retenciones.StringFixed(2))
	assert.Contains(t, r.OrderReferences, "OC-77")
	assert.Contains(t, r.OrderReferences, "4500012345")
	assert.NotEmpty(t, r.Fingerprint)

	assert.Len(t, r.Items, 2)
	assert.True(t, hasWarning(out.Warnings, "repetida"))
	assert.False(t, hasWarning(out.Warnings, "CUFE"), "el CUFE cuadra con la clave técnica")
	assert.False(t, hasWarning(out.Warnings, "PayableAmount"), "PayableAmount bruto = neto + retenciones")
	assert.False(t, hasWarning(out.Warnings, "fórmula"))

	require.Len(t, out.Pending, 1)
	assert.Equal(t, "orden_compra.pdf", out.Pending[0].Filename)
	assert.Equal(t, "900123456", out.Pending[0].Owner)
}

func TestExtract_NetInvoice_WrongTechnicalKey(t *testing.T) {
	e := newEngine(map[string]string{"900123456": "otra-clave"})
	out := e.Extract("invoice_net.xml", readFixture(t, "invoice_net.xml"))

	require.True(t, out.Accepted())
	assert.True(t, hasWarning(out.Warnings, "el CUFE no coincide"))
}

func TestExtract_NetInvoice_NoKeyNoVerification(t *testing.T) {
	out := newEngine(nil).Extract("invoice_net.xml", readFixture(t, "invoice_net.xml"))

	require.True(t, out.Accepted())
	assert.False(t, hasWarning(out.Warnings, "CUFE"))
}

func TestExtract_GrossInvoice(t *testing.T) {
	out := newEngine(nil).Extract("invoice_gross.xml", readFixture(t, "invoice_gross.xml"))

	require.Equal(t, extraction.StatusAccepted, out.Status, out.Error)
	r := out.Record
	assert.Equal(t, entity.TotalSourcePayableAmount, r.TotalSource)
	assert.Equal(t, reconciliation.InterpretationGross, r.Interpretation)
	assert.Equal(t, "102881242.00", r.TotalAPagar.StringFixed(2))
	assert.Equal(t, "800197268", r.Customer.ID)

	assert.True(t, hasWarning(out.Warnings, "factura sin CUFE"))
	assert.True(t, hasWarning(out.Warnings, "emisor"), "DV 3 no corresponde al NIT 860001022")
	assert.False(t, hasWarning(out.Warnings, "adquiriente"))
	for _, w := range out.Warnings {
		assert.NotContains(t, w, "\n")
	}
	assert.Empty(t, out.Pending)
}

func TestExtract_Incoherent(t *testing.T) {
	out := newEngine(nil).Extract("invoice_incoherent.xml", readFixture(t, "invoice_incoherent.xml"))

	assert.Equal(t, extraction.StatusIncoherent, out.Status)
	assert.Nil(t, out.Record)
	assert.True(t, errors.Is(out.Err, domain.ErrIncoherentTotals))
	assert.Equal(t, "FE2002", out.InvoiceNumber)

	require.NotNil(t, out.Diagnostic)
	d := out.Diagnostic
	assert.Equal(t, "payable_amount", d.TotalSource)
	assert.Equal(t, "98570517.95", d.NetExpected.StringFixed(2))
	assert.Equal(t, "48570517.95", d.NetDelta.StringFixed(2))
	assert.Equal(t, "102881242.00", d.GrossExpected.StringFixed(2))
	assert.Equal(t, "52881242.00", d.GrossDelta.StringFixed(2))
}

func TestExtract_ZeroCustomTotalFallsBackToPayable(t *testing.T) {
	out := newEngine(nil).Extract("invoice_zero_custom.xml", readFixture(t, "invoice_zero_custom.xml"))

	require.Equal(t, extraction.StatusAccepted, out.Status, out.Error)
	assert.Equal(t, entity.TotalSourcePayableAmount, out.Record.TotalSource)
	assert.True(t, out.Record.TotalAPagar.Equal(decimal.NewFromInt(119000)))
	assert.Equal(t, reconciliation.InterpretationNet, out.Record.Interpretation)
}

func TestExtract_MissingTotal(t *testing.T) {
	out := newEngine(nil).Extract("invoice_missing_total.xml", readFixture(t, "invoice_missing_total.xml"))

	assert.Equal(t, extraction.StatusMissingTotal, out.Status)
	assert.True(t, errors.Is(out.Err, domain.ErrMissingTotal))
	assert.Nil(t, out.Record)
	assert.NotEmpty(t, out.Error)
}

func TestExtract_Malformed(t *testing.T) {
	tests := map[string][]byte{
		"truncado":  readFixture(t, "truncated.xml"),
		"otra raíz": readFixture(t, "not_an_invoice.xml"),
		"vacío":     nil,
	}
	e := newEngine(nil)
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			out := e.Extract(name, data)
			assert.Equal(t, extraction.StatusMalformed, out.Status)
			assert.True(t, errors.Is(out.Err, domain.ErrMalformedDocument))
			assert.Nil(t, out.Record)
		})
	}
}

func TestExtract_AttachedDocument(t *testing.T) {
	out := newEngine(nil).Extract("attached_document.xml", readFixture(t, "attached_document.xml"))

	require.Equal(t, extraction.StatusAccepted, out.Status, out.Error)
	assert.Equal(t, "FE5005", out.Record.InvoiceNumber)
	assert.Equal(t, "890900608", out.Record.Supplier.ID)
	assert.True(t, out.Record.TotalAPagar.Equal(decimal.NewFromInt(119000)))
}

func TestExtract_SubtotalFallbacks(t *testing.T) {
	const head = `<Invoice xmlns="urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"` +
		` xmlns:cac="urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"` +
		` xmlns:cbc="urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2">` +
		`<cbc:ID>FE9</cbc:ID>` +
		`<cac:TaxTotal><cbc:TaxAmount>19000.00</cbc:TaxAmount></cac:TaxTotal>`

	t.Run("TaxExclusiveAmount", func(t *testing.T) {
		raw := head + `<cac:LegalMonetaryTotal><cbc:TaxExclusiveAmount>100000.00</cbc:TaxExclusiveAmount>` +
			`<cbc:PayableAmount>119000.00</cbc:PayableAmount></cac:LegalMonetaryTotal></Invoice>`
		out := newEngine(nil).Extract("inline", []byte(raw))
		require.Equal(t, extraction.StatusAccepted, out.Status, out.Error)
		assert.Equal(t, "100000.00", out.Record.Subtotal.StringFixed(2))
		assert.True(t, hasWarning(out.Warnings, "TaxExclusiveAmount"))
	})

	t.Run("sin subtotal", func(t *testing.T) {
		raw := head + `<cac:LegalMonetaryTotal><cbc:PayableAmount>119000.00</cbc:PayableAmount>` +
			`</cac:LegalMonetaryTotal></Invoice>`
		out := newEngine(nil).Extract("inline", []byte(raw))
		assert.Equal(t, extraction.StatusMalformed, out.Status)
		assert.ErrorIs(t, out.Err, domain.ErrMissingSubtotal)
		assert.Nil(t, out.Record)
		assert.Nil(t, out.Diagnostic)
		assert.Equal(t, "FE9", out.InvoiceNumber)
	})
}

func TestExtract_WithholdingsDeclaredInTaxTotal(t *testing.T) {
	raw := `<Invoice xmlns="urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"` +
		` xmlns:cac="urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"` +
		` xmlns:cbc="urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2">` +
		`<cbc:ID>FE10</cbc:ID>` +
		`<cac:TaxTotal><cbc:TaxAmount>19000.00</cbc:TaxAmount>` +
		`<cac:TaxSubtotal><cbc:TaxAmount>19000.00</cbc:TaxAmount><cac:TaxCategory><cac:TaxScheme><cbc:ID>01</cbc:ID></cac:TaxScheme></cac:TaxCategory></cac:TaxSubtotal></cac:TaxTotal>` +
		`<cac:TaxTotal><cbc:TaxAmount>2500.00</cbc:TaxAmount>` +
		`<cac:TaxSubtotal><cbc:TaxAmount>2500.00</cbc:TaxAmount><cac:TaxCategory><cac:TaxScheme><cbc:ID>06</cbc:ID></cac:TaxScheme></cac:TaxCategory></cac:TaxSubtotal></cac:TaxTotal>` +
		`<cac:LegalMonetaryTotal><cbc:LineExtensionAmount>100000.00</cbc:LineExtensionAmount>` +
		`<cbc:PayableAmount>116500.00</cbc:PayableAmount></cac:LegalMonetaryTotal></Invoice>`

	out := newEngine(nil).Extract("inline", []byte(raw))
	require.Equal(t, extraction.StatusAccepted, out.Status, out.Error)
	assert.Equal(t, "19000.00", out.Record.IVA.StringFixed(2))
	assert.Equal(t, "2500.00", out.Record.Retenciones.StringFixed(2))
	assert.True(t, hasWarning(out.Warnings, "retenciones declaradas en TaxTotal"))
	assert.True(t, hasWarning(out.Warnings, "no descuenta retenciones"))
}
