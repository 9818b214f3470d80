package dian_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conciliador-ubl/internal/domain/entity"
	"github.com/jhoicas/conciliador-ubl/internal/infrastructure/dian"
)

func TestExtractItems_CollapsesRepeatedLines(t *testing.T) {
	items, dropped := dian.ExtractItems(loadInvoice(t, "invoice_net.xml"))

	require.Len(t, items, 2)
	assert.Equal(t, 1, dropped, "la línea 3 repite la 2 con otra capitalización y sin tildes")

	first := items[0]
	assert.Equal(t, "1", first.LineID)
	assert.Equal(t, "Servicio de mantenimiento preventivo", first.Description)
	assert.Equal(t, "72101500", first.ProductCode)
	assert.Equal(t, "80000000.00", first.LineValue.StringFixed(2))

	second := items[1]
	assert.Equal(t, "2", second.LineID)
	assert.Equal(t, "REP-220", second.ProductCode)
	assert.Equal(t, "10", second.Quantity.String())
	assert.Equal(t, "642024.328", second.UnitPrice.String())
	assert.Equal(t, entity.ItemHash("repuestos hidraulicos", second.LineValue), second.Hash)
}

func TestExtractItems_MissingFieldsAreZero(t *testing.T) {
	root := inlineInvoice(t, `<cac:InvoiceLine><cbc:ID>7</cbc:ID></cac:InvoiceLine>`)
	items, dropped := dian.ExtractItems(root)

	require.Len(t, items, 1)
	assert.Zero(t, dropped)
	assert.True(t, items[0].Quantity.IsZero())
	assert.True(t, items[0].LineValue.IsZero())
	assert.Empty(t, items[0].Description)
	assert.Empty(t, items[0].ProductCode)
}

func TestExtractItems_NoLines(t *testing.T) {
	items, dropped := dian.ExtractItems(loadInvoice(t, "invoice_incoherent.xml"))
	assert.Empty(t, items)
	assert.Zero(t, dropped)
}
