package dian_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conciliador-ubl/internal/infrastructure/dian"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	require.NoError(t, err)
	return data
}

// loadInvoice parsea un fixture y devuelve el elemento Invoice.
func loadInvoice(t *testing.T, name string) *etree.Element {
	t.Helper()
	doc, err := dian.ParseDocument(readFixture(t, name))
	require.NoError(t, err)
	return doc.Root
}

// inlineInvoice envuelve body en un Invoice con los prefijos habituales.
func inlineInvoice(t *testing.T, body string) *etree.Element {
	t.Helper()
	xml := `<Invoice xmlns="urn:oasis:names:specification:ubl:schema:xsd:Invoice-2"` +
		` xmlns:cac="urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"` +
		` xmlns:cbc="urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"` +
		` xmlns:ext="urn:oasis:names:specification:ubl:schema:xsd:CommonExtensionComponents-2">` +
		body + `</Invoice>`
	doc, err := dian.ParseDocument([]byte(xml))
	require.NoError(t, err)
	return doc.Root
}
