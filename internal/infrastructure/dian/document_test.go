package dian_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/conciliador-ubl/internal/domain"
	"github.com/jhoicas/conciliador-ubl/internal/infrastructure/dian"
)

func TestParseDocument_Invoice(t *testing.T) {
	raw := readFixture(t, "invoice_net.xml")
	doc, err := dian.ParseDocument(raw)
	require.NoError(t, err)

	assert.False(t, doc.Envelope)
	assert.Equal(t, "Invoice", doc.Root.Tag)
	assert.Equal(t, raw, doc.Raw)
}

func TestParseDocument_TrailingContent(t *testing.T) {
	raw := bytes.TrimRight(readFixture(t, "invoice_net.xml"), "\r\n")
	tails := map[string]string{
		"salto de línea": "\n",
		"CRLF":           "\r\n\r\n",
		"comentario":     "\n<!-- fin -->\n",
	}
	for name, tail := range tails {
		t.Run(name, func(t *testing.T) {
			data := append(append([]byte{}, raw...), tail...)
			doc, err := dian.ParseDocument(data)
			require.NoError(t, err)
			id, _ := dian.Text(doc.Root, "cbc:ID")
			assert.Equal(t, "FE1001", id)
		})
	}
}

func TestParseDocument_PrefixedRoot(t *testing.T) {
	doc, err := dian.ParseDocument(readFixture(t, "invoice_gross.xml"))
	require.NoError(t, err)
	assert.Equal(t, "fe", doc.Root.Space)
}

func TestParseDocument_AttachedDocument(t *testing.T) {
	doc, err := dian.ParseDocument(readFixture(t, "attached_document.xml"))
	require.NoError(t, err)

	assert.True(t, doc.Envelope)
	id, _ := dian.Text(doc.Root, "cbc:ID")
	assert.Equal(t, "FE5005", id)
	assert.True(t, bytes.HasPrefix(doc.Raw, []byte("<?xml")), "Raw es la factura interna")
}

func TestParseDocument_Malformed(t *testing.T) {
	tests := map[string][]byte{
		"vacío":                    nil,
		"solo espacios":            []byte("  \n "),
		"truncado":                 readFixture(t, "truncated.xml"),
		"otra raíz":                readFixture(t, "not_an_invoice.xml"),
		"attached sin factura":     readFixture(t, "attached_document_empty.xml"),
		"texto plano":              []byte("esto no es XML"),
		"invoice sin namespace":    []byte(`<Invoice><ID>1</ID></Invoice>`),
		"attached con nota dentro": []byte(`<AttachedDocument xmlns="urn:oasis:names:specification:ubl:schema:xsd:AttachedDocument-2" xmlns:cac="urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2" xmlns:cbc="urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"><cac:Attachment><cac:ExternalReference><cbc:Description>&lt;Nota/&gt;</cbc:Description></cac:ExternalReference></cac:Attachment></AttachedDocument>`),
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := dian.ParseDocument(data)
			assert.ErrorIs(t, err, domain.ErrMalformedDocument)
		})
	}
}
